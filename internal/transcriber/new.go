package transcriber

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/brief-flow/internal/config"
	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/pkg/executor"
)

// TranscriptFile is the name of the transcript written into each item directory.
const TranscriptFile = "transcription.txt"

type implTranscriber struct {
	engine     Engine
	executor   executor.Executor
	ffmpeg     string
	sampleRate int
	tempDir    string
	logger     logger.Logger
}

// New creates a Transcriber that converts audio with ffmpeg before handing it to engine.
func New(cfg *config.Config, engine Engine, exec executor.Executor, log logger.Logger) Transcriber {
	return &implTranscriber{
		engine:     engine,
		executor:   exec,
		ffmpeg:     cfg.FFmpeg.BinaryPath,
		sampleRate: cfg.FFmpeg.SampleRate,
		tempDir:    cfg.Paths.Temp,
		logger:     log,
	}
}

// NewEngine builds the engine named by transcription.engine.
func NewEngine(ctx context.Context, cfg *config.Config, exec executor.Executor, log logger.Logger) (Engine, error) {
	switch cfg.Transcription.Engine {
	case "whisper":
		return NewWhisper(cfg.Whisper, exec, log), nil
	case "google":
		return NewGoogleSpeech(ctx, cfg.Transcription.CredentialsFile, int32(cfg.FFmpeg.SampleRate), log)
	default:
		return nil, fmt.Errorf("unknown transcription engine %q", cfg.Transcription.Engine)
	}
}
