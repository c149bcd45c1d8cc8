package transcriber

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/brief-flow/internal/config"
	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/pkg/executor"
)

type whisperEngine struct {
	cfg      config.WhisperConfig
	executor executor.Executor
	logger   logger.Logger
}

// NewWhisper creates an Engine backed by the whisper.cpp CLI.
func NewWhisper(cfg config.WhisperConfig, exec executor.Executor, log logger.Logger) Engine {
	return &whisperEngine{cfg: cfg, executor: exec, logger: log}
}

func (w *whisperEngine) Transcribe(ctx context.Context, wavPath, language string) ([]Segment, error) {
	// whisper appends .srt to the prefix
	outputPrefix := strings.TrimSuffix(wavPath, filepath.Ext(wavPath))
	if language == "" {
		language = w.cfg.Language
	}

	w.logger.Info(ctx, "Starting whisper with %d threads: %s", w.cfg.Threads, wavPath)

	// -ml/-mc 0 lift segment and context limits for long recordings, -bo 5 is best-of-5 decoding
	args := []string{
		"-m", w.cfg.ModelPath,
		"-f", wavPath,
		"-osrt",
		"-l", language,
		"-t", strconv.Itoa(w.cfg.Threads),
		"-ml", "0",
		"-mc", "0",
		"-bo", "5",
		"--output-file", outputPrefix,
	}
	if w.cfg.Prompt != "" {
		args = append(args, "--prompt", w.cfg.Prompt)
	}
	if !w.cfg.UseGPU {
		args = append(args, "-ng")
	}

	if _, err := w.executor.Execute(ctx, w.cfg.BinaryPath, args...); err != nil {
		return nil, fmt.Errorf("whisper transcribe: %w", err)
	}

	srtPath := outputPrefix + ".srt"
	defer os.Remove(srtPath)

	content, err := os.ReadFile(srtPath)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	return ParseSRT(string(content)), nil
}
