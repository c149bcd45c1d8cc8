package transcriber

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/brief-flow/internal/models"
)

// Transcriber turns an acquired audio file into transcription.txt.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, destDir, language string) models.TranscriptResult
}

// Engine is a speech-to-text backend working on 16 kHz mono WAV input.
type Engine interface {
	Transcribe(ctx context.Context, wavPath, language string) ([]Segment, error)
}

// Segment is one timed piece of recognized speech.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}
