package transcriber

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/brief-flow/internal/models"
)

func (t *implTranscriber) Transcribe(ctx context.Context, audioPath, destDir, language string) models.TranscriptResult {
	start := time.Now()

	if _, err := os.Stat(audioPath); err != nil {
		return failure("audio file not found: %s", audioPath)
	}

	wavPath, err := t.toWav(ctx, audioPath)
	if err != nil {
		return failure("%v", err)
	}
	defer t.cleanupTempFile(ctx, wavPath)

	segments, err := t.runEngine(ctx, wavPath, language)
	if err != nil {
		t.logger.Error(ctx, "Transcription failed for %s: %v", audioPath, err)
		return failure("%v", err)
	}

	text := FormatSegments(segments)
	outPath := filepath.Join(destDir, TranscriptFile)
	if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
		return failure("write transcript: %v", err)
	}

	t.logger.Info(ctx, "Transcription completed in %s: %s (%d segments)", time.Since(start).Round(time.Millisecond), outPath, len(segments))
	return models.TranscriptResult{Success: true, Text: text, Path: outPath}
}

// runEngine shields the caller from engine panics.
func (t *implTranscriber) runEngine(ctx context.Context, wavPath, language string) (segments []Segment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("speech engine panic: %v", r)
		}
	}()
	return t.engine.Transcribe(ctx, wavPath, language)
}

// FormatSegments renders segments as "[HH:MM:SS] text" lines.
func FormatSegments(segments []Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		sb.WriteString("[")
		sb.WriteString(formatTimestamp(s.Start))
		sb.WriteString("] ")
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatTimestamp(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func failure(format string, args ...interface{}) models.TranscriptResult {
	return models.TranscriptResult{Success: false, Message: fmt.Sprintf(format, args...)}
}
