package transcriber

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// toWav converts the input to 16 kHz mono PCM in a temp file the caller removes.
func (t *implTranscriber) toWav(ctx context.Context, audioPath string) (string, error) {
	if err := os.MkdirAll(t.tempDir, 0755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	f, err := os.CreateTemp(t.tempDir, "audio-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp wav: %w", err)
	}
	wavPath := f.Name()
	f.Close()

	t.logger.Info(ctx, "Converting audio: %s", audioPath)

	// -vn drops any video stream; pcm_s16le at 16k mono is what whisper and LINEAR16 expect
	args := []string{
		"-i", audioPath,
		"-vn",
		"-ar", strconv.Itoa(t.sampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		wavPath,
	}

	if _, err := t.executor.Execute(ctx, t.ffmpeg, args...); err != nil {
		os.Remove(wavPath)
		return "", fmt.Errorf("ffmpeg convert audio: %w", err)
	}

	return wavPath, nil
}

func (t *implTranscriber) cleanupTempFile(ctx context.Context, filePath string) {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		t.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", filePath, err)
	} else {
		t.logger.Debug(ctx, "Cleaned up temp file: %s", filePath)
	}
}
