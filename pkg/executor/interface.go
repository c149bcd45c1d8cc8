package executor

import "context"

// Executor runs external binaries (yt-dlp, ffmpeg, ffprobe, whisper.cpp).
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	LookPath(name string) (string, error)
}
