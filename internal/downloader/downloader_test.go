package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/brief-flow/internal/config"
	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/internal/models"
	"github.com/nguyentantai21042004/brief-flow/internal/readiness"
	"github.com/nguyentantai21042004/brief-flow/pkg/apperr"
)

type fakeExecutor struct {
	calls  [][]string
	stdout string
	err    error
	onExec func(args []string)
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.onExec != nil {
		f.onExec(args)
	}
	return f.stdout, f.err
}

func (f *fakeExecutor) LookPath(name string) (string, error) { return name, nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Paths:   config.PathsConfig{DestRoot: t.TempDir()},
		Whisper: config.WhisperConfig{ModelPath: "m", BinaryPath: "w"},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

// ytdlpWrites creates the file yt-dlp would produce from the -o template.
func ytdlpWrites(args []string) {
	for i, a := range args {
		if a == "-o" {
			_ = os.WriteFile(strings.Replace(args[i+1], "%(ext)s", "mp3", 1), []byte("ID3"), 0644)
		}
	}
}

func fastWaiter() readiness.Waiter {
	return readiness.New(readiness.Options{MaxAttempts: 2, Interval: time.Millisecond}, logger.Discard())
}

func TestDownloadArgs(t *testing.T) {
	cfg := testConfig(t)
	exec := &fakeExecutor{}
	d := New(cfg, exec, logger.Discard())

	if err := d.Download(context.Background(), "https://youtu.be/abc", "/data/f/e/3", "3"); err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	got := strings.Join(exec.calls[0], " ")
	want := "yt-dlp -f bestaudio -x --audio-format mp3 --no-playlist --no-progress -o /data/f/e/3/3.%(ext)s https://youtu.be/abc"
	if got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestGetInfo(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		stdout    string
		wantBin   string
		wantTitle string
		wantDur   float64
	}{
		{
			name:      "remote",
			source:    "https://youtu.be/abc",
			stdout:    `{"id":"abc","title":"Go Concurrency","duration":754.5}`,
			wantBin:   "yt-dlp",
			wantTitle: "Go Concurrency",
			wantDur:   754.5,
		},
		{
			name:      "local with tag",
			source:    "/in/talk.m4a",
			stdout:    `{"format":{"duration":"12.250000","tags":{"title":"Keynote"}}}`,
			wantBin:   "ffprobe",
			wantTitle: "Keynote",
			wantDur:   12.25,
		},
		{
			name:      "local without tag",
			source:    "/in/talk.m4a",
			stdout:    `{"format":{"duration":"3"}}`,
			wantBin:   "ffprobe",
			wantTitle: "talk",
			wantDur:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{stdout: tt.stdout}
			meta, err := New(testConfig(t), exec, logger.Discard()).GetInfo(context.Background(), tt.source)
			if err != nil {
				t.Fatalf("GetInfo() error = %v", err)
			}
			if exec.calls[0][0] != tt.wantBin {
				t.Errorf("binary = %s, want %s", exec.calls[0][0], tt.wantBin)
			}
			if meta.Title != tt.wantTitle || meta.DurationSeconds != tt.wantDur {
				t.Errorf("GetInfo() = %+v, want %s/%v", meta, tt.wantTitle, tt.wantDur)
			}
		})
	}
}

func TestGetInfoBadJSON(t *testing.T) {
	exec := &fakeExecutor{stdout: "not json"}
	if _, err := New(testConfig(t), exec, logger.Discard()).GetInfo(context.Background(), "https://x"); err == nil {
		t.Fatal("GetInfo() should fail on bad JSON")
	}
}

func TestAcquireURL(t *testing.T) {
	cfg := testConfig(t)
	exec := &fakeExecutor{onExec: ytdlpWrites}
	a := NewAcquirer(cfg, New(cfg, exec, logger.Discard()), fastWaiter(), logger.Discard())

	destDir := filepath.Join(t.TempDir(), "folder", "entry", "2")
	path, err := a.Acquire(context.Background(), models.BatchItem{Index: 2, Source: "https://youtu.be/abc"}, destDir)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if path != filepath.Join(destDir, "2.mp3") {
		t.Errorf("path = %s, want %s", path, filepath.Join(destDir, "2.mp3"))
	}
	if len(exec.calls) != 1 {
		t.Errorf("download attempts = %d, want exactly 1", len(exec.calls))
	}
}

func TestAcquireURLFailures(t *testing.T) {
	t.Run("download error", func(t *testing.T) {
		cfg := testConfig(t)
		exec := &fakeExecutor{err: errors.New("HTTP Error 404")}
		a := NewAcquirer(cfg, New(cfg, exec, logger.Discard()), fastWaiter(), logger.Discard())

		_, err := a.Acquire(context.Background(), models.BatchItem{Index: 1, Source: "https://x/y"}, t.TempDir())
		if err == nil || !strings.Contains(err.Error(), "404") {
			t.Fatalf("Acquire() error = %v, want download error", err)
		}
		if len(exec.calls) != 1 {
			t.Errorf("download attempts = %d, want 1 (no retry)", len(exec.calls))
		}
	})

	t.Run("file never appears", func(t *testing.T) {
		cfg := testConfig(t)
		a := NewAcquirer(cfg, New(cfg, &fakeExecutor{}, logger.Discard()), fastWaiter(), logger.Discard())

		_, err := a.Acquire(context.Background(), models.BatchItem{Index: 1, Source: "https://x/y"}, t.TempDir())
		if !apperr.IsCode(err, apperr.CodeTimeout) {
			t.Fatalf("Acquire() error = %v, want TIMEOUT", err)
		}
	})
}

func TestAcquireMedia(t *testing.T) {
	cfg := testConfig(t)
	src := filepath.Join(t.TempDir(), "lecture.m4a")
	if err := os.WriteFile(src, []byte("audio-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	exec := &fakeExecutor{}
	a := NewAcquirer(cfg, New(cfg, exec, logger.Discard()), fastWaiter(), logger.Discard())
	destDir := t.TempDir()

	path, err := a.Acquire(context.Background(), models.BatchItem{Index: 4, Source: src}, destDir)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if path != filepath.Join(destDir, "4.m4a") {
		t.Errorf("path = %s", path)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "audio-bytes" {
		t.Errorf("copied content = %q", data)
	}
	if len(exec.calls) != 0 {
		t.Errorf("executor calls = %d, want 0 for local media", len(exec.calls))
	}
}

func TestAcquireDocumentRejected(t *testing.T) {
	cfg := testConfig(t)
	a := NewAcquirer(cfg, New(cfg, &fakeExecutor{}, logger.Discard()), fastWaiter(), logger.Discard())

	_, err := a.Acquire(context.Background(), models.BatchItem{Index: 1, Source: "notes.md"}, t.TempDir())
	if !apperr.IsCode(err, apperr.CodeInvalidArgument) {
		t.Fatalf("Acquire() error = %v, want INVALID_ARGUMENT", err)
	}
}
