package downloader

import (
	"github.com/nguyentantai21042004/brief-flow/internal/config"
	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/internal/readiness"
	"github.com/nguyentantai21042004/brief-flow/pkg/executor"
)

type implDownloader struct {
	executor    executor.Executor
	binary      string
	ffprobe     string
	audioFormat string
	extraArgs   []string
	logger      logger.Logger
}

// New creates a Downloader backed by yt-dlp and ffprobe.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Downloader {
	return &implDownloader{
		executor:    exec,
		binary:      cfg.Downloader.BinaryPath,
		ffprobe:     cfg.FFmpeg.ProbePath,
		audioFormat: cfg.Downloader.AudioFormat,
		extraArgs:   cfg.Downloader.ExtraArgs,
		logger:      log,
	}
}

type implAcquirer struct {
	downloader  Downloader
	waiter      readiness.Waiter
	audioFormat string
	logger      logger.Logger
}

// NewAcquirer creates the acquisition stage on top of d and w.
func NewAcquirer(cfg *config.Config, d Downloader, w readiness.Waiter, log logger.Logger) Acquirer {
	return &implAcquirer{
		downloader:  d,
		waiter:      w,
		audioFormat: cfg.Downloader.AudioFormat,
		logger:      log,
	}
}
