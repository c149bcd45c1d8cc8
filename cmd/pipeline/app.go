package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/brief-flow/internal/cache"
	"github.com/nguyentantai21042004/brief-flow/internal/config"
	"github.com/nguyentantai21042004/brief-flow/internal/downloader"
	"github.com/nguyentantai21042004/brief-flow/internal/llm"
	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/internal/processor"
	"github.com/nguyentantai21042004/brief-flow/internal/ratelimit"
	"github.com/nguyentantai21042004/brief-flow/internal/readiness"
	"github.com/nguyentantai21042004/brief-flow/internal/sink"
	"github.com/nguyentantai21042004/brief-flow/internal/storage"
	"github.com/nguyentantai21042004/brief-flow/internal/summarizer"
	"github.com/nguyentantai21042004/brief-flow/internal/transcriber"
	"github.com/nguyentantai21042004/brief-flow/pkg/executor"
)

type app struct {
	cfg     *config.Config
	log     logger.Logger
	proc    processor.Processor
	waiter  readiness.Waiter
	closers []func(ctx context.Context) error
	closed  bool
}

func newApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	exec := executor.New()
	if err := checkBinaries(ctx, cfg, exec, log); err != nil {
		return nil, err
	}
	a.waiter = readiness.New(readiness.Options{
		MaxAttempts: cfg.Readiness.MaxAttempts,
		Interval:    cfg.Readiness.Interval,
	}, log)

	dl := downloader.New(cfg, exec, log)
	acq := downloader.NewAcquirer(cfg, dl, a.waiter, log)

	engine, err := transcriber.NewEngine(ctx, cfg, exec, log)
	if err != nil {
		return nil, fmt.Errorf("transcription engine: %w", err)
	}
	tr := transcriber.New(cfg, engine, exec, log)

	backend, err := llm.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("llm backend: %w", err)
	}
	client := ratelimit.New(backend, ratelimit.Options{
		TokensPerMinute: cfg.LLM.TokensPerMinute,
		Window:          cfg.LLM.Window,
		MaxRetries:      *cfg.LLM.MaxRetries,
		RetryMaxElapsed: cfg.LLM.RetryMaxElapsed,
	}, log)

	var summaryCache summarizer.Cache
	if cfg.Storage.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Storage.RedisAddr)
		if err != nil {
			log.Warn(ctx, "Summary cache disabled: %v", err)
		} else {
			summaryCache = rc
			a.closers = append(a.closers, func(context.Context) error { return rc.Close() })
		}
	}
	sum := summarizer.New(cfg, client, summaryCache, log)

	resultSink, err := sink.New(ctx, cfg.Storage, log)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("result sink: %w", err)
	}
	a.closers = append(a.closers, resultSink.Close)

	deps := processor.Deps{
		Acquirer:    acq,
		Downloader:  dl,
		Transcriber: tr,
		Summarizer:  sum,
		Sink:        resultSink,
	}
	if cfg.Storage.GCSBucket != "" {
		pub, err := storage.NewGCS(ctx, cfg.Storage.GCSBucket, cfg.Storage.GoogleCredentialsFile)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("gcs publisher: %w", err)
		}
		deps.Publisher = pub
		a.closers = append(a.closers, func(context.Context) error { return pub.Close() })
	}

	a.proc = processor.New(cfg, deps, log)
	return a, nil
}

// checkBinaries fails when a tool every media item needs is missing and
// warns about tools only some items need.
func checkBinaries(ctx context.Context, cfg *config.Config, exec executor.Executor, log logger.Logger) error {
	required := []string{cfg.FFmpeg.BinaryPath}
	if cfg.Transcription.Engine == "whisper" {
		required = append(required, cfg.Whisper.BinaryPath)
	}
	for _, bin := range required {
		path, err := exec.LookPath(bin)
		if err != nil {
			return fmt.Errorf("required binary %s not found: %w", bin, err)
		}
		log.Debug(ctx, "Using %s", path)
	}

	for _, bin := range []string{cfg.Downloader.BinaryPath, cfg.FFmpeg.ProbePath} {
		if _, err := exec.LookPath(bin); err != nil {
			log.Warn(ctx, "%s not found; URL items and metadata lookups will fail: %v", bin, err)
		}
	}
	return nil
}

// close releases resources in reverse order of creation. It is safe to call twice.
func (a *app) close(ctx context.Context) {
	if a.closed {
		return
	}
	a.closed = true

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn(ctx, "Close failed: %v", err)
		}
	}
}
