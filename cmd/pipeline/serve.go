package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nguyentantai21042004/brief-flow/internal/api"
	"github.com/nguyentantai21042004/brief-flow/internal/watcher"
)

// serve runs the HTTP API and the inbox watcher until ctx is cancelled.
func serve(ctx context.Context, a *app) error {
	w, err := watcher.New(a.cfg.Paths.Inbox, a.proc.Process, a.waiter, a.log, a.cfg.Performance.InboxConcurrency)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           api.NewRouter(a.cfg.Server.Mode, a.proc, a.cfg.Paths.SourceRoot, a.log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 2)
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- fmt.Errorf("watcher: %w", err)
		}
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server: %w", err)
		}
	}()

	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "Brief Flow is ready!")
	a.log.Info(ctx, "API: %s", a.cfg.Server.Addr)
	a.log.Info(ctx, "Inbox: %s", a.cfg.Paths.Inbox)
	a.log.Info(ctx, "Output: %s", a.cfg.Paths.DestRoot)
	a.log.Info(ctx, "Press Ctrl+C to stop")
	a.log.Info(ctx, "========================================")

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info(context.Background(), "Shutdown signal received")
	case runErr = <-errChan:
	}

	a.log.Info(context.Background(), "Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn(shutdownCtx, "HTTP shutdown: %v", err)
	}
	if ctx.Err() != nil {
		<-watchDone
	}
	return runErr
}
