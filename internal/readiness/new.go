package readiness

import (
	"context"
	"os"
	"time"

	"github.com/nguyentantai21042004/brief-flow/internal/logger"
)

type Options struct {
	MaxAttempts int
	Interval    time.Duration

	// Stat and Sleep default to os.Stat and a ctx-aware timer.
	Stat  func(path string) (os.FileInfo, error)
	Sleep func(ctx context.Context, d time.Duration) error
}

type implWaiter struct {
	maxAttempts int
	interval    time.Duration
	stat        func(path string) (os.FileInfo, error)
	sleep       func(ctx context.Context, d time.Duration) error
	logger      logger.Logger
}

// New creates a Waiter. Zero options fall back to 10 attempts every 500ms.
func New(opts Options, log logger.Logger) Waiter {
	w := &implWaiter{
		maxAttempts: opts.MaxAttempts,
		interval:    opts.Interval,
		stat:        opts.Stat,
		sleep:       opts.Sleep,
		logger:      log,
	}
	if w.maxAttempts <= 0 {
		w.maxAttempts = 10
	}
	if w.interval <= 0 {
		w.interval = 500 * time.Millisecond
	}
	if w.stat == nil {
		w.stat = os.Stat
	}
	if w.sleep == nil {
		w.sleep = sleepCtx
	}
	return w
}
