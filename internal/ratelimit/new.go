package ratelimit

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/brief-flow/internal/llm"
	"github.com/nguyentantai21042004/brief-flow/internal/logger"
)

type Options struct {
	TokensPerMinute int
	Window          time.Duration
	MaxRetries      int
	RetryInterval   time.Duration
	RetryMaxElapsed time.Duration

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

type implClient struct {
	backend         llm.Backend
	budget          *TokenBudget
	maxRetries      int
	retryInterval   time.Duration
	retryMaxElapsed time.Duration
	logger          logger.Logger
}

// New wraps backend with the token window and transient-error retries.
func New(backend llm.Backend, opts Options, log logger.Logger) Client {
	if opts.TokensPerMinute <= 0 {
		opts.TokensPerMinute = 200000
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = time.Second
	}
	if opts.RetryMaxElapsed <= 0 {
		opts.RetryMaxElapsed = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepCtx
	}

	return &implClient{
		backend:         backend,
		budget:          newTokenBudget(opts.TokensPerMinute, opts.Window, opts.Now, opts.Sleep, log),
		maxRetries:      opts.MaxRetries,
		retryInterval:   opts.RetryInterval,
		retryMaxElapsed: opts.RetryMaxElapsed,
		logger:          log,
	}
}
