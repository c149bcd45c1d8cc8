package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/pkg/apperr"
)

// TokenBudget is a fixed-window token counter. An overflow always waits one
// full window, and the wait happens while holding the lock so queued callers
// see the fresh window.
type TokenBudget struct {
	mu          sync.Mutex
	allowance   int
	window      time.Duration
	used        int
	windowStart time.Time
	generation  int
	resets      int

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	logger logger.Logger
}

func newTokenBudget(allowance int, window time.Duration, now func() time.Time, sleep func(ctx context.Context, d time.Duration) error, log logger.Logger) *TokenBudget {
	return &TokenBudget{
		allowance:   allowance,
		window:      window,
		windowStart: now(),
		now:         now,
		sleep:       sleep,
		logger:      log,
	}
}

// Reserve counts maxTokens against the window, waiting a full window first if
// they would not fit. It returns the window generation the reservation belongs to.
func (b *TokenBudget) Reserve(ctx context.Context, maxTokens int) (int, error) {
	if maxTokens > b.allowance {
		return 0, apperr.E(apperr.CodeInvalidArgument, "TokenBudget.Reserve",
			fmt.Sprintf("max tokens %d exceeds allowance %d", maxTokens, b.allowance), nil)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.used+maxTokens > b.allowance {
		b.logger.Info(ctx, "Token budget exhausted (%d/%d used, window opened %s ago), waiting %s",
			b.used, b.allowance, b.now().Sub(b.windowStart).Round(time.Second), b.window)
		if err := b.sleep(ctx, b.window); err != nil {
			return 0, fmt.Errorf("wait for token window: %w", err)
		}
		b.rollover(b.now())
		b.resets++
	}

	b.used += maxTokens
	return b.generation, nil
}

// Reconcile replaces a reservation with the usage the backend reported.
// Reservations from an earlier window are left alone.
func (b *TokenBudget) Reconcile(generation, reserved, actual int) {
	if actual <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if generation != b.generation {
		return
	}
	b.used += actual - reserved
	if b.used < 0 {
		b.used = 0
	}
}

// Release returns a reservation whose call produced no completion.
// Reservations from an earlier window are left alone.
func (b *TokenBudget) Release(generation, reserved int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if generation != b.generation {
		return
	}
	b.used -= reserved
	if b.used < 0 {
		b.used = 0
	}
}

func (b *TokenBudget) rollover(now time.Time) {
	b.used = 0
	b.windowStart = now
	b.generation++
}

func (b *TokenBudget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

func (b *TokenBudget) Resets() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resets
}
