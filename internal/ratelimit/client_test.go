package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nguyentantai21042004/brief-flow/internal/llm"
	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/pkg/apperr"
)

type fakeBackend struct {
	calls    int32
	failN    int32 // first failN calls fail with err
	err      error
	reported int
}

func (f *fakeBackend) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if n <= f.failN {
		return llm.Response{}, f.err
	}
	return llm.Response{Text: "out:" + req.Messages[len(req.Messages)-1].Content, TokensUsed: f.reported}, nil
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestClient(backend llm.Backend, clk *fakeClock, allowance, retries int) *implClient {
	return New(backend, Options{
		TokensPerMinute: allowance,
		Window:          time.Minute,
		MaxRetries:      retries,
		RetryInterval:   time.Millisecond,
		Now:             clk.Now,
		Sleep:           clk.Sleep,
	}, logger.Discard()).(*implClient)
}

func userMsg(s string) []llm.Message {
	return []llm.Message{{Role: llm.RoleUser, Content: s}}
}

func TestCompleteWindowOverflow(t *testing.T) {
	clk := newFakeClock()
	c := newTestClient(&fakeBackend{}, clk, 10, 0)

	for i, wantUsed := range []int{4, 8, 4} {
		text, _, err := c.Complete(context.Background(), userMsg("x"), "m", 4, 0.2)
		if err != nil {
			t.Fatalf("call %d: Complete() error = %v", i, err)
		}
		if text != "out:x" {
			t.Errorf("call %d: text = %q", i, text)
		}
		if c.Used() != wantUsed {
			t.Errorf("call %d: Used() = %d, want %d", i, c.Used(), wantUsed)
		}
	}

	if c.Resets() != 1 {
		t.Errorf("Resets() = %d, want 1", c.Resets())
	}
	if len(clk.sleeps) != 1 || clk.sleeps[0] != time.Minute {
		t.Errorf("sleeps = %v, want one full window", clk.sleeps)
	}
}

func TestCompleteConcurrentSingleReset(t *testing.T) {
	clk := newFakeClock()
	backend := &fakeBackend{}
	c := newTestClient(backend, clk, 10, 0)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := c.Complete(context.Background(), userMsg("x"), "m", 5, 0.2); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("Complete() error = %v", err)
	}
	if c.Resets() != 1 {
		t.Errorf("Resets() = %d, want exactly 1", c.Resets())
	}
	if c.Used() != 10 {
		t.Errorf("Used() = %d, want 10", c.Used())
	}
	if atomic.LoadInt32(&backend.calls) != 4 {
		t.Errorf("backend calls = %d, want 4", backend.calls)
	}
}

func TestCompleteMaxTokensAboveAllowance(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestClient(backend, newFakeClock(), 10, 2)

	_, _, err := c.Complete(context.Background(), userMsg("x"), "m", 11, 0.2)
	if !apperr.IsCode(err, apperr.CodeInvalidArgument) {
		t.Fatalf("Complete() error = %v, want INVALID_ARGUMENT", err)
	}
	if backend.calls != 0 {
		t.Errorf("backend calls = %d, want 0", backend.calls)
	}
}

func TestCompleteReconcilesReportedUsage(t *testing.T) {
	c := newTestClient(&fakeBackend{reported: 2}, newFakeClock(), 10, 0)

	_, tokens, err := c.Complete(context.Background(), userMsg("x"), "m", 4, 0.2)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if tokens != 2 {
		t.Errorf("tokensUsed = %d, want 2", tokens)
	}
	if c.Used() != 2 {
		t.Errorf("Used() = %d, want 2", c.Used())
	}
}

func TestCompleteOverflowWaitsFullWindow(t *testing.T) {
	clk := newFakeClock()
	c := newTestClient(&fakeBackend{}, clk, 10, 0)

	if _, _, err := c.Complete(context.Background(), userMsg("x"), "m", 8, 0.2); err != nil {
		t.Fatal(err)
	}
	clk.Advance(45 * time.Second)
	if _, _, err := c.Complete(context.Background(), userMsg("x"), "m", 8, 0.2); err != nil {
		t.Fatal(err)
	}

	if c.Resets() != 1 {
		t.Errorf("Resets() = %d, want 1", c.Resets())
	}
	if len(clk.sleeps) != 1 || clk.sleeps[0] != time.Minute {
		t.Errorf("sleeps = %v, want a single full window regardless of elapsed time", clk.sleeps)
	}
	if c.Used() != 8 {
		t.Errorf("Used() = %d, want 8", c.Used())
	}
}

func TestCompleteRetries(t *testing.T) {
	unavailable := apperr.E(apperr.CodeUnavailable, "test", "down", nil)
	tests := []struct {
		name      string
		failN     int32
		err       error
		retries   int
		wantErr   bool
		wantCalls int32
	}{
		{name: "transient then success", failN: 1, err: unavailable, retries: 2, wantCalls: 2},
		{name: "retries exhausted", failN: 5, err: unavailable, retries: 2, wantErr: true, wantCalls: 3},
		{name: "retries disabled", failN: 1, err: unavailable, retries: 0, wantErr: true, wantCalls: 1},
		{name: "permanent error", failN: 1, err: errors.New("bad prompt"), retries: 2, wantErr: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{failN: tt.failN, err: tt.err}
			c := newTestClient(backend, newFakeClock(), 1000, tt.retries)

			_, _, err := c.Complete(context.Background(), userMsg("x"), "m", 10, 0.2)
			if (err != nil) != tt.wantErr {
				t.Errorf("Complete() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, tt.err) {
				t.Errorf("Complete() error = %v, want backend error propagated", err)
			}
			if got := atomic.LoadInt32(&backend.calls); got != tt.wantCalls {
				t.Errorf("backend calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestCompleteCancelledDuringWindowWait(t *testing.T) {
	clk := newFakeClock()
	backend := &fakeBackend{}
	c := newTestClient(backend, clk, 10, 0)

	if _, _, err := c.Complete(context.Background(), userMsg("x"), "m", 8, 0.2); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := c.Complete(ctx, userMsg("x"), "m", 8, 0.2); err == nil {
		t.Fatal("Complete() should fail when ctx is cancelled during the window wait")
	}
	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1", backend.calls)
	}
}

func TestCompleteFailedAttemptReleasesReservation(t *testing.T) {
	clk := newFakeClock()
	unavailable := apperr.E(apperr.CodeUnavailable, "test", "down", nil)
	c := newTestClient(&fakeBackend{failN: 1, err: unavailable}, clk, 10, 2)

	if _, _, err := c.Complete(context.Background(), userMsg("x"), "m", 4, 0.2); err != nil {
		t.Fatalf("first Complete() error = %v", err)
	}
	if c.Used() != 4 {
		t.Errorf("Used() after retried call = %d, want 4", c.Used())
	}

	if _, _, err := c.Complete(context.Background(), userMsg("x"), "m", 4, 0.2); err != nil {
		t.Fatalf("second Complete() error = %v", err)
	}
	if c.Resets() != 0 {
		t.Errorf("Resets() = %d, want 0", c.Resets())
	}
	if len(clk.sleeps) != 0 {
		t.Errorf("sleeps = %v, want none", clk.sleeps)
	}
	if c.Used() != 8 {
		t.Errorf("Used() = %d, want 8", c.Used())
	}
}

func TestCompletePermanentErrorReleasesReservation(t *testing.T) {
	c := newTestClient(&fakeBackend{failN: 1, err: errors.New("bad prompt")}, newFakeClock(), 10, 0)

	if _, _, err := c.Complete(context.Background(), userMsg("x"), "m", 6, 0.2); err == nil {
		t.Fatal("Complete() error = nil, want backend error")
	}
	if c.Used() != 0 {
		t.Errorf("Used() = %d, want 0", c.Used())
	}
}
