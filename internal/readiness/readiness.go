package readiness

import (
	"context"
	"time"
)

func (w *implWaiter) Wait(ctx context.Context, path string) bool {
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		if _, err := w.stat(path); err == nil {
			if attempt > 1 {
				w.logger.Debug(ctx, "File ready after %d checks: %s", attempt, path)
			}
			return true
		}

		if attempt == w.maxAttempts {
			break
		}
		if err := w.sleep(ctx, w.interval); err != nil {
			w.logger.Warn(ctx, "Readiness wait for %s interrupted: %v", path, err)
			return false
		}
	}

	w.logger.Warn(ctx, "File not ready after %d checks: %s", w.maxAttempts, path)
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
