package readiness

import "context"

// Waiter polls for a file to appear on disk.
type Waiter interface {
	// Wait reports whether path exists within the configured number of checks.
	Wait(ctx context.Context, path string) bool
}
