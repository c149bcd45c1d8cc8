package ratelimit

import (
	"context"

	"github.com/nguyentantai21042004/brief-flow/internal/llm"
)

// Client issues completion calls under a shared per-window token allowance.
type Client interface {
	// Complete returns the completion text and the tokens the backend reported.
	Complete(ctx context.Context, messages []llm.Message, model string, maxTokens int, temperature float64) (string, int, error)
	// Used is the number of tokens counted against the current window.
	Used() int
	// Resets is how many times an overflow forced a full-window wait.
	Resets() int
}
