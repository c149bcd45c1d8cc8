package ratelimit

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nguyentantai21042004/brief-flow/internal/llm"
	"github.com/nguyentantai21042004/brief-flow/pkg/apperr"
)

func (c *implClient) Complete(ctx context.Context, messages []llm.Message, model string, maxTokens int, temperature float64) (string, int, error) {
	req := llm.Request{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	var (
		resp    llm.Response
		attempt int
	)
	op := func() error {
		attempt++
		gen, err := c.budget.Reserve(ctx, maxTokens)
		if err != nil {
			return backoff.Permanent(err)
		}

		r, err := c.backend.Complete(ctx, req)
		if err != nil {
			c.budget.Release(gen, maxTokens)
			if !apperr.Retryable(err) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			c.logger.Warn(ctx, "Completion attempt %d failed, will retry: %v", attempt, err)
			return err
		}

		c.budget.Reconcile(gen, maxTokens, r.TokensUsed)
		resp = r
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval
	bo.MaxElapsedTime = c.retryMaxElapsed
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxRetries)), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		return "", 0, err
	}
	return resp.Text, resp.TokensUsed, nil
}

func (c *implClient) Used() int   { return c.budget.Used() }
func (c *implClient) Resets() int { return c.budget.Resets() }

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
