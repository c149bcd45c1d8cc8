package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/pkg/apperr"
	"google.golang.org/genai"
)

func textResponse(text string, tokens int32) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{TotalTokenCount: tokens},
	}
}

func newTestGemini(t *testing.T, keys []string, gen generateFunc) *implGemini {
	t.Helper()
	b, err := NewGemini(keys, logger.Discard())
	if err != nil {
		t.Fatalf("NewGemini() error = %v", err)
	}
	g := b.(*implGemini)
	g.generate = gen
	return g
}

func TestNewGeminiNoKeys(t *testing.T) {
	if _, err := NewGemini(nil, logger.Discard()); err == nil {
		t.Fatal("NewGemini() should fail without keys")
	}
}

func TestGeminiComplete(t *testing.T) {
	var gotSystem string
	var gotMax int32
	g := newTestGemini(t, []string{"k1"}, func(ctx context.Context, key, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		if cfg.SystemInstruction != nil && len(cfg.SystemInstruction.Parts) > 0 {
			gotSystem = cfg.SystemInstruction.Parts[0].Text
		}
		gotMax = cfg.MaxOutputTokens
		return textResponse("summary text", 42), nil
	})

	resp, err := g.Complete(context.Background(), Request{
		Model:     "gemini-2.5-flash",
		MaxTokens: 100,
		Messages: []Message{
			{Role: RoleSystem, Content: "be brief"},
			{Role: RoleUser, Content: "hello"},
		},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Text != "summary text" || resp.TokensUsed != 42 {
		t.Errorf("Complete() = %+v, want text and 42 tokens", resp)
	}
	if gotSystem != "be brief" {
		t.Errorf("system instruction = %q, want %q", gotSystem, "be brief")
	}
	if gotMax != 100 {
		t.Errorf("MaxOutputTokens = %d, want 100", gotMax)
	}
}

func TestGeminiRotatesOnQuota(t *testing.T) {
	var used []string
	g := newTestGemini(t, []string{"k1", "k2"}, func(ctx context.Context, key, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		used = append(used, key)
		if key == "k1" {
			return nil, errors.New("Error 429, RESOURCE_EXHAUSTED")
		}
		return textResponse("ok", 5), nil
	})

	resp, err := g.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("Text = %q, want ok", resp.Text)
	}
	if len(used) != 2 || used[0] != "k1" || used[1] != "k2" {
		t.Errorf("keys used = %v, want [k1 k2]", used)
	}
	if g.currentKey != 1 {
		t.Errorf("currentKey = %d, want 1", g.currentKey)
	}
}

func TestGeminiAllKeysExhausted(t *testing.T) {
	g := newTestGemini(t, []string{"k1", "k2"}, func(ctx context.Context, key, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return nil, errors.New("quota exceeded")
	})

	_, err := g.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	if !apperr.IsCode(err, apperr.CodeRateLimited) {
		t.Fatalf("Complete() error = %v, want RATE_LIMITED", err)
	}
}

func TestGeminiErrors(t *testing.T) {
	tests := []struct {
		name      string
		resp      *genai.GenerateContentResponse
		err       error
		retryable bool
	}{
		{name: "unavailable", err: errors.New("Error 503, UNAVAILABLE"), retryable: true},
		{name: "bad request", err: errors.New("Error 400, INVALID_ARGUMENT"), retryable: false},
		{name: "empty response", resp: &genai.GenerateContentResponse{}, retryable: false},
		{name: "api 503", err: genai.APIError{Code: 503, Status: "UNAVAILABLE"}, retryable: true},
		{name: "api 500 pointer", err: &genai.APIError{Code: 500}, retryable: true},
		{name: "api 429", err: fmt.Errorf("generate: %w", genai.APIError{Code: 429}), retryable: true},
		{name: "api 400 mentioning 500", err: genai.APIError{Code: 400, Message: "prompt is 1500 tokens over the limit"}, retryable: false},
		{name: "plain error mentioning 500", err: errors.New("request used 1500 tokens"), retryable: false},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGemini(t, []string{"k1"}, func(ctx context.Context, key, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				return tt.resp, tt.err
			})
			_, err := g.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
			if err == nil {
				t.Fatal("Complete() should fail")
			}
			if got := apperr.Retryable(err); got != tt.retryable {
				t.Errorf("Retryable(%v) = %v, want %v", err, got, tt.retryable)
			}
		})
	}
}

func TestSplitKeys(t *testing.T) {
	got := splitKeys(" a, ,b ,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("splitKeys() = %v, want [a b]", got)
	}
}
