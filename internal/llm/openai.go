package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/pkg/apperr"
)

type implOpenAI struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logger.Logger
}

// NewOpenAI creates a backend for any OpenAI-compatible chat completions endpoint.
func NewOpenAI(baseURL, apiKey string, client *http.Client, log logger.Logger) Backend {
	if client == nil {
		client = http.DefaultClient
	}
	return &implOpenAI{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		logger:  log,
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (o *implOpenAI) Complete(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, fmt.Errorf("chat completion: %w", ctx.Err())
		}
		return Response{}, apperr.E(apperr.CodeUnavailable, "OpenAI.Complete", "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Response{}, statusError(resp.StatusCode, raw)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return Response{}, fmt.Errorf("empty response from %s", o.baseURL)
	}

	return Response{Text: parsed.Choices[0].Message.Content, TokensUsed: parsed.Usage.TotalTokens}, nil
}

func statusError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	err := fmt.Errorf("status %d: %s", status, msg)
	switch {
	case status == http.StatusTooManyRequests:
		return apperr.E(apperr.CodeRateLimited, "OpenAI.Complete", "rate limited", err)
	case status >= 500:
		return apperr.E(apperr.CodeUnavailable, "OpenAI.Complete", "upstream unavailable", err)
	case status == http.StatusBadRequest:
		return apperr.E(apperr.CodeInvalidArgument, "OpenAI.Complete", "bad request", err)
	default:
		return apperr.E(apperr.CodeInternal, "OpenAI.Complete", "unexpected status", err)
	}
}
