package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/pkg/apperr"
	"google.golang.org/genai"
)

type generateFunc func(ctx context.Context, apiKey, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

type implGemini struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	clients    map[string]*genai.Client
	generate   generateFunc
	logger     logger.Logger
}

// NewGemini creates a Gemini backend that rotates through apiKeys on quota errors.
func NewGemini(apiKeys []string, log logger.Logger) (Backend, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("no Gemini API keys configured")
	}
	g := &implGemini{
		apiKeys: apiKeys,
		clients: make(map[string]*genai.Client),
		logger:  log,
	}
	g.generate = g.generateWithClient
	return g, nil
}

func (g *implGemini) Complete(ctx context.Context, req Request) (Response, error) {
	contents, sysInstruction := toGenaiContents(req.Messages)
	genCfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens:   int32(req.MaxTokens),
		SystemInstruction: sysInstruction,
	}

	var lastErr error
	for range len(g.apiKeys) {
		keyIdx, key := g.key()

		result, err := g.generate(ctx, key, req.Model, contents, genCfg)
		if err != nil {
			if isQuotaError(err) {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", keyIdx+1)
				g.rotateKey(keyIdx)
				lastErr = err
				continue
			}
			if isUnavailable(err) {
				return Response{}, apperr.E(apperr.CodeUnavailable, "Gemini.Complete", "generate content", err)
			}
			return Response{}, fmt.Errorf("generate content: %w", err)
		}

		text := responseText(result)
		if text == "" {
			return Response{}, fmt.Errorf("empty response from Gemini")
		}

		tokens := 0
		if result.UsageMetadata != nil {
			tokens = int(result.UsageMetadata.TotalTokenCount)
		}
		return Response{Text: text, TokensUsed: tokens}, nil
	}

	return Response{}, apperr.E(apperr.CodeRateLimited, "Gemini.Complete", "all API keys exhausted", lastErr)
}

func (g *implGemini) generateWithClient(ctx context.Context, apiKey, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	client, err := g.client(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return client.Models.GenerateContent(ctx, model, contents, cfg)
}

func (g *implGemini) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.clients[apiKey]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	g.clients[apiKey] = c
	return c, nil
}

func (g *implGemini) key() (int, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentKey, g.apiKeys[g.currentKey]
}

// rotateKey advances past from, unless another caller already rotated.
func (g *implGemini) rotateKey(from int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == from {
		g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	}
}

func toGenaiContents(msgs []Message) ([]*genai.Content, *genai.Content) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) == 0 {
		return contents, nil
	}
	return contents, genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// apiErrorCode returns the HTTP status carried by a genai API error.
func apiErrorCode(err error) (int, bool) {
	var v genai.APIError
	if errors.As(err, &v) {
		return v.Code, true
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return p.Code, true
	}
	return 0, false
}

func isQuotaError(err error) bool {
	if code, ok := apiErrorCode(err); ok {
		return code == http.StatusTooManyRequests
	}
	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "quota")
}

func isUnavailable(err error) bool {
	if code, ok := apiErrorCode(err); ok {
		return code >= http.StatusInternalServerError
	}
	return errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "UNAVAILABLE")
}
