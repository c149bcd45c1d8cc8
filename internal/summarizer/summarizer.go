package summarizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/brief-flow/internal/models"
)

// contextTail is how much of the running summary is fed back when chunks run in sequence.
const contextTail = 2000

func (s *implSummarizer) Summarize(ctx context.Context, req Request) models.SummaryResult {
	raw, err := os.ReadFile(req.TranscriptPath)
	if err != nil {
		return models.SummaryResult{Message: fmt.Sprintf("transcript not readable: %v", err)}
	}
	transcript := string(raw)
	if strings.TrimSpace(transcript) == "" {
		return models.SummaryResult{Message: fmt.Sprintf("transcript is empty: %s", req.TranscriptPath)}
	}

	model := firstNonEmpty(req.Model, s.model)
	style := firstNonEmpty(req.ContentStyle, s.style)
	language := firstNonEmpty(req.Language, s.language)

	var (
		body   string
		result models.SummaryResult
	)

	key := cacheKey(model, style, language, transcript)
	if cached, ok := s.cacheGet(ctx, key); ok {
		s.logger.Info(ctx, "Summary cache hit for %s", req.TranscriptPath)
		body = cached
		result.Cached = true
	} else {
		chunks := SplitChunks(transcript, s.chunkSize, s.chunkOverlap)
		s.logger.Info(ctx, "Summarizing %s in %d chunks (style=%s, model=%s)", req.TranscriptPath, len(chunks), style, model)

		results := s.processChunks(ctx, chunks, model, style, language)
		body, result.TokensUsed, result.FailedChunks = assemble(results)
		if result.FailedChunks == 0 {
			s.cacheSet(ctx, key, body)
		}
	}

	title := firstNonEmpty(req.Title, strings.TrimSuffix(filepath.Base(req.SummaryPath), filepath.Ext(req.SummaryPath)))
	md := fmt.Sprintf("# %s\n\n_%s_\n\n%s\n", title, s.now().Format("2006-01-02 15:04"), body)

	if err := os.MkdirAll(filepath.Dir(req.SummaryPath), 0755); err != nil {
		return models.SummaryResult{Message: fmt.Sprintf("create summary dir: %v", err)}
	}
	if err := os.WriteFile(req.SummaryPath, []byte(md), 0644); err != nil {
		return models.SummaryResult{Message: fmt.Sprintf("write summary: %v", err)}
	}

	result.Success = true
	result.Text = body
	result.Path = req.SummaryPath

	docxPath := strings.TrimSuffix(req.SummaryPath, filepath.Ext(req.SummaryPath)) + ".docx"
	if err := markdownToDocx(title, body, docxPath); err != nil {
		s.logger.Warn(ctx, "Failed to render %s: %v", docxPath, err)
		result.DocxError = err.Error()
	} else {
		result.DocxPath = docxPath
	}

	if result.FailedChunks > 0 {
		result.Message = fmt.Sprintf("%d chunk(s) failed", result.FailedChunks)
	}
	s.logger.Info(ctx, "[DONE] %s -> %s (%d tokens)", req.TranscriptPath, req.SummaryPath, result.TokensUsed)
	return result
}

// processChunks returns one result per chunk, in chunk order.
func (s *implSummarizer) processChunks(ctx context.Context, chunks []models.TextChunk, model, style, language string) []chunkOutcome {
	out := make([]chunkOutcome, len(chunks))

	if s.chunkConcurrency <= 1 {
		var running strings.Builder
		for i, c := range chunks {
			out[i] = s.processChunk(ctx, c, len(chunks), model, style, language, tail(running.String(), contextTail))
			if out[i].Err == nil {
				if running.Len() > 0 {
					running.WriteString("\n")
				}
				running.WriteString(out[i].Text)
			}
		}
		return out
	}

	sem := make(chan struct{}, s.chunkConcurrency)
	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		go func(i int, c models.TextChunk) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				out[i] = chunkOutcome{ChunkResult: models.ChunkResult{Index: c.Index, Err: ctx.Err()}}
				return
			}
			defer func() { <-sem }()
			out[i] = s.processChunk(ctx, c, len(chunks), model, style, language, "")
		}(i, c)
	}
	wg.Wait()
	return out
}

type chunkOutcome struct {
	models.ChunkResult
	Tokens int
}

func (s *implSummarizer) processChunk(ctx context.Context, c models.TextChunk, total int, model, style, language, previous string) (res chunkOutcome) {
	res.Index = c.Index
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("panic: %v", r)
		}
		if res.Err != nil {
			s.logger.Error(ctx, "Error processing chunk %d: %v", c.Index, res.Err)
		}
	}()

	text := c.Text
	if previous != "" {
		text = fmt.Sprintf("Summary so far (for context, do not repeat):\n%s\n\n%s", previous, c.Text)
	}

	out, tokens, err := s.client.Complete(ctx, buildMessages(style, language, c.Index, total, text), model, s.maxTokens, s.temperature)
	if err != nil {
		res.Err = err
		return res
	}
	if strings.TrimSpace(out) == "" {
		res.Err = fmt.Errorf("empty completion")
		return res
	}

	s.logger.Debug(ctx, "Chunk %d/%d processed, tokens used: %d", c.Index, total, tokens)
	res.Text = strings.TrimSpace(out)
	res.Tokens = tokens
	return res
}

// assemble resolves chunk results into text, substituting a marker for failures.
func assemble(results []chunkOutcome) (string, int, int) {
	parts := make([]string, 0, len(results))
	tokens, failed := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			parts = append(parts, fmt.Sprintf("Error processing chunk %d: %v", r.Index, r.Err))
			continue
		}
		tokens += r.Tokens
		parts = append(parts, r.Text)
	}
	return strings.Join(parts, "\n\n"), tokens, failed
}

func (s *implSummarizer) cacheGet(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	v, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "Summary cache get failed: %v", err)
		return "", false
	}
	return v, ok
}

func (s *implSummarizer) cacheSet(ctx context.Context, key, value string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn(ctx, "Summary cache set failed: %v", err)
	}
}

func cacheKey(model, style, language, transcript string) string {
	sum := sha256.Sum256([]byte(model + "|" + style + "|" + language + "|" + transcript))
	return "summary:" + hex.EncodeToString(sum[:])
}

func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
