package summarizer

import (
	"time"

	"github.com/nguyentantai21042004/brief-flow/internal/config"
	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/internal/ratelimit"
)

type implSummarizer struct {
	client ratelimit.Client
	cache  Cache
	logger logger.Logger

	chunkSize        int
	chunkOverlap     int
	chunkConcurrency int
	maxTokens        int
	temperature      float64
	model            string
	style            string
	language         string
	cacheTTL         time.Duration
	now              func() time.Time
}

// New creates a Summarizer. cache may be nil.
func New(cfg *config.Config, client ratelimit.Client, cache Cache, log logger.Logger) Summarizer {
	return &implSummarizer{
		client:           client,
		cache:            cache,
		logger:           log,
		chunkSize:        cfg.Summary.ChunkSize,
		chunkOverlap:     cfg.Summary.ChunkOverlap,
		chunkConcurrency: cfg.Performance.ChunkConcurrency,
		maxTokens:        cfg.LLM.MaxTokens,
		temperature:      cfg.LLM.Temperature,
		model:            cfg.LLM.Model,
		style:            cfg.Summary.DefaultStyle,
		language:         cfg.Summary.Language,
		cacheTTL:         cfg.Summary.CacheTTL,
		now:              time.Now,
	}
}
