package summarizer

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/brief-flow/internal/models"
)

// Summarizer turns a transcript file into summary.md and summary.docx.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) models.SummaryResult
}

type Request struct {
	TranscriptPath string
	SummaryPath    string
	Title          string
	ContentStyle   string
	Language       string
	Model          string
}

// Cache stores finished summaries. Implementations report a miss as ok=false.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
