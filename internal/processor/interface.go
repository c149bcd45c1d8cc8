package processor

import (
	"context"

	"github.com/nguyentantai21042004/brief-flow/internal/models"
)

// Processor runs batches through acquisition, transcription and summarization.
type Processor interface {
	// Run always returns one result per request item, ordered by index.
	Run(ctx context.Context, req models.BatchRequest) models.BatchResult
	// Process runs a single local file as a one-item batch.
	Process(ctx context.Context, sourcePath string) error
}
