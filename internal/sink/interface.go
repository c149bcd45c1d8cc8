package sink

import (
	"context"

	"github.com/nguyentantai21042004/brief-flow/internal/models"
)

// ResultSink persists finished item results.
type ResultSink interface {
	RecordItemResult(ctx context.Context, folderID, entryID string, result models.PipelineResult) error
	Close(ctx context.Context) error
}
