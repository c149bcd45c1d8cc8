package sink

import (
	"context"

	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/internal/models"
)

type logSink struct {
	logger logger.Logger
}

// NewLog returns a sink that only logs results.
func NewLog(log logger.Logger) ResultSink {
	return &logSink{logger: log}
}

func (s *logSink) RecordItemResult(ctx context.Context, folderID, entryID string, result models.PipelineResult) error {
	title := ""
	if result.Metadata != nil {
		title = result.Metadata.Title
	}
	s.logger.Info(ctx, "Result %s/%s #%d success=%t stage=%s title=%q summary=%s",
		folderID, entryID, result.Index, result.Success, result.Stage, title, result.SummaryPath)
	return nil
}

func (s *logSink) Close(ctx context.Context) error { return nil }
