package processor

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/brief-flow/internal/models"
	"github.com/nguyentantai21042004/brief-flow/internal/storage"
)

// persist runs the post-success steps. Failures only add warnings.
func (p *implProcessor) persist(ctx context.Context, req models.BatchRequest, item models.BatchItem, kind models.SourceKind, res *models.PipelineResult) {
	if kind == models.SourceDocument {
		res.Metadata = &models.ItemMetadata{Title: titleFor(item)}
	} else if p.downloader != nil {
		meta, err := p.downloader.GetInfo(ctx, item.Source)
		if err != nil {
			p.warn(ctx, res, fmt.Sprintf("metadata: %v", err))
		} else {
			res.Metadata = meta
		}
	}

	if p.publisher != nil {
		for _, path := range []string{res.TranscriptPath, res.SummaryPath, res.DocxPath} {
			if path == "" {
				continue
			}
			uri, err := p.publisher.Publish(ctx, path, storage.ObjectName(req.FolderID, req.EntryID, item.Index, path))
			if err != nil {
				p.warn(ctx, res, fmt.Sprintf("publish: %v", err))
				continue
			}
			res.PublishedURIs = append(res.PublishedURIs, uri)
		}
	}

	if p.sink != nil {
		// the record reflects the final state, not the persistence step in progress
		record := *res
		record.Success = true
		record.Stage = models.StageCompleted
		if err := p.sink.RecordItemResult(ctx, req.FolderID, req.EntryID, record); err != nil {
			p.warn(ctx, res, fmt.Sprintf("persist: %v", err))
		}
	}
}

func (p *implProcessor) warn(ctx context.Context, res *models.PipelineResult, msg string) {
	res.Warnings = append(res.Warnings, msg)
	p.logger.Warn(ctx, "Item %d: %s", res.Index, msg)
}
