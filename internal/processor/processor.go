package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/internal/models"
	"github.com/nguyentantai21042004/brief-flow/internal/report"
)

// ReportFile is written next to the item directories when reports are enabled.
const ReportFile = "report.xlsx"

func (p *implProcessor) Run(ctx context.Context, req models.BatchRequest) models.BatchResult {
	batch := models.BatchResult{
		BatchID:   uuid.NewString(),
		FolderID:  req.FolderID,
		EntryID:   req.EntryID,
		StartedAt: time.Now(),
	}
	if batch.FolderID == "" {
		batch.FolderID = uuid.NewString()
	}
	if batch.EntryID == "" {
		batch.EntryID = uuid.NewString()
	}
	req.FolderID, req.EntryID = batch.FolderID, batch.EntryID

	ctx = logger.WithField(ctx, "batch_id", batch.BatchID)
	entryDir := filepath.Join(p.cfg.Paths.DestRoot, batch.FolderID, batch.EntryID)

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting batch: %d items -> %s", len(req.Items), entryDir)
	p.logger.Info(ctx, "========================================")

	batch.FolderStatus = models.StageStatus{Success: true}
	if err := os.MkdirAll(entryDir, 0755); err != nil {
		batch.FolderStatus = models.StageStatus{Success: false, Message: fmt.Sprintf("create entry dir: %v", err)}
		p.logger.Error(ctx, "Failed to create %s: %v", entryDir, err)
	}

	results := make([]models.PipelineResult, len(req.Items))
	seen := make(map[int]bool, len(req.Items))
	var wg sync.WaitGroup
	for i, item := range req.Items {
		item.Index = item.EffectiveIndex(i)
		if seen[item.Index] {
			results[i] = models.PipelineResult{
				Index:  item.Index,
				Source: item.Source,
				Stage:  models.StageFolder,
				Error:  fmt.Sprintf("duplicate item index %d", item.Index),
			}
			p.logger.Error(ctx, "Item %d (%s) skipped: index already used in this batch", item.Index, item.Source)
			continue
		}
		seen[item.Index] = true

		wg.Add(1)
		go func(i int, item models.BatchItem) {
			defer wg.Done()
			results[i] = p.runItemSafe(ctx, req, entryDir, item)
		}(i, item)
	}
	wg.Wait()

	sort.SliceStable(results, func(a, b int) bool { return results[a].Index < results[b].Index })
	batch.Items = results
	for _, r := range results {
		if r.Success {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}
	batch.FinishedAt = time.Now()

	if p.cfg.Storage.Report && batch.FolderStatus.Success {
		if err := report.Write(filepath.Join(entryDir, ReportFile), batch); err != nil {
			p.logger.Warn(ctx, "Failed to write batch report: %v", err)
			batch.FolderStatus.Message = fmt.Sprintf("report not written: %v", err)
		}
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Batch completed: %d succeeded, %d failed", batch.Succeeded, batch.Failed)
	p.logger.Info(ctx, "Processing time: %s", batch.FinishedAt.Sub(batch.StartedAt))
	p.logger.Info(ctx, "========================================")

	return batch
}

func (p *implProcessor) Process(ctx context.Context, sourcePath string) error {
	batch := p.Run(ctx, models.BatchRequest{
		FolderID: "inbox",
		Items:    []models.BatchItem{{Index: 1, Source: sourcePath}},
	})
	if failed := batch.FailedItems(); len(failed) > 0 {
		return fmt.Errorf("%s failed at %s: %s", filepath.Base(sourcePath), failed[0].Stage, failed[0].Error)
	}
	return nil
}
