package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/internal/models"
	"github.com/nguyentantai21042004/brief-flow/internal/summarizer"
	"github.com/nguyentantai21042004/brief-flow/internal/transcriber"
)

// SummaryFile is the markdown summary written into each item directory.
const SummaryFile = "summary.md"

// runItemSafe converts a panic anywhere in the item into a failure result.
func (p *implProcessor) runItemSafe(ctx context.Context, req models.BatchRequest, entryDir string, item models.BatchItem) (res models.PipelineResult) {
	start := time.Now()
	res = models.PipelineResult{Index: item.Index, Source: item.Source, Stage: models.StageFolder}
	ctx = logger.WithField(ctx, "item", item.Index)

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(ctx, "Item %d panicked during %s: %v", item.Index, res.Stage, r)
			res.Success = false
			res.Error = fmt.Sprintf("panic during %s: %v", res.Stage, r)
		}
		res.Duration = time.Since(start)
	}()

	p.runItem(ctx, req, entryDir, item, &res)
	return res
}

func (p *implProcessor) runItem(ctx context.Context, req models.BatchRequest, entryDir string, item models.BatchItem, res *models.PipelineResult) {
	item.DestDir = filepath.Join(entryDir, strconv.Itoa(item.Index))
	destDir := item.DestDir
	if err := os.MkdirAll(destDir, 0755); err != nil {
		p.fail(ctx, res, models.StageFolder, fmt.Sprintf("create item dir: %v", err))
		return
	}

	kind := item.ResolveKind()

	var transcriptPath string
	if kind == models.SourceDocument {
		res.Stage = models.StageTranscription
		path, err := copyDocument(item.Source, destDir)
		if err != nil {
			p.fail(ctx, res, models.StageTranscription, err.Error())
			return
		}
		transcriptPath = path
	} else {
		res.Stage = models.StageAcquisition
		audioPath, err := p.acquire(ctx, item, destDir)
		if err != nil {
			p.fail(ctx, res, models.StageAcquisition, err.Error())
			return
		}
		item.AudioPath = audioPath

		res.Stage = models.StageTranscription
		tr := p.transcribe(ctx, item.AudioPath, destDir, req.Language)
		if !tr.Success {
			p.fail(ctx, res, models.StageTranscription, tr.Message)
			return
		}
		transcriptPath = tr.Path
	}
	res.TranscriptPath = transcriptPath
	res.TranscriptionOK = true

	res.Stage = models.StageSummarization
	sr := p.summarize(ctx, summarizer.Request{
		TranscriptPath: transcriptPath,
		SummaryPath:    filepath.Join(destDir, SummaryFile),
		Title:          titleFor(item),
		ContentStyle:   req.ContentStyle,
		Language:       req.Language,
		Model:          req.Model,
	})
	if !sr.Success {
		p.fail(ctx, res, models.StageSummarization, sr.Message)
		return
	}
	res.SummaryPath = sr.Path
	res.SummaryText = sr.Text
	res.DocxPath = sr.DocxPath
	if sr.DocxError != "" {
		res.Warnings = append(res.Warnings, "docx: "+sr.DocxError)
	}
	if sr.FailedChunks > 0 {
		res.Warnings = append(res.Warnings, sr.Message)
	}

	res.Stage = models.StagePersistence
	p.persist(ctx, req, item, kind, res)

	res.Stage = models.StageCompleted
	res.Success = true
	p.logger.Info(ctx, "[DONE] item %d -> %s", item.Index, res.SummaryPath)
}

func (p *implProcessor) acquire(ctx context.Context, item models.BatchItem, destDir string) (string, error) {
	if err := p.acquireGate.acquire(ctx); err != nil {
		return "", err
	}
	defer p.acquireGate.release()
	return p.acquirer.Acquire(ctx, item, destDir)
}

func (p *implProcessor) transcribe(ctx context.Context, audioPath, destDir, language string) models.TranscriptResult {
	if err := p.transcribeGate.acquire(ctx); err != nil {
		return models.TranscriptResult{Message: err.Error()}
	}
	defer p.transcribeGate.release()
	p.logger.Debug(ctx, "Transcription slots in use: %d/%d", p.transcribeGate.inUse(), p.transcribeGate.size())
	return p.transcriber.Transcribe(ctx, audioPath, destDir, language)
}

func (p *implProcessor) summarize(ctx context.Context, req summarizer.Request) models.SummaryResult {
	if err := p.summarizeGate.acquire(ctx); err != nil {
		return models.SummaryResult{Message: err.Error()}
	}
	defer p.summarizeGate.release()
	return p.summarizer.Summarize(ctx, req)
}

func (p *implProcessor) fail(ctx context.Context, res *models.PipelineResult, stage models.Stage, msg string) {
	res.Stage = stage
	res.Success = false
	res.Error = msg
	p.logger.Error(ctx, "Item %d failed at %s: %s", res.Index, stage, msg)
}

// copyDocument places a text document where a transcript would go.
func copyDocument(src, destDir string) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	dst := filepath.Join(destDir, transcriber.TranscriptFile)
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return dst, nil
}

func titleFor(item models.BatchItem) string {
	if item.ResolveKind() == models.SourceURL {
		return item.Source
	}
	base := filepath.Base(item.Source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
