package report

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/brief-flow/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	itemsSheet   = "Items"
	summarySheet = "Summary"
)

var itemHeader = []interface{}{
	"Index", "Source", "Success", "Stage", "Title", "Duration (s)",
	"Transcript", "Summary", "Docx", "Error", "Warnings", "Processing (ms)",
}

// Write saves a per-batch xlsx report with one row per item and a totals sheet.
func Write(path string, batch models.BatchResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", itemsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(itemsSheet, "A1", &itemHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(itemHeader), 1)
	if err := f.SetCellStyle(itemsSheet, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	_ = f.SetColWidth(itemsSheet, "B", "B", 48)

	for i, r := range batch.Items {
		title, duration := "", 0.0
		if r.Metadata != nil {
			title, duration = r.Metadata.Title, r.Metadata.DurationSeconds
		}
		row := []interface{}{
			r.Index, r.Source, r.Success, string(r.Stage), title, duration,
			r.TranscriptPath, r.SummaryPath, r.DocxPath, r.Error,
			strings.Join(r.Warnings, "; "), r.Duration.Milliseconds(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(itemsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", r.Index, err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	totals := [][]interface{}{
		{"Batch", batch.BatchID},
		{"Folder", batch.FolderID},
		{"Entry", batch.EntryID},
		{"Items", len(batch.Items)},
		{"Succeeded", batch.Succeeded},
		{"Failed", batch.Failed},
		{"Started", batch.StartedAt.Format("2006-01-02 15:04:05")},
		{"Finished", batch.FinishedAt.Format("2006-01-02 15:04:05")},
	}
	for i, row := range totals {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write totals: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}
