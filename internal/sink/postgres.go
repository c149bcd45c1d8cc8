package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/internal/models"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemResultRecord is the row written for each finished item.
type ItemResultRecord struct {
	ID             uint           `gorm:"column:id;primaryKey"`
	FolderID       string         `gorm:"column:folder_id;type:text;uniqueIndex:idx_item_results_item"`
	EntryID        string         `gorm:"column:entry_id;type:text;uniqueIndex:idx_item_results_item"`
	ItemIndex      int            `gorm:"column:item_index;uniqueIndex:idx_item_results_item"`
	Source         string         `gorm:"column:source;type:text"`
	Success        bool           `gorm:"column:success"`
	Stage          string         `gorm:"column:stage;type:text"`
	Title          string         `gorm:"column:title;type:text"`
	DurationSecs   float64        `gorm:"column:duration_seconds"`
	TranscriptPath string         `gorm:"column:transcript_path;type:text"`
	SummaryPath    string         `gorm:"column:summary_path;type:text"`
	DocxPath       string         `gorm:"column:docx_path;type:text"`
	SummaryText    string         `gorm:"column:summary_text;type:text"`
	Error          string         `gorm:"column:error;type:text"`
	Warnings       datatypes.JSON `gorm:"column:warnings;type:jsonb"`
	ProcessingMS   int64          `gorm:"column:processing_ms"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;type:timestamptz"`
}

func (ItemResultRecord) TableName() string { return "item_results" }

type postgresSink struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewPostgres opens dsn and migrates the item_results table.
func NewPostgres(dsn string, log logger.Logger) (ResultSink, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.AutoMigrate(&ItemResultRecord{}); err != nil {
		return nil, fmt.Errorf("migrate item_results: %w", err)
	}

	return &postgresSink{db: db, logger: log}, nil
}

func (s *postgresSink) RecordItemResult(ctx context.Context, folderID, entryID string, result models.PipelineResult) error {
	rec, err := toRecord(folderID, entryID, result, time.Now().UTC())
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "folder_id"}, {Name: "entry_id"}, {Name: "item_index"}},
			UpdateAll: true,
		}).
		Create(rec).Error
	if err != nil {
		return fmt.Errorf("insert item result: %w", err)
	}
	return nil
}

func (s *postgresSink) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRecord(folderID, entryID string, r models.PipelineResult, now time.Time) (*ItemResultRecord, error) {
	warnings := r.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	raw, err := json.Marshal(warnings)
	if err != nil {
		return nil, fmt.Errorf("marshal warnings: %w", err)
	}

	rec := &ItemResultRecord{
		FolderID:       folderID,
		EntryID:        entryID,
		ItemIndex:      r.Index,
		Source:         r.Source,
		Success:        r.Success,
		Stage:          string(r.Stage),
		TranscriptPath: r.TranscriptPath,
		SummaryPath:    r.SummaryPath,
		DocxPath:       r.DocxPath,
		SummaryText:    r.SummaryText,
		Error:          r.Error,
		Warnings:       datatypes.JSON(raw),
		ProcessingMS:   r.Duration.Milliseconds(),
		UpdatedAt:      now,
	}
	if r.Metadata != nil {
		rec.Title = r.Metadata.Title
		rec.DurationSecs = r.Metadata.DurationSeconds
	}
	return rec, nil
}
