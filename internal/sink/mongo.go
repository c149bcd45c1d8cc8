package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const resultsCollection = "item_results"

type mongoSink struct {
	client *mongo.Client
	col    *mongo.Collection
	logger logger.Logger
}

// NewMongo connects to uri and writes results into <db>.item_results.
func NewMongo(ctx context.Context, uri, db string, log logger.Logger) (ResultSink, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetServerSelectionTimeout(20 * time.Second).
		SetConnectTimeout(15 * time.Second).
		SetMaxPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &mongoSink{
		client: client,
		col:    client.Database(db).Collection(resultsCollection),
		logger: log,
	}, nil
}

// RecordItemResult upserts one document per (folder, entry, index).
func (s *mongoSink) RecordItemResult(ctx context.Context, folderID, entryID string, result models.PipelineResult) error {
	_, err := s.col.UpdateOne(ctx,
		resultFilter(folderID, entryID, result.Index),
		bson.M{"$set": resultDocument(folderID, entryID, result, time.Now().UTC())},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert item result: %w", err)
	}
	return nil
}

func (s *mongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func resultFilter(folderID, entryID string, index int) bson.M {
	return bson.M{"folder_id": folderID, "entry_id": entryID, "index": index}
}

func resultDocument(folderID, entryID string, r models.PipelineResult, now time.Time) bson.M {
	doc := bson.M{
		"folder_id":        folderID,
		"entry_id":         entryID,
		"index":            r.Index,
		"source":           r.Source,
		"success":          r.Success,
		"stage":            string(r.Stage),
		"transcript_path":  r.TranscriptPath,
		"summary_path":     r.SummaryPath,
		"docx_path":        r.DocxPath,
		"summary_text":     r.SummaryText,
		"error":            r.Error,
		"warnings":         r.Warnings,
		"duration_ms":      r.Duration.Milliseconds(),
		"transcription_ok": r.TranscriptionOK,
		"updated_at":       now,
	}
	if r.Metadata != nil {
		doc["title"] = r.Metadata.Title
		doc["duration_seconds"] = r.Metadata.DurationSeconds
	}
	return doc
}
