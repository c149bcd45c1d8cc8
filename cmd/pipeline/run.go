package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nguyentantai21042004/brief-flow/internal/models"
)

// runRequestFile processes the batch described by a JSON request file and
// writes the BatchResult to out. A batch with failed items is not an error.
func runRequestFile(ctx context.Context, a *app, path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	var req models.BatchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse request: %w", err)
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}

	batch := a.proc.Run(ctx, req)
	for _, r := range batch.FailedItems() {
		a.log.Warn(ctx, "Item %d (%s) failed at %s: %s", r.Index, r.Source, r.Stage, r.Error)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(batch)
}
