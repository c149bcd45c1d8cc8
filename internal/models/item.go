package models

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/brief-flow/pkg/apperr"
)

// SourceKind tells the pipeline how to obtain the audio (or text) for an item.
type SourceKind string

const (
	SourceURL      SourceKind = "url"
	SourceMedia    SourceKind = "media"
	SourceDocument SourceKind = "document"
)

// BatchItem is one unit of work inside a batch.
type BatchItem struct {
	Index     int        `json:"index"`
	Source    string     `json:"source"`
	Kind      SourceKind `json:"kind,omitempty"`
	// AudioPath and DestDir are filled in by the pipeline, never decoded from a request.
	AudioPath string `json:"-"`
	DestDir   string `json:"-"`
}

// EffectiveIndex returns Index, or pos+1 when the index is unset.
func (i BatchItem) EffectiveIndex(pos int) int {
	if i.Index == 0 {
		return pos + 1
	}
	return i.Index
}

var documentExts = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// ResolveKind returns the item's kind, inferring it from the source when unset.
func (i BatchItem) ResolveKind() SourceKind {
	if i.Kind != "" {
		return i.Kind
	}
	if strings.HasPrefix(i.Source, "http://") || strings.HasPrefix(i.Source, "https://") {
		return SourceURL
	}
	if documentExts[strings.ToLower(filepath.Ext(i.Source))] {
		return SourceDocument
	}
	return SourceMedia
}

// BatchRequest describes a batch submitted to the orchestrator.
type BatchRequest struct {
	FolderID     string      `json:"folder_id,omitempty"`
	EntryID      string      `json:"entry_id,omitempty"`
	Items        []BatchItem `json:"items"`
	Language     string      `json:"language,omitempty"`
	Model        string      `json:"model,omitempty"`
	ContentStyle string      `json:"content_style,omitempty"`
}

// ItemMetadata is what the downloader learns about a source.
type ItemMetadata struct {
	Title           string  `json:"title"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Validate checks the request shape shared by every entry point.
func (r BatchRequest) Validate() error {
	const op = "BatchRequest.Validate"

	if len(r.Items) == 0 {
		return apperr.E(apperr.CodeInvalidArgument, op, "items must not be empty", nil)
	}

	seen := make(map[int]bool, len(r.Items))
	for i, item := range r.Items {
		if strings.TrimSpace(item.Source) == "" {
			return apperr.E(apperr.CodeInvalidArgument, op, fmt.Sprintf("items[%d].source is required", i), nil)
		}
		if item.Index < 0 {
			return apperr.E(apperr.CodeInvalidArgument, op, fmt.Sprintf("items[%d].index must not be negative", i), nil)
		}
		switch item.Kind {
		case "", SourceURL, SourceMedia, SourceDocument:
		default:
			return apperr.E(apperr.CodeInvalidArgument, op, fmt.Sprintf("items[%d].kind %q is not supported", i, item.Kind), nil)
		}
		if item.AudioPath != "" || item.DestDir != "" {
			return apperr.E(apperr.CodeInvalidArgument, op, fmt.Sprintf("items[%d]: audio_path and dest_dir are set by the pipeline", i), nil)
		}

		idx := item.EffectiveIndex(i)
		if seen[idx] {
			return apperr.E(apperr.CodeInvalidArgument, op, fmt.Sprintf("duplicate item index %d", idx), nil)
		}
		seen[idx] = true
	}
	return nil
}
