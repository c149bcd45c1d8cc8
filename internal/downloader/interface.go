package downloader

import (
	"context"

	"github.com/nguyentantai21042004/brief-flow/internal/models"
)

// Downloader fetches remote media and looks up metadata.
type Downloader interface {
	// Download saves url's audio as <destDir>/<idHint>.<audio format>.
	Download(ctx context.Context, url, destDir, idHint string) error
	// GetInfo returns title and duration for a URL or a local media path.
	GetInfo(ctx context.Context, source string) (*models.ItemMetadata, error)
}

// Acquirer places an item's audio in its destination directory.
type Acquirer interface {
	Acquire(ctx context.Context, item models.BatchItem, destDir string) (string, error)
}
