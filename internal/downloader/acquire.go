package downloader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nguyentantai21042004/brief-flow/internal/models"
	"github.com/nguyentantai21042004/brief-flow/pkg/apperr"
)

func (a *implAcquirer) Acquire(ctx context.Context, item models.BatchItem, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("create dest dir: %w", err)
	}

	var target string
	switch kind := item.ResolveKind(); kind {
	case models.SourceURL:
		if err := a.downloader.Download(ctx, item.Source, destDir, strconv.Itoa(item.Index)); err != nil {
			return "", err
		}
		target = filepath.Join(destDir, fmt.Sprintf("%d.%s", item.Index, a.audioFormat))
	case models.SourceMedia:
		target = filepath.Join(destDir, strconv.Itoa(item.Index)+filepath.Ext(item.Source))
		if err := copyFile(item.Source, target); err != nil {
			return "", fmt.Errorf("copy media: %w", err)
		}
	default:
		return "", apperr.E(apperr.CodeInvalidArgument, "Acquirer.Acquire", fmt.Sprintf("source kind %q has no audio to acquire", kind), nil)
	}

	if !a.waiter.Wait(ctx, target) {
		return "", apperr.E(apperr.CodeTimeout, "Acquirer.Acquire", "file not ready: "+target, nil)
	}

	a.logger.Info(ctx, "Acquired item %d: %s", item.Index, target)
	return target, nil
}

// copyFile copies a file from src to dst
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("write destination: %w", err)
	}
	return out.Close()
}
