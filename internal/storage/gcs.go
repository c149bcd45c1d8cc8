package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Publisher copies finished artifacts to object storage.
type Publisher interface {
	Publish(ctx context.Context, localPath, objectName string) (string, error)
	Close() error
}

type GCSPublisher struct {
	client *gcs.Client
	bucket string
}

// NewGCS creates a publisher for bucket. An empty credentialsFile uses
// application default credentials.
func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCSPublisher, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSPublisher{client: c, bucket: bucket}, nil
}

func (p *GCSPublisher) Close() error { return p.client.Close() }

func (p *GCSPublisher) Publish(ctx context.Context, localPath, objectName string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	w := p.client.Bucket(p.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = ContentType(localPath)

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", objectName, err)
	}

	return fmt.Sprintf("gs://%s/%s", p.bucket, objectName), nil
}

// ObjectName lays artifacts out as <folder>/<entry>/<index>/<file>.
func ObjectName(folderID, entryID string, index int, localPath string) string {
	return path.Join(folderID, entryID, fmt.Sprint(index), filepath.Base(localPath))
}

func ContentType(p string) string {
	switch ext := filepath.Ext(p); ext {
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "application/octet-stream"
	}
}
