package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/brief-flow/internal/models"
)

func (d *implDownloader) Download(ctx context.Context, url, destDir, idHint string) error {
	d.logger.Info(ctx, "Downloading audio: %s", url)

	args := []string{
		"-f", "bestaudio",
		"-x",
		"--audio-format", d.audioFormat,
		"--no-playlist",
		"--no-progress",
		"-o", filepath.Join(destDir, idHint+".%(ext)s"),
	}
	args = append(args, d.extraArgs...)
	args = append(args, url)

	if _, err := d.executor.Execute(ctx, d.binary, args...); err != nil {
		return fmt.Errorf("yt-dlp download: %w", err)
	}
	return nil
}

func (d *implDownloader) GetInfo(ctx context.Context, source string) (*models.ItemMetadata, error) {
	if isURL(source) {
		return d.remoteInfo(ctx, source)
	}
	return d.localInfo(ctx, source)
}

func (d *implDownloader) remoteInfo(ctx context.Context, url string) (*models.ItemMetadata, error) {
	out, err := d.executor.Execute(ctx, d.binary, "--dump-json", "--skip-download", "--no-playlist", url)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp info: %w", err)
	}

	var info struct {
		Title    string  `json:"title"`
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return nil, fmt.Errorf("decode yt-dlp info: %w", err)
	}
	return &models.ItemMetadata{Title: info.Title, DurationSeconds: info.Duration}, nil
}

func (d *implDownloader) localInfo(ctx context.Context, path string) (*models.ItemMetadata, error) {
	out, err := d.executor.Execute(ctx, d.ffprobe, "-v", "quiet", "-print_format", "json", "-show_format", path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	var info struct {
		Format struct {
			Duration string            `json:"duration"`
			Tags     map[string]string `json:"tags"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return nil, fmt.Errorf("decode ffprobe output: %w", err)
	}

	meta := &models.ItemMetadata{Title: info.Format.Tags["title"]}
	if meta.Title == "" {
		meta.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if info.Format.Duration != "" {
		if v, err := strconv.ParseFloat(info.Format.Duration, 64); err == nil {
			meta.DurationSeconds = v
		}
	}
	return meta, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
