package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/satchel-io/satchel/internal/enrichment"
)

// ErrSizeExceeded indicates the media file grew past the configured ceiling
// while streaming. The partial temp file is removed before returning.
var ErrSizeExceeded = errors.New("media exceeds size limit")

const downloadTimeout = 5 * time.Minute

// Downloader streams media URLs to local temporary files.
type Downloader struct {
	client *http.Client
	dir    string
	logger *slog.Logger
}

// NewDownloader creates a Downloader writing temp files to dir. An empty dir
// uses the system temp directory; a nil client gets a download-scoped timeout.
func NewDownloader(client *http.Client, dir string, logger *slog.Logger) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}
	return &Downloader{
		client: client,
		dir:    dir,
		logger: logger.With("system", "media"),
	}
}

// Download fetches url into a temp file, failing with ErrSizeExceeded if the
// stream passes maxSizeBytes. The caller owns the returned file's path.
func (d *Downloader) Download(ctx context.Context, url string, maxSizeBytes int64, quality string) (*enrichment.MediaFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: returned %s", url, resp.Status)
	}

	if resp.ContentLength > 0 && resp.ContentLength > maxSizeBytes {
		return nil, fmt.Errorf("%w: content length %d", ErrSizeExceeded, resp.ContentLength)
	}

	file, err := os.CreateTemp(d.dir, "satchel-media-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	// LimitReader by one extra byte so an oversized stream is detectable.
	written, err := io.Copy(file, io.LimitReader(resp.Body, maxSizeBytes+1))
	closeErr := file.Close()

	switch {
	case err != nil:
		os.Remove(file.Name())
		return nil, fmt.Errorf("stream media: %w", err)
	case closeErr != nil:
		os.Remove(file.Name())
		return nil, fmt.Errorf("close temp file: %w", closeErr)
	case written > maxSizeBytes:
		os.Remove(file.Name())
		return nil, fmt.Errorf("%w: streamed past %d bytes", ErrSizeExceeded, maxSizeBytes)
	}

	d.logger.Debug("media downloaded",
		"url", url,
		"path", file.Name(),
		"size_bytes", written,
	)

	return &enrichment.MediaFile{
		Path:        file.Name(),
		SizeBytes:   written,
		ContentType: resp.Header.Get("Content-Type"),
		SourceURL:   url,
		Quality:     quality,
	}, nil
}
