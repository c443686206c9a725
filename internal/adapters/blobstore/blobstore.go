// Package blobstore moves downloaded media files into durable blob storage.
package blobstore

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/satchel-io/satchel/internal/enrichment"
	"github.com/satchel-io/satchel/pkg/storage"
)

// Uploader streams local media files into the storage system under keys
// scoped by bookmark id.
type Uploader struct {
	storage storage.System
}

// New creates an Uploader backed by the given storage system.
func New(store storage.System) *Uploader {
	return &Uploader{storage: store}
}

// Upload streams the file at path into blob storage and returns where it landed.
func (u *Uploader) Upload(ctx context.Context, path string, meta enrichment.UploadMeta) (*enrichment.UploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open media file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat media file: %w", err)
	}

	key := buildKey(meta.BookmarkID, meta.SourceURL)
	result, err := u.storage.Upload(ctx, key, file, meta.ContentType, info.Size())
	if err != nil {
		return nil, fmt.Errorf("upload media blob: %w", err)
	}

	return &enrichment.UploadResult{
		Key:       result.Key,
		URL:       result.URL,
		SizeBytes: result.SizeBytes,
		ETag:      result.ETag,
	}, nil
}

// buildKey namespaces blobs per bookmark and derives the blob id from the
// source URL. Workflow retries for the same artifact land on the same key,
// overwriting in place rather than orphaning the previous upload.
func buildKey(bookmarkID uuid.UUID, sourceURL string) string {
	return fmt.Sprintf("media/%s/%s", bookmarkID, uuid.NewSHA1(bookmarkID, []byte(sourceURL)))
}
