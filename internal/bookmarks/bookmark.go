// Package bookmarks implements the bookmark domain for Satchel.
// It provides types, data access, and HTTP endpoints for saved posts and
// their enrichment results.
package bookmarks

import (
	"time"

	"github.com/google/uuid"

	"github.com/satchel-io/satchel/internal/enrichment"
)

// Bookmark represents a saved post with its captured content and any
// enrichment results accumulated so far.
type Bookmark struct {
	ID                  uuid.UUID           `json:"id"`
	UserID              uuid.UUID           `json:"user_id"`
	URL                 string              `json:"url"`
	Platform            enrichment.Platform `json:"platform"`
	Content             string              `json:"content"`
	Summary             *string             `json:"summary,omitempty"`
	Keywords            []string            `json:"keywords,omitempty"`
	Tags                []enrichment.Tag    `json:"tags,omitempty"`
	TokensUsed          int                 `json:"tokens_used"`
	EnrichmentStatus    enrichment.Status   `json:"enrichment_status"`
	EnableMediaDownload bool                `json:"enable_media_download"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
	EnrichedAt          *time.Time          `json:"enriched_at,omitempty"`
}

// Media represents one media artifact acquired for a bookmark.
type Media struct {
	ID            uuid.UUID  `json:"id"`
	BookmarkID    uuid.UUID  `json:"bookmark_id"`
	MediaType     string     `json:"media_type"`
	SourceURL     string     `json:"source_url"`
	StorageKey    *string    `json:"storage_key,omitempty"`
	StorageURL    *string    `json:"storage_url,omitempty"`
	SizeBytes     *int64     `json:"size_bytes,omitempty"`
	Quality       *string    `json:"quality,omitempty"`
	Status        string     `json:"status"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// WorkflowError is one logged step failure from an enrichment run.
type WorkflowError struct {
	ID         int64     `json:"id"`
	BookmarkID uuid.UUID `json:"bookmark_id"`
	WorkflowID uuid.UUID `json:"workflow_id"`
	Step       string    `json:"step"`
	Kind       string    `json:"kind"`
	Message    string    `json:"message"`
	Retryable  bool      `json:"retryable"`
	RetryCount int       `json:"retry_count"`
	Resolved   bool      `json:"resolved"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CreateCommand carries the data needed to register a new bookmark.
type CreateCommand struct {
	UserID              uuid.UUID           `json:"user_id"`
	URL                 string              `json:"url"`
	Platform            enrichment.Platform `json:"platform"`
	Content             string              `json:"content"`
	EnableMediaDownload bool                `json:"enable_media_download"`
}
