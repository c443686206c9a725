// Package enrichment implements the bookmark enrichment workflow for Satchel.
// It provides the sequential orchestrator that turns a raw bookmark into an
// enriched one, the error classification and retry policy it relies on, and
// the sliding success/failure metrics window used for alerting.
package enrichment

import (
	"time"

	"github.com/google/uuid"
)

// Platform identifies the source of a bookmarked post.
type Platform string

// Supported bookmark platforms.
const (
	PlatformTwitter    Platform = "TWITTER"
	PlatformLinkedIn   Platform = "LINKEDIN"
	PlatformGenericURL Platform = "GENERIC_URL"
)

// Step identifies a stage of the enrichment workflow. Steps execute in
// declaration order; summarization must see the best available content,
// and the database update always runs last.
type Step string

// Workflow steps in execution order.
const (
	StepContentRetrieval Step = "CONTENT_RETRIEVAL"
	StepSummarization    Step = "SUMMARIZATION"
	StepMediaDetection   Step = "MEDIA_DETECTION"
	StepMediaDownload    Step = "MEDIA_DOWNLOAD"
	StepStorageUpload    Step = "STORAGE_UPLOAD"
	StepDatabaseUpdate   Step = "DATABASE_UPDATE"
)

// ErrorKind categorizes a step failure for retry decisions and reporting.
type ErrorKind string

// Error kinds produced by Classify.
const (
	KindNetworkError         ErrorKind = "NETWORK_ERROR"
	KindTimeout              ErrorKind = "TIMEOUT"
	KindServiceUnavailable   ErrorKind = "SERVICE_UNAVAILABLE"
	KindRateLimit            ErrorKind = "RATE_LIMIT"
	KindAuthenticationFailed ErrorKind = "AUTHENTICATION_FAILED"
	KindNotFound             ErrorKind = "NOT_FOUND"
	KindMalformedURL         ErrorKind = "MALFORMED_URL"
	KindInvalidContent       ErrorKind = "INVALID_CONTENT"
	KindQuotaExceeded        ErrorKind = "QUOTA_EXCEEDED"
	KindUnknown              ErrorKind = "UNKNOWN"
)

// Status is the terminal processing state persisted for a bookmark.
type Status string

// Processing statuses.
const (
	StatusPending        Status = "PENDING"
	StatusProcessing     Status = "PROCESSING"
	StatusCompleted      Status = "COMPLETED"
	StatusFailed         Status = "FAILED"
	StatusPartialSuccess Status = "PARTIAL_SUCCESS"
)

// Input carries everything a single workflow invocation needs. It is
// immutable for the duration of the run.
type Input struct {
	BookmarkID          uuid.UUID `json:"bookmark_id"`
	UserID              uuid.UUID `json:"user_id"`
	Platform            Platform  `json:"platform"`
	URL                 string    `json:"url"`
	Content             string    `json:"content"`
	EnableMediaDownload bool      `json:"enable_media_download"`

	// Attempt is the zero-based retry ordinal, set by the hosting scheduler
	// before each run so persisted error records carry their retry count.
	Attempt int `json:"attempt"`
}

// WorkflowError records a single step failure. The orchestrator only ever
// appends to the error list; entries are never mutated after creation.
type WorkflowError struct {
	Step       Step           `json:"step"`
	Kind       ErrorKind      `json:"kind"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	OccurredAt time.Time      `json:"occurred_at"`
	Context    map[string]any `json:"context,omitempty"`
}

// Tag is an AI-suggested tag for a bookmark.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Summary is the result of the summarization step.
type Summary struct {
	Summary    string   `json:"summary"`
	Keywords   []string `json:"keywords"`
	Tags       []Tag    `json:"tags"`
	TokensUsed int      `json:"tokens_used"`
}

// MediaMetadata describes one media artifact acquired during the run.
type MediaMetadata struct {
	MediaType  string `json:"media_type"`
	SourceURL  string `json:"source_url"`
	StorageKey string `json:"storage_key,omitempty"`
	StorageURL string `json:"storage_url,omitempty"`
	SizeBytes  int64  `json:"size_bytes,omitempty"`
	Quality    string `json:"quality,omitempty"`
}

// Output accumulates the results of one workflow invocation. Each step
// writes only its own fields.
type Output struct {
	Success       bool            `json:"success"`
	Status        Status          `json:"status"`
	Summary       string          `json:"summary,omitempty"`
	Keywords      []string        `json:"keywords,omitempty"`
	Tags          []Tag           `json:"tags,omitempty"`
	Media         []MediaMetadata `json:"media,omitempty"`
	Errors        []WorkflowError `json:"errors"`
	TokensUsed    int             `json:"tokens_used,omitempty"`
	ExecutionTime time.Duration   `json:"execution_time"`
}

// HasSummary reports whether the summarization step produced output.
func (o *Output) HasSummary() bool {
	return o.Summary != ""
}

// HasMedia reports whether any media artifact was stored.
func (o *Output) HasMedia() bool {
	return len(o.Media) > 0
}
