package enrichment

import (
	"context"

	"github.com/google/uuid"
)

// ContentRetriever expands a bookmark's captured text with platform-specific
// content. Implementations never fail the caller: on any internal error they
// return the fallback text unchanged.
type ContentRetriever interface {
	Retrieve(ctx context.Context, url string, platform Platform, fallback string) (string, error)
}

// Summarizer produces an AI summary for content truncated to the caller's
// budget. maxLength bounds the summary text, not the input.
type Summarizer interface {
	Summarize(ctx context.Context, content string, maxLength int) (*Summary, error)
}

// MediaProbe is the advisory result of media detection.
type MediaProbe struct {
	HasMedia      bool   `json:"has_media"`
	MediaType     string `json:"media_type,omitempty"`
	EstimatedSize int64  `json:"estimated_size,omitempty"`
	Quality       string `json:"quality,omitempty"`
}

// MediaDetector probes a URL for downloadable media. Detection is advisory
// only; the orchestrator treats any failure as "no media".
type MediaDetector interface {
	Detect(ctx context.Context, url string) (*MediaProbe, error)
}

// MediaFile references a downloaded media artifact on local disk. The
// orchestrator removes Path once the upload step has run.
type MediaFile struct {
	Path        string
	SizeBytes   int64
	ContentType string
	SourceURL   string
	Quality     string
}

// MediaDownloader fetches media to a local temp file, enforcing the size ceiling.
type MediaDownloader interface {
	Download(ctx context.Context, url string, maxSizeBytes int64, quality string) (*MediaFile, error)
}

// UploadMeta carries the context a storage uploader needs to build a key.
type UploadMeta struct {
	BookmarkID  uuid.UUID
	ContentType string
	SourceURL   string
}

// UploadResult describes a stored media blob.
type UploadResult struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
	ETag      string `json:"etag"`
}

// StorageUploader moves a local media file into durable blob storage.
type StorageUploader interface {
	Upload(ctx context.Context, path string, meta UploadMeta) (*UploadResult, error)
}

// EnrichmentRecord is the single logical write the database update step
// performs: summary fields, terminal status, and the per-step error log.
type EnrichmentRecord struct {
	BookmarkID uuid.UUID
	WorkflowID uuid.UUID
	Summary    string
	Keywords   []string
	Tags       []Tag
	TokensUsed int
	Status     Status
	Errors     []WorkflowError
	// RetryCount is the zero-based attempt that produced this record, stamped
	// onto every persisted error row.
	RetryCount int
}

// MediaRecord registers a stored media artifact against a bookmark.
type MediaRecord struct {
	BookmarkID uuid.UUID
	MediaType  string
	SourceURL  string
	StorageKey string
	StorageURL string
	SizeBytes  int64
	Quality    string
}

// Persister is the durable store of record for enrichment results. All
// operations must be idempotent: the hosting scheduler may re-run the whole
// workflow, so duplicate detection belongs here, not in the orchestrator.
type Persister interface {
	SaveEnrichment(ctx context.Context, rec EnrichmentRecord) error
	CreateMediaRecord(ctx context.Context, rec MediaRecord) (uuid.UUID, error)
	MarkMediaFailed(ctx context.Context, bookmarkID uuid.UUID, sourceURL, reason string) error
}

// Adapters bundles the external collaborators the orchestrator drives.
// Each is selected once at process startup and constructor-injected.
type Adapters struct {
	Content    ContentRetriever
	Summarizer Summarizer
	Detector   MediaDetector
	Downloader MediaDownloader
	Uploader   StorageUploader
	Persister  Persister
}
