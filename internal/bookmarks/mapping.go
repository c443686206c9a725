package bookmarks

import (
	"encoding/json"
	"fmt"
	"net/url"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/satchel-io/satchel/internal/enrichment"
	"github.com/satchel-io/satchel/pkg/repository"
)

var psql = repository.Builder

var bookmarkColumns = []string{
	"id", "user_id", "url", "platform", "content",
	"summary", "keywords", "tags", "tokens_used",
	"enrichment_status", "enable_media_download",
	"created_at", "updated_at", "enriched_at",
}

var mediaColumns = []string{
	"id", "bookmark_id", "media_type", "source_url",
	"storage_key", "storage_url", "size_bytes", "quality",
	"status", "failure_reason", "created_at", "updated_at",
}

var errorColumns = []string{
	"id", "bookmark_id", "workflow_id", "step", "kind",
	"message", "retryable", "retry_count", "resolved", "occurred_at",
}

// Filters contains optional filtering criteria for bookmark queries.
// Nil fields are ignored. Status, Platform, and UserID use exact matching;
// Search uses case-insensitive contains matching against content and summary.
type Filters struct {
	Status   *string    `json:"status,omitempty"`
	Platform *string    `json:"platform,omitempty"`
	UserID   *uuid.UUID `json:"user_id,omitempty"`
	Search   *string    `json:"search,omitempty"`
}

// Apply adds filter conditions to a select builder.
func (f Filters) Apply(b sq.SelectBuilder) sq.SelectBuilder {
	if f.Status != nil {
		b = b.Where(sq.Eq{"enrichment_status": *f.Status})
	}
	if f.Platform != nil {
		b = b.Where(sq.Eq{"platform": *f.Platform})
	}
	if f.UserID != nil {
		b = b.Where(sq.Eq{"user_id": *f.UserID})
	}
	if f.Search != nil {
		pattern := "%" + *f.Search + "%"
		b = b.Where(sq.Or{
			sq.ILike{"content": pattern},
			sq.ILike{"summary": pattern},
		})
	}
	return b
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if p := values.Get("platform"); p != "" {
		f.Platform = &p
	}
	if u := values.Get("user_id"); u != "" {
		if id, err := uuid.Parse(u); err == nil {
			f.UserID = &id
		}
	}
	if s := values.Get("search"); s != "" {
		f.Search = &s
	}

	return f
}

func scanBookmark(s repository.Scanner) (Bookmark, error) {
	var (
		b        Bookmark
		keywords []byte
		tags     []byte
	)

	err := s.Scan(
		&b.ID,
		&b.UserID,
		&b.URL,
		&b.Platform,
		&b.Content,
		&b.Summary,
		&keywords,
		&tags,
		&b.TokensUsed,
		&b.EnrichmentStatus,
		&b.EnableMediaDownload,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.EnrichedAt,
	)
	if err != nil {
		return b, err
	}

	if len(keywords) > 0 {
		if err := json.Unmarshal(keywords, &b.Keywords); err != nil {
			return b, fmt.Errorf("decode keywords: %w", err)
		}
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &b.Tags); err != nil {
			return b, fmt.Errorf("decode tags: %w", err)
		}
	}

	return b, nil
}

func scanMedia(s repository.Scanner) (Media, error) {
	var m Media
	err := s.Scan(
		&m.ID,
		&m.BookmarkID,
		&m.MediaType,
		&m.SourceURL,
		&m.StorageKey,
		&m.StorageURL,
		&m.SizeBytes,
		&m.Quality,
		&m.Status,
		&m.FailureReason,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

func scanWorkflowError(s repository.Scanner) (WorkflowError, error) {
	var e WorkflowError
	err := s.Scan(
		&e.ID,
		&e.BookmarkID,
		&e.WorkflowID,
		&e.Step,
		&e.Kind,
		&e.Message,
		&e.Retryable,
		&e.RetryCount,
		&e.Resolved,
		&e.OccurredAt,
	)
	return e, err
}

// validPlatforms is the closed set accepted at the API boundary.
var validPlatforms = map[enrichment.Platform]struct{}{
	enrichment.PlatformTwitter:    {},
	enrichment.PlatformLinkedIn:   {},
	enrichment.PlatformGenericURL: {},
}

// ValidateCreate checks a create command at the API boundary.
func ValidateCreate(cmd CreateCommand) error {
	if cmd.UserID == uuid.Nil {
		return fmt.Errorf("%w: user_id required", ErrInvalidInput)
	}
	if cmd.URL == "" {
		return fmt.Errorf("%w: url required", ErrInvalidInput)
	}
	if _, err := url.ParseRequestURI(cmd.URL); err != nil {
		return fmt.Errorf("%w: %s is not a valid url", ErrInvalidInput, cmd.URL)
	}
	if _, ok := validPlatforms[cmd.Platform]; !ok {
		return fmt.Errorf("%w: unknown platform %q", ErrInvalidInput, cmd.Platform)
	}
	return nil
}
