// Package persistence is the durable store of record for enrichment results.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/satchel-io/satchel/internal/enrichment"
	"github.com/satchel-io/satchel/pkg/repository"
)

var psql = repository.Builder

// Store persists enrichment results to PostgreSQL. All writes are idempotent:
// the scheduler may re-run a workflow after a partial failure, so enrichment
// updates overwrite and media records upsert on (bookmark_id, source_url).
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a Store backed by the given database handle.
func New(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With("system", "persistence"),
	}
}

// SaveEnrichment writes the terminal enrichment state in one transaction:
// the bookmark's summary fields and status, plus the per-step error log for
// this workflow. A run that ends without errors marks the bookmark's
// outstanding error rows resolved instead.
func (s *Store) SaveEnrichment(ctx context.Context, rec enrichment.EnrichmentRecord) error {
	keywords, err := json.Marshal(rec.Keywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		var zero struct{}

		update := psql.
			Update("bookmarks").
			Set("enrichment_status", string(rec.Status)).
			Set("tokens_used", rec.TokensUsed).
			Set("enriched_at", sq.Expr("NOW()")).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"id": rec.BookmarkID})

		if rec.Summary != "" {
			update = update.
				Set("summary", rec.Summary).
				Set("keywords", keywords).
				Set("tags", tags)
		}

		if err := repository.ExecExpectOne(ctx, tx, update); err != nil {
			return zero, fmt.Errorf("update bookmark: %w", err)
		}

		// Re-runs replace this workflow's error log rather than appending to it.
		purge := psql.
			Delete("enrichment_errors").
			Where(sq.Eq{"workflow_id": rec.WorkflowID})
		if _, err := repository.Exec(ctx, tx, purge); err != nil {
			return zero, fmt.Errorf("clear error log: %w", err)
		}

		if len(rec.Errors) == 0 {
			// A clean run settles the bookmark's outstanding error log.
			resolve := psql.
				Update("enrichment_errors").
				Set("resolved", true).
				Where(sq.Eq{"bookmark_id": rec.BookmarkID, "resolved": false})
			if _, err := repository.Exec(ctx, tx, resolve); err != nil {
				return zero, fmt.Errorf("resolve error log: %w", err)
			}
			return zero, nil
		}

		insert := psql.
			Insert("enrichment_errors").
			Columns("bookmark_id", "workflow_id", "step", "kind", "message", "retryable", "retry_count", "occurred_at", "context")
		for _, we := range rec.Errors {
			errCtx, err := json.Marshal(we.Context)
			if err != nil {
				return zero, fmt.Errorf("encode error context: %w", err)
			}
			insert = insert.Values(
				rec.BookmarkID,
				rec.WorkflowID,
				string(we.Step),
				string(we.Kind),
				we.Message,
				we.Retryable,
				rec.RetryCount,
				we.OccurredAt,
				errCtx,
			)
		}

		if _, err := repository.Exec(ctx, tx, insert); err != nil {
			return zero, fmt.Errorf("insert error log: %w", err)
		}

		return zero, nil
	})
	if err != nil {
		return repository.MapError(err, ErrBookmarkNotFound, err)
	}

	s.logger.Debug("enrichment saved",
		"bookmark_id", rec.BookmarkID,
		"workflow_id", rec.WorkflowID,
		"status", rec.Status,
		"errors", len(rec.Errors),
	)

	return nil
}

// CreateMediaRecord upserts a stored media artifact keyed on
// (bookmark_id, source_url) and returns the record id.
func (s *Store) CreateMediaRecord(ctx context.Context, rec enrichment.MediaRecord) (uuid.UUID, error) {
	upsert := psql.
		Insert("bookmark_media").
		Columns("id", "bookmark_id", "media_type", "source_url", "storage_key", "storage_url", "size_bytes", "quality", "status").
		Values(uuid.New(), rec.BookmarkID, rec.MediaType, rec.SourceURL, rec.StorageKey, rec.StorageURL, rec.SizeBytes, rec.Quality, "stored").
		Suffix(`ON CONFLICT (bookmark_id, source_url) DO UPDATE
			SET storage_key = EXCLUDED.storage_key,
			    storage_url = EXCLUDED.storage_url,
			    size_bytes = EXCLUDED.size_bytes,
			    quality = EXCLUDED.quality,
			    status = EXCLUDED.status,
			    failure_reason = NULL,
			    updated_at = NOW()
			RETURNING id`)

	id, err := repository.QueryOne(ctx, s.db, upsert, func(row repository.Scanner) (uuid.UUID, error) {
		var id uuid.UUID
		return id, row.Scan(&id)
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert media record: %w", err)
	}

	return id, nil
}

// MarkMediaFailed records a failed media acquisition so the bookmark shows
// why its media is missing. The bookmark itself is untouched.
func (s *Store) MarkMediaFailed(ctx context.Context, bookmarkID uuid.UUID, sourceURL, reason string) error {
	upsert := psql.
		Insert("bookmark_media").
		Columns("id", "bookmark_id", "media_type", "source_url", "status", "failure_reason").
		Values(uuid.New(), bookmarkID, "unknown", sourceURL, "failed", reason).
		Suffix(`ON CONFLICT (bookmark_id, source_url) DO UPDATE
			SET status = EXCLUDED.status,
			    failure_reason = EXCLUDED.failure_reason,
			    updated_at = NOW()`)

	if _, err := repository.Exec(ctx, s.db, upsert); err != nil {
		return fmt.Errorf("mark media failed: %w", err)
	}

	return nil
}
