package bookmarks

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/satchel-io/satchel/internal/enrichment"
	"github.com/satchel-io/satchel/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a bookmark repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "bookmarks"),
	}
}

func (r *repo) Handler(queue Queue) *Handler {
	return NewHandler(r, queue, r.logger)
}

func (r *repo) List(ctx context.Context, filters Filters) ([]Bookmark, error) {
	query := filters.Apply(
		psql.
			Select(bookmarkColumns...).
			From("bookmarks").
			OrderBy("created_at DESC"),
	)

	result, err := repository.QueryMany(ctx, r.db, query, scanBookmark)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Bookmark, error) {
	query := psql.
		Select(bookmarkColumns...).
		From("bookmarks").
		Where(sq.Eq{"id": id})

	b, err := repository.QueryOne(ctx, r.db, query, scanBookmark)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &b, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Bookmark, error) {
	if err := ValidateCreate(cmd); err != nil {
		return nil, err
	}

	query := psql.
		Insert("bookmarks").
		Columns("id", "user_id", "url", "platform", "content", "enrichment_status", "enable_media_download").
		Values(uuid.New(), cmd.UserID, cmd.URL, string(cmd.Platform), cmd.Content, string(enrichment.StatusPending), cmd.EnableMediaDownload).
		Suffix("RETURNING " + strings.Join(bookmarkColumns, ", "))

	b, err := repository.QueryOne(ctx, r.db, query, scanBookmark)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("bookmark created",
		"id", b.ID,
		"user_id", b.UserID,
		"platform", b.Platform,
	)

	return &b, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	query := psql.
		Delete("bookmarks").
		Where(sq.Eq{"id": id})

	if err := repository.ExecExpectOne(ctx, r.db, query); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("bookmark deleted", "id", id)
	return nil
}

func (r *repo) Media(ctx context.Context, id uuid.UUID) ([]Media, error) {
	query := psql.
		Select(mediaColumns...).
		From("bookmark_media").
		Where(sq.Eq{"bookmark_id": id}).
		OrderBy("created_at DESC")

	result, err := repository.QueryMany(ctx, r.db, query, scanMedia)
	if err != nil {
		return nil, fmt.Errorf("query bookmark media: %w", err)
	}
	return result, nil
}

func (r *repo) Errors(ctx context.Context, id uuid.UUID) ([]WorkflowError, error) {
	query := psql.
		Select(errorColumns...).
		From("enrichment_errors").
		Where(sq.Eq{"bookmark_id": id}).
		OrderBy("occurred_at ASC")

	result, err := repository.QueryMany(ctx, r.db, query, scanWorkflowError)
	if err != nil {
		return nil, fmt.Errorf("query enrichment errors: %w", err)
	}
	return result, nil
}

func (r *repo) SetStatus(ctx context.Context, id uuid.UUID, status enrichment.Status) error {
	query := psql.
		Update("bookmarks").
		Set("enrichment_status", string(status)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id})

	if err := repository.ExecExpectOne(ctx, r.db, query); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}
