package bookmarks

import (
	"context"

	"github.com/google/uuid"

	"github.com/satchel-io/satchel/internal/enrichment"
	"github.com/satchel-io/satchel/internal/scheduler"
)

// Queue accepts enrichment work for asynchronous execution.
// *scheduler.Host satisfies this interface.
type Queue interface {
	Submit(in enrichment.Input) (scheduler.Invocation, error)
}

// System defines the public contract for bookmark domain operations.
type System interface {
	Handler(queue Queue) *Handler

	List(ctx context.Context, filters Filters) ([]Bookmark, error)
	Find(ctx context.Context, id uuid.UUID) (*Bookmark, error)
	Create(ctx context.Context, cmd CreateCommand) (*Bookmark, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Media(ctx context.Context, id uuid.UUID) ([]Media, error)
	Errors(ctx context.Context, id uuid.UUID) ([]WorkflowError, error)
	SetStatus(ctx context.Context, id uuid.UUID, status enrichment.Status) error
}
