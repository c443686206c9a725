package bookmarks

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/satchel-io/satchel/internal/enrichment"
	"github.com/satchel-io/satchel/internal/scheduler"
	"github.com/satchel-io/satchel/pkg/handlers"
	"github.com/satchel-io/satchel/pkg/routes"
)

// Handler provides HTTP endpoints for bookmark operations.
type Handler struct {
	sys    System
	queue  Queue
	logger *slog.Logger
}

// EnrichRequest carries optional overrides for an enrichment run.
type EnrichRequest struct {
	EnableMediaDownload *bool `json:"enable_media_download,omitempty"`
}

// EnrichResponse acknowledges an accepted enrichment submission.
type EnrichResponse struct {
	BookmarkID   uuid.UUID `json:"bookmark_id"`
	InvocationID uuid.UUID `json:"invocation_id"`
	Status       string    `json:"status"`
}

// NewHandler creates a Handler with the given system, enrichment queue, and logger.
func NewHandler(sys System, queue Queue, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		queue:  queue,
		logger: logger.With("handler", "bookmarks"),
	}
}

// Routes returns the route group definition for bookmark endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/bookmarks",
		Routes: []routes.Route{
			routes.Get("", h.List),
			routes.Get("/{id}", h.Find),
			routes.Get("/{id}/media", h.Media),
			routes.Get("/{id}/errors", h.Errors),
			routes.Post("", h.Create),
			routes.Post("/{id}/enrich", h.Enrich),
			routes.Delete("/{id}", h.Delete),
		},
	}
}

// List returns bookmarks with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.sys.List(r.Context(), FiltersFromQuery(r.URL.Query()))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single bookmark by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	b, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, b)
}

// Media returns the media artifacts acquired for a bookmark.
func (h *Handler) Media(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	media, err := h.sys.Media(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, media)
}

// Errors returns the enrichment error log for a bookmark.
func (h *Handler) Errors(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	errs, err := h.sys.Errors(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, errs)
}

// Create registers a new bookmark from a JSON body.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	b, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, b)
}

// Enrich submits a bookmark for asynchronous enrichment and responds 202.
// Duplicate submissions for a bookmark already in flight coalesce in the queue.
func (h *Handler) Enrich(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req EnrichRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
			return
		}
	}

	b, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	enableMedia := b.EnableMediaDownload
	if req.EnableMediaDownload != nil {
		enableMedia = *req.EnableMediaDownload
	}

	invocation, err := h.queue.Submit(enrichment.Input{
		BookmarkID:          b.ID,
		UserID:              b.UserID,
		Platform:            b.Platform,
		URL:                 b.URL,
		Content:             b.Content,
		EnableMediaDownload: enableMedia,
	})
	if err != nil {
		if errors.Is(err, scheduler.ErrShuttingDown) {
			err = ErrQueueClosed
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := h.sys.SetStatus(r.Context(), b.ID, enrichment.StatusPending); err != nil {
		h.logger.Warn("failed to mark bookmark pending", "id", b.ID, "error", err)
	}

	handlers.RespondJSON(w, http.StatusAccepted, EnrichResponse{
		BookmarkID:   b.ID,
		InvocationID: invocation.ID,
		Status:       string(enrichment.StatusPending),
	})
}

// Delete removes a bookmark by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return uuid.Nil, false
	}
	return id, true
}
