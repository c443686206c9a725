package bookmarks

import (
	"errors"
	"net/http"
)

// Domain errors for bookmark operations.
var (
	ErrNotFound     = errors.New("bookmark not found")
	ErrDuplicate    = errors.New("bookmark already exists")
	ErrInvalidInput = errors.New("invalid bookmark input")
	ErrQueueClosed  = errors.New("enrichment queue is shutting down")
)

// MapHTTPStatus maps bookmark domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrQueueClosed) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
