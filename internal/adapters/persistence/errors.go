package persistence

import "errors"

// ErrBookmarkNotFound indicates the enrichment target bookmark no longer exists.
var ErrBookmarkNotFound = errors.New("bookmark not found")
