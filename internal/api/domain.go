package api

import (
	"github.com/satchel-io/satchel/internal/bookmarks"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Bookmarks bookmarks.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	return &Domain{
		Bookmarks: bookmarks.New(
			runtime.Database.Connection(),
			runtime.Logger,
		),
	}
}
