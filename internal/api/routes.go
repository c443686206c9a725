package api

import (
	"net/http"

	"github.com/satchel-io/satchel/internal/bookmarks"
	"github.com/satchel-io/satchel/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	queue bookmarks.Queue,
) {
	routes.Register(
		mux,
		domain.Bookmarks.Handler(queue).Routes(),
	)
}
