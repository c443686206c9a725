// Package api assembles the API module with all domain systems, the
// enrichment pipeline, and route registration.
package api

import (
	"net/http"

	"github.com/satchel-io/satchel/internal/config"
	"github.com/satchel-io/satchel/internal/infrastructure"
	"github.com/satchel-io/satchel/internal/scheduler"
	"github.com/satchel-io/satchel/pkg/middleware"
	"github.com/satchel-io/satchel/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware,
// along with the scheduler host the caller must register with the lifecycle
// coordinator.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *scheduler.Host, error) {
	runtime := NewRuntime(cfg, infra)
	host := buildPipeline(runtime)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, host)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, host, nil
}
