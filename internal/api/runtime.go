package api

import (
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/satchel-io/satchel/internal/config"
	"github.com/satchel-io/satchel/internal/infrastructure"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Agent      gaconfig.AgentConfig
	Enrichment config.EnrichmentConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Agent:      cfg.Agent,
		Enrichment: cfg.Enrichment,
	}
}
