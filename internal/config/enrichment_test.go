package config_test

import (
	"testing"
	"time"

	"github.com/satchel-io/satchel/internal/config"
)

func TestEnrichmentDefaults(t *testing.T) {
	cfg := &config.EnrichmentConfig{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}

	if !cfg.SummarizationEnabled() {
		t.Error("summarization should default to enabled")
	}
	if !cfg.MediaDownloadEnabled() {
		t.Error("media download should default to enabled")
	}
	if cfg.MaxSummaryLength != 500 {
		t.Errorf("MaxSummaryLength = %d, want 500", cfg.MaxSummaryLength)
	}
	if cfg.MaxContentLength != 10000 {
		t.Errorf("MaxContentLength = %d, want 10000", cfg.MaxContentLength)
	}
	if cfg.MaxMediaSizeBytes() != 500*1024*1024 {
		t.Errorf("MaxMediaSizeBytes = %d, want 500MB", cfg.MaxMediaSizeBytes())
	}
	if cfg.RetryDelayDuration() != time.Second {
		t.Errorf("RetryDelayDuration = %v, want 1s", cfg.RetryDelayDuration())
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.MetricsWindowDuration() != 5*time.Minute {
		t.Errorf("MetricsWindowDuration = %v, want 5m", cfg.MetricsWindowDuration())
	}
	if cfg.AlertThreshold != 0.1 {
		t.Errorf("AlertThreshold = %f, want 0.1", cfg.AlertThreshold)
	}
}

func TestEnrichmentEnvOverrides(t *testing.T) {
	t.Setenv("SATCHEL_ENRICHMENT_SUMMARIZATION", "false")
	t.Setenv("SATCHEL_ENRICHMENT_MEDIA_DOWNLOAD", "false")
	t.Setenv("SATCHEL_ENRICHMENT_MAX_MEDIA_SIZE", "100MB")
	t.Setenv("SATCHEL_ENRICHMENT_RETRY_DELAY", "2s")
	t.Setenv("SATCHEL_ENRICHMENT_MAX_ATTEMPTS", "5")

	cfg := &config.EnrichmentConfig{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}

	if cfg.SummarizationEnabled() {
		t.Error("summarization env override not applied")
	}
	if cfg.MediaDownloadEnabled() {
		t.Error("media download env override not applied")
	}
	if cfg.MaxMediaSizeBytes() != 100*1024*1024 {
		t.Errorf("MaxMediaSizeBytes = %d, want 100MB", cfg.MaxMediaSizeBytes())
	}
	if cfg.RetryDelayDuration() != 2*time.Second {
		t.Errorf("RetryDelayDuration = %v, want 2s", cfg.RetryDelayDuration())
	}
	if cfg.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.MaxAttempts)
	}
}

func TestEnrichmentValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.EnrichmentConfig)
	}{
		{"bad media size", func(c *config.EnrichmentConfig) { c.MaxMediaSize = "lots" }},
		{"bad retry delay", func(c *config.EnrichmentConfig) { c.RetryDelay = "soon" }},
		{"bad metrics window", func(c *config.EnrichmentConfig) { c.MetricsWindow = "whenever" }},
		{"zero attempts", func(c *config.EnrichmentConfig) { c.MaxAttempts = -1 }},
		{"threshold out of range", func(c *config.EnrichmentConfig) { c.AlertThreshold = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.EnrichmentConfig{}
			tt.mutate(cfg)
			if err := cfg.Finalize(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnrichmentMerge(t *testing.T) {
	disabled := false
	base := &config.EnrichmentConfig{MaxSummaryLength: 300, RetryDelay: "1s"}
	overlay := &config.EnrichmentConfig{
		Summarization: &disabled,
		RetryDelay:    "5s",
	}

	base.Merge(overlay)

	if base.SummarizationEnabled() {
		t.Error("overlay summarization flag not applied")
	}
	if base.RetryDelay != "5s" {
		t.Errorf("RetryDelay = %q, want 5s", base.RetryDelay)
	}
	if base.MaxSummaryLength != 300 {
		t.Errorf("MaxSummaryLength = %d, zero overlay field should not overwrite", base.MaxSummaryLength)
	}
}
