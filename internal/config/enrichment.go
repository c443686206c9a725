package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/satchel-io/satchel/pkg/formatting"
)

const (
	EnvEnrichSummarization    = "SATCHEL_ENRICHMENT_SUMMARIZATION"
	EnvEnrichMediaDownload    = "SATCHEL_ENRICHMENT_MEDIA_DOWNLOAD"
	EnvEnrichMaxSummaryLength = "SATCHEL_ENRICHMENT_MAX_SUMMARY_LENGTH"
	EnvEnrichMaxContentLength = "SATCHEL_ENRICHMENT_MAX_CONTENT_LENGTH"
	EnvEnrichMaxMediaSize     = "SATCHEL_ENRICHMENT_MAX_MEDIA_SIZE"
	EnvEnrichMediaDir         = "SATCHEL_ENRICHMENT_MEDIA_DIR"
	EnvEnrichRetrievalTimeout = "SATCHEL_ENRICHMENT_RETRIEVAL_TIMEOUT"
	EnvEnrichRetryDelay       = "SATCHEL_ENRICHMENT_RETRY_DELAY"
	EnvEnrichMaxAttempts      = "SATCHEL_ENRICHMENT_MAX_ATTEMPTS"
	EnvEnrichMaxConcurrent    = "SATCHEL_ENRICHMENT_MAX_CONCURRENT"
	EnvEnrichMetricsWindow    = "SATCHEL_ENRICHMENT_METRICS_WINDOW"
	EnvEnrichAlertThreshold   = "SATCHEL_ENRICHMENT_ALERT_THRESHOLD"
	EnvEnrichAlertCooldown    = "SATCHEL_ENRICHMENT_ALERT_COOLDOWN"
)

// EnrichmentConfig holds workflow, retry, and alerting parameters for the
// enrichment pipeline.
type EnrichmentConfig struct {
	// Summarization and MediaDownload toggle their pipeline steps for the
	// whole process. Pointers so an explicit false in config survives the
	// defaults pass.
	Summarization    *bool  `toml:"summarization"`
	MediaDownload    *bool  `toml:"media_download"`
	MaxSummaryLength int    `toml:"max_summary_length"`
	MaxContentLength int    `toml:"max_content_length"`
	MaxMediaSize     string `toml:"max_media_size"`
	MediaDir         string `toml:"media_dir"`
	RetrievalTimeout string `toml:"retrieval_timeout"`

	RetryDelay    string `toml:"retry_delay"`
	MaxAttempts   int    `toml:"max_attempts"`
	MaxConcurrent int    `toml:"max_concurrent"`

	MetricsWindow  string  `toml:"metrics_window"`
	AlertThreshold float64 `toml:"alert_threshold"`
	AlertCooldown  string  `toml:"alert_cooldown"`
}

// SummarizationEnabled reports whether the summarization step runs. Defaults
// to true when unset.
func (c *EnrichmentConfig) SummarizationEnabled() bool {
	return c.Summarization == nil || *c.Summarization
}

// MediaDownloadEnabled reports whether the media block may run at all,
// regardless of per-bookmark flags. Defaults to true when unset.
func (c *EnrichmentConfig) MediaDownloadEnabled() bool {
	return c.MediaDownload == nil || *c.MediaDownload
}

// MaxMediaSizeBytes returns MaxMediaSize parsed as a byte count.
func (c *EnrichmentConfig) MaxMediaSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxMediaSize)
	if err != nil {
		return 500 * 1024 * 1024
	}
	return size
}

// RetrievalTimeoutDuration returns RetrievalTimeout as a time.Duration.
func (c *EnrichmentConfig) RetrievalTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetrievalTimeout)
	return d
}

// RetryDelayDuration returns RetryDelay as a time.Duration.
func (c *EnrichmentConfig) RetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryDelay)
	return d
}

// MetricsWindowDuration returns MetricsWindow as a time.Duration.
func (c *EnrichmentConfig) MetricsWindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.MetricsWindow)
	return d
}

// AlertCooldownDuration returns AlertCooldown as a time.Duration.
func (c *EnrichmentConfig) AlertCooldownDuration() time.Duration {
	d, _ := time.ParseDuration(c.AlertCooldown)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EnrichmentConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *EnrichmentConfig) Merge(overlay *EnrichmentConfig) {
	if overlay.Summarization != nil {
		c.Summarization = overlay.Summarization
	}
	if overlay.MediaDownload != nil {
		c.MediaDownload = overlay.MediaDownload
	}
	if overlay.MaxSummaryLength != 0 {
		c.MaxSummaryLength = overlay.MaxSummaryLength
	}
	if overlay.MaxContentLength != 0 {
		c.MaxContentLength = overlay.MaxContentLength
	}
	if overlay.MaxMediaSize != "" {
		c.MaxMediaSize = overlay.MaxMediaSize
	}
	if overlay.MediaDir != "" {
		c.MediaDir = overlay.MediaDir
	}
	if overlay.RetrievalTimeout != "" {
		c.RetrievalTimeout = overlay.RetrievalTimeout
	}
	if overlay.RetryDelay != "" {
		c.RetryDelay = overlay.RetryDelay
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.MaxConcurrent != 0 {
		c.MaxConcurrent = overlay.MaxConcurrent
	}
	if overlay.MetricsWindow != "" {
		c.MetricsWindow = overlay.MetricsWindow
	}
	if overlay.AlertThreshold != 0 {
		c.AlertThreshold = overlay.AlertThreshold
	}
	if overlay.AlertCooldown != "" {
		c.AlertCooldown = overlay.AlertCooldown
	}
}

func (c *EnrichmentConfig) loadDefaults() {
	if c.MaxSummaryLength == 0 {
		c.MaxSummaryLength = 500
	}
	if c.MaxContentLength == 0 {
		c.MaxContentLength = 10000
	}
	if c.MaxMediaSize == "" {
		c.MaxMediaSize = "500MB"
	}
	if c.RetrievalTimeout == "" {
		c.RetrievalTimeout = "10s"
	}
	if c.RetryDelay == "" {
		c.RetryDelay = "1s"
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 8
	}
	if c.MetricsWindow == "" {
		c.MetricsWindow = "5m"
	}
	if c.AlertThreshold == 0 {
		c.AlertThreshold = 0.1
	}
	if c.AlertCooldown == "" {
		c.AlertCooldown = "10m"
	}
}

func (c *EnrichmentConfig) loadEnv() {
	if v := os.Getenv(EnvEnrichSummarization); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Summarization = &enabled
		}
	}
	if v := os.Getenv(EnvEnrichMediaDownload); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.MediaDownload = &enabled
		}
	}
	if v := os.Getenv(EnvEnrichMaxSummaryLength); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxSummaryLength = n
		}
	}
	if v := os.Getenv(EnvEnrichMaxContentLength); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxContentLength = n
		}
	}
	if v := os.Getenv(EnvEnrichMaxMediaSize); v != "" {
		c.MaxMediaSize = v
	}
	if v := os.Getenv(EnvEnrichMediaDir); v != "" {
		c.MediaDir = v
	}
	if v := os.Getenv(EnvEnrichRetrievalTimeout); v != "" {
		c.RetrievalTimeout = v
	}
	if v := os.Getenv(EnvEnrichRetryDelay); v != "" {
		c.RetryDelay = v
	}
	if v := os.Getenv(EnvEnrichMaxAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAttempts = n
		}
	}
	if v := os.Getenv(EnvEnrichMaxConcurrent); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrent = n
		}
	}
	if v := os.Getenv(EnvEnrichMetricsWindow); v != "" {
		c.MetricsWindow = v
	}
	if v := os.Getenv(EnvEnrichAlertThreshold); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.AlertThreshold = f
		}
	}
	if v := os.Getenv(EnvEnrichAlertCooldown); v != "" {
		c.AlertCooldown = v
	}
}

func (c *EnrichmentConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxMediaSize); err != nil {
		return fmt.Errorf("invalid max_media_size: %w", err)
	}
	if _, err := time.ParseDuration(c.RetrievalTimeout); err != nil {
		return fmt.Errorf("invalid retrieval_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.RetryDelay); err != nil {
		return fmt.Errorf("invalid retry_delay: %w", err)
	}
	if _, err := time.ParseDuration(c.MetricsWindow); err != nil {
		return fmt.Errorf("invalid metrics_window: %w", err)
	}
	if _, err := time.ParseDuration(c.AlertCooldown); err != nil {
		return fmt.Errorf("invalid alert_cooldown: %w", err)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1: %d", c.MaxAttempts)
	}
	if c.AlertThreshold < 0 || c.AlertThreshold > 1 {
		return fmt.Errorf("alert_threshold must be within [0, 1]: %f", c.AlertThreshold)
	}
	return nil
}
