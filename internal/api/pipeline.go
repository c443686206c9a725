package api

import (
	"net/http"

	"github.com/satchel-io/satchel/internal/adapters/blobstore"
	"github.com/satchel-io/satchel/internal/adapters/content"
	"github.com/satchel-io/satchel/internal/adapters/media"
	"github.com/satchel-io/satchel/internal/adapters/persistence"
	"github.com/satchel-io/satchel/internal/adapters/summarize"
	"github.com/satchel-io/satchel/internal/enrichment"
	"github.com/satchel-io/satchel/internal/scheduler"
)

// buildPipeline assembles the enrichment workflow: production adapters,
// the orchestrator that drives them, the shared metrics window, and the
// keyed scheduler host that executes submissions.
func buildPipeline(runtime *Runtime) *scheduler.Host {
	cfg := runtime.Enrichment
	db := runtime.Database.Connection()

	adapters := enrichment.Adapters{
		Content:    content.NewRetriever(&http.Client{Timeout: cfg.RetrievalTimeoutDuration()}, runtime.Logger),
		Summarizer: summarize.New(runtime.Agent, runtime.Logger),
		Detector:   media.NewDetector(nil, runtime.Logger),
		Downloader: media.NewDownloader(nil, cfg.MediaDir, runtime.Logger),
		Uploader:   blobstore.New(runtime.Storage),
		Persister:  persistence.New(db, runtime.Logger),
	}

	opts := enrichment.Options{
		EnableSummarization: cfg.SummarizationEnabled(),
		EnableMediaDownload: cfg.MediaDownloadEnabled(),
		MaxMediaSizeBytes:   cfg.MaxMediaSizeBytes(),
		MaxSummaryLength:    cfg.MaxSummaryLength,
		MaxContentLength:    cfg.MaxContentLength,
		RetrievalTimeout:    cfg.RetrievalTimeoutDuration(),
	}

	metrics := enrichment.NewMetrics(cfg.MetricsWindowDuration())
	orchestrator := enrichment.NewOrchestrator(adapters, opts, metrics, runtime.Logger)

	return scheduler.New(orchestrator, scheduler.Config{
		Backoff: enrichment.Backoff{
			Base:        cfg.RetryDelayDuration(),
			MaxAttempts: cfg.MaxAttempts,
			JitterRatio: 0.25,
		},
		MaxConcurrent:  int64(cfg.MaxConcurrent),
		AlertThreshold: cfg.AlertThreshold,
		AlertCooldown:  cfg.AlertCooldownDuration(),
	}, metrics, runtime.Logger)
}
