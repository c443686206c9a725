package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// Default orchestrator limits.
const (
	DefaultMaxMediaSizeBytes = 500 << 20
	DefaultMaxSummaryLength  = 500
	DefaultMaxContentLength  = 10_000
	DefaultRetrievalTimeout  = 10 * time.Second
)

// Options controls orchestrator behavior for every invocation.
type Options struct {
	EnableSummarization bool
	EnableMediaDownload bool
	MaxMediaSizeBytes   int64
	MaxSummaryLength    int
	MaxContentLength    int
	RetrievalTimeout    time.Duration
}

func (o *Options) normalize() {
	if o.MaxMediaSizeBytes <= 0 {
		o.MaxMediaSizeBytes = DefaultMaxMediaSizeBytes
	}
	if o.MaxSummaryLength <= 0 {
		o.MaxSummaryLength = DefaultMaxSummaryLength
	}
	if o.MaxContentLength <= 0 {
		o.MaxContentLength = DefaultMaxContentLength
	}
	if o.RetrievalTimeout <= 0 {
		o.RetrievalTimeout = DefaultRetrievalTimeout
	}
}

// Orchestrator drives the six-step enrichment workflow for one bookmark at
// a time. Steps execute strictly sequentially; each adapter failure is
// classified and either absorbed into the output's error list or propagated
// to the hosting scheduler per the step-level policy in Decide.
type Orchestrator struct {
	adapters Adapters
	opts     Options
	metrics  *Metrics
	logger   *slog.Logger
}

// NewOrchestrator creates an Orchestrator with constructor-injected adapters.
func NewOrchestrator(adapters Adapters, opts Options, metrics *Metrics, logger *slog.Logger) *Orchestrator {
	opts.normalize()
	return &Orchestrator{
		adapters: adapters,
		opts:     opts,
		metrics:  metrics,
		logger:   logger.With("system", "enrichment"),
	}
}

// Run executes one workflow invocation. On a propagated failure it returns
// a *StepFailure after logging the total elapsed time and recording the
// failure metric, so the hosting scheduler can decide whether to retry.
// Otherwise it returns the accumulated output with the terminal status
// already persisted.
func (o *Orchestrator) Run(ctx context.Context, in Input) (*Output, error) {
	started := time.Now()
	workflowID := uuid.New()

	log := o.logger.With(
		"workflow_id", workflowID,
		"bookmark_id", in.BookmarkID,
		"platform", in.Platform,
	)
	log.Info("workflow started", "url", in.URL)

	out := &Output{Errors: []WorkflowError{}}

	content := o.retrieveContent(ctx, log, out, in)

	if fail := o.summarize(ctx, log, out, content); fail != nil {
		return nil, o.abort(log, in, fail, started, out)
	}

	o.processMedia(ctx, log, out, in)

	if fail := o.persist(ctx, log, out, in, workflowID); fail != nil {
		return nil, o.abort(log, in, fail, started, out)
	}

	out.ExecutionTime = time.Since(started)
	out.Success = out.Status != StatusFailed

	if out.Success {
		o.metrics.RecordSuccess(in.Platform)
	} else {
		o.metrics.RecordFailure(in.Platform, lastKind(out))
	}

	log.Info(
		"workflow complete",
		"status", out.Status,
		"errors", len(out.Errors),
		"duration_ms", out.ExecutionTime.Milliseconds(),
	)

	return out, nil
}

// retrieveContent attempts platform-specific content expansion with the
// original bookmark text as fallback. Always non-critical.
func (o *Orchestrator) retrieveContent(ctx context.Context, log *slog.Logger, out *Output, in Input) string {
	stepStart := time.Now()

	rctx, cancel := context.WithTimeout(ctx, o.opts.RetrievalTimeout)
	defer cancel()

	content, err := o.adapters.Content.Retrieve(rctx, in.URL, in.Platform, in.Content)
	if err != nil {
		o.record(log, out, StepContentRetrieval, err, nil)
		return in.Content
	}

	log.Info(
		"step complete",
		"step", StepContentRetrieval,
		"expanded", len(content) > len(in.Content),
		"duration_ms", time.Since(stepStart).Milliseconds(),
	)
	return content
}

func (o *Orchestrator) summarize(ctx context.Context, log *slog.Logger, out *Output, content string) *StepFailure {
	if !o.opts.EnableSummarization {
		log.Info("step skipped", "step", StepSummarization, "reason", "disabled_by_flag")
		return nil
	}

	stepStart := time.Now()

	// Truncate before the adapter call to protect token budgets.
	content = truncate(content, o.opts.MaxContentLength)

	summary, err := o.adapters.Summarizer.Summarize(ctx, content, o.opts.MaxSummaryLength)
	if err != nil {
		return o.record(log, out, StepSummarization, err, nil)
	}

	out.Summary = summary.Summary
	out.Keywords = summary.Keywords
	out.Tags = summary.Tags
	out.TokensUsed = summary.TokensUsed

	log.Info(
		"step complete",
		"step", StepSummarization,
		"keywords", len(summary.Keywords),
		"tags", len(summary.Tags),
		"tokens_used", summary.TokensUsed,
		"duration_ms", time.Since(stepStart).Milliseconds(),
	)
	return nil
}

// processMedia runs the detection → download → upload sub-chain. The block
// is skipped entirely, with a logged reason, when media download is disabled
// or detection finds nothing usable. None of its failures ever propagate.
func (o *Orchestrator) processMedia(ctx context.Context, log *slog.Logger, out *Output, in Input) {
	if !in.EnableMediaDownload {
		log.Info("media block skipped", "reason", "disabled_by_input")
		return
	}
	if !o.opts.EnableMediaDownload {
		log.Info("media block skipped", "reason", "disabled_by_flag")
		return
	}

	probe := o.detectMedia(ctx, log, out, in)
	if probe == nil || !probe.HasMedia {
		log.Info("media block skipped", "reason", "no_media")
		return
	}
	if probe.EstimatedSize > 0 && probe.EstimatedSize > o.opts.MaxMediaSizeBytes {
		log.Info(
			"media block skipped",
			"reason", "size_exceeds_limit",
			"estimated_size", probe.EstimatedSize,
			"max_size", o.opts.MaxMediaSizeBytes,
		)
		return
	}

	file := o.downloadMedia(ctx, log, out, in, probe)
	if file == nil {
		return
	}
	defer os.Remove(file.Path)

	o.uploadMedia(ctx, log, out, in, file, probe)
}

func (o *Orchestrator) detectMedia(ctx context.Context, log *slog.Logger, out *Output, in Input) *MediaProbe {
	stepStart := time.Now()

	probe, err := o.adapters.Detector.Detect(ctx, in.URL)
	if err != nil {
		// Detection is advisory only; failures become "no media".
		o.record(log, out, StepMediaDetection, err, nil)
		return nil
	}

	log.Info(
		"step complete",
		"step", StepMediaDetection,
		"has_media", probe.HasMedia,
		"media_type", probe.MediaType,
		"duration_ms", time.Since(stepStart).Milliseconds(),
	)
	return probe
}

func (o *Orchestrator) downloadMedia(ctx context.Context, log *slog.Logger, out *Output, in Input, probe *MediaProbe) *MediaFile {
	stepStart := time.Now()

	file, err := o.adapters.Downloader.Download(ctx, in.URL, o.opts.MaxMediaSizeBytes, probe.Quality)
	if err != nil {
		o.record(log, out, StepMediaDownload, err, map[string]any{"media_type": probe.MediaType})

		// Best effort: surface the failure on the media record so the UI can
		// offer a retry. Its own failure is only warn-logged.
		if markErr := o.adapters.Persister.MarkMediaFailed(ctx, in.BookmarkID, in.URL, err.Error()); markErr != nil {
			log.Warn("mark media failed call errored", "error", markErr)
		}
		return nil
	}

	log.Info(
		"step complete",
		"step", StepMediaDownload,
		"size_bytes", file.SizeBytes,
		"duration_ms", time.Since(stepStart).Milliseconds(),
	)
	return file
}

func (o *Orchestrator) uploadMedia(ctx context.Context, log *slog.Logger, out *Output, in Input, file *MediaFile, probe *MediaProbe) {
	stepStart := time.Now()

	result, err := o.adapters.Uploader.Upload(ctx, file.Path, UploadMeta{
		BookmarkID:  in.BookmarkID,
		ContentType: file.ContentType,
		SourceURL:   file.SourceURL,
	})
	if err != nil {
		o.record(log, out, StepStorageUpload, err, nil)
		return
	}

	meta := MediaMetadata{
		MediaType:  probe.MediaType,
		SourceURL:  file.SourceURL,
		StorageKey: result.Key,
		StorageURL: result.URL,
		SizeBytes:  result.SizeBytes,
		Quality:    probe.Quality,
	}

	if _, err := o.adapters.Persister.CreateMediaRecord(ctx, MediaRecord{
		BookmarkID: in.BookmarkID,
		MediaType:  meta.MediaType,
		SourceURL:  meta.SourceURL,
		StorageKey: meta.StorageKey,
		StorageURL: meta.StorageURL,
		SizeBytes:  meta.SizeBytes,
		Quality:    meta.Quality,
	}); err != nil {
		o.record(log, out, StepStorageUpload, err, map[string]any{"storage_key": result.Key})
		return
	}

	out.Media = append(out.Media, meta)

	log.Info(
		"step complete",
		"step", StepStorageUpload,
		"storage_key", result.Key,
		"duration_ms", time.Since(stepStart).Milliseconds(),
	)
}

// persist computes the terminal status and writes summary, status, and the
// error log in one logical write. It always runs, regardless of earlier
// outcomes, and is the only step whose failure is always critical.
func (o *Orchestrator) persist(ctx context.Context, log *slog.Logger, out *Output, in Input, workflowID uuid.UUID) *StepFailure {
	stepStart := time.Now()

	out.Status = DetermineStatus(len(out.Errors) > 0, out.HasSummary(), out.HasMedia())

	err := o.adapters.Persister.SaveEnrichment(ctx, EnrichmentRecord{
		BookmarkID: in.BookmarkID,
		WorkflowID: workflowID,
		Summary:    out.Summary,
		Keywords:   out.Keywords,
		Tags:       out.Tags,
		TokensUsed: out.TokensUsed,
		Status:     out.Status,
		Errors:     out.Errors,
		RetryCount: in.Attempt,
	})
	if err != nil {
		return o.record(log, out, StepDatabaseUpdate, err, nil)
	}

	log.Info(
		"step complete",
		"step", StepDatabaseUpdate,
		"status", out.Status,
		"duration_ms", time.Since(stepStart).Milliseconds(),
	)
	return nil
}

// record classifies err, appends it to the output's error list, and applies
// the step-level policy: nil means continue, a *StepFailure means abort.
func (o *Orchestrator) record(log *slog.Logger, out *Output, step Step, err error, context map[string]any) *StepFailure {
	kind := Classify(err)
	retryable := IsRetryable(kind)

	out.Errors = append(out.Errors, WorkflowError{
		Step:       step,
		Kind:       kind,
		Message:    err.Error(),
		Retryable:  retryable,
		OccurredAt: time.Now(),
		Context:    context,
	})

	if Decide(step, kind) == OutcomePropagate {
		log.Error(
			"step failed",
			"step", step,
			"kind", kind,
			"retryable", retryable,
			"outcome", "propagate",
			"error", err,
		)
		return &StepFailure{Step: step, Kind: kind, Retryable: retryable, Err: err}
	}

	log.Warn(
		"step failed",
		"step", step,
		"kind", kind,
		"retryable", retryable,
		"outcome", "continue",
		"error", err,
	)
	return nil
}

// abort records the failure metric and logs total elapsed time before the
// error is surfaced, so failure is observable even when persistence never ran.
func (o *Orchestrator) abort(log *slog.Logger, in Input, fail *StepFailure, started time.Time, out *Output) error {
	o.metrics.RecordFailure(in.Platform, fail.Kind)

	log.Error(
		"workflow aborted",
		"step", fail.Step,
		"kind", fail.Kind,
		"retryable", fail.Retryable,
		"errors", len(out.Errors),
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return fmt.Errorf("enrichment workflow: %w", fail)
}

func lastKind(out *Output) ErrorKind {
	if len(out.Errors) == 0 {
		return KindUnknown
	}
	return out.Errors[len(out.Errors)-1].Kind
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit]
}
