// Package scheduler hosts enrichment workflow invocations. It provides the
// durable-execution contract the orchestrator expects from its host: keyed
// serialization (at most one in-flight run per bookmark), workflow-level
// retries with exponential backoff, bounded concurrency, and failure-rate
// alerting over the shared metrics window.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/satchel-io/satchel/internal/enrichment"
	"github.com/satchel-io/satchel/pkg/lifecycle"
)

// ErrShuttingDown is returned by Submit once the host has begun draining.
var ErrShuttingDown = errors.New("scheduler is shutting down")

// Runner executes one workflow invocation. Implemented by
// *enrichment.Orchestrator.
type Runner interface {
	Run(ctx context.Context, in enrichment.Input) (*enrichment.Output, error)
}

// Invocation is the handle returned to a caller that submitted a workflow.
// Callers poll the bookmark's persisted processing status separately.
type Invocation struct {
	ID uuid.UUID `json:"id"`
}

// Config controls host concurrency, retry, and alerting behavior.
type Config struct {
	Backoff        enrichment.Backoff
	MaxConcurrent  int64
	AlertThreshold float64
	AlertMinTotal  int
	AlertCooldown  time.Duration
}

func (c *Config) normalize() {
	if c.Backoff.MaxAttempts <= 0 {
		c.Backoff = enrichment.DefaultBackoff()
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 8
	}
	if c.AlertThreshold <= 0 {
		c.AlertThreshold = 0.1
	}
	if c.AlertMinTotal <= 0 {
		c.AlertMinTotal = 10
	}
	if c.AlertCooldown <= 0 {
		c.AlertCooldown = 10 * time.Minute
	}
}

// keyState serializes invocations for one bookmark. While a run is in
// flight, later submissions coalesce into pending; the worker picks the
// latest pending input up after the current run finishes.
type keyState struct {
	pending *enrichment.Input
}

// Host accepts workflow submissions and drives them through a Runner.
type Host struct {
	runner  Runner
	cfg     Config
	metrics *enrichment.Metrics
	alerts  *alerter
	logger  *slog.Logger

	sem *semaphore.Weighted

	mu     sync.Mutex
	keys   map[uuid.UUID]*keyState
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Host. It does not begin draining coordination until Start
// registers its lifecycle hooks.
func New(runner Runner, cfg Config, metrics *enrichment.Metrics, logger *slog.Logger) *Host {
	cfg.normalize()
	ctx, cancel := context.WithCancel(context.Background())

	return &Host{
		runner:  runner,
		cfg:     cfg,
		metrics: metrics,
		alerts:  newAlerter(cfg, logger),
		logger:  logger.With("system", "scheduler"),
		sem:     semaphore.NewWeighted(cfg.MaxConcurrent),
		keys:    make(map[uuid.UUID]*keyState),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start registers a shutdown hook that stops accepting submissions and
// waits for in-flight workflows to drain.
func (h *Host) Start(lc *lifecycle.Coordinator) error {
	h.logger.Info("starting scheduler", "max_concurrent", h.cfg.MaxConcurrent)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		h.logger.Info("draining scheduler")

		h.mu.Lock()
		h.closed = true
		h.mu.Unlock()

		h.cancel()
		h.wg.Wait()
		h.logger.Info("scheduler drained")
	})

	return nil
}

// Submit enqueues one enrichment invocation, fire-and-forget. The workflow
// instance is keyed on the bookmark ID: a submission for a bookmark with a
// run already in flight queues behind it, and repeated submissions while one
// is queued coalesce to the most recent input.
func (h *Host) Submit(in enrichment.Input) (Invocation, error) {
	inv := Invocation{ID: uuid.New()}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return Invocation{}, ErrShuttingDown
	}

	if state, running := h.keys[in.BookmarkID]; running {
		state.pending = &in
		h.logger.Info("invocation queued behind in-flight run", "bookmark_id", in.BookmarkID, "invocation_id", inv.ID)
		return inv, nil
	}

	h.keys[in.BookmarkID] = &keyState{}
	h.wg.Add(1)
	go h.process(in)

	h.logger.Info("invocation accepted", "bookmark_id", in.BookmarkID, "invocation_id", inv.ID)
	return inv, nil
}

// process owns a bookmark key: it runs the current input to completion,
// then any input that queued up behind it, before releasing the key.
func (h *Host) process(in enrichment.Input) {
	defer h.wg.Done()

	for {
		h.execute(in)

		h.mu.Lock()
		state := h.keys[in.BookmarkID]
		if state == nil || state.pending == nil {
			delete(h.keys, in.BookmarkID)
			h.mu.Unlock()
			return
		}
		in = *state.pending
		state.pending = nil
		h.mu.Unlock()
	}
}

// execute applies the workflow-level retry policy: only errors the
// orchestrator's step-level policy chose to propagate reach this loop, and
// only the retryable ones are re-attempted.
func (h *Host) execute(in enrichment.Input) {
	log := h.logger.With("bookmark_id", in.BookmarkID, "platform", in.Platform)

	for attempt := 0; ; attempt++ {
		in.Attempt = attempt
		err := h.attempt(in)
		if err == nil {
			h.alerts.check(h.metrics)
			return
		}

		if errors.Is(err, context.Canceled) {
			log.Warn("invocation abandoned during shutdown", "attempt", attempt+1)
			return
		}

		retryable := isRetryable(err)
		exhausted := attempt+1 >= h.cfg.Backoff.MaxAttempts

		if !retryable || exhausted {
			log.Error(
				"invocation failed",
				"attempt", attempt+1,
				"retryable", retryable,
				"error", err,
			)
			h.alerts.check(h.metrics)
			return
		}

		delay := h.cfg.Backoff.Delay(attempt)
		log.Warn(
			"invocation retrying",
			"attempt", attempt+1,
			"max_attempts", h.cfg.Backoff.MaxAttempts,
			"delay_ms", delay.Milliseconds(),
			"error", err,
		)

		select {
		case <-h.ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// attempt holds a concurrency slot only for the duration of one run, so
// backoff waits never starve other bookmarks.
func (h *Host) attempt(in enrichment.Input) error {
	if err := h.sem.Acquire(h.ctx, 1); err != nil {
		return err
	}
	defer h.sem.Release(1)

	_, err := h.runner.Run(h.ctx, in)
	return err
}

func isRetryable(err error) bool {
	var fail *enrichment.StepFailure
	if errors.As(err, &fail) {
		return fail.Retryable
	}
	return enrichment.Retryable(err)
}
