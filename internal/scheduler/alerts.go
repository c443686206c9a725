package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/satchel-io/satchel/internal/enrichment"
)

const failureRateSignal = "enrichment_failure_rate"

// alerter raises a log-based signal when the metrics window's failure rate
// crosses the configured threshold. A minimum sample count guards against
// false alarms on thin windows, and a per-signal cooldown prevents repeat
// firing while the condition persists.
type alerter struct {
	threshold float64
	minTotal  int
	cooldown  time.Duration
	logger    *slog.Logger

	mu        sync.Mutex
	lastFired map[string]time.Time
}

func newAlerter(cfg Config, logger *slog.Logger) *alerter {
	return &alerter{
		threshold: cfg.AlertThreshold,
		minTotal:  cfg.AlertMinTotal,
		cooldown:  cfg.AlertCooldown,
		logger:    logger.With("system", "alerts"),
		lastFired: make(map[string]time.Time),
	}
}

func (a *alerter) check(m *enrichment.Metrics) {
	total := m.Total()
	if total < a.minTotal {
		return
	}

	rate := m.FailureRate()
	if rate <= a.threshold {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	if last, ok := a.lastFired[failureRateSignal]; ok && now.Sub(last) < a.cooldown {
		return
	}
	a.lastFired[failureRateSignal] = now

	snap := m.Snapshot()
	a.logger.Error(
		"enrichment failure rate above threshold",
		"signal", failureRateSignal,
		"rate", rate,
		"threshold", a.threshold,
		"total", total,
		"failures", snap.FailureCount,
		"window_start", snap.WindowStart,
	)
}
