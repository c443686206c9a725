package enrichment

import (
	"sync"
	"time"
)

// DefaultMetricsWindow is the sliding window duration for failure-rate tracking.
const DefaultMetricsWindow = 5 * time.Minute

// Metrics tracks enrichment outcomes over a fixed-duration sliding window.
// The window resets lazily: when a record call arrives after the window has
// elapsed, counters clear before the new event is counted. There is no
// background timer.
//
// One Metrics instance is shared by all in-flight workflows; all methods are
// safe for concurrent use.
type Metrics struct {
	mu          sync.Mutex
	window      time.Duration
	windowStart time.Time
	success     int
	failure     int
	byPlatform  map[Platform]int
	byKind      map[ErrorKind]int
	now         func() time.Time
}

// WindowSnapshot is a point-in-time copy of the current window's counters.
type WindowSnapshot struct {
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
	TotalCount   int               `json:"total_count"`
	ByPlatform   map[Platform]int  `json:"by_platform"`
	ByKind       map[ErrorKind]int `json:"by_kind"`
	WindowStart  time.Time         `json:"window_start"`
	Window       time.Duration     `json:"window"`
}

// NewMetrics creates a Metrics tracker with the given window duration.
// Non-positive durations fall back to DefaultMetricsWindow.
func NewMetrics(window time.Duration) *Metrics {
	if window <= 0 {
		window = DefaultMetricsWindow
	}
	return &Metrics{
		window:     window,
		byPlatform: make(map[Platform]int),
		byKind:     make(map[ErrorKind]int),
		now:        time.Now,
	}
}

// RecordSuccess counts a successful workflow run for the platform.
func (m *Metrics) RecordSuccess(platform Platform) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rotate()
	m.success++
	m.byPlatform[platform]++
}

// RecordFailure counts a failed workflow run for the platform and the
// classified kind of its final error.
func (m *Metrics) RecordFailure(platform Platform, kind ErrorKind) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rotate()
	m.failure++
	m.byPlatform[platform]++
	m.byKind[kind]++
}

// FailureRate returns the fraction of failed runs in the current window,
// or 0 when the window is empty.
func (m *Metrics) FailureRate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.success + m.failure
	if total == 0 {
		return 0
	}
	return float64(m.failure) / float64(total)
}

// Total returns the number of runs recorded in the current window.
func (m *Metrics) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.success + m.failure
}

// Snapshot returns a copy of the current window's counters.
func (m *Metrics) Snapshot() WindowSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	byPlatform := make(map[Platform]int, len(m.byPlatform))
	for k, v := range m.byPlatform {
		byPlatform[k] = v
	}
	byKind := make(map[ErrorKind]int, len(m.byKind))
	for k, v := range m.byKind {
		byKind[k] = v
	}

	return WindowSnapshot{
		SuccessCount: m.success,
		FailureCount: m.failure,
		TotalCount:   m.success + m.failure,
		ByPlatform:   byPlatform,
		ByKind:       byKind,
		WindowStart:  m.windowStart,
		Window:       m.window,
	}
}

// rotate clears counters when the window has elapsed. Callers must hold mu.
func (m *Metrics) rotate() {
	now := m.now()
	if m.windowStart.IsZero() {
		m.windowStart = now
		return
	}
	if now.Sub(m.windowStart) < m.window {
		return
	}

	m.windowStart = now
	m.success = 0
	m.failure = 0
	clear(m.byPlatform)
	clear(m.byKind)
}
