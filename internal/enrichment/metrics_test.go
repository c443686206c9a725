package enrichment_test

import (
	"sync"
	"testing"
	"time"

	"github.com/satchel-io/satchel/internal/enrichment"
)

func TestMetricsEmptyWindow(t *testing.T) {
	m := enrichment.NewMetrics(time.Minute)

	if rate := m.FailureRate(); rate != 0 {
		t.Errorf("FailureRate() on empty window = %v, want 0", rate)
	}
	if total := m.Total(); total != 0 {
		t.Errorf("Total() on empty window = %d, want 0", total)
	}
}

func TestMetricsFailureRate(t *testing.T) {
	m := enrichment.NewMetrics(time.Minute)

	for i := 0; i < 3; i++ {
		m.RecordSuccess(enrichment.PlatformTwitter)
	}
	for i := 0; i < 7; i++ {
		m.RecordFailure(enrichment.PlatformTwitter, enrichment.KindTimeout)
	}

	if total := m.Total(); total != 10 {
		t.Errorf("Total() = %d, want 10", total)
	}
	if rate := m.FailureRate(); rate != 0.7 {
		t.Errorf("FailureRate() = %v, want 0.7", rate)
	}
}

func TestMetricsLazyWindowReset(t *testing.T) {
	m := enrichment.NewMetrics(25 * time.Millisecond)

	m.RecordFailure(enrichment.PlatformLinkedIn, enrichment.KindNetworkError)
	m.RecordFailure(enrichment.PlatformLinkedIn, enrichment.KindNetworkError)

	time.Sleep(40 * time.Millisecond)

	// Reads never rotate; stale counters remain visible until the next record.
	if total := m.Total(); total != 2 {
		t.Errorf("Total() before next record = %d, want 2", total)
	}

	m.RecordSuccess(enrichment.PlatformLinkedIn)

	if total := m.Total(); total != 1 {
		t.Errorf("Total() after lazy reset = %d, want 1", total)
	}
	if rate := m.FailureRate(); rate != 0 {
		t.Errorf("FailureRate() after lazy reset = %v, want 0", rate)
	}
}

func TestMetricsSnapshot(t *testing.T) {
	m := enrichment.NewMetrics(time.Minute)

	m.RecordSuccess(enrichment.PlatformTwitter)
	m.RecordFailure(enrichment.PlatformGenericURL, enrichment.KindRateLimit)
	m.RecordFailure(enrichment.PlatformGenericURL, enrichment.KindRateLimit)

	snap := m.Snapshot()

	if snap.SuccessCount != 1 || snap.FailureCount != 2 || snap.TotalCount != 3 {
		t.Errorf("Snapshot counts = %d/%d/%d, want 1/2/3", snap.SuccessCount, snap.FailureCount, snap.TotalCount)
	}
	if snap.ByPlatform[enrichment.PlatformGenericURL] != 2 {
		t.Errorf("ByPlatform[GENERIC_URL] = %d, want 2", snap.ByPlatform[enrichment.PlatformGenericURL])
	}
	if snap.ByKind[enrichment.KindRateLimit] != 2 {
		t.Errorf("ByKind[RATE_LIMIT] = %d, want 2", snap.ByKind[enrichment.KindRateLimit])
	}
}

func TestMetricsConcurrentRecords(t *testing.T) {
	m := enrichment.NewMetrics(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.RecordSuccess(enrichment.PlatformTwitter)
		}()
		go func() {
			defer wg.Done()
			m.RecordFailure(enrichment.PlatformTwitter, enrichment.KindUnknown)
		}()
	}
	wg.Wait()

	if total := m.Total(); total != 100 {
		t.Errorf("Total() = %d, want 100", total)
	}
	if rate := m.FailureRate(); rate != 0.5 {
		t.Errorf("FailureRate() = %v, want 0.5", rate)
	}
}
