package enrichment_test

import (
	"errors"
	"testing"
	"time"

	"github.com/satchel-io/satchel/internal/enrichment"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		step enrichment.Step
		kind enrichment.ErrorKind
		want enrichment.Outcome
	}{
		{"content retrieval retryable", enrichment.StepContentRetrieval, enrichment.KindTimeout, enrichment.OutcomeContinue},
		{"content retrieval terminal", enrichment.StepContentRetrieval, enrichment.KindNotFound, enrichment.OutcomeContinue},
		{"media detection", enrichment.StepMediaDetection, enrichment.KindNetworkError, enrichment.OutcomeContinue},
		{"media download", enrichment.StepMediaDownload, enrichment.KindServiceUnavailable, enrichment.OutcomeContinue},
		{"storage upload", enrichment.StepStorageUpload, enrichment.KindRateLimit, enrichment.OutcomeContinue},
		{"summarization retryable", enrichment.StepSummarization, enrichment.KindNetworkError, enrichment.OutcomePropagate},
		{"summarization terminal", enrichment.StepSummarization, enrichment.KindInvalidContent, enrichment.OutcomeContinue},
		{"database update retryable", enrichment.StepDatabaseUpdate, enrichment.KindTimeout, enrichment.OutcomePropagate},
		{"database update terminal", enrichment.StepDatabaseUpdate, enrichment.KindUnknown, enrichment.OutcomePropagate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := enrichment.Decide(tt.step, tt.kind); got != tt.want {
				t.Errorf("Decide(%v, %v) = %v, want %v", tt.step, tt.kind, got, tt.want)
			}
		})
	}
}

func TestBackoffDelay(t *testing.T) {
	b := enrichment.Backoff{Base: time.Second, MaxAttempts: 5}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 3 * time.Second},
		{2, 9 * time.Second},
		{3, 9 * time.Second},
		{10, 9 * time.Second},
	}

	for _, tt := range tests {
		if got := b.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoffDelayJitterBounds(t *testing.T) {
	b := enrichment.Backoff{Base: time.Second, JitterRatio: 0.25}

	for attempt := 0; attempt < 4; attempt++ {
		center := time.Second
		for i := 0; i < attempt && i < 2; i++ {
			center *= 3
		}
		lo := time.Duration(float64(center) * 0.75)
		hi := time.Duration(float64(center) * 1.25)
		if max := 9 * time.Second; hi > max {
			hi = max
		}

		for i := 0; i < 100; i++ {
			d := b.Delay(attempt)
			if d < lo || d > hi {
				t.Fatalf("Delay(%d) = %v, outside [%v, %v]", attempt, d, lo, hi)
			}
		}
	}
}

func TestBackoffDelayJitterNeverExceedsCeiling(t *testing.T) {
	b := enrichment.Backoff{Base: time.Second, JitterRatio: 0.25}

	for i := 0; i < 500; i++ {
		if d := b.Delay(5); d > 9*time.Second {
			t.Fatalf("Delay(5) = %v, exceeds 9s ceiling", d)
		}
	}
}

func TestStepFailure(t *testing.T) {
	inner := errors.New("connection refused")
	fail := &enrichment.StepFailure{
		Step:      enrichment.StepSummarization,
		Kind:      enrichment.KindNetworkError,
		Retryable: true,
		Err:       inner,
	}

	if !errors.Is(fail, inner) {
		t.Error("StepFailure should unwrap to the inner error")
	}

	var sf *enrichment.StepFailure
	wrapped := enrichment.StepFailure{Step: enrichment.StepDatabaseUpdate, Kind: enrichment.KindUnknown, Err: inner}
	if !errors.As(&wrapped, &sf) {
		t.Error("errors.As should extract *StepFailure")
	}
}
