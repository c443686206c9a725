package enrichment_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"syscall"
	"testing"

	"github.com/satchel-io/satchel/internal/enrichment"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want enrichment.ErrorKind
	}{
		{"connection refused message", errors.New("dial tcp 127.0.0.1:8080: connection refused"), enrichment.KindNetworkError},
		{"connection reset", errors.New("read: connection reset by peer"), enrichment.KindNetworkError},
		{"no such host", errors.New("lookup example.invalid: no such host"), enrichment.KindNetworkError},
		{"timeout message", errors.New("request timed out after 10s"), enrichment.KindTimeout},
		{"deadline message", errors.New("context deadline exceeded"), enrichment.KindTimeout},
		{"503", errors.New("upstream returned 503"), enrichment.KindServiceUnavailable},
		{"service unavailable", errors.New("service unavailable"), enrichment.KindServiceUnavailable},
		{"429", errors.New("API returned 429"), enrichment.KindRateLimit},
		{"rate limit phrase", errors.New("rate limit exceeded, try again later"), enrichment.KindRateLimit},
		{"rate limit with invalid in message", errors.New("rate limit hit: invalid retry state"), enrichment.KindRateLimit},
		{"401", errors.New("server responded 401"), enrichment.KindAuthenticationFailed},
		{"forbidden", errors.New("forbidden: token expired"), enrichment.KindAuthenticationFailed},
		{"404", errors.New("GET /post: 404"), enrichment.KindNotFound},
		{"not found phrase", errors.New("tweet not found"), enrichment.KindNotFound},
		{"quota", errors.New("monthly quota exhausted"), enrichment.KindQuotaExceeded},
		{"limit exceeded", errors.New("token limit exceeded"), enrichment.KindQuotaExceeded},
		{"malformed url", errors.New("malformed url: missing host"), enrichment.KindMalformedURL},
		{"unsupported scheme", errors.New(`unsupported protocol scheme "ftp"`), enrichment.KindMalformedURL},
		{"invalid content", errors.New("invalid response payload"), enrichment.KindInvalidContent},
		{"400", errors.New("API returned 400"), enrichment.KindInvalidContent},
		{"unmatched", errors.New("something inexplicable happened"), enrichment.KindUnknown},
		{"nil", nil, enrichment.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := enrichment.Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyTypedErrors(t *testing.T) {
	t.Run("context deadline", func(t *testing.T) {
		err := fmt.Errorf("fetch: %w", context.DeadlineExceeded)
		if got := enrichment.Classify(err); got != enrichment.KindTimeout {
			t.Errorf("Classify = %v, want TIMEOUT", got)
		}
	})

	t.Run("econnrefused", func(t *testing.T) {
		err := fmt.Errorf("dial: %w", syscall.ECONNREFUSED)
		if got := enrichment.Classify(err); got != enrichment.KindNetworkError {
			t.Errorf("Classify = %v, want NETWORK_ERROR", got)
		}
	})

	t.Run("url parse error", func(t *testing.T) {
		_, err := url.Parse("ht tp://bad url")
		if err == nil {
			t.Fatal("expected parse error")
		}
		if got := enrichment.Classify(err); got != enrichment.KindMalformedURL {
			t.Errorf("Classify = %v, want MALFORMED_URL", got)
		}
	})
}

func TestIsRetryable(t *testing.T) {
	retryable := []enrichment.ErrorKind{
		enrichment.KindNetworkError,
		enrichment.KindTimeout,
		enrichment.KindServiceUnavailable,
		enrichment.KindRateLimit,
	}
	terminal := []enrichment.ErrorKind{
		enrichment.KindAuthenticationFailed,
		enrichment.KindNotFound,
		enrichment.KindMalformedURL,
		enrichment.KindInvalidContent,
		enrichment.KindQuotaExceeded,
		enrichment.KindUnknown,
	}

	for _, kind := range retryable {
		if !enrichment.IsRetryable(kind) {
			t.Errorf("IsRetryable(%v) = false, want true", kind)
		}
	}
	for _, kind := range terminal {
		if enrichment.IsRetryable(kind) {
			t.Errorf("IsRetryable(%v) = true, want false", kind)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !enrichment.Retryable(errors.New("connection refused")) {
		t.Error("network error should be retryable")
	}
	if enrichment.Retryable(errors.New("invalid content returned")) {
		t.Error("invalid content should be terminal")
	}
	if enrichment.Retryable(errors.New("total mystery")) {
		t.Error("unknown errors must default to terminal")
	}
}
