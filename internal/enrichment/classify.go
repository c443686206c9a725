package enrichment

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// classifyRule maps message substrings to an ErrorKind. Rules are evaluated
// in order: specific patterns (rate limit, quota) must precede generic ones
// (invalid) so that a rate-limit message containing "invalid" is not
// misclassified.
type classifyRule struct {
	kind     ErrorKind
	patterns []string
}

var classifyRules = []classifyRule{
	{KindRateLimit, []string{"429", "rate limit", "too many requests"}},
	{KindServiceUnavailable, []string{"503", "502", "service unavailable", "unavailable", "bad gateway"}},
	{KindTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{KindQuotaExceeded, []string{"quota", "limit exceeded"}},
	{KindAuthenticationFailed, []string{"401", "403", "unauthorized", "forbidden", "authentication"}},
	{KindNotFound, []string{"404", "not found"}},
	{KindNetworkError, []string{
		"connection refused", "connection reset", "econnrefused", "econnreset",
		"no such host", "broken pipe", "network", "unexpected eof",
	}},
	{KindMalformedURL, []string{
		"malformed url", "invalid url", "unsupported protocol scheme", "missing protocol scheme",
	}},
	{KindInvalidContent, []string{"invalid", "malformed", "400", "bad request", "unprocessable"}},
}

// Classify maps an arbitrary error to an ErrorKind. Typed errors are
// checked first, then the message is matched against the ordered rule
// table. Unmatched errors classify as KindUnknown, which is terminal:
// retrying an unclassified failure risks an infinite retry loop.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	if kind, ok := classifyTyped(err); ok {
		return kind
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range classifyRules {
		for _, pattern := range rule.patterns {
			if strings.Contains(msg, pattern) {
				return rule.kind
			}
		}
	}

	return KindUnknown
}

func classifyTyped(err error) (ErrorKind, bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout, true
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return KindNetworkError, true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Op == "parse" {
		return KindMalformedURL, true
	}

	return KindUnknown, false
}

// IsRetryable reports whether kind justifies re-running the workflow.
// The retryable partition is fixed: transient transport-level failures
// retry, everything else is terminal.
func IsRetryable(kind ErrorKind) bool {
	switch kind {
	case KindNetworkError, KindTimeout, KindServiceUnavailable, KindRateLimit:
		return true
	default:
		return false
	}
}

// Retryable classifies err and reports whether it is retryable.
func Retryable(err error) bool {
	return IsRetryable(Classify(err))
}
