package enrichment

import (
	"math/rand/v2"
	"time"
)

// Outcome is the orchestrator's step-level policy decision for a failed step.
type Outcome int

const (
	// OutcomeContinue absorbs the error into the output's error list and
	// proceeds to the next step.
	OutcomeContinue Outcome = iota
	// OutcomePropagate aborts the run and surfaces the error to the hosting
	// scheduler, which may retry the whole invocation.
	OutcomePropagate
)

// Decide applies the step-level retry policy. Non-critical steps always
// continue: content expansion and media are nice-to-haves whose failure
// degrades gracefully. Summarization propagates only retryable failures,
// since re-running the pipeline is cheap and idempotent. The database
// update is always critical; its success is required for the run to count
// at all.
func Decide(step Step, kind ErrorKind) Outcome {
	switch step {
	case StepDatabaseUpdate:
		return OutcomePropagate
	case StepSummarization:
		if IsRetryable(kind) {
			return OutcomePropagate
		}
		return OutcomeContinue
	default:
		return OutcomeContinue
	}
}

// backoffFactor is the exponential growth factor for workflow-level retries.
// The maximum delay is bounded at base * factor^2.
const backoffFactor = 3

// Backoff computes workflow-level retry delays: exponential with factor 3,
// capped at Base*9, with randomized jitter. It is consumed by the hosting
// scheduler, which only ever sees errors the step-level policy propagated.
type Backoff struct {
	Base        time.Duration
	MaxAttempts int
	JitterRatio float64
}

// DefaultBackoff returns the standard workflow retry policy.
func DefaultBackoff() Backoff {
	return Backoff{
		Base:        time.Second,
		MaxAttempts: 3,
		JitterRatio: 0.25,
	}
}

// Delay returns the wait before retry attempt n (0-indexed). Jitter never
// pushes the result past the base*9 ceiling.
func (b Backoff) Delay(attempt int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = time.Second
	}
	max := base * backoffFactor * backoffFactor

	delay := base
	for i := 0; i < attempt && i < 2; i++ {
		delay *= backoffFactor
	}

	if b.JitterRatio > 0 {
		spread := float64(delay) * b.JitterRatio
		delay += time.Duration((rand.Float64()*2 - 1) * spread)
	}

	if delay > max {
		delay = max
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}

// StepFailure is the error the orchestrator returns when a step propagates.
// The hosting scheduler inspects Retryable to decide whether to re-run the
// invocation.
type StepFailure struct {
	Step      Step
	Kind      ErrorKind
	Retryable bool
	Err       error
}

func (f *StepFailure) Error() string {
	return string(f.Step) + " failed (" + string(f.Kind) + "): " + f.Err.Error()
}

func (f *StepFailure) Unwrap() error {
	return f.Err
}
