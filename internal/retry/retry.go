// Package retry expresses the bounded wait used after a bulk document load:
// a fixed number of attempts, one interval apart, stopping early once an
// attempt succeeds.
//
// Tracker is driven step by step from an event loop (one Record per frame
// message). Run drives the same policy with a ticker for callers that can
// block.
package retry

import (
	"context"
	"time"

	"github.com/Iron-Ham/sheetview/internal/errors"
)

// Policy bounds a retry loop.
type Policy struct {
	// MaxAttempts is the number of attempts before giving up. Values below
	// one are treated as one.
	MaxAttempts int
	// Interval separates consecutive attempts.
	Interval time.Duration
}

// Outcome is the state of a retry loop.
type Outcome int

const (
	// Pending means more attempts remain.
	Pending Outcome = iota
	// Succeeded means an attempt reported success.
	Succeeded
	// Exhausted means the attempt budget ran out without success.
	Exhausted
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

func (p Policy) maxAttempts() int {
	return max(1, p.MaxAttempts)
}

// Tracker counts attempts against a Policy. It is not safe for concurrent
// use; it belongs to the goroutine driving the loop.
type Tracker struct {
	policy   Policy
	attempts int
	outcome  Outcome
}

// NewTracker starts a loop under p.
func NewTracker(p Policy) *Tracker {
	return &Tracker{policy: p}
}

// Policy returns the policy the tracker enforces.
func (t *Tracker) Policy() Policy {
	return t.policy
}

// Attempts returns how many attempts were recorded.
func (t *Tracker) Attempts() int {
	return t.attempts
}

// Outcome returns the current state.
func (t *Tracker) Outcome() Outcome {
	return t.outcome
}

// ShouldContinue reports whether another attempt should be scheduled.
func (t *Tracker) ShouldContinue() bool {
	return t.outcome == Pending
}

// Record registers one attempt and returns the resulting state. Recording
// after the loop has settled is a no-op.
func (t *Tracker) Record(success bool) Outcome {
	if t.outcome != Pending {
		return t.outcome
	}
	t.attempts++
	switch {
	case success:
		t.outcome = Succeeded
	case t.attempts >= t.policy.maxAttempts():
		t.outcome = Exhausted
	}
	return t.outcome
}

// Run calls attempt immediately and then once per Interval until it returns
// true or the budget is spent. Exhaustion is reported as an outcome, not an
// error; the only error is ctx cancellation.
func Run(ctx context.Context, p Policy, attempt func() bool) (Outcome, error) {
	tracker := NewTracker(p)
	if tracker.Record(attempt()) != Pending {
		return tracker.Outcome(), nil
	}

	interval := p.Interval
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return tracker.Outcome(), errors.Join(errors.ErrCanceled, ctx.Err())
		case <-ticker.C:
			if tracker.Record(attempt()) != Pending {
				return tracker.Outcome(), nil
			}
		}
	}
}
