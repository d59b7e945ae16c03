// Package status defines the lifecycle shared by queued mirror tasks and
// the severity classes that drive their retry handling.
package status

import "errors"

// Status is the lifecycle state of a queued mirror task.
type Status string

const (
	// StatusPending marks a task waiting for a worker.
	StatusPending Status = "pending"
	// StatusInFlight marks a task claimed by a worker.
	StatusInFlight Status = "in_flight"
	// StatusCompleted marks a task whose mirror write was applied, or was
	// found to have nothing left to apply.
	StatusCompleted Status = "completed"
	// StatusAbandoned marks a task parked after a fatal error or an
	// exhausted retry budget.
	StatusAbandoned Status = "abandoned"
)

// ErrInvalidTransition is returned for lifecycle moves the queue does not
// allow.
var ErrInvalidTransition = errors.New("invalid status transition")

func (s Status) String() string { return string(s) }

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// IsActive reports whether the task still has work ahead of it.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusInFlight
}

// CanTransitionTo reports whether the queue allows moving to target. An in
// flight task may move back to pending when it is rescheduled.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusInFlight || target == StatusAbandoned
	case StatusInFlight:
		return target == StatusCompleted || target == StatusPending || target == StatusAbandoned
	default:
		return false
	}
}

// TransitionTo returns the target state, or ErrInvalidTransition when the
// move is not allowed.
func (s Status) TransitionTo(target Status) (Status, error) {
	if !s.CanTransitionTo(target) {
		return s, ErrInvalidTransition
	}
	return target, nil
}

// ErrorSeverity classifies how a mirror write failure should be handled.
type ErrorSeverity string

const (
	// ErrorSeverityRetryable schedules another attempt with backoff.
	ErrorSeverityRetryable ErrorSeverity = "retryable"
	// ErrorSeveritySkippable means the target is gone and there is
	// nothing left to reconcile.
	ErrorSeveritySkippable ErrorSeverity = "skippable"
	// ErrorSeverityFatal parks the task without another attempt.
	ErrorSeverityFatal ErrorSeverity = "fatal"
)

func (e ErrorSeverity) String() string { return string(e) }

// IsRetryable reports whether another attempt may succeed.
func (e ErrorSeverity) IsRetryable() bool {
	return e == ErrorSeverityRetryable
}

// IsFatal reports whether the task should be parked outright.
func (e ErrorSeverity) IsFatal() bool {
	return e == ErrorSeverityFatal
}
