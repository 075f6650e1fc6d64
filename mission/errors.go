package mission

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAllFallbacksExhausted reports that every charger-return strategy
// failed. It never fails an otherwise-successful mission.
var ErrAllFallbacksExhausted = errors.New("all charger-return strategies failed")

// ErrMissionCancelled reports cooperative cancellation of a running mission.
var ErrMissionCancelled = errors.New("mission cancelled")

// ErrMissionNotFound is returned by queue lookups for unknown ids.
var ErrMissionNotFound = errors.New("mission not found")

// PlanningError is a fatal resolution failure at plan time; the
// mission is never queued.
type PlanningError struct {
	PointID string
	Err     error
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning: point %q: %v", e.PointID, e.Err)
}

func (e *PlanningError) Unwrap() error { return e.Err }

// TransientCommandError is a network-level failure issuing a command,
// retried within the step's budget.
type TransientCommandError struct {
	Op  string
	Err error
}

func (e *TransientCommandError) Error() string {
	return fmt.Sprintf("transient: %s: %v", e.Op, e.Err)
}

func (e *TransientCommandError) Unwrap() error { return e.Err }

// SafetyViolation reports gate preconditions that still failed after
// the bounded recheck budget.
type SafetyViolation struct {
	Violations []string
}

func (e *SafetyViolation) Error() string {
	return fmt.Sprintf("safety precondition failed: %s", strings.Join(e.Violations, "; "))
}

// TerminalStepFailure is a robot-reported failed/cancelled state or a
// polling timeout; it exhausts to mission failure.
type TerminalStepFailure struct {
	Kind   StepKind
	Reason string
}

func (e *TerminalStepFailure) Error() string {
	return fmt.Sprintf("step %s failed: %s", e.Kind, e.Reason)
}
