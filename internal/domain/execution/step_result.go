// Package execution handles step orchestration and runtime execution.
package execution

import (
	"time"

	"github.com/felixgeelhaar/rig/internal/domain/engine"
)

// StepResult captures the terminal outcome of one step in one run. Results
// are created by the executor when the step finishes and never mutated
// afterward.
type StepResult struct {
	stepID      engine.StepID
	status      engine.StepStatus
	err         error
	detail      string
	remediation string
	attempts    int
	duration    time.Duration
	diff        engine.Diff
}

// NewStepResult creates a new StepResult.
func NewStepResult(stepID engine.StepID, status engine.StepStatus, err error) StepResult {
	return StepResult{
		stepID: stepID,
		status: status,
		err:    err,
	}
}

// StepID returns the ID of the step that was executed.
func (r StepResult) StepID() engine.StepID {
	return r.stepID
}

// Status returns the final status of the step.
func (r StepResult) Status() engine.StepStatus {
	return r.status
}

// Error returns any error that occurred during execution.
func (r StepResult) Error() error {
	return r.err
}

// Detail returns free-text outcome detail (skip reason, fallback level used).
func (r StepResult) Detail() string {
	return r.detail
}

// Remediation returns the manual command to run instead, if the step
// defines one and failed.
func (r StepResult) Remediation() string {
	return r.remediation
}

// Attempts returns how many times the action ran (0 when it never ran).
func (r StepResult) Attempts() int {
	return r.attempts
}

// Duration returns how long the step took to execute.
func (r StepResult) Duration() time.Duration {
	return r.duration
}

// Diff returns the planned change (if any).
func (r StepResult) Diff() engine.Diff {
	return r.diff
}

// Success returns true if the step ended satisfied or applied.
func (r StepResult) Success() bool {
	return r.status.Succeeded()
}

// Skipped returns true if the step never ran.
func (r StepResult) Skipped() bool {
	return r.status == engine.StatusSkipped
}

// WithDetail returns a copy with detail set.
func (r StepResult) WithDetail(detail string) StepResult {
	r.detail = detail
	return r
}

// WithRemediation returns a copy with remediation set.
func (r StepResult) WithRemediation(remedy string) StepResult {
	r.remediation = remedy
	return r
}

// WithAttempts returns a copy with the attempt count set.
func (r StepResult) WithAttempts(n int) StepResult {
	r.attempts = n
	return r
}

// WithDuration returns a copy with duration set.
func (r StepResult) WithDuration(d time.Duration) StepResult {
	r.duration = d
	return r
}

// WithDiff returns a copy with diff set.
func (r StepResult) WithDiff(d engine.Diff) StepResult {
	r.diff = d
	return r
}
