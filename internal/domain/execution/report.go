package execution

import (
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/rig/internal/domain/engine"
)

// ReportSummary aggregates per-outcome counts for one run.
type ReportSummary struct {
	Total      int
	Satisfied  int
	Applied    int
	Failed     int
	Skipped    int
	WouldApply int
}

// RunReport is the append-only record of one run. Each step contributes
// exactly one StepResult, in execution order.
type RunReport struct {
	id         uuid.UUID
	dryRun     bool
	startedAt  time.Time
	finishedAt time.Time
	results    []StepResult
}

// NewRunReport creates an empty report with a fresh run id.
func NewRunReport(dryRun bool) *RunReport {
	return &RunReport{
		id:        uuid.New(),
		dryRun:    dryRun,
		startedAt: time.Now(),
		results:   make([]StepResult, 0),
	}
}

// ID returns the unique run identifier.
func (r *RunReport) ID() uuid.UUID {
	return r.id
}

// DryRun reports whether this run only simulated actions.
func (r *RunReport) DryRun() bool {
	return r.dryRun
}

// Append records a step's outcome.
func (r *RunReport) Append(result StepResult) {
	r.results = append(r.results, result)
}

// Finish stamps the report's end time.
func (r *RunReport) Finish() {
	r.finishedAt = time.Now()
}

// Results returns all recorded step outcomes in execution order.
func (r *RunReport) Results() []StepResult {
	return r.results
}

// Duration returns the wall-clock duration of the run.
func (r *RunReport) Duration() time.Duration {
	if r.finishedAt.IsZero() {
		return time.Since(r.startedAt)
	}
	return r.finishedAt.Sub(r.startedAt)
}

// Failed returns the results of all failed steps.
func (r *RunReport) Failed() []StepResult {
	failed := make([]StepResult, 0)
	for _, result := range r.results {
		if result.Status() == engine.StatusFailed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Succeeded reports whether no step failed. Skipped steps do not count as
// failures on their own; the step that caused them does.
func (r *RunReport) Succeeded() bool {
	for _, result := range r.results {
		if result.Status() == engine.StatusFailed {
			return false
		}
	}
	return true
}

// ExitCode maps the run outcome to the process exit code: 0 on success,
// 1 when any step failed.
func (r *RunReport) ExitCode() int {
	if r.Succeeded() {
		return 0
	}
	return 1
}

// Summary returns aggregate outcome counts.
func (r *RunReport) Summary() ReportSummary {
	summary := ReportSummary{Total: len(r.results)}
	for _, result := range r.results {
		switch result.Status() {
		case engine.StatusSatisfied:
			summary.Satisfied++
		case engine.StatusApplied:
			summary.Applied++
		case engine.StatusFailed:
			summary.Failed++
		case engine.StatusSkipped:
			summary.Skipped++
		case engine.StatusNeedsApply, engine.StatusUnknown:
			// only present in dry-run reports
			summary.WouldApply++
		}
	}
	return summary
}
