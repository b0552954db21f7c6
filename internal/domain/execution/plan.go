package execution

import (
	"github.com/felixgeelhaar/rig/internal/domain/engine"
)

// PlanEntry is a single step's planned execution: the step, its probed
// status, and the diff Apply would make.
type PlanEntry struct {
	step   engine.Step
	status engine.StepStatus
	diff   engine.Diff
}

// NewPlanEntry creates a new PlanEntry.
func NewPlanEntry(step engine.Step, status engine.StepStatus, diff engine.Diff) PlanEntry {
	return PlanEntry{
		step:   step,
		status: status,
		diff:   diff,
	}
}

// Step returns the step to be executed.
func (e PlanEntry) Step() engine.Step {
	return e.step
}

// Status returns the probed status of the step.
func (e PlanEntry) Status() engine.StepStatus {
	return e.status
}

// Diff returns the planned changes.
func (e PlanEntry) Diff() engine.Diff {
	return e.diff
}

// PlanSummary provides aggregate statistics about the plan.
type PlanSummary struct {
	Total      int
	NeedsApply int
	Satisfied  int
	Unknown    int
}

// Plan is the ordered, immutable list of plan entries for one run. Entries
// are in topological order; the executor walks them front to back.
type Plan struct {
	entries []PlanEntry
}

// NewPlan creates an empty Plan.
func NewPlan() *Plan {
	return &Plan{entries: make([]PlanEntry, 0)}
}

// Add appends a plan entry.
func (p *Plan) Add(entry PlanEntry) {
	p.entries = append(p.entries, entry)
}

// Len returns the number of entries.
func (p *Plan) Len() int {
	return len(p.entries)
}

// IsEmpty returns true if there are no entries.
func (p *Plan) IsEmpty() bool {
	return len(p.entries) == 0
}

// Entries returns all plan entries.
func (p *Plan) Entries() []PlanEntry {
	return p.entries
}

// HasChanges returns true if any step would be applied.
func (p *Plan) HasChanges() bool {
	for _, e := range p.entries {
		if e.status == engine.StatusNeedsApply || e.status == engine.StatusUnknown {
			return true
		}
	}
	return false
}

// PrivilegedSteps returns the ids of unsatisfied steps that may escalate
// privileges. The CLI confirms these before applying unless --yes.
func (p *Plan) PrivilegedSteps() []string {
	ids := make([]string, 0)
	for _, e := range p.entries {
		if e.status == engine.StatusSatisfied {
			continue
		}
		if engine.IsPrivileged(e.step) {
			ids = append(ids, e.step.ID().String())
		}
	}
	return ids
}

// Summary returns aggregate statistics.
func (p *Plan) Summary() PlanSummary {
	summary := PlanSummary{Total: len(p.entries)}
	for _, e := range p.entries {
		switch e.status {
		case engine.StatusNeedsApply:
			summary.NeedsApply++
		case engine.StatusSatisfied:
			summary.Satisfied++
		case engine.StatusUnknown:
			summary.Unknown++
		case engine.StatusApplied, engine.StatusFailed, engine.StatusSkipped:
			// terminal statuses never appear in a fresh plan
		}
	}
	return summary
}
