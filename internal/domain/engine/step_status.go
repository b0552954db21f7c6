package engine

// StepStatus represents the observed or terminal state of a step.
type StepStatus string

const (
	// StatusSatisfied indicates the desired state was already met; the
	// action never ran.
	StatusSatisfied StepStatus = "satisfied"
	// StatusNeedsApply indicates the probe found the desired state unmet.
	StatusNeedsApply StepStatus = "needs-apply"
	// StatusUnknown indicates the probe could not determine state. The
	// executor treats this as "attempt the action, then re-check".
	StatusUnknown StepStatus = "unknown"
	// StatusApplied indicates the action ran and succeeded.
	StatusApplied StepStatus = "applied"
	// StatusFailed indicates the action (or a post-apply re-check) failed.
	StatusFailed StepStatus = "failed"
	// StatusSkipped indicates the step never ran: a dependency failed,
	// the run was canceled, or the step was excluded.
	StatusSkipped StepStatus = "skipped"
)

// String returns the string representation of the status.
func (s StepStatus) String() string {
	return string(s)
}

// IsTerminal returns true if this status is a final per-run state.
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StatusSatisfied, StatusApplied, StatusFailed, StatusSkipped:
		return true
	case StatusNeedsApply, StatusUnknown:
		return false
	}
	return false
}

// Succeeded returns true for terminal states that unblock dependents.
func (s StepStatus) Succeeded() bool {
	return s == StatusSatisfied || s == StatusApplied
}
