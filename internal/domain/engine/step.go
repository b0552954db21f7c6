package engine

import "time"

// Step is an idempotent unit of provisioning. Check is the side-effect-free
// probe; Apply is the mutating action. The executor only calls Apply when
// Check reported needs-apply or unknown, so Apply need not re-check.
//
// Probes must not assume earlier steps ran in the same process: the
// provisioner may be re-run after a partial failure or on a machine that is
// already partially configured.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() StepID

	// DependsOn returns the IDs of steps that must reach a successful
	// terminal state before this one runs.
	DependsOn() []StepID

	// Resource names the machine-global resource this step uses.
	Resource() ResourceTag

	// Check determines the current status of this step. It must be free
	// of side effects. Return StatusUnknown when state cannot be
	// determined reliably (e.g., the probing command is missing).
	Check(ctx RunContext) (StepStatus, error)

	// Plan returns the diff describing what Apply would change.
	Plan(ctx RunContext) (Diff, error)

	// Apply executes the step's change. Re-running after success must
	// produce no additional effect.
	Apply(ctx RunContext) error
}

// RetryableStep marks a step whose transient failures (network fetches,
// flaky package mirrors) should be retried with backoff.
type RetryableStep interface {
	Step
	Retryable() bool
}

// IsRetryable reports whether transient failures of step should be retried.
func IsRetryable(step Step) bool {
	if r, ok := step.(RetryableStep); ok {
		return r.Retryable()
	}
	return false
}

// TimeboundStep lets a step override the executor's default budget for
// its Apply. Zero means "use the default".
type TimeboundStep interface {
	Step
	Timeout() time.Duration
}

// TimeoutOf returns the step's declared apply budget, or zero.
func TimeoutOf(step Step) time.Duration {
	if t, ok := step.(TimeboundStep); ok {
		return t.Timeout()
	}
	return 0
}

// RemediableStep provides the exact manual command an operator can run
// when the step fails. The reporter prints it next to the failure.
type RemediableStep interface {
	Step
	Remediation() string
}

// RemediationOf returns the step's manual fallback command, or "".
func RemediationOf(step Step) string {
	if r, ok := step.(RemediableStep); ok {
		return r.Remediation()
	}
	return ""
}

// PrivilegedStep marks a step that escalates privileges (sudo). The CLI
// asks for confirmation before applying such steps unless --yes is given.
type PrivilegedStep interface {
	Step
	Privileged() bool
}

// IsPrivileged reports whether step may escalate privileges.
func IsPrivileged(step Step) bool {
	if p, ok := step.(PrivilegedStep); ok {
		return p.Privileged()
	}
	return false
}

// DetailedStep exposes extra outcome detail after Apply, e.g. which
// fallback level of a fallback chain succeeded.
type DetailedStep interface {
	Step
	Detail() string
}

// DetailOf returns the step's post-apply detail, or "".
func DetailOf(step Step) string {
	if d, ok := step.(DetailedStep); ok {
		return d.Detail()
	}
	return ""
}
