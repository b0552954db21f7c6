package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/rig/internal/domain/engine"
	"github.com/felixgeelhaar/rig/internal/ports"
)

// Observer receives execution progress. The reporter implements this to
// stream per-step output while the run is in flight.
type Observer interface {
	// StepTransition is called on every lifecycle state change.
	StepTransition(id engine.StepID, from, to string)

	// StepResult is called once per step with its terminal outcome.
	StepResult(result StepResult)
}

// RetryPolicy controls how transient failures of retryable steps are
// retried. The delay doubles after each failed attempt.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      int
}

// DefaultRetryPolicy retries twice more after the first failure, starting
// at one second between attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Factor:      2,
	}
}

// DefaultNetworkTimeout bounds a single apply attempt of any step touching
// the network. Retries get a fresh budget each.
const DefaultNetworkTimeout = 60 * time.Second

// Executor walks a plan in order and drives each step through its
// lifecycle. Steps sharing a resource tag are serialized; a failed step
// skips every transitive dependent; independent steps keep running.
type Executor struct {
	dryRun         bool
	retry          RetryPolicy
	networkTimeout time.Duration
	observer       Observer
	logger         ports.Logger

	mu    sync.Mutex
	locks map[engine.ResourceTag]*sync.Mutex
}

// NewExecutor creates an Executor with default retry and timeout policy.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		retry:          DefaultRetryPolicy(),
		networkTimeout: DefaultNetworkTimeout,
		logger:         logger,
		locks:          make(map[engine.ResourceTag]*sync.Mutex),
	}
}

// WithDryRun enables dry-run mode: no Apply runs, the report shows what
// would change.
func (e *Executor) WithDryRun(dryRun bool) *Executor {
	e.dryRun = dryRun
	return e
}

// WithObserver sets the progress observer.
func (e *Executor) WithObserver(observer Observer) *Executor {
	e.observer = observer
	return e
}

// WithRetryPolicy overrides the retry policy.
func (e *Executor) WithRetryPolicy(policy RetryPolicy) *Executor {
	e.retry = policy
	return e
}

// WithNetworkTimeout overrides the per-attempt budget for network steps.
func (e *Executor) WithNetworkTimeout(timeout time.Duration) *Executor {
	e.networkTimeout = timeout
	return e
}

// Execute runs the plan and returns the report. Cancellation is honored at
// step boundaries: the in-flight step finishes, everything after it is
// recorded as skipped.
func (e *Executor) Execute(ctx context.Context, plan *Plan) *RunReport {
	report := NewRunReport(e.dryRun)
	runCtx := engine.NewRunContext(ctx).WithDryRun(e.dryRun)

	// Terminal status of every finished step, keyed by id. Dependents
	// consult this map, so a failure propagates transitively: the direct
	// dependent is skipped, and its dependents see the skip in turn.
	terminal := make(map[string]engine.StepStatus)

	canceled := false
	for _, entry := range plan.Entries() {
		if !canceled {
			select {
			case <-ctx.Done():
				canceled = true
			default:
			}
		}

		var result StepResult
		if canceled {
			result = NewStepResult(entry.Step().ID(), engine.StatusSkipped, nil).
				WithDetail("run canceled")
			e.notifyTransition(entry.Step().ID(), statePending, stateSkipped)
		} else {
			result = e.executeEntry(runCtx, entry, terminal)
		}

		terminal[entry.Step().ID().String()] = result.Status()
		report.Append(result)
		if e.observer != nil {
			e.observer.StepResult(result)
		}
	}

	report.Finish()
	return report
}

// executeEntry drives one step through its lifecycle to a terminal state.
func (e *Executor) executeEntry(runCtx engine.RunContext, entry PlanEntry, terminal map[string]engine.StepStatus) StepResult {
	step := entry.Step()
	id := step.ID()

	lifecycle, err := newStepLifecycle()
	if err != nil {
		return NewStepResult(id, engine.StatusFailed, err)
	}
	defer lifecycle.stop()

	move := func(event string) {
		from := lifecycle.state()
		lifecycle.send(event)
		to := lifecycle.state()
		if from != to {
			e.notifyTransition(id, from, to)
		}
	}

	// A step only runs when no dependency failed or was skipped. In
	// dry-run the terminal map holds probed statuses (needs-apply,
	// unknown); those must not cascade into skips.
	for _, dep := range step.DependsOn() {
		status, done := terminal[dep.String()]
		if done && (status == engine.StatusFailed || status == engine.StatusSkipped) {
			move(eventSkip)
			return NewStepResult(id, engine.StatusSkipped, nil).
				WithDetail(fmt.Sprintf("dependency %s %s", dep.String(), status))
		}
	}

	move(eventProbe)

	if entry.Status() == engine.StatusSatisfied {
		move(eventSatisfied)
		return NewStepResult(id, engine.StatusSatisfied, nil)
	}

	if runCtx.DryRun() {
		// Report the planned change without running the action. The step
		// keeps its probed status so the dry-run report distinguishes
		// "would apply" from "could not determine".
		return NewStepResult(id, entry.Status(), nil).
			WithDiff(entry.Diff()).
			WithDetail("would apply")
	}

	// An unknown probe is re-checked live: an earlier step in this run
	// (installing the probing command, say) may have changed the answer.
	if entry.Status() == engine.StatusUnknown {
		if status, checkErr := step.Check(runCtx); checkErr == nil && status == engine.StatusSatisfied {
			move(eventSatisfied)
			return NewStepResult(id, engine.StatusSatisfied, nil)
		}
	}

	move(eventUnsatisfied)

	start := time.Now()
	attempts, applyErr := e.apply(runCtx, step)
	duration := time.Since(start)

	if applyErr == nil && entry.Status() == engine.StatusUnknown {
		// The probe could not see state before the action; verify it can
		// see the desired state now.
		if status, checkErr := step.Check(runCtx); checkErr == nil && status == engine.StatusNeedsApply {
			applyErr = engine.NewPreconditionError(id.String(), "state still unsatisfied after apply")
		}
	}

	if applyErr != nil {
		move(eventFail)
		remedy := engine.RemedyOf(applyErr)
		if remedy == "" {
			remedy = engine.RemediationOf(step)
		}
		if e.logger != nil {
			e.logger.Error(runCtx.Context(), "step failed",
				ports.F("step", id.String()),
				ports.F("attempts", attempts),
				ports.F("error", applyErr.Error()))
		}
		return NewStepResult(id, engine.StatusFailed, applyErr).
			WithAttempts(attempts).
			WithDuration(duration).
			WithRemediation(remedy)
	}

	move(eventApplied)
	return NewStepResult(id, engine.StatusApplied, nil).
		WithAttempts(attempts).
		WithDuration(duration).
		WithDiff(entry.Diff()).
		WithDetail(engine.DetailOf(step))
}

// apply runs the step's action under its resource lock, retrying transient
// failures of retryable steps. It returns the number of attempts made.
func (e *Executor) apply(runCtx engine.RunContext, step engine.Step) (int, error) {
	lock := e.lockFor(step.Resource())
	lock.Lock()
	defer lock.Unlock()

	maxAttempts := 1
	if engine.IsRetryable(step) {
		maxAttempts = e.retry.MaxAttempts
	}

	delay := e.retry.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = e.applyOnce(runCtx, step)
		if lastErr == nil {
			return attempt, nil
		}
		if attempt == maxAttempts || !engine.IsTransient(lastErr) {
			return attempt, lastErr
		}

		if e.logger != nil {
			e.logger.Warn(runCtx.Context(), "retrying step after transient failure",
				ports.F("step", step.ID().String()),
				ports.F("attempt", attempt),
				ports.F("delay", delay.String()),
				ports.F("error", lastErr.Error()))
		}
		select {
		case <-runCtx.Context().Done():
			return attempt, lastErr
		case <-time.After(delay):
		}
		delay *= time.Duration(e.retry.Factor)
	}
	return maxAttempts, lastErr
}

// applyOnce runs a single apply attempt under the step's time budget.
func (e *Executor) applyOnce(runCtx engine.RunContext, step engine.Step) error {
	ctx := runCtx.Context()

	timeout := engine.TimeoutOf(step)
	if timeout == 0 && step.Resource().Network() {
		timeout = e.networkTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return step.Apply(runCtx.WithContext(ctx))
}

// lockFor returns the mutex serializing steps that share a resource tag.
func (e *Executor) lockFor(tag engine.ResourceTag) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[tag]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[tag] = lock
	}
	return lock
}

// notifyTransition forwards a lifecycle change to the observer, if any.
func (e *Executor) notifyTransition(id engine.StepID, from, to string) {
	if e.observer != nil {
		e.observer.StepTransition(id, from, to)
	}
}
