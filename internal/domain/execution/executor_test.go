package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/rig/internal/domain/engine"
)

// testStep is a configurable step for executor tests.
type testStep struct {
	id          engine.StepID
	deps        []engine.StepID
	resource    engine.ResourceTag
	retryable   bool
	remediation string
	checkFn     func(engine.RunContext) (engine.StepStatus, error)
	applyFn     func(engine.RunContext) error
}

func newTestStep(id string, deps ...string) *testStep {
	depIDs := make([]engine.StepID, 0, len(deps))
	for _, dep := range deps {
		depIDs = append(depIDs, engine.MustNewStepID(dep))
	}
	return &testStep{
		id:       engine.MustNewStepID(id),
		deps:     depIDs,
		resource: engine.ResourceFileEdit,
	}
}

func (s *testStep) ID() engine.StepID          { return s.id }
func (s *testStep) DependsOn() []engine.StepID { return s.deps }
func (s *testStep) Resource() engine.ResourceTag {
	return s.resource
}
func (s *testStep) Retryable() bool     { return s.retryable }
func (s *testStep) Remediation() string { return s.remediation }

func (s *testStep) Check(ctx engine.RunContext) (engine.StepStatus, error) {
	if s.checkFn != nil {
		return s.checkFn(ctx)
	}
	return engine.StatusNeedsApply, nil
}

func (s *testStep) Plan(_ engine.RunContext) (engine.Diff, error) {
	return engine.NewDiff(engine.DiffTypeAdd, "test", s.id.String(), "test change"), nil
}

func (s *testStep) Apply(ctx engine.RunContext) error {
	if s.applyFn != nil {
		return s.applyFn(ctx)
	}
	return nil
}

// fastRetry keeps retry tests quick.
var fastRetry = RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Factor: 2}

func statusOf(t *testing.T, report *RunReport, id string) engine.StepStatus {
	t.Helper()
	for _, result := range report.Results() {
		if result.StepID().String() == id {
			return result.Status()
		}
	}
	t.Fatalf("no result for %s", id)
	return ""
}

func resultOf(t *testing.T, report *RunReport, id string) StepResult {
	t.Helper()
	for _, result := range report.Results() {
		if result.StepID().String() == id {
			return result
		}
	}
	t.Fatalf("no result for %s", id)
	return StepResult{}
}

func TestExecutor_SatisfiedNeverApplies(t *testing.T) {
	applied := false
	step := newTestStep("pkg:install:zsh")
	step.applyFn = func(_ engine.RunContext) error {
		applied = true
		return nil
	}

	plan := NewPlan()
	plan.Add(NewPlanEntry(step, engine.StatusSatisfied, engine.Diff{}))

	report := NewExecutor(nil).Execute(context.Background(), plan)

	if applied {
		t.Error("satisfied step must not apply")
	}
	if got := statusOf(t, report, "pkg:install:zsh"); got != engine.StatusSatisfied {
		t.Errorf("status = %v, want satisfied", got)
	}
	if report.ExitCode() != 0 {
		t.Errorf("ExitCode() = %d, want 0", report.ExitCode())
	}
}

func TestExecutor_AppliesUnsatisfiedStep(t *testing.T) {
	step := newTestStep("pkg:install:zsh")

	plan := NewPlan()
	plan.Add(NewPlanEntry(step, engine.StatusNeedsApply, engine.Diff{}))

	report := NewExecutor(nil).Execute(context.Background(), plan)

	result := resultOf(t, report, "pkg:install:zsh")
	if result.Status() != engine.StatusApplied {
		t.Errorf("status = %v, want applied", result.Status())
	}
	if result.Attempts() != 1 {
		t.Errorf("attempts = %d, want 1", result.Attempts())
	}
}

func TestExecutor_FailureSkipsTransitiveDependents(t *testing.T) {
	failing := newTestStep("pkg:install:git")
	failing.applyFn = func(_ engine.RunContext) error {
		return engine.NewPreconditionError("pkg:install:git", "mirror broken")
	}
	direct := newTestStep("shell:clone:oh-my-zsh", "pkg:install:git")
	transitive := newTestStep("shell:enable:plugins", "shell:clone:oh-my-zsh")

	independentApplied := false
	independent := newTestStep("nvim:install:binary")
	independent.applyFn = func(_ engine.RunContext) error {
		independentApplied = true
		return nil
	}

	plan := NewPlan()
	for _, step := range []*testStep{failing, direct, transitive, independent} {
		plan.Add(NewPlanEntry(step, engine.StatusNeedsApply, engine.Diff{}))
	}

	report := NewExecutor(nil).Execute(context.Background(), plan)

	if got := statusOf(t, report, "pkg:install:git"); got != engine.StatusFailed {
		t.Errorf("failing step status = %v", got)
	}
	if got := statusOf(t, report, "shell:clone:oh-my-zsh"); got != engine.StatusSkipped {
		t.Errorf("direct dependent status = %v, want skipped", got)
	}
	if got := statusOf(t, report, "shell:enable:plugins"); got != engine.StatusSkipped {
		t.Errorf("transitive dependent status = %v, want skipped", got)
	}
	if !independentApplied {
		t.Error("independent branch must keep running after a failure")
	}
	if report.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", report.ExitCode())
	}
}

func TestExecutor_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	step := newTestStep("gitrepo:clone:plugin")
	step.retryable = true
	step.applyFn = func(_ engine.RunContext) error {
		attempts++
		if attempts < 3 {
			return engine.NewTransientError("git clone", "connection reset", nil)
		}
		return nil
	}

	plan := NewPlan()
	plan.Add(NewPlanEntry(step, engine.StatusNeedsApply, engine.Diff{}))

	report := NewExecutor(nil).WithRetryPolicy(fastRetry).Execute(context.Background(), plan)

	result := resultOf(t, report, "gitrepo:clone:plugin")
	if result.Status() != engine.StatusApplied {
		t.Errorf("status = %v, want applied after retries", result.Status())
	}
	if result.Attempts() != 3 {
		t.Errorf("attempts = %d, want 3", result.Attempts())
	}
}

func TestExecutor_RetryBudgetExhausted(t *testing.T) {
	attempts := 0
	step := newTestStep("gitrepo:clone:plugin")
	step.retryable = true
	step.applyFn = func(_ engine.RunContext) error {
		attempts++
		return engine.NewTransientError("git clone", "connection reset", nil)
	}

	plan := NewPlan()
	plan.Add(NewPlanEntry(step, engine.StatusNeedsApply, engine.Diff{}))

	report := NewExecutor(nil).WithRetryPolicy(fastRetry).Execute(context.Background(), plan)

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if got := statusOf(t, report, "gitrepo:clone:plugin"); got != engine.StatusFailed {
		t.Errorf("status = %v, want failed", got)
	}
}

func TestExecutor_NoRetryForNonTransientError(t *testing.T) {
	attempts := 0
	step := newTestStep("nvim:install:binary")
	step.retryable = true
	step.applyFn = func(_ engine.RunContext) error {
		attempts++
		return engine.NewPreconditionError("nvim:install:binary", "asset missing")
	}

	plan := NewPlan()
	plan.Add(NewPlanEntry(step, engine.StatusNeedsApply, engine.Diff{}))

	NewExecutor(nil).WithRetryPolicy(fastRetry).Execute(context.Background(), plan)

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (precondition failures are final)", attempts)
	}
}

func TestExecutor_NoRetryForNonRetryableStep(t *testing.T) {
	attempts := 0
	step := newTestStep("shell:edit:path")
	step.applyFn = func(_ engine.RunContext) error {
		attempts++
		return engine.NewTransientError("write", "flaky disk", nil)
	}

	plan := NewPlan()
	plan.Add(NewPlanEntry(step, engine.StatusNeedsApply, engine.Diff{}))

	NewExecutor(nil).WithRetryPolicy(fastRetry).Execute(context.Background(), plan)

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (step is not retryable)", attempts)
	}
}

func TestExecutor_DryRunNeverApplies(t *testing.T) {
	applied := false
	step := newTestStep("pkg:install:zsh")
	step.applyFn = func(_ engine.RunContext) error {
		applied = true
		return nil
	}

	plan := NewPlan()
	plan.Add(NewPlanEntry(step, engine.StatusNeedsApply,
		engine.NewDiff(engine.DiffTypeAdd, "package", "zsh", "install via apt")))

	report := NewExecutor(nil).WithDryRun(true).Execute(context.Background(), plan)

	if applied {
		t.Error("dry run must not apply")
	}
	result := resultOf(t, report, "pkg:install:zsh")
	if result.Status() != engine.StatusNeedsApply {
		t.Errorf("status = %v, want needs-apply preserved", result.Status())
	}
	if result.Diff().IsEmpty() {
		t.Error("dry run result should carry the planned diff")
	}
	if !report.DryRun() {
		t.Error("report should record dry-run mode")
	}
}

func TestExecutor_DryRunDoesNotSkipDependents(t *testing.T) {
	parent := newTestStep("pkg:install:zsh")
	child := newTestStep("shell:clone:oh-my-zsh", "pkg:install:zsh")
	grandchild := newTestStep("shell:init:zshrc", "shell:clone:oh-my-zsh")

	plan := NewPlan()
	plan.Add(NewPlanEntry(parent, engine.StatusNeedsApply,
		engine.NewDiff(engine.DiffTypeAdd, "package", "zsh", "install via apt")))
	plan.Add(NewPlanEntry(child, engine.StatusNeedsApply,
		engine.NewDiff(engine.DiffTypeAdd, "git-repo", "~/.oh-my-zsh", "clone")))
	plan.Add(NewPlanEntry(grandchild, engine.StatusUnknown, engine.Diff{}))

	report := NewExecutor(nil).WithDryRun(true).Execute(context.Background(), plan)

	for _, id := range []string{"pkg:install:zsh", "shell:clone:oh-my-zsh", "shell:init:zshrc"} {
		result := resultOf(t, report, id)
		if result.Status() == engine.StatusSkipped {
			t.Errorf("%s skipped in dry run: %s", id, result.Detail())
		}
		if result.Detail() != "would apply" {
			t.Errorf("%s detail = %q, want \"would apply\"", id, result.Detail())
		}
	}
}

func TestExecutor_CancellationSkipsRemainingSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	first := newTestStep("pkg:install:zsh")
	first.applyFn = func(_ engine.RunContext) error {
		cancel() // cancel mid-run; the in-flight step still finishes
		return nil
	}
	second := newTestStep("pkg:install:git")

	plan := NewPlan()
	plan.Add(NewPlanEntry(first, engine.StatusNeedsApply, engine.Diff{}))
	plan.Add(NewPlanEntry(second, engine.StatusNeedsApply, engine.Diff{}))

	report := NewExecutor(nil).Execute(ctx, plan)

	if got := statusOf(t, report, "pkg:install:zsh"); got != engine.StatusApplied {
		t.Errorf("in-flight step status = %v, want applied", got)
	}
	result := resultOf(t, report, "pkg:install:git")
	if result.Status() != engine.StatusSkipped {
		t.Errorf("remaining step status = %v, want skipped", result.Status())
	}
	if result.Detail() != "run canceled" {
		t.Errorf("detail = %q", result.Detail())
	}
}

func TestExecutor_UnknownProbe_RecheckSatisfiedSkipsApply(t *testing.T) {
	applied := false
	step := newTestStep("nvim:install:binary")
	step.checkFn = func(_ engine.RunContext) (engine.StepStatus, error) {
		// An earlier step made the probe able to see the state.
		return engine.StatusSatisfied, nil
	}
	step.applyFn = func(_ engine.RunContext) error {
		applied = true
		return nil
	}

	plan := NewPlan()
	plan.Add(NewPlanEntry(step, engine.StatusUnknown, engine.Diff{}))

	report := NewExecutor(nil).Execute(context.Background(), plan)

	if applied {
		t.Error("live re-check reported satisfied; apply must not run")
	}
	if got := statusOf(t, report, "nvim:install:binary"); got != engine.StatusSatisfied {
		t.Errorf("status = %v, want satisfied", got)
	}
}

func TestExecutor_UnknownProbe_PostApplyRecheckFailure(t *testing.T) {
	step := newTestStep("nvim:install:binary")
	step.checkFn = func(_ engine.RunContext) (engine.StepStatus, error) {
		return engine.StatusNeedsApply, nil
	}

	plan := NewPlan()
	plan.Add(NewPlanEntry(step, engine.StatusUnknown, engine.Diff{}))

	report := NewExecutor(nil).Execute(context.Background(), plan)

	result := resultOf(t, report, "nvim:install:binary")
	if result.Status() != engine.StatusFailed {
		t.Errorf("status = %v, want failed (apply did not converge)", result.Status())
	}
	if result.Error() == nil {
		t.Error("result should carry the convergence error")
	}
}

// recordingObserver collects executor callbacks.
type recordingObserver struct {
	transitions []string
	results     []StepResult
}

func (o *recordingObserver) StepTransition(_ engine.StepID, from, to string) {
	o.transitions = append(o.transitions, from+"->"+to)
}

func (o *recordingObserver) StepResult(result StepResult) {
	o.results = append(o.results, result)
}

func TestExecutor_ObserverSeesLifecycle(t *testing.T) {
	observer := &recordingObserver{}
	step := newTestStep("pkg:install:zsh")

	plan := NewPlan()
	plan.Add(NewPlanEntry(step, engine.StatusNeedsApply, engine.Diff{}))

	NewExecutor(nil).WithObserver(observer).Execute(context.Background(), plan)

	want := []string{"pending->probing", "probing->applying", "applying->applied"}
	if len(observer.transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", observer.transitions, want)
	}
	for i, transition := range want {
		if observer.transitions[i] != transition {
			t.Errorf("transition[%d] = %q, want %q", i, observer.transitions[i], transition)
		}
	}
	if len(observer.results) != 1 {
		t.Fatalf("results = %d, want 1", len(observer.results))
	}
}

func TestExecutor_RemediationSurfacesOnFailure(t *testing.T) {
	step := newTestStep("shell:chsh:login-shell")
	step.remediation = "sudo chsh -s /usr/bin/zsh dev"
	step.applyFn = func(_ engine.RunContext) error {
		return errors.New("all fallbacks failed")
	}

	plan := NewPlan()
	plan.Add(NewPlanEntry(step, engine.StatusNeedsApply, engine.Diff{}))

	report := NewExecutor(nil).Execute(context.Background(), plan)

	result := resultOf(t, report, "shell:chsh:login-shell")
	if result.Remediation() != "sudo chsh -s /usr/bin/zsh dev" {
		t.Errorf("remediation = %q", result.Remediation())
	}
}

func TestExecutor_ErrorRemedyWinsOverStepRemediation(t *testing.T) {
	step := newTestStep("shell:chsh:login-shell")
	step.remediation = "fallback remedy"
	step.applyFn = func(_ engine.RunContext) error {
		return engine.NewPermissionError("chsh", "denied", "sudo chsh -s /bin/zsh dev")
	}

	plan := NewPlan()
	plan.Add(NewPlanEntry(step, engine.StatusNeedsApply, engine.Diff{}))

	report := NewExecutor(nil).Execute(context.Background(), plan)

	result := resultOf(t, report, "shell:chsh:login-shell")
	if result.Remediation() != "sudo chsh -s /bin/zsh dev" {
		t.Errorf("remediation = %q, want the error's remedy", result.Remediation())
	}
}
