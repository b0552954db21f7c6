package execution

import (
	"testing"

	"github.com/felixgeelhaar/rig/internal/domain/engine"
)

func TestRunReport_ExitCodes(t *testing.T) {
	ok := NewRunReport(false)
	ok.Append(NewStepResult(engine.MustNewStepID("pkg:install:zsh"), engine.StatusSatisfied, nil))
	ok.Append(NewStepResult(engine.MustNewStepID("pkg:install:git"), engine.StatusApplied, nil))
	ok.Finish()

	if !ok.Succeeded() || ok.ExitCode() != 0 {
		t.Errorf("Succeeded() = %v, ExitCode() = %d", ok.Succeeded(), ok.ExitCode())
	}

	bad := NewRunReport(false)
	bad.Append(NewStepResult(engine.MustNewStepID("pkg:install:zsh"), engine.StatusFailed,
		engine.NewPreconditionError("apt", "broken")))
	bad.Append(NewStepResult(engine.MustNewStepID("shell:clone:oh-my-zsh"), engine.StatusSkipped, nil))
	bad.Finish()

	if bad.Succeeded() || bad.ExitCode() != 1 {
		t.Errorf("Succeeded() = %v, ExitCode() = %d", bad.Succeeded(), bad.ExitCode())
	}
}

func TestRunReport_SkippedAloneIsNotFailure(t *testing.T) {
	report := NewRunReport(false)
	report.Append(NewStepResult(engine.MustNewStepID("pkg:install:zsh"), engine.StatusSkipped, nil))
	report.Finish()

	if !report.Succeeded() {
		t.Error("a run with only skipped steps did not fail")
	}
}

func TestRunReport_Summary(t *testing.T) {
	report := NewRunReport(false)
	report.Append(NewStepResult(engine.MustNewStepID("a:b:c"), engine.StatusSatisfied, nil))
	report.Append(NewStepResult(engine.MustNewStepID("d:e:f"), engine.StatusApplied, nil))
	report.Append(NewStepResult(engine.MustNewStepID("g:h:i"), engine.StatusFailed, nil))
	report.Append(NewStepResult(engine.MustNewStepID("j:k:l"), engine.StatusSkipped, nil))
	report.Finish()

	summary := report.Summary()
	if summary.Total != 4 || summary.Satisfied != 1 || summary.Applied != 1 ||
		summary.Failed != 1 || summary.Skipped != 1 {
		t.Errorf("Summary() = %+v", summary)
	}

	if len(report.Failed()) != 1 {
		t.Errorf("Failed() len = %d, want 1", len(report.Failed()))
	}
}

func TestRunReport_UniqueIDs(t *testing.T) {
	first := NewRunReport(false)
	second := NewRunReport(false)
	if first.ID() == second.ID() {
		t.Error("run ids must be unique")
	}
}
