package pkg

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/rig/internal/domain/engine"
	"github.com/felixgeelhaar/rig/internal/ports"
)

// UpdateIndexStep refreshes the apt package index. The index's freshness
// cannot be probed cheaply, so the probe reports unknown and the step runs
// every time; apt-get update is safe to repeat.
type UpdateIndexStep struct {
	id     engine.StepID
	runner ports.CommandRunner
}

// NewUpdateIndexStep creates the apt index refresh step. runner must
// already escalate privileges.
func NewUpdateIndexStep(runner ports.CommandRunner) *UpdateIndexStep {
	return &UpdateIndexStep{
		id:     engine.MustNewStepID("pkg:update:index"),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *UpdateIndexStep) ID() engine.StepID {
	return s.id
}

// DependsOn returns the step dependencies.
func (s *UpdateIndexStep) DependsOn() []engine.StepID {
	return nil
}

// Resource returns the package database tag.
func (s *UpdateIndexStep) Resource() engine.ResourceTag {
	return engine.ResourcePackageDB
}

// Retryable marks index refreshes as retry candidates; mirrors flake.
func (s *UpdateIndexStep) Retryable() bool {
	return true
}

// Privileged reports that this step escalates via sudo.
func (s *UpdateIndexStep) Privileged() bool {
	return true
}

// Check reports unknown: index freshness is not probeable.
func (s *UpdateIndexStep) Check(_ engine.RunContext) (engine.StepStatus, error) {
	return engine.StatusUnknown, nil
}

// Plan returns the diff for this step.
func (s *UpdateIndexStep) Plan(_ engine.RunContext) (engine.Diff, error) {
	return engine.NewDiff(engine.DiffTypeModify, "package-index", "apt", "refresh package lists"), nil
}

// Apply refreshes the index.
func (s *UpdateIndexStep) Apply(ctx engine.RunContext) error {
	result, err := s.runner.Run(ctx.Context(), "apt-get", "update")
	if err != nil {
		return engine.NewTransientError("apt-get update", "could not run apt-get", err)
	}
	if !result.Success() {
		if strings.Contains(result.Stderr, "Permission denied") || strings.Contains(result.Stderr, "sudo") {
			return engine.NewPermissionError("apt-get update", result.Stderr, "sudo apt-get update")
		}
		return engine.NewTransientError("apt-get update", result.Stderr, nil)
	}
	return nil
}

// InstallStep installs one package through the platform's manager.
type InstallStep struct {
	pkg         string
	id          engine.StepID
	deps        []engine.StepID
	probe       ports.CommandRunner
	install     ports.CommandRunner
	manager     manager
	privileged  bool
	remediation string
}

// NewInstallStep creates an install step for one package. probe runs
// unprivileged checks; install may escalate.
func NewInstallStep(pkgName string, m manager, deps []engine.StepID, probe, install ports.CommandRunner) *InstallStep {
	return &InstallStep{
		pkg:         pkgName,
		id:          engine.MustNewStepID("pkg:install:" + pkgName),
		deps:        deps,
		probe:       probe,
		install:     install,
		manager:     m,
		privileged:  m.privileged(),
		remediation: m.remediation(pkgName),
	}
}

// ID returns the step identifier.
func (s *InstallStep) ID() engine.StepID {
	return s.id
}

// DependsOn returns the step dependencies.
func (s *InstallStep) DependsOn() []engine.StepID {
	return s.deps
}

// Resource returns the package database tag.
func (s *InstallStep) Resource() engine.ResourceTag {
	return engine.ResourcePackageDB
}

// Retryable marks installs as retry candidates.
func (s *InstallStep) Retryable() bool {
	return true
}

// Privileged reports whether installation escalates privileges.
func (s *InstallStep) Privileged() bool {
	return s.privileged
}

// Remediation returns the manual install command.
func (s *InstallStep) Remediation() string {
	return s.remediation
}

// Check probes the package database for an existing installation.
func (s *InstallStep) Check(ctx engine.RunContext) (engine.StepStatus, error) {
	return s.manager.check(ctx, s.probe, s.pkg)
}

// Plan returns the diff for this step.
func (s *InstallStep) Plan(_ engine.RunContext) (engine.Diff, error) {
	return engine.NewDiff(engine.DiffTypeAdd, "package", s.pkg, "install via "+s.manager.name()), nil
}

// Apply installs the package.
func (s *InstallStep) Apply(ctx engine.RunContext) error {
	cmd, args := s.manager.installArgs(s.pkg)
	result, err := s.install.Run(ctx.Context(), cmd, args...)
	if err != nil {
		return engine.NewPreconditionError(s.manager.name()+" install "+s.pkg, fmt.Sprintf("could not run %s: %v", cmd, err))
	}
	if !result.Success() {
		if strings.Contains(result.Stderr, "Permission denied") || strings.Contains(result.Stderr, "are you root") || strings.Contains(result.Stderr, "a password is required") {
			return engine.NewPermissionError(s.manager.name()+" install "+s.pkg, strings.TrimSpace(result.Stderr), s.remediation)
		}
		return engine.NewTransientError(s.manager.name()+" install "+s.pkg, strings.TrimSpace(result.Stderr), nil)
	}
	return nil
}

// Ensure steps implement the step contracts.
var (
	_ engine.Step           = (*UpdateIndexStep)(nil)
	_ engine.RetryableStep  = (*UpdateIndexStep)(nil)
	_ engine.PrivilegedStep = (*UpdateIndexStep)(nil)
	_ engine.Step           = (*InstallStep)(nil)
	_ engine.RetryableStep  = (*InstallStep)(nil)
	_ engine.PrivilegedStep = (*InstallStep)(nil)
	_ engine.RemediableStep = (*InstallStep)(nil)
)
