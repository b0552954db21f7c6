package pkg

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/rig/internal/domain/engine"
	"github.com/felixgeelhaar/rig/internal/ports"
)

// manager abstracts the platform package manager so InstallStep stays
// identical across apt and brew.
type manager interface {
	name() string
	privileged() bool
	check(ctx engine.RunContext, runner ports.CommandRunner, pkgName string) (engine.StepStatus, error)
	installArgs(pkgName string) (cmd string, args []string)
	remediation(pkgName string) string
}

// aptManager drives dpkg/apt-get on Linux.
type aptManager struct{}

func (aptManager) name() string { return "apt" }

func (aptManager) privileged() bool { return true }

// check asks dpkg whether the package is in "install ok installed" state.
// A missing dpkg means the probe cannot answer.
func (aptManager) check(ctx engine.RunContext, runner ports.CommandRunner, pkgName string) (engine.StepStatus, error) {
	result, err := runner.Run(ctx.Context(), "dpkg-query", "-W", "-f=${Status}", pkgName)
	if err != nil {
		return engine.StatusUnknown, fmt.Errorf("dpkg-query unavailable: %w", err)
	}
	if result.Success() && strings.Contains(result.Stdout, "install ok installed") {
		return engine.StatusSatisfied, nil
	}
	// dpkg-query exits non-zero for unknown packages.
	return engine.StatusNeedsApply, nil
}

func (aptManager) installArgs(pkgName string) (string, []string) {
	return "apt-get", []string{"install", "-y", pkgName}
}

func (aptManager) remediation(pkgName string) string {
	return "sudo apt-get install -y " + pkgName
}

// brewManager drives Homebrew on macOS.
type brewManager struct{}

func (brewManager) name() string { return "brew" }

func (brewManager) privileged() bool { return false }

func (brewManager) check(ctx engine.RunContext, runner ports.CommandRunner, pkgName string) (engine.StepStatus, error) {
	result, err := runner.Run(ctx.Context(), "brew", "list", "--formula")
	if err != nil {
		return engine.StatusUnknown, fmt.Errorf("brew unavailable: %w", err)
	}
	if !result.Success() {
		return engine.StatusUnknown, fmt.Errorf("brew list failed: %s", result.Stderr)
	}
	for _, formula := range strings.Split(strings.TrimSpace(result.Stdout), "\n") {
		if formula == pkgName {
			return engine.StatusSatisfied, nil
		}
	}
	return engine.StatusNeedsApply, nil
}

func (brewManager) installArgs(pkgName string) (string, []string) {
	return "brew", []string{"install", pkgName}
}

func (brewManager) remediation(pkgName string) string {
	return "brew install " + pkgName
}
