// Package pkg compiles the package list into platform-appropriate install
// steps: apt on Linux (with privilege escalation and an index refresh),
// Homebrew on macOS.
package pkg

import (
	"github.com/felixgeelhaar/rig/internal/domain/config"
	"github.com/felixgeelhaar/rig/internal/domain/engine"
	"github.com/felixgeelhaar/rig/internal/ports"
)

// Provider compiles the packages section into executable steps.
type Provider struct {
	runner ports.CommandRunner
	sudo   ports.CommandRunner
}

// NewProvider creates a pkg Provider. runner executes unprivileged
// commands; sudo escalates.
func NewProvider(runner, sudo ports.CommandRunner) *Provider {
	return &Provider{runner: runner, sudo: sudo}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "pkg"
}

// Compile transforms the package list into install steps.
func (p *Provider) Compile(ctx engine.CompileContext) ([]engine.Step, error) {
	settings := ctx.Settings()
	if len(settings.Packages) == 0 {
		return nil, nil
	}

	steps := make([]engine.Step, 0, len(settings.Packages)+1)

	var (
		m       manager
		install ports.CommandRunner
		deps    []engine.StepID
	)
	if settings.Platform == config.PlatformDarwin {
		m = brewManager{}
		install = p.runner
	} else {
		m = aptManager{}
		install = p.sudo
		update := NewUpdateIndexStep(p.sudo)
		steps = append(steps, update)
		deps = []engine.StepID{update.ID()}
	}

	for _, pkgName := range settings.Packages {
		steps = append(steps, NewInstallStep(pkgName, m, deps, p.runner, install))
	}

	return steps, nil
}

// InstallStepID returns the id of the install step for a package, for
// cross-provider dependencies.
func InstallStepID(pkgName string) engine.StepID {
	return engine.MustNewStepID("pkg:install:" + pkgName)
}

// Ensure Provider implements engine.Provider.
var _ engine.Provider = (*Provider)(nil)
