// Package shellcfg compiles the shell section into steps: the Oh My Zsh
// framework, custom plugin clones, .zshrc edits, and the login shell.
package shellcfg

import (
	"path/filepath"

	"github.com/felixgeelhaar/rig/internal/domain/engine"
	"github.com/felixgeelhaar/rig/internal/ports"
	"github.com/felixgeelhaar/rig/internal/provider/gitrepo"
	"github.com/felixgeelhaar/rig/internal/provider/pkg"
)

// ohMyZshRepo is the upstream framework repository.
const ohMyZshRepo = "https://github.com/ohmyzsh/ohmyzsh.git"

// Provider compiles the shell settings into executable steps.
type Provider struct {
	runner ports.CommandRunner
	sudo   ports.CommandRunner
	fs     ports.FileSystem
}

// NewProvider creates a shellcfg Provider.
func NewProvider(runner, sudo ports.CommandRunner, fs ports.FileSystem) *Provider {
	return &Provider{runner: runner, sudo: sudo, fs: fs}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "shell"
}

// Compile transforms shell settings into executable steps.
func (p *Provider) Compile(ctx engine.CompileContext) ([]engine.Step, error) {
	settings := ctx.Settings()

	gitDep := pkg.InstallStepID("git")
	zshDep := pkg.InstallStepID("zsh")

	framework := gitrepo.NewCloneStep(
		engine.MustNewStepID("shell:clone:oh-my-zsh"),
		ohMyZshRepo,
		settings.OhMyZshDir(),
		[]engine.StepID{gitDep, zshDep},
		p.runner,
		p.fs,
	)

	zshrcInit := NewZshrcInitStep(settings.ZshrcPath(), []engine.StepID{framework.ID()}, p.fs)

	steps := []engine.Step{framework, zshrcInit}

	pluginNames := make([]string, 0, len(settings.Shell.Plugins))
	pluginsDeps := []engine.StepID{zshrcInit.ID()}
	for _, plugin := range settings.Shell.Plugins {
		pluginNames = append(pluginNames, plugin.Name)
		if plugin.Repo == "" {
			// Builtin plugin, nothing to clone.
			continue
		}
		clone := gitrepo.NewCloneStep(
			engine.MustNewStepID("shell:clone:"+plugin.Name),
			plugin.Repo,
			filepath.Join(settings.CustomPluginDir, plugin.Name),
			[]engine.StepID{framework.ID()},
			p.runner,
			p.fs,
		)
		steps = append(steps, clone)
		pluginsDeps = append(pluginsDeps, clone.ID())
	}

	steps = append(steps,
		NewPluginsStep(settings.ZshrcPath(), pluginNames, pluginsDeps, p.fs),
		NewPathBlockStep(settings.ZshrcPath(), settings.Shell.PathDirs, []engine.StepID{zshrcInit.ID()}, p.fs),
		NewLoginShellStep(settings.Username, settings.Shell.Target, settings.BashrcPath(),
			[]engine.StepID{zshDep}, p.runner, p.sudo, p.fs),
	)

	return steps, nil
}

// Ensure Provider implements engine.Provider.
var _ engine.Provider = (*Provider)(nil)
