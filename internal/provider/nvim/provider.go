// Package nvim compiles the Neovim settings into steps: the release binary
// and the NvChad starter configuration.
package nvim

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/rig/internal/domain/engine"
	"github.com/felixgeelhaar/rig/internal/ports"
	"github.com/felixgeelhaar/rig/internal/provider/gitrepo"
	"github.com/felixgeelhaar/rig/internal/provider/pkg"
)

// Provider compiles the nvim settings into executable steps.
type Provider struct {
	runner    ports.CommandRunner
	fetcher   ports.ReleaseFetcher
	extractor ports.Extractor
	fs        ports.FileSystem
}

// NewProvider creates an nvim Provider.
func NewProvider(runner ports.CommandRunner, fetcher ports.ReleaseFetcher, extractor ports.Extractor, fs ports.FileSystem) *Provider {
	return &Provider{
		runner:    runner,
		fetcher:   fetcher,
		extractor: extractor,
		fs:        fs,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "nvim"
}

// Compile transforms nvim settings into executable steps.
func (p *Provider) Compile(ctx engine.CompileContext) ([]engine.Step, error) {
	settings := ctx.Settings()

	asset, err := assetName(settings.Platform, settings.Arch)
	if err != nil {
		return nil, err
	}

	binary := NewBinaryStep(
		settings.Nvim.MinVersion,
		settings.Nvim.Release,
		asset,
		settings.InstallDir,
		settings.BinDir,
		p.runner,
		p.fetcher,
		p.extractor,
		p.fs,
	)

	steps := []engine.Step{binary}

	if settings.Nvim.Starter != "" {
		starter := gitrepo.NewCloneStep(
			engine.MustNewStepID("nvim:clone:starter"),
			starterURL(settings.Nvim.Starter),
			settings.NvimConfigDir(),
			[]engine.StepID{binary.ID(), pkg.InstallStepID("git")},
			p.runner,
			p.fs,
		)
		steps = append(steps, starter)
	}

	return steps, nil
}

// starterURL expands an owner/name starter value into a clone URL.
func starterURL(starter string) string {
	if strings.Contains(starter, "://") {
		return starter
	}
	return fmt.Sprintf("https://github.com/%s.git", starter)
}

// Ensure Provider implements engine.Provider.
var _ engine.Provider = (*Provider)(nil)
