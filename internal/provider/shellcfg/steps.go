package shellcfg

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/rig/internal/domain/engine"
	"github.com/felixgeelhaar/rig/internal/ports"
)

// zshrcTemplate seeds a fresh .zshrc. Only written when the file does not
// exist; existing files are edited through managed blocks and the plugins
// line instead.
const zshrcTemplate = `export ZSH="$HOME/.oh-my-zsh"
ZSH_THEME="robbyrussell"
plugins=(git)
source $ZSH/oh-my-zsh.sh
`

// ZshrcInitStep creates a minimal .zshrc when none exists.
type ZshrcInitStep struct {
	id    engine.StepID
	deps  []engine.StepID
	zshrc string
	fs    ports.FileSystem
}

// NewZshrcInitStep creates the init step.
func NewZshrcInitStep(zshrc string, deps []engine.StepID, fs ports.FileSystem) *ZshrcInitStep {
	return &ZshrcInitStep{
		id:    engine.MustNewStepID("shell:init:zshrc"),
		deps:  deps,
		zshrc: zshrc,
		fs:    fs,
	}
}

// ID returns the step identifier.
func (s *ZshrcInitStep) ID() engine.StepID { return s.id }

// DependsOn returns the step dependencies.
func (s *ZshrcInitStep) DependsOn() []engine.StepID { return s.deps }

// Resource returns the file edit tag.
func (s *ZshrcInitStep) Resource() engine.ResourceTag { return engine.ResourceFileEdit }

// Check probes for an existing .zshrc.
func (s *ZshrcInitStep) Check(_ engine.RunContext) (engine.StepStatus, error) {
	if s.fs.Exists(s.zshrc) {
		return engine.StatusSatisfied, nil
	}
	return engine.StatusNeedsApply, nil
}

// Plan returns the diff for this step.
func (s *ZshrcInitStep) Plan(_ engine.RunContext) (engine.Diff, error) {
	return engine.NewDiff(engine.DiffTypeAdd, "file", s.zshrc, "create starter zshrc"), nil
}

// Apply writes the starter file.
func (s *ZshrcInitStep) Apply(_ engine.RunContext) error {
	if s.fs.Exists(s.zshrc) {
		return nil
	}
	return s.fs.WriteFile(s.zshrc, []byte(zshrcTemplate), 0o644)
}

// PluginsStep enables the configured Oh My Zsh plugins in .zshrc. Entries
// the user already enabled are kept in their order; missing names are
// appended, never duplicated.
type PluginsStep struct {
	id      engine.StepID
	deps    []engine.StepID
	zshrc   string
	plugins []string
	fs      ports.FileSystem
}

// NewPluginsStep creates the plugins-line step.
func NewPluginsStep(zshrc string, plugins []string, deps []engine.StepID, fs ports.FileSystem) *PluginsStep {
	return &PluginsStep{
		id:      engine.MustNewStepID("shell:enable:plugins"),
		deps:    deps,
		zshrc:   zshrc,
		plugins: plugins,
		fs:      fs,
	}
}

// ID returns the step identifier.
func (s *PluginsStep) ID() engine.StepID { return s.id }

// DependsOn returns the step dependencies.
func (s *PluginsStep) DependsOn() []engine.StepID { return s.deps }

// Resource returns the file edit tag.
func (s *PluginsStep) Resource() engine.ResourceTag { return engine.ResourceFileEdit }

// Check probes the plugins line for the desired names.
func (s *PluginsStep) Check(_ engine.RunContext) (engine.StepStatus, error) {
	data, err := s.fs.ReadFile(s.zshrc)
	if err != nil {
		return engine.StatusNeedsApply, nil
	}
	existing, ok := parsePluginsLine(string(data))
	if !ok {
		return engine.StatusNeedsApply, nil
	}
	if _, changed := mergePlugins(existing, s.plugins); changed {
		return engine.StatusNeedsApply, nil
	}
	return engine.StatusSatisfied, nil
}

// Plan returns the diff for this step.
func (s *PluginsStep) Plan(_ engine.RunContext) (engine.Diff, error) {
	return engine.NewDiff(engine.DiffTypeModify, "file", s.zshrc,
		"enable plugins "+strings.Join(s.plugins, ", ")), nil
}

// Apply rewrites the plugins line, backing up the file first.
func (s *PluginsStep) Apply(_ engine.RunContext) error {
	var content string
	if data, err := s.fs.ReadFile(s.zshrc); err == nil {
		content = string(data)
	}

	existing, _ := parsePluginsLine(content)
	merged, changed := mergePlugins(existing, s.plugins)
	if !changed && len(existing) > 0 {
		return nil
	}

	if _, err := s.fs.Backup(s.zshrc); err != nil {
		return fmt.Errorf("backup %s: %w", s.zshrc, err)
	}
	return s.fs.WriteFile(s.zshrc, []byte(replacePluginsLine(content, merged)), 0o644)
}

// PathBlockStep maintains the managed PATH block in .zshrc.
type PathBlockStep struct {
	id    engine.StepID
	deps  []engine.StepID
	zshrc string
	dirs  []string
	fs    ports.FileSystem
}

// NewPathBlockStep creates the PATH block step.
func NewPathBlockStep(zshrc string, dirs []string, deps []engine.StepID, fs ports.FileSystem) *PathBlockStep {
	return &PathBlockStep{
		id:    engine.MustNewStepID("shell:edit:path"),
		deps:  deps,
		zshrc: zshrc,
		dirs:  dirs,
		fs:    fs,
	}
}

// ID returns the step identifier.
func (s *PathBlockStep) ID() engine.StepID { return s.id }

// DependsOn returns the step dependencies.
func (s *PathBlockStep) DependsOn() []engine.StepID { return s.deps }

// Resource returns the file edit tag.
func (s *PathBlockStep) Resource() engine.ResourceTag { return engine.ResourceFileEdit }

// body renders the block contents.
func (s *PathBlockStep) body() string {
	lines := make([]string, 0, len(s.dirs))
	for _, dir := range s.dirs {
		lines = append(lines, fmt.Sprintf("export PATH=%q:$PATH", dir))
	}
	return strings.Join(lines, "\n")
}

// Check probes for the exact managed block.
func (s *PathBlockStep) Check(_ engine.RunContext) (engine.StepStatus, error) {
	data, err := s.fs.ReadFile(s.zshrc)
	if err != nil {
		return engine.StatusNeedsApply, nil
	}
	if HasBlock(string(data), "path", s.body()) {
		return engine.StatusSatisfied, nil
	}
	return engine.StatusNeedsApply, nil
}

// Plan returns the diff for this step.
func (s *PathBlockStep) Plan(_ engine.RunContext) (engine.Diff, error) {
	return engine.NewDiff(engine.DiffTypeModify, "file", s.zshrc,
		"manage PATH block ("+strings.Join(s.dirs, ", ")+")"), nil
}

// Apply upserts the block, backing up the file first.
func (s *PathBlockStep) Apply(_ engine.RunContext) error {
	var content string
	if data, err := s.fs.ReadFile(s.zshrc); err == nil {
		content = string(data)
	}

	updated, changed := UpsertBlock(content, "path", s.body())
	if !changed {
		return nil
	}

	if _, err := s.fs.Backup(s.zshrc); err != nil {
		return fmt.Errorf("backup %s: %w", s.zshrc, err)
	}
	return s.fs.WriteFile(s.zshrc, []byte(updated), 0o644)
}

// Ensure the file-edit steps implement the step contract.
var (
	_ engine.Step = (*ZshrcInitStep)(nil)
	_ engine.Step = (*PluginsStep)(nil)
	_ engine.Step = (*PathBlockStep)(nil)
)
