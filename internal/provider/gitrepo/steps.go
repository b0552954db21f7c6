// Package gitrepo provides clone-or-update steps shared by providers that
// install git-hosted artifacts (Oh My Zsh, zsh plugins, Neovim starters).
package gitrepo

import (
	"fmt"
	"path/filepath"

	"github.com/felixgeelhaar/rig/internal/domain/engine"
	"github.com/felixgeelhaar/rig/internal/ports"
)

// CloneStep ensures a git repository exists at a destination path. The
// probe is purely local (presence of .git); only Apply touches the network.
type CloneStep struct {
	id      engine.StepID
	deps    []engine.StepID
	repoURL string
	dest    string
	update  bool
	runner  ports.CommandRunner
	fs      ports.FileSystem
}

// NewCloneStep creates a CloneStep with the given identity and dependencies.
func NewCloneStep(id engine.StepID, repoURL, dest string, deps []engine.StepID, runner ports.CommandRunner, fs ports.FileSystem) *CloneStep {
	return &CloneStep{
		id:      id,
		deps:    deps,
		repoURL: repoURL,
		dest:    dest,
		runner:  runner,
		fs:      fs,
	}
}

// WithUpdate makes an already-cloned repository fast-forward on apply
// instead of being left alone.
func (s *CloneStep) WithUpdate(update bool) *CloneStep {
	s.update = update
	return s
}

// ID returns the step identifier.
func (s *CloneStep) ID() engine.StepID {
	return s.id
}

// DependsOn returns the step dependencies.
func (s *CloneStep) DependsOn() []engine.StepID {
	return s.deps
}

// Resource returns the git network tag; clones are serialized.
func (s *CloneStep) Resource() engine.ResourceTag {
	return engine.ResourceGitNetwork
}

// Retryable marks clone failures as retry candidates.
func (s *CloneStep) Retryable() bool {
	return true
}

// Check probes for an existing clone without touching the network.
func (s *CloneStep) Check(_ engine.RunContext) (engine.StepStatus, error) {
	if s.fs.IsDir(filepath.Join(s.dest, ".git")) {
		if s.update {
			return engine.StatusNeedsApply, nil
		}
		return engine.StatusSatisfied, nil
	}
	return engine.StatusNeedsApply, nil
}

// Plan returns the diff for this step.
func (s *CloneStep) Plan(_ engine.RunContext) (engine.Diff, error) {
	if s.fs.IsDir(filepath.Join(s.dest, ".git")) {
		return engine.NewDiff(engine.DiffTypeModify, "git-repo", s.dest, "fast-forward from "+s.repoURL), nil
	}
	return engine.NewDiff(engine.DiffTypeAdd, "git-repo", s.dest, "clone from "+s.repoURL), nil
}

// Apply clones the repository, or fast-forwards it when updates are on.
func (s *CloneStep) Apply(ctx engine.RunContext) error {
	if s.fs.IsDir(filepath.Join(s.dest, ".git")) {
		if !s.update {
			return nil
		}
		result, err := s.runner.Run(ctx.Context(), "git", "-C", s.dest, "pull", "--ff-only")
		if err != nil {
			return engine.NewTransientError("git pull "+s.dest, "pull failed", err)
		}
		if !result.Success() {
			return engine.NewTransientError("git pull "+s.dest, result.Stderr, nil)
		}
		return nil
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.dest), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", s.dest, err)
	}

	result, err := s.runner.Run(ctx.Context(), "git", "clone", "--depth", "1", s.repoURL, s.dest)
	if err != nil {
		return engine.NewTransientError("git clone "+s.repoURL, "clone failed", err)
	}
	if !result.Success() {
		return engine.NewTransientError("git clone "+s.repoURL, result.Stderr, nil)
	}
	return nil
}

// Ensure CloneStep implements the step contracts.
var (
	_ engine.Step          = (*CloneStep)(nil)
	_ engine.RetryableStep = (*CloneStep)(nil)
)
