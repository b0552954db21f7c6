package gitrepo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/rig/internal/domain/engine"
	"github.com/felixgeelhaar/rig/internal/ports"
	"github.com/felixgeelhaar/rig/internal/testutil/mocks"
)

const testRepo = "https://github.com/ohmyzsh/ohmyzsh.git"

func runCtx() engine.RunContext {
	return engine.NewRunContext(context.Background())
}

func newStep(runner ports.CommandRunner, fs ports.FileSystem) *CloneStep {
	return NewCloneStep(engine.MustNewStepID("shell:clone:oh-my-zsh"), testRepo, "/home/dev/.oh-my-zsh", nil, runner, fs)
}

func TestCloneStep_SatisfiedWhenCloneExists(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddDir("/home/dev/.oh-my-zsh/.git")

	step := newStep(mocks.NewCommandRunner(), fs)

	status, err := step.Check(runCtx())
	require.NoError(t, err)
	assert.Equal(t, engine.StatusSatisfied, status)
}

func TestCloneStep_NeedsApplyWhenMissing(t *testing.T) {
	step := newStep(mocks.NewCommandRunner(), mocks.NewFileSystem())

	status, err := step.Check(runCtx())
	require.NoError(t, err)
	assert.Equal(t, engine.StatusNeedsApply, status)
}

func TestCloneStep_ApplyRunsShallowClone(t *testing.T) {
	runner := mocks.NewCommandRunner()
	runner.AddResult("git", []string{"clone", "--depth", "1", testRepo, "/home/dev/.oh-my-zsh"},
		ports.CommandResult{ExitCode: 0})

	step := newStep(runner, mocks.NewFileSystem())

	require.NoError(t, step.Apply(runCtx()))

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"clone", "--depth", "1", testRepo, "/home/dev/.oh-my-zsh"}, calls[0].Args)
}

func TestCloneStep_CloneFailureIsTransient(t *testing.T) {
	runner := mocks.NewCommandRunner()
	runner.AddResult("git", []string{"clone", "--depth", "1", testRepo, "/home/dev/.oh-my-zsh"},
		ports.CommandResult{ExitCode: 128, Stderr: "fatal: unable to access: Could not resolve host"})

	step := newStep(runner, mocks.NewFileSystem())

	err := step.Apply(runCtx())
	require.Error(t, err)
	assert.True(t, engine.IsTransient(err))
}

func TestCloneStep_MissingGitIsTransient(t *testing.T) {
	runner := mocks.NewCommandRunner()
	runner.AddError("git", []string{"clone", "--depth", "1", testRepo, "/home/dev/.oh-my-zsh"},
		errors.New("executable not found"))

	step := newStep(runner, mocks.NewFileSystem())

	err := step.Apply(runCtx())
	require.Error(t, err)
	assert.True(t, engine.IsTransient(err))
}

func TestCloneStep_ApplyIsNoOpWhenCloned(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddDir("/home/dev/.oh-my-zsh/.git")

	runner := mocks.NewCommandRunner()
	step := newStep(runner, fs)

	require.NoError(t, step.Apply(runCtx()))
	assert.Empty(t, runner.Calls())
}

func TestCloneStep_WithUpdateFastForwards(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddDir("/home/dev/.oh-my-zsh/.git")

	runner := mocks.NewCommandRunner()
	runner.AddResult("git", []string{"-C", "/home/dev/.oh-my-zsh", "pull", "--ff-only"},
		ports.CommandResult{ExitCode: 0})

	step := newStep(runner, fs).WithUpdate(true)

	status, err := step.Check(runCtx())
	require.NoError(t, err)
	assert.Equal(t, engine.StatusNeedsApply, status, "update mode always pulls")

	require.NoError(t, step.Apply(runCtx()))
	assert.Equal(t, 1, runner.CallCount("git"))
}
