package command

import (
	"context"

	"github.com/felixgeelhaar/rig/internal/ports"
)

// SudoRunner wraps another runner and prefixes every command with
// non-interactive sudo. Steps that need escalation take a SudoRunner
// instead of sprinkling "sudo" through their argument lists.
type SudoRunner struct {
	inner ports.CommandRunner
}

// NewSudoRunner creates a SudoRunner delegating to inner.
func NewSudoRunner(inner ports.CommandRunner) *SudoRunner {
	return &SudoRunner{inner: inner}
}

// Run executes "sudo -n command args...". The -n flag makes sudo fail fast
// instead of prompting; a cached credential or NOPASSWD rule is required.
func (r *SudoRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	sudoArgs := make([]string, 0, len(args)+2)
	sudoArgs = append(sudoArgs, "-n", command)
	sudoArgs = append(sudoArgs, args...)
	return r.inner.Run(ctx, "sudo", sudoArgs...)
}

// Ensure SudoRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*SudoRunner)(nil)
