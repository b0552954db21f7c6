package shellcfg

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/rig/internal/domain/engine"
	"github.com/felixgeelhaar/rig/internal/ports"
)

// bashrcExecBody is the last-resort fallback: when the login shell cannot
// be changed, bash execs into zsh for interactive sessions.
const bashrcExecBody = `if [ -t 1 ] && [ -z "$ZSH_VERSION" ] && command -v %s >/dev/null 2>&1; then
  exec %s
fi`

// LoginShellStep makes the target shell the user's login shell. It walks an
// ordered fallback chain: plain chsh, sudo chsh, and finally an exec stanza
// in ~/.bashrc. The result records which level succeeded.
type LoginShellStep struct {
	id       engine.StepID
	deps     []engine.StepID
	username string
	target   string
	bashrc   string
	runner   ports.CommandRunner
	sudo     ports.CommandRunner
	fs       ports.FileSystem

	fallbackUsed string
}

// NewLoginShellStep creates the login shell step.
func NewLoginShellStep(username, target, bashrc string, deps []engine.StepID, runner, sudo ports.CommandRunner, fs ports.FileSystem) *LoginShellStep {
	return &LoginShellStep{
		id:       engine.MustNewStepID("shell:chsh:login-shell"),
		deps:     deps,
		username: username,
		target:   target,
		bashrc:   bashrc,
		runner:   runner,
		sudo:     sudo,
		fs:       fs,
	}
}

// ID returns the step identifier.
func (s *LoginShellStep) ID() engine.StepID { return s.id }

// DependsOn returns the step dependencies.
func (s *LoginShellStep) DependsOn() []engine.StepID { return s.deps }

// Resource returns the login shell registry tag.
func (s *LoginShellStep) Resource() engine.ResourceTag { return engine.ResourceShellDB }

// Privileged reports that this step may escalate via sudo.
func (s *LoginShellStep) Privileged() bool { return true }

// Remediation returns the manual command for when every fallback failed.
func (s *LoginShellStep) Remediation() string {
	return fmt.Sprintf("sudo chsh -s %s %s", s.target, s.username)
}

// Detail reports which fallback level changed the shell.
func (s *LoginShellStep) Detail() string { return s.fallbackUsed }

// Check reads the login shell from the account database. An unreadable
// database yields unknown, not failure.
func (s *LoginShellStep) Check(ctx engine.RunContext) (engine.StepStatus, error) {
	result, err := s.runner.Run(ctx.Context(), "getent", "passwd", s.username)
	if err != nil {
		return engine.StatusUnknown, fmt.Errorf("getent unavailable: %w", err)
	}
	if !result.Success() {
		return engine.StatusUnknown, fmt.Errorf("getent passwd %s failed: %s", s.username, result.Stderr)
	}

	// getent passwd output: name:x:uid:gid:gecos:home:shell
	fields := strings.Split(strings.TrimSpace(result.Stdout), ":")
	if len(fields) < 7 {
		return engine.StatusUnknown, fmt.Errorf("unexpected passwd entry for %s", s.username)
	}
	if fields[6] == s.target {
		return engine.StatusSatisfied, nil
	}

	// The bashrc fallback also satisfies the goal: interactive sessions
	// land in the target shell even though the registry says otherwise.
	if data, err := s.fs.ReadFile(s.bashrc); err == nil {
		if HasBlock(string(data), "login-shell", s.execBody()) {
			return engine.StatusSatisfied, nil
		}
	}

	return engine.StatusNeedsApply, nil
}

// Plan returns the diff for this step.
func (s *LoginShellStep) Plan(_ engine.RunContext) (engine.Diff, error) {
	return engine.NewDiff(engine.DiffTypeModify, "login-shell", s.username, "set to "+s.target), nil
}

// Apply walks the fallback chain until one level sticks.
func (s *LoginShellStep) Apply(ctx engine.RunContext) error {
	// Level 1: unprivileged chsh. Succeeds when the system allows
	// self-service shell changes.
	if result, err := s.runner.Run(ctx.Context(), "chsh", "-s", s.target); err == nil && result.Success() {
		s.fallbackUsed = "chsh"
		return nil
	}

	// Level 2: sudo chsh.
	if result, err := s.sudo.Run(ctx.Context(), "chsh", "-s", s.target, s.username); err == nil && result.Success() {
		s.fallbackUsed = "sudo chsh"
		return nil
	}

	// Level 3: exec stanza in ~/.bashrc.
	var content string
	if data, err := s.fs.ReadFile(s.bashrc); err == nil {
		content = string(data)
	}
	updated, changed := UpsertBlock(content, "login-shell", s.execBody())
	if changed {
		if _, err := s.fs.Backup(s.bashrc); err != nil {
			return engine.NewPermissionError("chsh -s "+s.target,
				fmt.Sprintf("all fallbacks failed: backup %s: %v", s.bashrc, err),
				s.Remediation())
		}
		if err := s.fs.WriteFile(s.bashrc, []byte(updated), 0o644); err != nil {
			return engine.NewPermissionError("chsh -s "+s.target,
				fmt.Sprintf("all fallbacks failed: write %s: %v", s.bashrc, err),
				s.Remediation())
		}
	}
	s.fallbackUsed = "bashrc exec fallback"
	return nil
}

// execBody renders the bashrc fallback block body.
func (s *LoginShellStep) execBody() string {
	return fmt.Sprintf(bashrcExecBody, s.target, s.target)
}

// Ensure LoginShellStep implements the step contracts.
var (
	_ engine.Step           = (*LoginShellStep)(nil)
	_ engine.PrivilegedStep = (*LoginShellStep)(nil)
	_ engine.RemediableStep = (*LoginShellStep)(nil)
	_ engine.DetailedStep   = (*LoginShellStep)(nil)
)
