package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rig/internal/domain/config"
	"github.com/felixgeelhaar/rig/internal/domain/engine"
)

// Exit codes. Configuration problems (cycles, unknown step ids, bad config
// files) are distinguished from runtime step failures.
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

var (
	// Global flags
	verbose bool
	yesFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "rig",
	Short: "An idempotent workstation provisioner",
	Long: `Rig provisions a developer workstation declaratively: Zsh, Oh My Zsh
with plugins, Neovim, and the NvChad starter configuration.

Every step probes the current machine state first and only acts when the
desired state is not already met, so re-running rig is always safe.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "auto-confirm all prompts")
}

// exitError carries an explicit process exit code through cobra.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

// execute runs the root command and maps errors to exit codes.
func execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}

	printError(err)

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if isConfigError(err) {
		return exitConfig
	}
	return exitFailed
}

// isConfigError reports whether err should exit with the config code.
func isConfigError(err error) bool {
	var userErr *config.UserError
	return engine.IsConfig(err) || errors.As(err, &userErr)
}

// formatError returns a user-friendly error message. Verbose mode adds the
// underlying technical error.
func formatError(err error) string {
	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr.
func printError(err error) {
	if err == nil {
		return
	}
	msg := formatError(err)
	if msg == "" {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
}
