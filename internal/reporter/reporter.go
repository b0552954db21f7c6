// Package reporter renders plans and run reports for the terminal.
package reporter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/felixgeelhaar/rig/internal/domain/engine"
	"github.com/felixgeelhaar/rig/internal/domain/execution"
)

// Styles holds the lipgloss styles for run output.
type Styles struct {
	Satisfied lipgloss.Style
	Applied   lipgloss.Style
	Failed    lipgloss.Style
	Skipped   lipgloss.Style
	Pending   lipgloss.Style
	Header    lipgloss.Style
	Detail    lipgloss.Style
	Remedy    lipgloss.Style
}

// DefaultStyles returns the default terminal styles.
func DefaultStyles() Styles {
	return Styles{
		Satisfied: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Applied:   lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		Failed:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Skipped:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Pending:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Header:    lipgloss.NewStyle().Bold(true),
		Detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Remedy:    lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	}
}

// Reporter streams per-step progress during a run and renders the final
// summary. It implements execution.Observer.
type Reporter struct {
	out     io.Writer
	styles  Styles
	verbose bool
}

// Option configures the Reporter.
type Option func(*Reporter)

// WithWriter sets the output writer (default: os.Stdout).
func WithWriter(w io.Writer) Option {
	return func(r *Reporter) {
		r.out = w
	}
}

// WithVerbose enables lifecycle transition output.
func WithVerbose(verbose bool) Option {
	return func(r *Reporter) {
		r.verbose = verbose
	}
}

// New creates a Reporter.
func New(opts ...Option) *Reporter {
	r := &Reporter{
		out:    os.Stdout,
		styles: DefaultStyles(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StepTransition prints lifecycle transitions in verbose mode.
func (r *Reporter) StepTransition(id engine.StepID, from, to string) {
	if !r.verbose {
		return
	}
	line := fmt.Sprintf("    %s: %s -> %s", id.String(), from, to)
	fmt.Fprintln(r.out, r.styles.Pending.Render(line))
}

// StepResult prints one line per finished step.
func (r *Reporter) StepResult(result execution.StepResult) {
	tag, style := r.outcome(result.Status())

	line := fmt.Sprintf("  %s  %s", style.Render(fmt.Sprintf("%-9s", tag)), result.StepID().String())
	if result.Attempts() > 1 {
		line += r.styles.Detail.Render(fmt.Sprintf(" (attempt %d)", result.Attempts()))
	}
	if result.Detail() != "" {
		line += r.styles.Detail.Render(" — " + result.Detail())
	}
	fmt.Fprintln(r.out, line)

	if result.Status() == engine.StatusFailed {
		if result.Error() != nil {
			fmt.Fprintln(r.out, r.styles.Failed.Render("            "+result.Error().Error()))
		}
		if result.Remediation() != "" {
			fmt.Fprintln(r.out, r.styles.Remedy.Render("            run manually: "+result.Remediation()))
		}
	}
}

// PrintPlan renders the plan: one line per step plus a footer summary.
func (r *Reporter) PrintPlan(plan *execution.Plan) {
	fmt.Fprintln(r.out, r.styles.Header.Render("Plan:"))

	for _, entry := range plan.Entries() {
		var tag string
		var style lipgloss.Style
		switch entry.Status() {
		case engine.StatusSatisfied:
			tag, style = "ok", r.styles.Satisfied
		case engine.StatusUnknown:
			tag, style = "unknown", r.styles.Skipped
		default:
			tag, style = "apply", r.styles.Applied
		}

		line := fmt.Sprintf("  %s  %s", style.Render(fmt.Sprintf("%-7s", tag)), entry.Step().ID().String())
		if !entry.Diff().IsEmpty() {
			line += r.styles.Detail.Render("  " + entry.Diff().Summary())
		}
		fmt.Fprintln(r.out, line)
	}

	s := plan.Summary()
	fmt.Fprintf(r.out, "\n%d steps: %d satisfied, %d to apply, %d unknown\n",
		s.Total, s.Satisfied, s.NeedsApply, s.Unknown)

	if privileged := plan.PrivilegedSteps(); len(privileged) > 0 {
		fmt.Fprintln(r.out, r.styles.Skipped.Render("\nSteps that may use sudo:"))
		for _, id := range privileged {
			fmt.Fprintln(r.out, "  "+id)
		}
	}
}

// PrintReport renders the run summary table and any remediation advice.
func (r *Reporter) PrintReport(report *execution.RunReport) {
	fmt.Fprintln(r.out)

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"STEP", "OUTCOME", "DURATION", "DETAIL"})

	for _, result := range report.Results() {
		tag, style := r.outcome(result.Status())
		detail := result.Detail()
		if result.Status() == engine.StatusFailed && result.Error() != nil {
			detail = result.Error().Error()
		}
		t.AppendRow(table.Row{
			result.StepID().String(),
			style.Render(tag),
			formatDuration(result.Duration()),
			detail,
		})
	}
	t.Render()

	s := report.Summary()
	if report.DryRun() {
		fmt.Fprintf(r.out, "\nDry run %s: %d satisfied, %d would apply, %d skipped\n",
			report.ID(), s.Satisfied, s.WouldApply, s.Skipped)
	} else {
		fmt.Fprintf(r.out, "\nRun %s finished in %s: %d satisfied, %d applied, %d failed, %d skipped\n",
			report.ID(), formatDuration(report.Duration()), s.Satisfied, s.Applied, s.Failed, s.Skipped)
	}

	for _, failed := range report.Failed() {
		if failed.Remediation() == "" {
			continue
		}
		fmt.Fprintln(r.out, r.styles.Remedy.Render(
			fmt.Sprintf("%s: run manually: %s", failed.StepID().String(), failed.Remediation())))
	}
}

// outcome maps a terminal status to its display tag and style.
func (r *Reporter) outcome(status engine.StepStatus) (string, lipgloss.Style) {
	switch status {
	case engine.StatusSatisfied:
		return "satisfied", r.styles.Satisfied
	case engine.StatusApplied:
		return "applied", r.styles.Applied
	case engine.StatusFailed:
		return "failed", r.styles.Failed
	case engine.StatusSkipped:
		return "skipped", r.styles.Skipped
	case engine.StatusNeedsApply, engine.StatusUnknown:
		return "would apply", r.styles.Applied
	}
	return string(status), r.styles.Pending
}

// formatDuration trims durations to a readable precision.
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

// Ensure Reporter implements the execution observer.
var _ execution.Observer = (*Reporter)(nil)
