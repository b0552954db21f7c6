// Package app wires adapters, providers, and the engine into the rig
// application.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/rig/internal/adapters/archive"
	"github.com/felixgeelhaar/rig/internal/adapters/command"
	"github.com/felixgeelhaar/rig/internal/adapters/filesystem"
	"github.com/felixgeelhaar/rig/internal/adapters/github"
	"github.com/felixgeelhaar/rig/internal/adapters/logging"
	"github.com/felixgeelhaar/rig/internal/domain/config"
	"github.com/felixgeelhaar/rig/internal/domain/engine"
	"github.com/felixgeelhaar/rig/internal/domain/execution"
	"github.com/felixgeelhaar/rig/internal/ports"
	"github.com/felixgeelhaar/rig/internal/provider/nvim"
	"github.com/felixgeelhaar/rig/internal/provider/pkg"
	"github.com/felixgeelhaar/rig/internal/provider/shellcfg"
	"github.com/felixgeelhaar/rig/internal/reporter"
)

// Rig is the application orchestrator: it compiles settings into a step
// graph, plans, and executes.
type Rig struct {
	settings *config.Settings
	compiler *engine.Compiler
	planner  *execution.Planner
	logger   ports.Logger
	reporter *reporter.Reporter
	out      io.Writer
	verbose  bool
}

// Option configures the application.
type Option func(*Rig)

// WithWriter sets the output writer (default: os.Stdout).
func WithWriter(w io.Writer) Option {
	return func(r *Rig) {
		r.out = w
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger ports.Logger) Option {
	return func(r *Rig) {
		r.logger = logger
	}
}

// WithVerbose enables lifecycle transition output and debug logging.
func WithVerbose(verbose bool) Option {
	return func(r *Rig) {
		r.verbose = verbose
	}
}

// New creates the application with real adapters.
func New(settings *config.Settings, opts ...Option) *Rig {
	r := &Rig{
		settings: settings,
		planner:  execution.NewPlanner(),
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		level := ports.LevelInfo
		if r.verbose {
			level = ports.LevelDebug
		}
		r.logger = logging.NewConsoleLogger(logging.WithLevel(level))
	}
	r.reporter = reporter.New(reporter.WithWriter(r.out), reporter.WithVerbose(r.verbose))

	runner := command.NewExecRunner()
	sudo := command.NewSudoRunner(runner)
	fs := filesystem.NewOSFileSystem()
	releases := github.NewReleasesClient()
	extractor := archive.NewTarGzExtractor()

	comp := engine.NewCompiler()
	comp.RegisterProvider(pkg.NewProvider(runner, sudo))
	comp.RegisterProvider(shellcfg.NewProvider(runner, sudo, fs))
	comp.RegisterProvider(nvim.NewProvider(runner, releases, extractor, fs))
	r.compiler = comp

	return r
}

// Settings returns the resolved run settings.
func (r *Rig) Settings() *config.Settings {
	return r.settings
}

// BuildGraph compiles providers into a validated step graph, restricted by
// the --only and --skip selections.
func (r *Rig) BuildGraph(only, skip []string) (*engine.StepGraph, error) {
	graph, err := r.compiler.Compile(engine.NewCompileContext(r.settings))
	if err != nil {
		return nil, err
	}

	if len(only) > 0 {
		graph, err = graph.Restrict(only)
		if err != nil {
			return nil, engine.NewConfigError("invalid --only selection", err)
		}
	}
	if len(skip) > 0 {
		graph, err = graph.Without(skip)
		if err != nil {
			return nil, engine.NewConfigError("invalid --skip selection", err)
		}
	}

	return graph, nil
}

// Plan probes every step in the graph and returns the ordered plan.
func (r *Rig) Plan(ctx context.Context, only, skip []string) (*execution.Plan, error) {
	graph, err := r.BuildGraph(only, skip)
	if err != nil {
		return nil, err
	}

	plan, err := r.planner.Plan(ctx, graph)
	if err != nil {
		return nil, fmt.Errorf("planning failed: %w", err)
	}
	return plan, nil
}

// Apply executes the plan and returns the run report.
func (r *Rig) Apply(ctx context.Context, plan *execution.Plan, dryRun bool) *execution.RunReport {
	executor := execution.NewExecutor(r.logger).
		WithDryRun(dryRun).
		WithObserver(r.reporter)
	return executor.Execute(ctx, plan)
}

// PrintPlan renders the plan to the output writer.
func (r *Rig) PrintPlan(plan *execution.Plan) {
	r.reporter.PrintPlan(plan)
}

// PrintReport renders the run report to the output writer.
func (r *Rig) PrintReport(report *execution.RunReport) {
	r.reporter.PrintReport(report)
}
