package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rig/internal/app"
	"github.com/felixgeelhaar/rig/internal/domain/config"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Probe the machine and apply what is missing",
	Long: `Apply probes every step, then executes the ones whose desired state is
not already met, in dependency order.

Use --dry-run to see what would happen without making changes. Use --only
and --skip to run a subset of steps by id.`,
	RunE: runApply,
}

var (
	applyConfigPath string
	applyDryRun     bool
	applyOnly       []string
	applySkip       []string
)

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVarP(&applyConfigPath, "config", "c", "", "path to rig.yaml or rig.toml")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "show what would be done without making changes")
	applyCmd.Flags().StringSliceVar(&applyOnly, "only", nil, "run only these step ids (plus their dependencies)")
	applyCmd.Flags().StringSliceVar(&applySkip, "skip", nil, "skip these step ids")
}

// loadSettings resolves settings from the config flag or defaults.
func loadSettings(path string) (*config.Settings, error) {
	if path != "" {
		return config.Load(path)
	}
	for _, candidate := range []string{"rig.yaml", "rig.yml", "rig.toml"} {
		if _, err := os.Stat(candidate); err == nil {
			return config.Load(candidate)
		}
	}
	return config.Default()
}

func runApply(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings(applyConfigPath)
	if err != nil {
		return err
	}

	rig := app.New(settings, app.WithVerbose(verbose))

	plan, err := rig.Plan(ctx, applyOnly, applySkip)
	if err != nil {
		return err
	}

	rig.PrintPlan(plan)

	if !plan.HasChanges() {
		return nil
	}

	if !applyDryRun && !confirmPrivileged(plan.PrivilegedSteps()) {
		fmt.Println("Aborted.")
		return nil
	}

	fmt.Println()
	report := rig.Apply(ctx, plan, applyDryRun)
	rig.PrintReport(report)

	if report.ExitCode() != exitOK {
		failed := make([]string, 0, len(report.Failed()))
		for _, result := range report.Failed() {
			failed = append(failed, result.StepID().String())
		}
		return &exitError{
			code: exitFailed,
			msg:  fmt.Sprintf("%d step(s) failed: %s", len(failed), strings.Join(failed, ", ")),
		}
	}
	return nil
}
