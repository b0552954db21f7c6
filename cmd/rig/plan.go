package main

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rig/internal/app"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Probe the machine and show what apply would change",
	Long: `Plan probes every step without making any changes and prints what
apply would do. Probes are side-effect-free.`,
	RunE: runPlan,
}

var (
	planConfigPath string
	planOnly       []string
	planSkip       []string
)

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planConfigPath, "config", "c", "", "path to rig.yaml or rig.toml")
	planCmd.Flags().StringSliceVar(&planOnly, "only", nil, "plan only these step ids (plus their dependencies)")
	planCmd.Flags().StringSliceVar(&planSkip, "skip", nil, "skip these step ids")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(planConfigPath)
	if err != nil {
		return err
	}

	rig := app.New(settings, app.WithVerbose(verbose))

	plan, err := rig.Plan(cmd.Context(), planOnly, planSkip)
	if err != nil {
		return err
	}

	rig.PrintPlan(plan)
	return nil
}
