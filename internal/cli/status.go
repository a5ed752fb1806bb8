package cli

import (
	"fmt"

	"github.com/planforge/planforge/internal/store"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [plan-id]",
	Short: "Show a plan's phases and progress",
	Long: `Show a compiled plan's phases, statuses, and risk posture.

Without an argument, shows the most recently created plan. Extensions
targeting the plan are listed beneath it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceDir, _, err := requireWorkspace()
		if err != nil {
			return err
		}
		s := store.Open(workspaceDir)

		var planID string
		if len(args) == 1 {
			planID = args[0]
		} else {
			plans, err := s.ListPlans()
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				newDisplay().Info("status", "no plans yet; create one with 'planforge plan'")
				return nil
			}
			planID = plans[0].ID
		}

		plan, err := s.LoadPlan(planID)
		if err != nil {
			return err
		}

		d := newDisplay()
		d.PlanSummary(plan)

		exts, err := s.ListExtensions(plan.ID)
		if err != nil {
			return err
		}
		for _, ext := range exts {
			fmt.Println()
			d.ExtensionSummary(ext)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
