package cli

import (
	"fmt"
	"strings"

	"github.com/planforge/planforge/internal/store"
	"github.com/spf13/cobra"
)

var planExplain bool

var planCmd = &cobra.Command{
	Use:   "plan <goal>",
	Short: "Compile a goal into a phased execution plan",
	Long: `Compile a free-text goal into a structured, multi-phase plan.

The goal is classified (type, domain, intent, complexity, risk
factors), matched against the phase template catalog, optimized for
parallelism, and risk-scored. The compiled plan is stored in the
workspace; run it with 'planforge run'.

Use --explain to see the full goal analysis alongside the plan.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceDir, cfg, err := requireWorkspace()
		if err != nil {
			return err
		}
		goal := strings.Join(args, " ")

		plan, analysis, err := compilePlan(cfg, goal)
		if err != nil {
			return fmt.Errorf("compile plan: %w", err)
		}
		if err := store.Open(workspaceDir).SavePlan(plan); err != nil {
			return err
		}

		d := newDisplay()
		if planExplain {
			d.AnalysisSummary(analysis)
		}
		d.PlanSummary(plan)
		if plan.Metadata.RequiresApproval {
			d.Warning("this plan requires approval; 'planforge run' will ask, or pre-grant with 'planforge approve'")
		}
		d.Info("next", fmt.Sprintf("planforge run %s", plan.ID))
		return nil
	},
}

func init() {
	planCmd.Flags().BoolVar(&planExplain, "explain", false, "show the goal analysis behind the plan")
	rootCmd.AddCommand(planCmd)
}
