package cli

import (
	"fmt"

	"github.com/planforge/planforge/internal/store"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored plans and extensions",
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceDir, _, err := requireWorkspace()
		if err != nil {
			return err
		}
		s := store.Open(workspaceDir)
		d := newDisplay()

		plans, err := s.ListPlans()
		if err != nil {
			return err
		}
		if len(plans) == 0 {
			d.Info("list", "no plans yet; create one with 'planforge plan'")
			return nil
		}

		for _, plan := range plans {
			fmt.Printf("%s  %-10s  %s (%d/%d phases, risk %s)\n",
				plan.ID,
				plan.Status,
				plan.Goal,
				plan.CompletedCount(),
				len(plan.Phases),
				plan.Metadata.RiskLevel)

			exts, err := s.ListExtensions(plan.ID)
			if err != nil {
				return err
			}
			for _, ext := range exts {
				fmt.Printf("  └─ %s  %-17s  %s [%s]\n",
					ext.ID,
					ext.Status,
					ext.Goal,
					ext.Type)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
