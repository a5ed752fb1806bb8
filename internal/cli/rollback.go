package cli

import (
	"fmt"

	"github.com/planforge/planforge/internal/store"
	"github.com/spf13/cobra"
)

var rollbackPoint string

var rollbackCmd = &cobra.Command{
	Use:   "rollback <extension-id>",
	Short: "Roll a failed extension back to a snapshot",
	Long: `Restore the target plan to a named rollback point and mark the
extension rolled-back.

Only points flagged rollback-eligible qualify; attempting any other
point is rejected without changing the extension. Without --point the
pre-execution snapshot is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceDir, cfg, err := requireWorkspace()
		if err != nil {
			return err
		}
		s := store.Open(workspaceDir)
		trail, err := newTrail(workspaceDir, cfg)
		if err != nil {
			return err
		}
		defer trail.Close()

		ext, err := s.LoadExtension(args[0])
		if err != nil {
			return err
		}
		target, err := s.LoadPlan(ext.TargetPlanID)
		if err != nil {
			return err
		}

		m, err := newExtensionManager(cfg, trail)
		if err != nil {
			return err
		}
		if err := m.Rollback(ext, target, rollbackPoint); err != nil {
			return err
		}
		if err := s.SaveExtension(ext); err != nil {
			return err
		}
		if err := s.SavePlan(target); err != nil {
			return err
		}

		newDisplay().Success(fmt.Sprintf("plan %s restored to %q; extension %s rolled back", target.ID, rollbackPoint, ext.ID))
		return nil
	},
}

func init() {
	rollbackCmd.Flags().StringVar(&rollbackPoint, "point", "pre-execution", "rollback point name")
	rootCmd.AddCommand(rollbackCmd)
}
