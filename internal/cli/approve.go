package cli

import (
	"fmt"
	"time"

	"github.com/planforge/planforge/internal/audit"
	"github.com/planforge/planforge/internal/governance"
	"github.com/planforge/planforge/internal/store"
	"github.com/spf13/cobra"
)

var (
	approveExtension bool
	approveReject    bool
)

var approveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Grant or reject a pending approval",
	Long: `Pre-grant a plan's approval so the next 'planforge run' proceeds
without an interactive prompt, or grant a waiting extension with
--extension.

With --reject, a waiting extension is cancelled; a plan stays in
planning with the rejection on the audit trail.

An extension with unresolved artifact conflicts cannot be granted;
resolve them first with 'planforge extend --resolve'.`,
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
		d := newDisplay()

		if approveExtension {
			ext, err := s.LoadExtension(args[0])
			if err != nil {
				return err
			}
			m, err := newExtensionManager(cfg, trail)
			if err != nil {
				return err
			}
			if approveReject {
				if err := m.Cancel(ext); err != nil {
					return err
				}
				if err := s.SaveExtension(ext); err != nil {
					return err
				}
				d.Warning(fmt.Sprintf("extension %s rejected and cancelled", ext.ID))
				return nil
			}
			if err := m.Approve(ext); err != nil {
				return err
			}
			if err := s.SaveExtension(ext); err != nil {
				return err
			}
			d.Success(fmt.Sprintf("extension %s approved", ext.ID))
			return nil
		}

		plan, err := s.LoadPlan(args[0])
		if err != nil {
			return err
		}
		if !plan.Metadata.RequiresApproval {
			d.Info("approve", "plan does not require approval")
			return nil
		}

		decision := governance.DecisionApprove
		if approveReject {
			decision = governance.DecisionReject
		} else {
			plan.Metadata.RequiresApproval = false
			plan.UpdatedAt = time.Now().UTC()
			if err := s.SavePlan(plan); err != nil {
				return err
			}
		}
		_ = trail.Record(audit.Entry{
			PlanID:  plan.ID,
			AgentID: plan.Governance.AgentID,
			UserID:  plan.Governance.UserID,
			Action:  "plan_approval_decided",
			Metadata: map[string]interface{}{
				"decision": string(decision),
				"source":   "cli",
			},
		})
		if approveReject {
			d.Warning(fmt.Sprintf("plan %s rejected; it remains in planning", plan.ID))
		} else {
			d.Success(fmt.Sprintf("plan %s pre-approved (risk %s)", plan.ID, plan.Metadata.RiskLevel))
		}
		return nil
	},
}

func init() {
	approveCmd.Flags().BoolVar(&approveExtension, "extension", false, "the id names an extension, not a plan")
	approveCmd.Flags().BoolVar(&approveReject, "reject", false, "reject instead of granting")
	rootCmd.AddCommand(approveCmd)
}
