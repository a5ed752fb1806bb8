package cli

import (
	"fmt"
	"time"

	"github.com/planforge/planforge/internal/audit"
	"github.com/planforge/planforge/internal/store"
	"github.com/planforge/planforge/internal/types"
	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:   "pause <plan-id>",
	Short: "Pause a stored plan",
	Long: `Mark a stored plan paused so the next 'planforge run' stops before
starting any phase. A run in another terminal pauses at its next
phase boundary once it reloads the record.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPlanPaused(args[0], "plan_paused", "plan %s paused")
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <plan-id>",
	Short: "Cancel a stored plan",
	Long: `Cancel a stored plan. The plan is left paused rather than failed:
completed phases and their artifacts stay queryable, and the plan can
still be resumed later if the cancellation was premature.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPlanPaused(args[0], "plan_cancelled", "plan %s cancelled; record kept paused for resume")
	},
}

func setPlanPaused(planID, action, doneFormat string) error {
	workspaceDir, cfg, err := requireWorkspace()
	if err != nil {
		return err
	}
	s := store.Open(workspaceDir)
	plan, err := s.LoadPlan(planID)
	if err != nil {
		return err
	}
	if plan.Status.IsTerminal() {
		return fmt.Errorf("plan %s is already %s", plan.ID, plan.Status)
	}
	// The plan state machine has no planning->paused edge; a plan that
	// never started has nothing to suspend.
	if plan.Status == types.PlanPlanning {
		return fmt.Errorf("plan %s has not started; it is still in planning", plan.ID)
	}

	previous := plan.Status
	plan.Status = types.PlanPaused
	plan.UpdatedAt = time.Now().UTC()
	if err := s.SavePlan(plan); err != nil {
		return err
	}

	trail, err := newTrail(workspaceDir, cfg)
	if err != nil {
		return err
	}
	defer trail.Close()
	_ = trail.Record(audit.Entry{
		PlanID:  plan.ID,
		AgentID: plan.Governance.AgentID,
		UserID:  plan.Governance.UserID,
		Action:  action,
		Metadata: map[string]interface{}{
			"from": string(previous),
		},
	})

	newDisplay().Success(fmt.Sprintf(doneFormat, plan.ID))
	return nil
}

func init() {
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(cancelCmd)
}
