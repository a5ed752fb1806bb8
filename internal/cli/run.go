package cli

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/planforge/planforge/internal/audit"
	"github.com/planforge/planforge/internal/config"
	"github.com/planforge/planforge/internal/engine"
	"github.com/planforge/planforge/internal/extension"
	"github.com/planforge/planforge/internal/governance"
	"github.com/planforge/planforge/internal/store"
	"github.com/planforge/planforge/internal/tools"
	"github.com/planforge/planforge/internal/types"
	"github.com/spf13/cobra"
)

var (
	runYes   bool
	runDelay time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <plan-id>",
	Short: "Execute a compiled plan",
	Long: `Execute a compiled plan phase by phase under governance oversight.

Approval requests are answered interactively unless --yes is set.
Interrupt (Ctrl-C) requests cancellation: no further phase starts, a
phase already delegated to the tool executor finishes, and the plan is
left paused and resumable.

Tool execution is simulated; use --delay to make each call take time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceDir, cfg, err := requireWorkspace()
		if err != nil {
			return err
		}
		s := store.Open(workspaceDir)
		plan, err := s.LoadPlan(args[0])
		if err != nil {
			return err
		}
		if plan.Status.IsTerminal() {
			return fmt.Errorf("plan %s is already %s", plan.ID, plan.Status)
		}

		d := newDisplay()
		trail, err := newTrail(workspaceDir, cfg)
		if err != nil {
			return err
		}
		defer trail.Close()

		var approver governance.Approver = newConsoleApprover(d)
		if runYes {
			approver = governance.StaticApprover{Decision: governance.DecisionApprove}
		}

		executing, m, err := executingExtensions(s, cfg, trail, plan.ID)
		if err != nil {
			return err
		}

		opts := engine.Options{
			Gate:       governance.NewGate(cfg.RiskParams(), approver),
			Executor:   tools.NewSimulated(runDelay),
			Trail:      trail,
			Metrics:    governance.StaticMetrics{},
			Reflection: cfg.ReflectionParams(),
		}
		if len(executing) > 0 {
			// Checkpoint rollback points are taken at the phase
			// boundary, while the remaining phases are still pending.
			opts.PhaseCompleted = func(p *types.TaskPlan, phase *types.Phase) {
				for _, ext := range executing {
					m.Checkpoint(ext, p, phase.ID)
				}
			}
		}
		eng := engine.New(opts)

		// Ctrl-C cancels between phases instead of killing the process
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		defer signal.Stop(interrupt)
		go func() {
			<-interrupt
			d.Warning("cancellation requested; finishing the current phase")
			eng.Cancel()
		}()

		d.Info("run", fmt.Sprintf("executing plan %s (%d phases)", plan.ID, len(plan.Phases)))
		result, err := eng.Execute(cmd.Context(), plan)
		if saveErr := s.SavePlan(plan); saveErr != nil && err == nil {
			err = saveErr
		}
		if err != nil {
			return err
		}

		if err := finalizeExtensions(s, m, executing, result.Status); err != nil {
			return err
		}

		for i := range plan.Phases {
			d.PhaseLine(&plan.Phases[i])
		}
		d.ResultSummary(result)

		switch result.Status {
		case types.ResultSuccess:
			d.Success("plan completed")
		case types.ResultFailure:
			d.Error("plan failed; see the audit trail for details")
		default:
			d.Warning(fmt.Sprintf("execution ended %s; resume with 'planforge run %s'", result.Status, plan.ID))
		}
		return nil
	},
}

// executingExtensions loads the extensions whose merged phases this run
// will execute, along with a manager to drive their lifecycle
func executingExtensions(s *store.Store, cfg *config.Config, trail *audit.FileTrail, planID string) ([]*types.Extension, *extension.Manager, error) {
	exts, err := s.ListExtensions(planID)
	if err != nil {
		return nil, nil, err
	}
	var executing []*types.Extension
	for _, ext := range exts {
		if ext.Status == types.ExtStatusExecuting {
			executing = append(executing, ext)
		}
	}
	if len(executing) == 0 {
		return nil, nil, nil
	}
	m, err := newExtensionManager(cfg, trail)
	if err != nil {
		return nil, nil, err
	}
	return executing, m, nil
}

// finalizeExtensions settles the extensions this run executed. Success
// completes them; failure marks them failed so they can be rolled
// back. Paused and cancelled runs leave them executing, but any
// checkpoint taken so far is still persisted.
func finalizeExtensions(s *store.Store, m *extension.Manager, executing []*types.Extension, status types.ResultStatus) error {
	for _, ext := range executing {
		var err error
		switch status {
		case types.ResultSuccess:
			err = m.Complete(ext)
		case types.ResultFailure:
			err = m.Fail(ext)
		}
		if err != nil {
			return err
		}
		if err := s.SaveExtension(ext); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "auto-approve every approval request")
	runCmd.Flags().DurationVar(&runDelay, "delay", 0, "simulated duration of each tool call")
	rootCmd.AddCommand(runCmd)
}
