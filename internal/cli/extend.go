package cli

import (
	"fmt"
	"strings"

	"github.com/planforge/planforge/internal/store"
	"github.com/planforge/planforge/internal/types"
	"github.com/spf13/cobra"
)

var (
	extendType    string
	extendResolve []string
	extendApply   bool
)

var extendCmd = &cobra.Command{
	Use:   "extend <plan-id> <goal>",
	Short: "Apply a goal increment to an existing plan",
	Long: `Compile a goal increment against an existing plan, producing an
Extension record with its own phases, conflict report, and risk
roll-up.

Deployment, security, and integration extensions, and any extension
whose risk is high or critical, wait for 'planforge approve
--extension'. Artifact conflicts must be resolved (--resolve <type>)
before the grant.

With --apply, an approved extension's phases are merged onto the
target plan, which is reopened for 'planforge run'. A pre-execution
rollback point is snapshotted first.`,
	Args: cobra.MinimumNArgs(1),
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

		m, err := newExtensionManager(cfg, trail)
		if err != nil {
			return err
		}
		d := newDisplay()

		if extendApply {
			// <plan-id> names the extension here
			ext, err := s.LoadExtension(args[0])
			if err != nil {
				return err
			}
			target, err := s.LoadPlan(ext.TargetPlanID)
			if err != nil {
				return err
			}
			if err := m.Apply(ext, target); err != nil {
				return err
			}
			if err := s.SaveExtension(ext); err != nil {
				return err
			}
			if err := s.SavePlan(target); err != nil {
				return err
			}
			d.Success(fmt.Sprintf("extension applied; run the new phases with 'planforge run %s'", target.ID))
			return nil
		}

		if len(extendResolve) > 0 {
			ext, err := s.LoadExtension(args[0])
			if err != nil {
				return err
			}
			for _, artifactType := range extendResolve {
				if err := m.ResolveConflict(ext, artifactType); err != nil {
					return err
				}
				d.Success(fmt.Sprintf("conflict on %s resolved", artifactType))
			}
			return s.SaveExtension(ext)
		}

		if len(args) < 2 {
			return fmt.Errorf("extend: a goal is required")
		}
		target, err := s.LoadPlan(args[0])
		if err != nil {
			return err
		}
		goal := strings.Join(args[1:], " ")

		prior, err := s.ListExtensions(target.ID)
		if err != nil {
			return err
		}
		baseVersion := fmt.Sprintf("v%d", len(prior)+1)

		ext, err := m.Propose(goal, types.ExtensionType(extendType), target, baseVersion)
		if err != nil {
			return err
		}
		if err := s.SaveExtension(ext); err != nil {
			return err
		}

		d.ExtensionSummary(ext)
		switch {
		case len(ext.UnresolvedConflicts()) > 0:
			d.Warning(fmt.Sprintf("resolve conflicts with 'planforge extend %s --resolve <artifact-type>'", ext.ID))
		case ext.Status == types.ExtStatusAwaitingApproval:
			d.Warning(fmt.Sprintf("grant with 'planforge approve --extension %s'", ext.ID))
		default:
			d.Info("next", fmt.Sprintf("planforge extend %s --apply", ext.ID))
		}
		return nil
	},
}

func init() {
	extendCmd.Flags().StringVarP(&extendType, "type", "t", string(types.ExtFeatureAddition),
		fmt.Sprintf("extension type (%s)", joinExtensionTypes()))
	extendCmd.Flags().StringSliceVar(&extendResolve, "resolve", nil, "mark an artifact conflict resolved (id names the extension)")
	extendCmd.Flags().BoolVar(&extendApply, "apply", false, "merge an approved extension onto its target plan (id names the extension)")
	rootCmd.AddCommand(extendCmd)
}

func joinExtensionTypes() string {
	all := types.AllExtensionTypes()
	parts := make([]string, len(all))
	for i, t := range all {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
