package engine

import (
	"fmt"
	"time"

	"github.com/planforge/planforge/internal/types"
)

// RecoveryTitle is the title of phases spliced in by adaptation
const RecoveryTitle = "Recovery and Adjustment"

// Reflector produces goal-alignment self-assessments. The engine asks
// for one before every phase and one terminal reflection per plan.
type Reflector interface {
	PhaseReflection(plan *types.TaskPlan, phase *types.Phase) types.Reflection
	PlanReflection(plan *types.TaskPlan) types.Reflection
}

// ReflectionParams are the tunable alignment thresholds
type ReflectionParams struct {
	PhaseThreshold  float64 // Alignment below this flags phase-level adaptation
	PlanThreshold   float64 // Alignment below this flags plan-level adaptation
	RecoveryMinutes int     // Duration of a spliced recovery phase
}

// DefaultReflectionParams returns the standard thresholds
func DefaultReflectionParams() ReflectionParams {
	return ReflectionParams{
		PhaseThreshold:  0.7,
		PlanThreshold:   0.5,
		RecoveryMinutes: 30,
	}
}

// HeuristicReflector scores alignment from observable plan state:
// skipped and failed phases erode alignment, completed phases sustain
// it. Deterministic so results are reproducible.
type HeuristicReflector struct {
	Params ReflectionParams
}

// PhaseReflection implements Reflector
func (h HeuristicReflector) PhaseReflection(plan *types.TaskPlan, phase *types.Phase) types.Reflection {
	alignment := h.alignment(plan)
	risk := types.RiskLow
	if alignment < h.Params.PlanThreshold {
		risk = types.RiskMedium
	}
	return types.Reflection{
		CurrentState: fmt.Sprintf("%d of %d phases completed; next: %s",
			plan.CompletedCount(), len(plan.Phases), phase.Title),
		GoalAlignment:      alignment,
		NextActions:        []string{phase.Title},
		RiskAssessment:     risk,
		Confidence:         alignment,
		AdaptationRequired: alignment < h.Params.PhaseThreshold,
		Reasoning:          h.reasoning(plan),
		Timestamp:          time.Now().UTC(),
	}
}

// PlanReflection implements Reflector
func (h HeuristicReflector) PlanReflection(plan *types.TaskPlan) types.Reflection {
	alignment := h.alignment(plan)
	risk := types.RiskLow
	if plan.Status == types.PlanFailed {
		risk = types.RiskHigh
	} else if alignment < h.Params.PlanThreshold {
		risk = types.RiskMedium
	}
	return types.Reflection{
		CurrentState: fmt.Sprintf("plan %s: %d of %d phases completed",
			plan.Status, plan.CompletedCount(), len(plan.Phases)),
		GoalAlignment:      alignment,
		RiskAssessment:     risk,
		Confidence:         alignment,
		AdaptationRequired: alignment < h.Params.PlanThreshold,
		Reasoning:          h.reasoning(plan),
		Timestamp:          time.Now().UTC(),
	}
}

// alignment starts at 1.0 and erodes with skipped or failed phases
func (h HeuristicReflector) alignment(plan *types.TaskPlan) float64 {
	alignment := 1.0
	for i := range plan.Phases {
		switch plan.Phases[i].Status {
		case types.PhaseSkipped:
			alignment -= 0.15
		case types.PhaseFailed:
			alignment -= 0.4
		}
	}
	if alignment < 0 {
		alignment = 0
	}
	return alignment
}

func (h HeuristicReflector) reasoning(plan *types.TaskPlan) string {
	skipped, failed := 0, 0
	for i := range plan.Phases {
		switch plan.Phases[i].Status {
		case types.PhaseSkipped:
			skipped++
		case types.PhaseFailed:
			failed++
		}
	}
	if skipped == 0 && failed == 0 {
		return "execution tracking the original plan"
	}
	return fmt.Sprintf("%d skipped and %d failed phases reduce goal alignment", skipped, failed)
}

// AppendRecoveryPhase splices a recovery phase onto the plan's phase
// list, depending on the most recently completed phase. The operation
// is append-only: completed phases are never reordered or removed.
// The plan's estimated duration grows by exactly the recovery phase's
// duration.
func AppendRecoveryPhase(plan *types.TaskPlan, minutes int) *types.Phase {
	maxID := 0
	lastCompleted := 0
	for i := range plan.Phases {
		p := &plan.Phases[i]
		if p.ID > maxID {
			maxID = p.ID
		}
		if p.Status == types.PhaseCompleted {
			lastCompleted = p.ID
		}
	}

	var deps []int
	if lastCompleted != 0 {
		deps = []int{lastCompleted}
	}
	plan.Phases = append(plan.Phases, types.Phase{
		ID:               maxID + 1,
		Title:            RecoveryTitle,
		Description:      "Re-align execution with the original goal after a low-alignment reflection",
		Status:           types.PhasePending,
		DependsOn:        deps,
		EstimatedMinutes: minutes,
		Capabilities:     []string{"reporting"},
		Tools:            []string{"document-reader"},
		ApprovalStatus:   types.ApprovalNotRequired,
	})
	plan.EstimatedMinutes += minutes
	plan.UpdatedAt = time.Now().UTC()
	return &plan.Phases[len(plan.Phases)-1]
}
