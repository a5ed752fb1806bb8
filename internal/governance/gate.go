package governance

import (
	"context"
	"fmt"

	"github.com/planforge/planforge/internal/types"
)

// Decision is an approver's answer to an approval request
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
	DecisionPause   Decision = "pause"
	DecisionModify  Decision = "modify"
)

// ApprovalRequest is the event emitted to the approval collaborator
type ApprovalRequest struct {
	PlanID  string          `json:"plan_id"`
	PhaseID int             `json:"phase_id,omitempty"` // 0 for plan-level requests
	Risk    types.RiskLevel `json:"risk"`
	Summary string          `json:"summary"`
}

// Approver is the approval/notification collaborator. The engine
// emits a request and suspends until a decision arrives.
type Approver interface {
	Decide(ctx context.Context, req ApprovalRequest) (Decision, error)
}

// StaticApprover answers every request with a fixed decision.
// Useful as a test double and for non-interactive runs.
type StaticApprover struct {
	Decision Decision
}

// Decide implements Approver
func (s StaticApprover) Decide(_ context.Context, _ ApprovalRequest) (Decision, error) {
	return s.Decision, nil
}

// Gate enforces plan- and phase-level approval policy
type Gate struct {
	params   Params
	approver Approver
}

// NewGate creates a gate backed by the given approver
func NewGate(params Params, approver Approver) *Gate {
	return &Gate{params: params, approver: approver}
}

// ApprovePlan decides whether a plan may move to executing. Low-risk
// plans without an approval flag auto-approve without a collaborator
// round trip. A rejection is a control-flow outcome, not an error:
// the plan keeps its current status.
func (g *Gate) ApprovePlan(ctx context.Context, plan *types.TaskPlan) (Decision, error) {
	if !plan.Metadata.RequiresApproval {
		return DecisionApprove, nil
	}
	decision, err := g.approver.Decide(ctx, ApprovalRequest{
		PlanID:  plan.ID,
		Risk:    plan.Metadata.RiskLevel,
		Summary: fmt.Sprintf("plan %q: %d phases, %s risk", plan.Goal, len(plan.Phases), plan.Metadata.RiskLevel),
	})
	if err != nil {
		return DecisionReject, fmt.Errorf("plan approval: %w", err)
	}
	return decision, nil
}

// ApprovePhase decides whether a single phase may start. Phases not
// flagged approval-required pass immediately.
func (g *Gate) ApprovePhase(ctx context.Context, plan *types.TaskPlan, phase *types.Phase) (Decision, error) {
	if !phase.RequiresApproval {
		return DecisionApprove, nil
	}
	decision, err := g.approver.Decide(ctx, ApprovalRequest{
		PlanID:  plan.ID,
		PhaseID: phase.ID,
		Risk:    plan.Metadata.RiskLevel,
		Summary: fmt.Sprintf("phase %d %q requires sign-off", phase.ID, phase.Title),
	})
	if err != nil {
		return DecisionReject, fmt.Errorf("phase %d approval: %w", phase.ID, err)
	}
	switch decision {
	case DecisionApprove:
		phase.ApprovalStatus = types.ApprovalGranted
	case DecisionReject:
		phase.ApprovalStatus = types.ApprovalRejected
	}
	return decision, nil
}
