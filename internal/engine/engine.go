// Package engine walks an assembled plan's dependency graph,
// executing phases through the governance gate and recording
// artifacts, receipts, and audit events. It owns the plan for the
// lifetime of the execution.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/planforge/planforge/internal/audit"
	"github.com/planforge/planforge/internal/governance"
	"github.com/planforge/planforge/internal/tools"
	"github.com/planforge/planforge/internal/types"
	"golang.org/x/sync/errgroup"
)

// Options configure an engine. Every collaborator is injected; nil
// collaborators fall back to safe defaults rather than ambient
// singletons.
type Options struct {
	Gate       *governance.Gate
	Executor   tools.Executor
	Trail      audit.Trail
	Metrics    governance.MetricsProvider
	Reflector  Reflector
	Reflection ReflectionParams

	// PhaseCompleted, when set, is called after each phase finishes
	// successfully, before the next phase starts. Callers use it to
	// checkpoint state at the phase boundary.
	PhaseCompleted func(plan *types.TaskPlan, phase *types.Phase)
}

// Engine executes task plans phase by phase
type Engine struct {
	gate      *governance.Gate
	executor  tools.Executor
	trail     audit.Trail
	metrics   governance.MetricsProvider
	reflector Reflector
	params    ReflectionParams
	completed func(plan *types.TaskPlan, phase *types.Phase)

	pauseRequested  atomic.Bool
	cancelRequested atomic.Bool
}

// New creates an engine, substituting defaults for any collaborator
// left nil
func New(opts Options) *Engine {
	if opts.Gate == nil {
		opts.Gate = governance.NewGate(governance.DefaultParams(), governance.StaticApprover{Decision: governance.DecisionApprove})
	}
	if opts.Executor == nil {
		opts.Executor = tools.NewSimulated(0)
	}
	if opts.Reflection == (ReflectionParams{}) {
		opts.Reflection = DefaultReflectionParams()
	}
	if opts.Reflector == nil {
		opts.Reflector = HeuristicReflector{Params: opts.Reflection}
	}
	return &Engine{
		gate:      opts.Gate,
		executor:  opts.Executor,
		trail:     opts.Trail,
		metrics:   opts.Metrics,
		reflector: opts.Reflector,
		params:    opts.Reflection,
		completed: opts.PhaseCompleted,
	}
}

// Pause requests a checkpoint-safe suspension. The engine stops
// between phases, never mid-phase.
func (e *Engine) Pause() {
	e.pauseRequested.Store(true)
}

// Resume clears a pending pause request
func (e *Engine) Resume() {
	e.pauseRequested.Store(false)
}

// Cancel prevents any further phase from starting. A phase already
// delegated to the tool collaborator is not interrupted.
func (e *Engine) Cancel() {
	e.cancelRequested.Store(true)
}

// execState accumulates per-execution bookkeeping
type execState struct {
	receipts      []string
	usage         types.ResourceUsage
	riskEvents    int
	interventions int
}

// Execute runs the plan to a terminal outcome. Every terminating path
// returns a complete result; a failed plan is reported through the
// result's status, not through the error return.
func (e *Engine) Execute(ctx context.Context, plan *types.TaskPlan) (*types.ExecutionResult, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	if plan.Status != types.PlanPlanning && plan.Status != types.PlanPaused {
		return nil, fmt.Errorf("execute: plan %s is %s, want planning or paused", plan.ID, plan.Status)
	}

	state := &execState{}

	// Plan-level gate: rejection aborts before any phase executes and
	// the plan keeps its current status. A paused plan whose approval
	// obligation is still outstanding is gated again on resume.
	if plan.Status == types.PlanPlanning || plan.Metadata.RequiresApproval {
		decision, err := e.gate.ApprovePlan(ctx, plan)
		if err != nil {
			return nil, err
		}
		e.audit(plan, 0, "plan_approval_decided", map[string]interface{}{"decision": string(decision)})
		if decision != governance.DecisionApprove {
			return e.finish(ctx, plan, state, types.ResultCancelled, fmt.Sprintf("plan approval: %s", decision)), nil
		}
		plan.Metadata.RequiresApproval = false
	}

	e.setPlanStatus(plan, types.PlanExecuting)

	for i := 0; i < len(plan.Phases); i++ {
		phase := &plan.Phases[i]
		if phase.Status.IsTerminal() {
			continue
		}

		if e.cancelRequested.Load() {
			e.setPlanStatus(plan, types.PlanPaused)
			return e.finish(ctx, plan, state, types.ResultCancelled, "cancelled before phase start"), nil
		}
		if e.pauseRequested.Load() {
			e.setPlanStatus(plan, types.PlanPaused)
			return e.finish(ctx, plan, state, types.ResultPartial, "paused between phases"), nil
		}

		proceed, err := e.checkDependencies(plan, phase)
		if err != nil {
			e.setPlanStatus(plan, types.PlanFailed)
			result := e.finish(ctx, plan, state, types.ResultFailure, err.Error())
			return result, nil
		}
		if !proceed {
			continue
		}

		decision, err := e.gate.ApprovePhase(ctx, plan, phase)
		if err != nil {
			return nil, err
		}
		if phase.RequiresApproval {
			e.audit(plan, phase.ID, "phase_approval_decided", map[string]interface{}{"decision": string(decision)})
		}
		switch decision {
		case governance.DecisionReject:
			// Non-fatal: only this phase is skipped
			phase.Status = types.PhaseSkipped
			continue
		case governance.DecisionPause, governance.DecisionModify:
			e.setPlanStatus(plan, types.PlanPaused)
			return e.finish(ctx, plan, state, types.ResultPartial, fmt.Sprintf("phase %d approval: %s", phase.ID, decision)), nil
		}

		// Reflect before executing; low alignment splices a recovery
		// phase onto the live plan.
		reflection := e.reflector.PhaseReflection(plan, phase)
		phase.Reflection = &reflection
		if reflection.AdaptationRequired && phase.Title != RecoveryTitle {
			recovery := AppendRecoveryPhase(plan, e.params.RecoveryMinutes)
			state.interventions++
			e.audit(plan, recovery.ID, "plan_adapted", map[string]interface{}{
				"goal_alignment": reflection.GoalAlignment,
				"recovery_phase": recovery.ID,
			})
			phase = &plan.Phases[i] // Appending may have reallocated the slice
		}

		if err := e.executePhase(ctx, plan, phase, state); err != nil {
			e.setPlanStatus(plan, types.PlanFailed)
			return e.finish(ctx, plan, state, types.ResultFailure, err.Error()), nil
		}
		if e.completed != nil {
			e.completed(plan, phase)
		}
	}

	status := types.ResultSuccess
	for i := range plan.Phases {
		if plan.Phases[i].Status != types.PhaseCompleted {
			status = types.ResultPartial
			break
		}
	}
	e.setPlanStatus(plan, types.PlanCompleted)
	return e.finish(ctx, plan, state, status, ""), nil
}

// checkDependencies reports whether the phase may start. A skipped
// dependency cascades a skip; an incomplete dependency is an
// assembly/optimizer bug and fails the plan.
func (e *Engine) checkDependencies(plan *types.TaskPlan, phase *types.Phase) (bool, error) {
	for _, dep := range phase.DependsOn {
		depPhase := plan.PhaseByID(dep)
		if depPhase == nil {
			return false, fmt.Errorf("phase %d depends on unknown phase %d", phase.ID, dep)
		}
		switch depPhase.Status {
		case types.PhaseCompleted:
		case types.PhaseSkipped:
			phase.Status = types.PhaseSkipped
			e.audit(plan, phase.ID, "phase_skipped", map[string]interface{}{"reason": fmt.Sprintf("dependency %d skipped", dep)})
			return false, nil
		default:
			return false, fmt.Errorf("phase %d started before dependency %d completed (status %s)", phase.ID, dep, depPhase.Status)
		}
	}
	return true, nil
}

// executePhase delegates each of the phase's tools to the execution
// collaborator. Tool calls within a phase run concurrently; the phase
// fails if any call fails.
func (e *Engine) executePhase(ctx context.Context, plan *types.TaskPlan, phase *types.Phase, state *execState) error {
	now := time.Now().UTC()
	phase.Status = types.PhaseInProgress
	phase.StartedAt = &now
	plan.CurrentPhase = phase.ID
	e.audit(plan, phase.ID, "phase_started", map[string]interface{}{"title": phase.Title})

	caller := tools.CallerContext{
		PlanID:  plan.ID,
		PhaseID: phase.ID,
		AgentID: plan.Governance.AgentID,
		UserID:  plan.Governance.UserID,
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	for _, tool := range phase.Tools {
		if !e.withinToolBudget(plan, state) {
			break
		}
		state.usage.ToolCalls++
		tool := tool
		group.Go(func() error {
			result, err := e.executor.Execute(groupCtx, tools.Call{
				Tool:       tool,
				Parameters: map[string]interface{}{"phase": phase.Title},
				Caller:     caller,
			})
			if err != nil {
				return fmt.Errorf("phase %d: %w", phase.ID, err)
			}

			receipt := audit.NewReceipt(plan.ID, phase.ID, tool, result.Cost)
			artifact := types.Artifact{
				ID:        uuid.NewString(),
				Type:      result.ArtifactType,
				Location:  result.Location,
				SizeBytes: result.SizeBytes,
				CreatedAt: time.Now().UTC(),
				ReceiptID: receipt.ID,
			}

			mu.Lock()
			phase.ReceiptIDs = append(phase.ReceiptIDs, receipt.ID)
			phase.Artifacts = append(phase.Artifacts, artifact)
			state.receipts = append(state.receipts, receipt.ID)
			state.usage.Cost += result.Cost
			state.riskEvents += result.RiskEvents
			mu.Unlock()
			return nil
		})
	}

	err := group.Wait()
	end := time.Now().UTC()
	phase.EndedAt = &end
	phase.ActualMinutes = int(end.Sub(now).Minutes())
	state.usage.Minutes += phase.EstimatedMinutes

	if err != nil {
		phase.Status = types.PhaseFailed
		e.audit(plan, phase.ID, "phase_failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	phase.Status = types.PhaseCompleted
	e.audit(plan, phase.ID, "phase_completed", map[string]interface{}{"artifacts": len(phase.Artifacts)})
	return nil
}

// withinToolBudget enforces the context's max tool call limit
func (e *Engine) withinToolBudget(plan *types.TaskPlan, state *execState) bool {
	limit := plan.Governance.Limits.MaxToolCalls
	return limit <= 0 || state.usage.ToolCalls < limit
}

// finish computes the terminal reflection and assembles the complete
// execution result
func (e *Engine) finish(ctx context.Context, plan *types.TaskPlan, state *execState, status types.ResultStatus, errMsg string) *types.ExecutionResult {
	reflection := e.reflector.PlanReflection(plan)
	if status == types.ResultFailure {
		reflection.RiskAssessment = types.RiskHigh
	}

	trust, compliance := governance.Gather(ctx, e.metrics)

	var artifacts []types.Artifact
	for i := range plan.Phases {
		artifacts = append(artifacts, plan.Phases[i].Artifacts...)
	}

	plan.UpdatedAt = time.Now().UTC()
	result := &types.ExecutionResult{
		PlanID:          plan.ID,
		Status:          status,
		CompletedPhases: plan.CompletedCount(),
		TotalPhases:     len(plan.Phases),
		Artifacts:       artifacts,
		ReceiptIDs:      state.receipts,
		Usage:           state.usage,
		Governance: types.GovernanceMetrics{
			TrustScore:       trust,
			ComplianceStatus: compliance,
			RiskEvents:       state.riskEvents,
			Interventions:    state.interventions,
		},
		FinalReflection: &reflection,
		Error:           errMsg,
	}
	e.audit(plan, 0, "execution_finished", map[string]interface{}{
		"status":    string(status),
		"completed": result.CompletedPhases,
		"total":     result.TotalPhases,
	})
	return result
}

// setPlanStatus transitions the plan and emits the mandated audit event
func (e *Engine) setPlanStatus(plan *types.TaskPlan, status types.PlanStatus) {
	if plan.Status == status {
		return
	}
	previous := plan.Status
	plan.Status = status
	plan.UpdatedAt = time.Now().UTC()
	e.audit(plan, 0, "plan_status_changed", map[string]interface{}{
		"from": string(previous),
		"to":   string(status),
	})
}

// audit records an event, tolerating an absent or failing trail.
// Collaborator unavailability never fails the plan.
func (e *Engine) audit(plan *types.TaskPlan, phaseID int, action string, metadata map[string]interface{}) {
	if e.trail == nil {
		return
	}
	_ = e.trail.Record(audit.Entry{
		PlanID:   plan.ID,
		AgentID:  plan.Governance.AgentID,
		UserID:   plan.Governance.UserID,
		Action:   action,
		PhaseID:  phaseID,
		Metadata: metadata,
	})
}
