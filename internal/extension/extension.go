// Package extension applies a goal increment to an already-executed
// plan. It reuses the analysis, template, and optimization pipeline in
// extend mode, detects artifact conflicts against the target plan, and
// maintains named rollback snapshots.
package extension

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/planforge/planforge/internal/analyzer"
	"github.com/planforge/planforge/internal/assembler"
	"github.com/planforge/planforge/internal/audit"
	"github.com/planforge/planforge/internal/governance"
	"github.com/planforge/planforge/internal/optimizer"
	"github.com/planforge/planforge/internal/template"
	"github.com/planforge/planforge/internal/types"
)

// An extension plan larger than this phase+artifact count saturates the
// repository-complexity contribution to the risk score.
const complexitySaturation = 20

// Options configure a Manager
type Options struct {
	Catalog   *template.Catalog
	Analyzer  analyzer.Params
	Risk      governance.Params
	Optimizer optimizer.Params
	Trail     audit.Trail
}

// Manager drives the extension lifecycle: propose, assess, approve,
// apply, and roll back
type Manager struct {
	catalog  *template.Catalog
	analyzer *analyzer.Analyzer
	asm      *assembler.Assembler
	opt      *optimizer.Optimizer
	risk     governance.Params
	trail    audit.Trail
}

// NewManager creates a manager from injected collaborators
func NewManager(opts Options) *Manager {
	return &Manager{
		catalog:  opts.Catalog,
		analyzer: analyzer.New(opts.Analyzer),
		asm:      assembler.New(opts.Catalog, opts.Analyzer),
		opt:      optimizer.New(opts.Optimizer),
		risk:     opts.Risk,
		trail:    opts.Trail,
	}
}

// Propose compiles a goal increment against the target plan into an
// Extension record. The record leaves this call in awaiting-approval or
// approved, never executing: applying it is a separate, gated step.
// baseVersion names the target's current version; the extension carries
// the incremented one.
func (m *Manager) Propose(goal string, extType types.ExtensionType, target *types.TaskPlan, baseVersion string) (*types.Extension, error) {
	if !extType.IsValid() {
		return nil, fmt.Errorf("propose: invalid extension type %q", extType)
	}
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("propose: target plan: %w", err)
	}

	templates := m.catalog.ForExtensionType(extType)
	if len(templates) == 0 {
		return nil, fmt.Errorf("propose: no templates for extension type %q", extType)
	}

	analysis := m.analyzer.Analyze(goal)

	startID := 1
	for i := range target.Phases {
		if target.Phases[i].ID >= startID {
			startID = target.Phases[i].ID + 1
		}
	}
	phases := m.asm.BuildPhases(templates, analysis, target.Governance, startID)

	// Same parallel-group and balancing passes as a fresh plan
	scratch := types.TaskPlan{
		ID:     "extension-scratch",
		Goal:   goal,
		Phases: phases,
	}
	m.opt.Optimize(&scratch)

	conflicts := detectConflicts(templates, target)

	now := time.Now().UTC()
	ext := &types.Extension{
		ID:           uuid.NewString(),
		TargetPlanID: target.ID,
		Goal:         goal,
		Type:         extType,
		Status:       types.ExtStatusPlanning,
		Plan: types.ExtensionPlan{
			Phases:           scratch.Phases,
			EstimatedMinutes: scratch.EstimatedMinutes,
			Capabilities:     analysis.Capabilities,
			DependsOn:        existingArtifactIDs(target),
			Conflicts:        conflicts,
			RollbackStrategy: rollbackStrategy(extType),
		},
		BaseVersion: baseVersion,
		Version:     nextVersion(baseVersion),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := m.transition(ext, types.ExtStatusRiskAssessment); err != nil {
		return nil, err
	}
	m.assessRisk(ext, analysis, templates, target)

	next := types.ExtStatusApproved
	if m.requiresApproval(ext) {
		next = types.ExtStatusAwaitingApproval
	}
	if err := m.transition(ext, next); err != nil {
		return nil, err
	}
	return ext, nil
}

// assessRisk aggregates goal risk factors, template risk tiers,
// repository complexity, and detected conflicts into an overall tier.
// Critical is reachable here and only here.
func (m *Manager) assessRisk(ext *types.Extension, analysis types.GoalAnalysis, templates []types.PhaseTemplate, target *types.TaskPlan) {
	factors := append([]types.RiskFactor(nil), analysis.RiskFactors...)
	for _, c := range ext.Plan.Conflicts {
		factors = append(factors, types.RiskFactor{
			Category:    types.RiskSystemModification,
			Severity:    types.SeverityMedium,
			Description: fmt.Sprintf("planned %s artifact collides with existing artifact %s", c.ArtifactType, c.ExistingID),
			Mitigation:  "resolve the conflict before approval",
		})
	}

	score := m.risk.Score(factors, ext.Plan.Phases, analysis.Complexity)
	for _, tpl := range templates {
		switch tpl.RiskLevel {
		case types.RiskHigh:
			score += m.risk.HighWeight
		case types.RiskMedium:
			score += m.risk.MediumWeight
		}
	}

	// Repository complexity: artifact+phase count normalized to 0-1
	repoSize := len(target.Phases) + len(existingArtifactIDs(target))
	norm := float64(repoSize) / float64(complexitySaturation)
	if norm > 1 {
		norm = 1
	}
	score += int(norm * float64(m.risk.HighBump))

	level := m.risk.Level(score)
	if level == types.RiskHigh && score >= 2*m.risk.HighThreshold {
		level = types.RiskCritical
	}

	ext.RiskFactors = factors
	ext.OverallRisk = level
}

// requiresApproval reports whether the extension must wait for a human
// grant before it can be applied
func (m *Manager) requiresApproval(ext *types.Extension) bool {
	if ext.Type.RequiresApproval() {
		return true
	}
	if ext.OverallRisk == types.RiskHigh || ext.OverallRisk == types.RiskCritical {
		return true
	}
	return len(ext.UnresolvedConflicts()) > 0
}

// ResolveConflict marks the conflict on the given artifact type as
// resolved by the user
func (m *Manager) ResolveConflict(ext *types.Extension, artifactType string) error {
	for i := range ext.Plan.Conflicts {
		if ext.Plan.Conflicts[i].ArtifactType == artifactType && !ext.Plan.Conflicts[i].Resolved {
			ext.Plan.Conflicts[i].Resolved = true
			ext.UpdatedAt = time.Now().UTC()
			m.audit(ext, "extension_conflict_resolved", map[string]interface{}{"artifact_type": artifactType})
			return nil
		}
	}
	return fmt.Errorf("resolve conflict: no unresolved conflict on artifact type %q", artifactType)
}

// Approve grants a waiting extension. Unresolved conflicts block the
// grant: they need explicit resolution first.
func (m *Manager) Approve(ext *types.Extension) error {
	if unresolved := ext.UnresolvedConflicts(); len(unresolved) > 0 {
		return fmt.Errorf("approve: %d unresolved conflict(s) require resolution", len(unresolved))
	}
	return m.transition(ext, types.ExtStatusApproved)
}

// Cancel abandons an extension at any non-terminal point
func (m *Manager) Cancel(ext *types.Extension) error {
	return m.transition(ext, types.ExtStatusCancelled)
}

// Apply merges an approved extension's phases onto the target plan and
// moves the extension to executing. A pre-execution rollback point is
// snapshotted first. The target plan is reopened (paused) so the
// execution engine picks up exactly the appended phases.
func (m *Manager) Apply(ext *types.Extension, target *types.TaskPlan) error {
	if ext.Status != types.ExtStatusApproved {
		return fmt.Errorf("apply: extension is %s, want approved", ext.Status)
	}
	if unresolved := ext.UnresolvedConflicts(); len(unresolved) > 0 {
		return fmt.Errorf("apply: %d unresolved conflict(s)", len(unresolved))
	}
	if target.ID != ext.TargetPlanID {
		return fmt.Errorf("apply: plan %s is not the extension's target %s", target.ID, ext.TargetPlanID)
	}

	m.snapshot(ext, "pre-execution", target, true)

	if err := m.transition(ext, types.ExtStatusExecuting); err != nil {
		return err
	}

	target.Phases = append(target.Phases, clonePhases(ext.Plan.Phases)...)
	target.EstimatedMinutes += ext.Plan.EstimatedMinutes
	target.Status = types.PlanPaused
	target.UpdatedAt = time.Now().UTC()

	if err := target.Validate(); err != nil {
		return fmt.Errorf("apply: merged plan: %w", err)
	}
	m.audit(ext, "extension_applied", map[string]interface{}{
		"phases":  len(ext.Plan.Phases),
		"minutes": ext.Plan.EstimatedMinutes,
	})
	return nil
}

// Checkpoint snapshots an "after-<template>" rollback point when the
// just-finished phase is an implementation- or deployment-type phase
// of this extension. It must be called at the phase boundary itself,
// while later phases are still pending, so that rolling back to the
// point actually undoes them.
func (m *Manager) Checkpoint(ext *types.Extension, target *types.TaskPlan, phaseID int) {
	if ext.Status != types.ExtStatusExecuting {
		return
	}
	for i := range ext.Plan.Phases {
		phase := &ext.Plan.Phases[i]
		if phase.ID != phaseID || !isCheckpointPhase(phase.TemplateID) {
			continue
		}
		name := "after-" + phase.TemplateID
		if ext.RollbackPointByName(name) == nil {
			m.snapshot(ext, name, target, true)
		}
		return
	}
}

// Complete records a successful extension execution. Checkpoint
// rollback points were already taken at the phase boundaries.
func (m *Manager) Complete(ext *types.Extension) error {
	if err := m.transition(ext, types.ExtStatusTesting); err != nil {
		return err
	}
	return m.transition(ext, types.ExtStatusCompleted)
}

// Fail records a failed extension execution. The extension becomes
// eligible for rollback.
func (m *Manager) Fail(ext *types.Extension) error {
	return m.transition(ext, types.ExtStatusFailed)
}

// transition applies a status change, enforcing the state machine
func (m *Manager) transition(ext *types.Extension, to types.ExtensionStatus) error {
	if !ext.Status.CanTransitionTo(to) {
		return fmt.Errorf("extension %s: illegal transition %s -> %s", ext.ID, ext.Status, to)
	}
	from := ext.Status
	ext.Status = to
	ext.UpdatedAt = time.Now().UTC()
	m.audit(ext, "extension_status_changed", map[string]interface{}{
		"from": string(from),
		"to":   string(to),
	})
	return nil
}

func (m *Manager) audit(ext *types.Extension, action string, metadata map[string]interface{}) {
	if m.trail == nil {
		return
	}
	_ = m.trail.Record(audit.Entry{
		PlanID:   ext.TargetPlanID,
		Action:   action,
		Metadata: metadata,
	})
}

// detectConflicts reports every template-declared artifact type that
// collides with an artifact the target plan already produced
func detectConflicts(templates []types.PhaseTemplate, target *types.TaskPlan) []types.ExtensionConflict {
	var conflicts []types.ExtensionConflict
	for _, tpl := range templates {
		for _, artifactType := range tpl.ArtifactTypes {
			for i := range target.Phases {
				phase := &target.Phases[i]
				for _, artifact := range phase.Artifacts {
					if artifact.Type == artifactType {
						conflicts = append(conflicts, types.ExtensionConflict{
							ArtifactType: artifactType,
							ExistingID:   artifact.ID,
							PhaseTitle:   phase.Title,
						})
					}
				}
			}
		}
	}
	return conflicts
}

func existingArtifactIDs(target *types.TaskPlan) []string {
	var ids []string
	for i := range target.Phases {
		for _, artifact := range target.Phases[i].Artifacts {
			ids = append(ids, artifact.ID)
		}
	}
	return ids
}

// isCheckpointPhase reports whether the phase warrants a rollback
// snapshot once it has run
func isCheckpointPhase(templateID string) bool {
	return strings.Contains(templateID, "implement") || strings.Contains(templateID, "deploy")
}

func rollbackStrategy(extType types.ExtensionType) string {
	switch extType {
	case types.ExtDeployment:
		return "redeploy previous release from the pre-execution snapshot"
	case types.ExtSecurity:
		return "revert policy changes and restore artifact snapshots"
	default:
		return "restore artifact snapshots from the most recent eligible rollback point"
	}
}

// nextVersion increments a vN version string; unparseable input
// restarts the sequence
func nextVersion(base string) string {
	var n int
	if _, err := fmt.Sscanf(base, "v%d", &n); err != nil {
		return "v1"
	}
	return fmt.Sprintf("v%d", n+1)
}
