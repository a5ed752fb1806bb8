package extension

import (
	"testing"

	"github.com/planforge/planforge/internal/analyzer"
	"github.com/planforge/planforge/internal/audit"
	"github.com/planforge/planforge/internal/governance"
	"github.com/planforge/planforge/internal/optimizer"
	"github.com/planforge/planforge/internal/template"
	"github.com/planforge/planforge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	catalog, err := template.Load()
	require.NoError(t, err)
	return NewManager(Options{
		Catalog:   catalog,
		Analyzer:  analyzer.DefaultParams(),
		Risk:      governance.DefaultParams(),
		Optimizer: optimizer.DefaultParams(),
		Trail:     &audit.MemoryTrail{},
	})
}

// completedPlan is a finished research plan with a few artifacts on record
func completedPlan() *types.TaskPlan {
	return &types.TaskPlan{
		ID:     "plan-1",
		Goal:   "Research market trends",
		Status: types.PlanCompleted,
		Phases: []types.Phase{
			{
				ID: 1, Title: "Topic Analysis", Status: types.PhaseCompleted, EstimatedMinutes: 30,
				Artifacts: []types.Artifact{{ID: "art-1", Type: "report"}},
			},
			{
				ID: 2, Title: "Information Gathering", Status: types.PhaseCompleted,
				DependsOn: []int{1}, EstimatedMinutes: 60,
			},
			{
				ID: 3, Title: "Documentation", Status: types.PhaseCompleted,
				DependsOn: []int{2}, EstimatedMinutes: 30,
				Artifacts: []types.Artifact{{ID: "art-2", Type: "source-code"}},
			},
		},
		EstimatedMinutes: 120,
		Governance:       types.GovernanceContext{AgentID: "agent-1", UserID: "user-1"},
	}
}

func TestProposeDocumentationAutoApproves(t *testing.T) {
	m := newManager(t)
	target := completedPlan()

	ext, err := m.Propose("Write a user guide for the research findings", types.ExtDocumentation, target, "v1")
	require.NoError(t, err)

	assert.Equal(t, types.ExtStatusApproved, ext.Status)
	assert.Equal(t, "v1", ext.BaseVersion)
	assert.Equal(t, "v2", ext.Version)
	assert.Empty(t, ext.Plan.Conflicts)

	// Phase ids continue past the target plan's, dependencies remapped
	require.Len(t, ext.Plan.Phases, 3)
	assert.Equal(t, 4, ext.Plan.Phases[0].ID)
	assert.Equal(t, []int{4}, ext.Plan.Phases[1].DependsOn)
	assert.Equal(t, []int{5}, ext.Plan.Phases[2].DependsOn)
	assert.Greater(t, ext.Plan.EstimatedMinutes, 0)
}

func TestProposeDeploymentAwaitsApproval(t *testing.T) {
	m := newManager(t)
	ext, err := m.Propose("Deploy the report generator", types.ExtDeployment, completedPlan(), "v1")
	require.NoError(t, err)
	assert.Equal(t, types.ExtStatusAwaitingApproval, ext.Status)

	require.NoError(t, m.Approve(ext))
	assert.Equal(t, types.ExtStatusApproved, ext.Status)
}

func TestProposeRejectsUnknownExtensionType(t *testing.T) {
	m := newManager(t)
	_, err := m.Propose("Do something", types.ExtensionType("time-travel"), completedPlan(), "v1")
	assert.Error(t, err)
}

func TestConflictDetectionBlocksApproval(t *testing.T) {
	m := newManager(t)
	target := completedPlan()

	// The feature templates declare a source-code artifact; the target
	// already has one.
	ext, err := m.Propose("Add an export capability", types.ExtFeatureAddition, target, "v1")
	require.NoError(t, err)

	require.Len(t, ext.UnresolvedConflicts(), 1)
	assert.Equal(t, "source-code", ext.Plan.Conflicts[0].ArtifactType)
	assert.Equal(t, "art-2", ext.Plan.Conflicts[0].ExistingID)
	assert.Equal(t, types.ExtStatusAwaitingApproval, ext.Status)

	assert.Error(t, m.Approve(ext), "unresolved conflicts must block approval")

	require.NoError(t, m.ResolveConflict(ext, "source-code"))
	assert.Empty(t, ext.UnresolvedConflicts())
	require.NoError(t, m.Approve(ext))
}

func TestResolveConflictUnknownType(t *testing.T) {
	m := newManager(t)
	ext, err := m.Propose("Add an export capability", types.ExtFeatureAddition, completedPlan(), "v1")
	require.NoError(t, err)
	assert.Error(t, m.ResolveConflict(ext, "release-plan"))
}

func TestApplyMergesPhasesAndSnapshotsPreExecution(t *testing.T) {
	m := newManager(t)
	target := completedPlan()
	originalPhases := len(target.Phases)

	ext, err := m.Propose("Deploy the report generator", types.ExtDeployment, target, "v1")
	require.NoError(t, err)
	require.NoError(t, m.Approve(ext))
	require.NoError(t, m.Apply(ext, target))

	assert.Equal(t, types.ExtStatusExecuting, ext.Status)
	assert.Equal(t, types.PlanPaused, target.Status)
	assert.Len(t, target.Phases, originalPhases+len(ext.Plan.Phases))

	point := ext.RollbackPointByName("pre-execution")
	require.NotNil(t, point)
	assert.True(t, point.CanRollbackTo)
	assert.Len(t, point.Phases, originalPhases)
}

func TestApplyRequiresApprovedStatus(t *testing.T) {
	m := newManager(t)
	target := completedPlan()
	ext, err := m.Propose("Deploy the report generator", types.ExtDeployment, target, "v1")
	require.NoError(t, err)

	assert.Error(t, m.Apply(ext, target), "awaiting-approval extension must not apply")
	assert.Equal(t, types.ExtStatusAwaitingApproval, ext.Status)
}

func TestCheckpointsCaptureDeploymentBoundaries(t *testing.T) {
	m := newManager(t)
	target := completedPlan()
	ext, err := m.Propose("Deploy the report generator", types.ExtDeployment, target, "v1")
	require.NoError(t, err)
	require.NoError(t, m.Approve(ext))
	require.NoError(t, m.Apply(ext, target))

	// Drive the merged phases the way the engine does, checkpointing
	// at each boundary while later phases are still pending.
	for i := 3; i < len(target.Phases); i++ {
		target.Phases[i].Status = types.PhaseCompleted
		m.Checkpoint(ext, target, target.Phases[i].ID)
	}
	require.NoError(t, m.Complete(ext))
	assert.Equal(t, types.ExtStatusCompleted, ext.Status)

	point := ext.RollbackPointByName("after-ext.deploy.execution")
	require.NotNil(t, point)
	assert.True(t, point.CanRollbackTo)

	// The point captures the boundary, not the end state: the
	// verification phase had not run yet when it was taken.
	var verification *types.Phase
	for i := range point.Phases {
		if point.Phases[i].TemplateID == "ext.deploy.verification" {
			verification = &point.Phases[i]
		}
	}
	require.NotNil(t, verification)
	assert.Equal(t, types.PhasePending, verification.Status)
}

func TestCheckpointIgnoresForeignAndRepeatedPhases(t *testing.T) {
	m := newManager(t)
	target := completedPlan()
	ext, err := m.Propose("Deploy the report generator", types.ExtDeployment, target, "v1")
	require.NoError(t, err)
	require.NoError(t, m.Approve(ext))
	require.NoError(t, m.Apply(ext, target))

	// Phases of the base plan are not extension boundaries
	m.Checkpoint(ext, target, 1)
	assert.Nil(t, ext.RollbackPointByName("after-ext.deploy.preparation"))

	target.Phases[3].Status = types.PhaseCompleted
	m.Checkpoint(ext, target, target.Phases[3].ID)
	m.Checkpoint(ext, target, target.Phases[3].ID)

	count := 0
	for _, point := range ext.RollbackPoints {
		if point.Name == "after-ext.deploy.preparation" {
			count++
		}
	}
	assert.Equal(t, 1, count, "repeated boundary must not duplicate the point")
}

func TestRollbackRestoresTargetPlan(t *testing.T) {
	m := newManager(t)
	target := completedPlan()
	originalPhases := len(target.Phases)
	originalMinutes := target.EstimatedMinutes

	ext, err := m.Propose("Deploy the report generator", types.ExtDeployment, target, "v1")
	require.NoError(t, err)
	require.NoError(t, m.Approve(ext))
	require.NoError(t, m.Apply(ext, target))
	require.NoError(t, m.Fail(ext))

	require.NoError(t, m.Rollback(ext, target, "pre-execution"))

	assert.Equal(t, types.ExtStatusRolledBack, ext.Status)
	assert.Len(t, target.Phases, originalPhases)
	assert.Equal(t, originalMinutes, target.EstimatedMinutes)
	assert.Equal(t, types.PlanCompleted, target.Status)
	assert.Equal(t, 3, target.CurrentPhase)
}

func TestRollbackRejectsIneligiblePoint(t *testing.T) {
	m := newManager(t)
	target := completedPlan()
	ext, err := m.Propose("Deploy the report generator", types.ExtDeployment, target, "v1")
	require.NoError(t, err)
	require.NoError(t, m.Approve(ext))
	require.NoError(t, m.Apply(ext, target))
	require.NoError(t, m.Fail(ext))

	m.snapshot(ext, "mid-flight", target, false)

	err = m.Rollback(ext, target, "mid-flight")
	assert.Error(t, err)
	assert.Equal(t, types.ExtStatusFailed, ext.Status, "rejected rollback must not mutate status")

	err = m.Rollback(ext, target, "no-such-point")
	assert.Error(t, err)
	assert.Equal(t, types.ExtStatusFailed, ext.Status)
}

func TestRollbackRequiresEligibleStatus(t *testing.T) {
	m := newManager(t)
	target := completedPlan()
	ext, err := m.Propose("Deploy the report generator", types.ExtDeployment, target, "v1")
	require.NoError(t, err)
	require.NoError(t, m.Approve(ext))
	require.NoError(t, m.Apply(ext, target))
	require.NoError(t, m.Complete(ext))

	err = m.Rollback(ext, target, "pre-execution")
	assert.Error(t, err, "completed extension is terminal")
	assert.Equal(t, types.ExtStatusCompleted, ext.Status)
}

func TestAssessRiskReachesCritical(t *testing.T) {
	m := newManager(t)
	catalog, err := template.Load()
	require.NoError(t, err)

	// Many phases and artifacts saturate the repository-complexity term
	target := completedPlan()
	for id := 4; id <= 20; id++ {
		target.Phases = append(target.Phases, types.Phase{
			ID: id, Title: "Filler", Status: types.PhaseCompleted,
			Artifacts: []types.Artifact{{ID: "f", Type: "filler"}},
		})
	}

	highFactor := types.RiskFactor{Category: types.RiskSystemModification, Severity: types.SeverityHigh}
	analysis := types.GoalAnalysis{
		Complexity:  types.ComplexityHigh,
		RiskFactors: []types.RiskFactor{highFactor, highFactor, highFactor, highFactor},
	}
	ext := &types.Extension{
		ID: "ext-1", TargetPlanID: target.ID, Goal: "g", Type: types.ExtDeployment,
		Status: types.ExtStatusRiskAssessment,
		Plan: types.ExtensionPlan{
			Phases: []types.Phase{
				{ID: 21, Title: "a", RequiresApproval: true},
				{ID: 22, Title: "b", RequiresApproval: true},
			},
		},
	}

	m.assessRisk(ext, analysis, catalog.ForExtensionType(types.ExtDeployment), target)
	assert.Equal(t, types.RiskCritical, ext.OverallRisk)
}

func TestCancelFollowsStateMachine(t *testing.T) {
	m := newManager(t)
	ext, err := m.Propose("Deploy the report generator", types.ExtDeployment, completedPlan(), "v1")
	require.NoError(t, err)

	require.NoError(t, m.Cancel(ext))
	assert.Equal(t, types.ExtStatusCancelled, ext.Status)
	assert.Error(t, m.Cancel(ext), "cancelled is terminal")
}

func TestNextVersion(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"v1", "v2"},
		{"v9", "v10"},
		{"", "v1"},
		{"release-3", "v1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nextVersion(tt.base), "base %q", tt.base)
	}
}
