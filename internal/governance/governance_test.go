package governance

import (
	"context"
	"errors"
	"testing"

	"github.com/planforge/planforge/internal/analyzer"
	"github.com/planforge/planforge/internal/assembler"
	"github.com/planforge/planforge/internal/optimizer"
	"github.com/planforge/planforge/internal/template"
	"github.com/planforge/planforge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreWeights(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name       string
		factors    []types.RiskFactor
		phases     []types.Phase
		complexity types.Complexity
		wantScore  int
		wantLevel  types.RiskLevel
	}{
		{
			name:       "empty plan is low risk",
			complexity: types.ComplexityLow,
			wantScore:  0,
			wantLevel:  types.RiskLow,
		},
		{
			name: "one medium factor plus medium complexity",
			factors: []types.RiskFactor{
				{Category: types.RiskDataAccess, Severity: types.SeverityMedium},
			},
			complexity: types.ComplexityMedium,
			wantScore:  3,
			wantLevel:  types.RiskLow,
		},
		{
			name: "two medium factors cross the medium threshold",
			factors: []types.RiskFactor{
				{Severity: types.SeverityMedium},
				{Severity: types.SeverityMedium},
			},
			complexity: types.ComplexityLow,
			wantScore:  4,
			wantLevel:  types.RiskMedium,
		},
		{
			name: "two high factors with an approval phase are high risk",
			factors: []types.RiskFactor{
				{Severity: types.SeverityHigh},
				{Severity: types.SeverityHigh},
			},
			phases:     []types.Phase{{ID: 1, RequiresApproval: true}},
			complexity: types.ComplexityMedium,
			wantScore:  8,
			wantLevel:  types.RiskHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := p.Score(tt.factors, tt.phases, tt.complexity)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantLevel, p.Level(score))
		})
	}
}

func TestAssessPlanStampsMetadata(t *testing.T) {
	plan := &types.TaskPlan{
		ID:     "plan-1",
		Goal:   "goal",
		Phases: []types.Phase{{ID: 1, Title: "Only"}},
		Metadata: types.PlanMetadata{
			Complexity: types.ComplexityLow,
		},
	}

	level := AssessPlan(DefaultParams(), plan, nil)
	assert.Equal(t, types.RiskLow, level)
	assert.False(t, plan.Metadata.RequiresApproval, "low risk must not require approval")

	high := []types.RiskFactor{
		{Severity: types.SeverityHigh},
		{Severity: types.SeverityHigh},
		{Severity: types.SeverityHigh},
	}
	level = AssessPlan(DefaultParams(), plan, high)
	assert.Equal(t, types.RiskHigh, level)
	assert.True(t, plan.Metadata.RequiresApproval)
}

// The full compile pipeline for a production deployment goal must land
// at high risk with a mandatory approval.
func TestProductionDeploymentGoalRequiresApproval(t *testing.T) {
	catalog, err := template.Load()
	require.NoError(t, err)

	analysis := analyzer.New(analyzer.DefaultParams()).Analyze("Deploy the new payment integration to production")
	plan, err := assembler.New(catalog, analyzer.DefaultParams()).Assemble(analysis, types.GovernanceContext{
		AgentID: "agent-1",
		UserID:  "user-1",
	})
	require.NoError(t, err)
	optimizer.New(optimizer.DefaultParams()).Optimize(plan)

	level := AssessPlan(DefaultParams(), plan, analysis.RiskFactors)

	assert.Equal(t, types.RiskHigh, level)
	assert.True(t, plan.Metadata.RequiresApproval)
	assert.GreaterOrEqual(t,
		DefaultParams().Score(analysis.RiskFactors, plan.Phases, plan.Metadata.Complexity),
		DefaultParams().HighThreshold)

	var severities []types.Severity
	for _, factor := range analysis.RiskFactors {
		severities = append(severities, factor.Severity)
	}
	assert.Contains(t, severities, types.SeverityHigh, "payment + production must surface a high-severity factor")
}

func TestGateAutoApprovesLowRiskPlans(t *testing.T) {
	// Approver that fails the test if it is ever consulted
	gate := NewGate(DefaultParams(), approverFunc(func(context.Context, ApprovalRequest) (Decision, error) {
		t.Fatal("low-risk plan must auto-approve without a collaborator round trip")
		return DecisionReject, nil
	}))

	plan := &types.TaskPlan{ID: "plan-1", Metadata: types.PlanMetadata{RequiresApproval: false}}
	decision, err := gate.ApprovePlan(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, DecisionApprove, decision)
}

func TestGateConsultsApproverForRiskyPlans(t *testing.T) {
	var captured ApprovalRequest
	gate := NewGate(DefaultParams(), approverFunc(func(_ context.Context, req ApprovalRequest) (Decision, error) {
		captured = req
		return DecisionReject, nil
	}))

	plan := &types.TaskPlan{
		ID:   "plan-1",
		Goal: "deploy all the things",
		Metadata: types.PlanMetadata{
			RequiresApproval: true,
			RiskLevel:        types.RiskHigh,
		},
	}
	decision, err := gate.ApprovePlan(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, DecisionReject, decision)
	assert.Equal(t, "plan-1", captured.PlanID)
	assert.Equal(t, types.RiskHigh, captured.Risk)
}

func TestGatePhaseApproval(t *testing.T) {
	gate := NewGate(DefaultParams(), StaticApprover{Decision: DecisionReject})

	plan := &types.TaskPlan{ID: "plan-1"}
	free := &types.Phase{ID: 1, Title: "Free"}
	gated := &types.Phase{ID: 2, Title: "Gated", RequiresApproval: true, ApprovalStatus: types.ApprovalPending}

	decision, err := gate.ApprovePhase(context.Background(), plan, free)
	require.NoError(t, err)
	assert.Equal(t, DecisionApprove, decision)

	decision, err = gate.ApprovePhase(context.Background(), plan, gated)
	require.NoError(t, err)
	assert.Equal(t, DecisionReject, decision)
	assert.Equal(t, types.ApprovalRejected, gated.ApprovalStatus)
}

func TestGatherMetricsFallsBack(t *testing.T) {
	trust, compliance := Gather(context.Background(), nil)
	assert.Equal(t, DefaultTrustScore, trust)
	assert.Equal(t, DefaultComplianceStatus, compliance)

	trust, compliance = Gather(context.Background(), failingMetrics{})
	assert.Equal(t, DefaultTrustScore, trust)
	assert.Equal(t, DefaultComplianceStatus, compliance)

	trust, compliance = Gather(context.Background(), StaticMetrics{Trust: 0.9, Compliance: "compliant"})
	assert.Equal(t, 0.9, trust)
	assert.Equal(t, "compliant", compliance)
}

// approverFunc adapts a function to the Approver interface
type approverFunc func(context.Context, ApprovalRequest) (Decision, error)

func (f approverFunc) Decide(ctx context.Context, req ApprovalRequest) (Decision, error) {
	return f(ctx, req)
}

type failingMetrics struct{}

func (failingMetrics) TrustScore(context.Context) (float64, error) {
	return 0, errors.New("metrics service unavailable")
}

func (failingMetrics) ComplianceStatus(context.Context) (string, error) {
	return "", errors.New("metrics service unavailable")
}
