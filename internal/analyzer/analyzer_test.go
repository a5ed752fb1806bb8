package analyzer

import (
	"testing"

	"github.com/planforge/planforge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeIsPure(t *testing.T) {
	a := New(DefaultParams())
	goal := "Research market trends and analyze competitor pricing"

	first := a.Analyze(goal)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, a.Analyze(goal), "repeated analysis must be identical")
	}
}

func TestAnalyzeResearchGoal(t *testing.T) {
	a := New(DefaultParams())
	got := a.Analyze("Research market trends and analyze competitor pricing")

	assert.Equal(t, types.GoalResearchAndAnalysis, got.GoalType)
	assert.NotEqual(t, types.ComplexityLow, got.Complexity, "two connective clauses should push past low")
	assert.GreaterOrEqual(t, len(got.Keywords), 6)
	assert.Empty(t, got.RiskFactors, "a research goal carries no risk factors")
	assert.Equal(t, types.IntentAnalyze, got.Intent)
	assert.Equal(t, string(types.GoalResearchAndAnalysis), got.SuggestedTemplate)
}

func TestAnalyzeDeploymentGoal(t *testing.T) {
	a := New(DefaultParams())
	got := a.Analyze("Deploy the new payment integration to production")

	categories := map[types.RiskCategory]types.Severity{}
	for _, f := range got.RiskFactors {
		categories[f.Category] = f.Severity
	}
	assert.Equal(t, types.SeverityHigh, categories[types.RiskSystemModification])
	assert.Equal(t, types.SeverityHigh, categories[types.RiskFinancialImpact])
	assert.Equal(t, types.GoalSystemIntegration, got.GoalType)
}

func TestClassifyGoalType(t *testing.T) {
	tests := []struct {
		goal string
		want types.GoalType
	}{
		{"Build a REST API for user accounts", types.GoalSoftwareDevelopment},
		{"Write a blog post about remote work", types.GoalContentCreation},
		{"Clean and transform the sales dataset", types.GoalDataProcessing},
		{"Prepare for the GDPR compliance audit", types.GoalComplianceAudit},
		{"Plan the Q3 marketing campaign", types.GoalMarketingCampaign},
		{"Create an onboarding course for new hires", types.GoalLearningAndTraining},
		{"Do something unusual with paperclips", types.GoalResearchAndAnalysis}, // Default
	}

	for _, tt := range tests {
		t.Run(tt.goal, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyGoalType(tt.goal))
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	got := extractKeywords("Research market trends and analyze competitor pricing")
	assert.Equal(t, []string{"research", "market", "trends", "analyze", "competitor", "pricing"}, got)

	// Cap at ten
	long := extractKeywords("alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu")
	assert.Len(t, long, 10)
}

func TestExtractEntities(t *testing.T) {
	got := extractEntities(`Migrate the "billing service" to Google Cloud Platform`)
	require.Len(t, got, 2)
	assert.Contains(t, got, "billing service")
	assert.Contains(t, got, "Google Cloud Platform")

	// Leading sentence-case word is not an entity
	assert.Empty(t, extractEntities("Research something plain"))
}

func TestComplexityBuckets(t *testing.T) {
	a := New(DefaultParams())

	low := a.Analyze("Write a haiku")
	assert.Equal(t, types.ComplexityLow, low.Complexity)

	high := a.Analyze(`Implement the "Orion Reporting" data pipeline, integrate it with Salesforce CRM and Snowflake Warehouse, and then migrate all historical records`)
	assert.Equal(t, types.ComplexityHigh, high.Complexity)
}

func TestEstimatedMinutesScaling(t *testing.T) {
	a := New(DefaultParams())

	short := a.Analyze("Write a haiku")
	long := a.Analyze("Research market trends and analyze competitor pricing")
	assert.Positive(t, short.EstimatedMinutes)
	assert.Greater(t, long.EstimatedMinutes, short.EstimatedMinutes)
}

func TestCapabilitiesFollowGoalType(t *testing.T) {
	a := New(DefaultParams())
	got := a.Analyze("Build a REST API for user accounts")
	assert.Equal(t, []string{"coding", "testing", "version-control"}, got.Capabilities)
}

func TestContainsWord(t *testing.T) {
	assert.True(t, containsWord("research and analyze", "and"))
	assert.False(t, containsWord("standard sandbox", "and"))
	assert.True(t, containsWord("and then some", "and"))
	assert.True(t, containsWord("first, then second", "then"))
}
