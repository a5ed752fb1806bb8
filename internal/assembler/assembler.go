// Package assembler turns a goal analysis plus a governance context
// into a concrete ordered phase list with resolved dependencies.
package assembler

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/planforge/planforge/internal/analyzer"
	"github.com/planforge/planforge/internal/template"
	"github.com/planforge/planforge/internal/types"
)

// Governance-mandated phase titles. Tests and downstream reporting
// match on these exact strings.
const (
	ComplianceReviewTitle = "Compliance Review"
	FinalReviewTitle      = "Final Review and Validation"
)

// typeTools is the goal-type-specific tool set unioned onto every
// phase of a plan for that goal type
var typeTools = map[types.GoalType][]string{
	types.GoalResearchAndAnalysis: {"web-search", "document-writer"},
	types.GoalContentCreation:     {"document-writer"},
	types.GoalSoftwareDevelopment: {"code-editor", "version-control"},
	types.GoalDataProcessing:      {"data-transform"},
	types.GoalBusinessPlanning:    {"document-writer", "spreadsheet"},
	types.GoalMarketingCampaign:   {"document-writer"},
	types.GoalProjectManagement:   {"spreadsheet"},
	types.GoalComplianceAudit:     {"document-reader", "document-writer"},
	types.GoalSystemIntegration:   {"api-client"},
	types.GoalLearningAndTraining: {"document-writer"},
}

// Assembler builds task plans from the template catalog
type Assembler struct {
	catalog *template.Catalog
	params  analyzer.Params
}

// New creates an assembler backed by the given catalog
func New(catalog *template.Catalog, params analyzer.Params) *Assembler {
	return &Assembler{catalog: catalog, params: params}
}

// Assemble compiles a full task plan for the analyzed goal. The
// returned plan has status planning, a contiguous 1-based phase id
// sequence, and no dangling or forward dependency references.
func (a *Assembler) Assemble(analysis types.GoalAnalysis, ctx types.GovernanceContext) (*types.TaskPlan, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}

	templates := a.catalog.ForGoalType(analysis.GoalType)
	retained := filterByComplexity(templates, analysis.Complexity)
	if len(retained) == 0 {
		return nil, fmt.Errorf("assemble: no templates for goal type %q survive complexity filter %q", analysis.GoalType, analysis.Complexity)
	}

	phases := a.BuildPhases(retained, analysis, ctx, 1)

	// Governance insertion 1: a high-severity risk factor forces a
	// compliance review immediately after the first phase. Later ids
	// and dependency references shift by one.
	if hasHighSeverity(analysis.RiskFactors) {
		phases = InsertComplianceReview(phases)
	}

	// Governance insertion 2: high complexity appends a terminal
	// validation phase depending on the last phase.
	if analysis.Complexity == types.ComplexityHigh {
		phases = appendFinalReview(phases, analysis, a.params)
	}

	now := time.Now().UTC()
	plan := &types.TaskPlan{
		ID:               uuid.NewString(),
		Goal:             analysis.Goal,
		Description:      describe(analysis),
		Phases:           phases,
		Status:           types.PlanPlanning,
		CreatedAt:        now,
		UpdatedAt:        now,
		EstimatedMinutes: totalMinutes(phases),
		Governance:       ctx,
		Metadata: types.PlanMetadata{
			Complexity:         analysis.Complexity,
			InterventionPoints: interventionPoints(phases),
		},
	}

	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("assemble: produced invalid plan: %w", err)
	}
	return plan, nil
}

// BuildPhases instantiates a template set into phases numbered from
// startID. Dependencies on templates dropped by filtering are dropped
// with them; references to templates outside the set entirely were
// already rejected at catalog load.
func (a *Assembler) BuildPhases(templates []types.PhaseTemplate, analysis types.GoalAnalysis, ctx types.GovernanceContext, startID int) []types.Phase {
	idByTemplate := make(map[string]int, len(templates))
	for i, tpl := range templates {
		idByTemplate[tpl.ID] = startID + i
	}

	multiplier := a.params.Multiplier(analysis.Complexity)
	phases := make([]types.Phase, 0, len(templates))
	for i, tpl := range templates {
		var deps []int
		for _, depID := range tpl.DependsOn {
			if id, ok := idByTemplate[depID]; ok {
				deps = append(deps, id)
			}
		}

		requiresApproval := tpl.RequiresApproval ||
			tpl.RiskLevel == types.RiskHigh ||
			ctx.Gates.PhaseTransition

		approvalStatus := types.ApprovalNotRequired
		if requiresApproval {
			approvalStatus = types.ApprovalPending
		}

		phases = append(phases, types.Phase{
			ID:               startID + i,
			TemplateID:       tpl.ID,
			Title:            substitute(tpl.Title, analysis),
			Description:      substitute(tpl.Description, analysis),
			Status:           types.PhasePending,
			DependsOn:        deps,
			EstimatedMinutes: int(float64(tpl.BaseMinutes) * multiplier),
			Capabilities:     append([]string(nil), tpl.Capabilities...),
			Tools:            phaseTools(tpl.Tools, ctx.Limits, analysis.GoalType),
			RequiresApproval: requiresApproval,
			ApprovalStatus:   approvalStatus,
		})
	}
	return phases
}

// filterByComplexity keeps the template subset allowed at the given
// complexity: low keeps only low-risk templates, medium excludes
// high-risk, high keeps all.
func filterByComplexity(templates []types.PhaseTemplate, complexity types.Complexity) []types.PhaseTemplate {
	var out []types.PhaseTemplate
	for _, tpl := range templates {
		switch complexity {
		case types.ComplexityLow:
			if tpl.RiskLevel != types.RiskLow {
				continue
			}
		case types.ComplexityMedium:
			if tpl.RiskLevel == types.RiskHigh {
				continue
			}
		}
		out = append(out, tpl)
	}
	return out
}

// InsertComplianceReview splices a mandated review phase immediately
// after phase 1. Every later phase id and every dependency reference
// to an id >= 2 shifts up by one.
func InsertComplianceReview(phases []types.Phase) []types.Phase {
	review := types.Phase{
		ID:               2,
		Title:            ComplianceReviewTitle,
		Description:      "Review the identified high-severity risk factors before further work proceeds",
		Status:           types.PhasePending,
		DependsOn:        []int{1},
		EstimatedMinutes: 30,
		Capabilities:     []string{"policy-review"},
		Tools:            []string{"document-reader"},
		RequiresApproval: false,
		ApprovalStatus:   types.ApprovalNotRequired,
	}

	out := make([]types.Phase, 0, len(phases)+1)
	for _, p := range phases {
		if p.ID >= 2 {
			p.ID++
			shifted := make([]int, len(p.DependsOn))
			for i, dep := range p.DependsOn {
				if dep >= 2 {
					dep++
				}
				shifted[i] = dep
			}
			p.DependsOn = shifted
		}
		out = append(out, p)
	}

	if len(out) == 0 {
		return []types.Phase{review}
	}
	result := []types.Phase{out[0], review}
	return append(result, out[1:]...)
}

// appendFinalReview adds the terminal validation phase depending on
// the current last phase
func appendFinalReview(phases []types.Phase, analysis types.GoalAnalysis, params analyzer.Params) []types.Phase {
	last := phases[len(phases)-1]
	return append(phases, types.Phase{
		ID:               last.ID + 1,
		Title:            FinalReviewTitle,
		Description:      "Validate all produced artifacts against the original goal before closing the plan",
		Status:           types.PhasePending,
		DependsOn:        []int{last.ID},
		EstimatedMinutes: int(45 * params.Multiplier(analysis.Complexity)),
		Capabilities:     []string{"reporting"},
		Tools:            []string{"document-reader"},
		RequiresApproval: false,
		ApprovalStatus:   types.ApprovalNotRequired,
	})
}

// phaseTools filters template tools through the allow-list, then
// unions the goal-type tool set
func phaseTools(toolList []string, limits types.ResourceLimits, goalType types.GoalType) []string {
	var tools []string
	seen := make(map[string]bool)
	for _, tool := range toolList {
		if limits.ToolAllowed(tool) && !seen[tool] {
			seen[tool] = true
			tools = append(tools, tool)
		}
	}
	for _, tool := range typeTools[goalType] {
		if !seen[tool] {
			seen[tool] = true
			tools = append(tools, tool)
		}
	}
	return tools
}

// substitute fills {domain}, {type}, {keywords}, and {entities}
// placeholder tokens
func substitute(text string, analysis types.GoalAnalysis) string {
	keywords := "the goal"
	if len(analysis.Keywords) > 0 {
		n := len(analysis.Keywords)
		if n > 3 {
			n = 3
		}
		keywords = strings.Join(analysis.Keywords[:n], ", ")
	}
	entities := "the involved systems"
	if len(analysis.Entities) > 0 {
		entities = strings.Join(analysis.Entities, ", ")
	}

	r := strings.NewReplacer(
		"{domain}", analysis.Domain,
		"{type}", analysis.GoalType.String(),
		"{keywords}", keywords,
		"{entities}", entities,
	)
	return r.Replace(text)
}

func hasHighSeverity(factors []types.RiskFactor) bool {
	for _, f := range factors {
		if f.Severity == types.SeverityHigh {
			return true
		}
	}
	return false
}

func interventionPoints(phases []types.Phase) []string {
	var titles []string
	for _, p := range phases {
		if p.RequiresApproval {
			titles = append(titles, p.Title)
		}
	}
	return titles
}

func totalMinutes(phases []types.Phase) int {
	total := 0
	for _, p := range phases {
		total += p.EstimatedMinutes
	}
	return total
}

func describe(analysis types.GoalAnalysis) string {
	return fmt.Sprintf("%s plan (%s complexity, %s domain) for: %s",
		analysis.GoalType, analysis.Complexity, analysis.Domain, analysis.Goal)
}
