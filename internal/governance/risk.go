// Package governance scores plan risk and gates execution behind
// approval decisions.
package governance

import (
	"github.com/planforge/planforge/internal/types"
)

// Params are the tunable risk-scoring constants. The weights and
// thresholds ship with the standard values but are parameters so they
// can be recalibrated without a code change.
type Params struct {
	HighWeight      int // Points per high-severity risk factor
	MediumWeight    int // Points per medium-severity risk factor
	ApprovalWeight  int // Points per phase flagged approval-required
	MediumBump      int // Complexity bump for medium goals
	HighBump        int // Complexity bump for high goals
	MediumThreshold int // Score at or above which risk is medium
	HighThreshold   int // Score at or above which risk is high
}

// DefaultParams returns the standard risk-scoring constants
func DefaultParams() Params {
	return Params{
		HighWeight:      3,
		MediumWeight:    2,
		ApprovalWeight:  1,
		MediumBump:      1,
		HighBump:        2,
		MediumThreshold: 4,
		HighThreshold:   8,
	}
}

// Score computes the numeric risk score for a set of risk factors,
// the phases of a plan, and a complexity bucket
func (p Params) Score(factors []types.RiskFactor, phases []types.Phase, complexity types.Complexity) int {
	score := 0
	for _, f := range factors {
		switch f.Severity {
		case types.SeverityHigh:
			score += p.HighWeight
		case types.SeverityMedium:
			score += p.MediumWeight
		}
	}
	for i := range phases {
		if phases[i].RequiresApproval {
			score += p.ApprovalWeight
		}
	}
	switch complexity {
	case types.ComplexityMedium:
		score += p.MediumBump
	case types.ComplexityHigh:
		score += p.HighBump
	}
	return score
}

// Level buckets a numeric score into a risk level
func (p Params) Level(score int) types.RiskLevel {
	switch {
	case score >= p.HighThreshold:
		return types.RiskHigh
	case score >= p.MediumThreshold:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

// AssessPlan scores a plan against its goal analysis, stamps the
// metadata, and returns the level. A plan whose risk is not low must
// obtain explicit approval before executing.
func AssessPlan(params Params, plan *types.TaskPlan, factors []types.RiskFactor) types.RiskLevel {
	score := params.Score(factors, plan.Phases, plan.Metadata.Complexity)
	level := params.Level(score)
	plan.Metadata.RiskLevel = level
	plan.Metadata.RequiresApproval = level != types.RiskLow
	return level
}
