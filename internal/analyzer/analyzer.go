// Package analyzer classifies a raw goal string into a structured
// GoalAnalysis. The pipeline is deterministic and total: every branch
// has a default, so analysis never fails and identical input always
// yields an identical result.
package analyzer

import (
	"regexp"
	"strings"

	"github.com/planforge/planforge/internal/types"
)

const (
	maxKeywords = 10
	maxEntities = 5
)

// Params are the tunable scoring constants of the analyzer. The
// defaults mirror the shipped configuration; they are parameters
// rather than literals so product owners can recalibrate them.
type Params struct {
	MediumThreshold  float64 // Complexity score at or above which a goal is medium
	HighThreshold    float64 // Complexity score at or above which a goal is high
	LowMultiplier    float64 // Duration multiplier for low complexity
	MediumMultiplier float64 // Duration multiplier for medium complexity
	HighMultiplier   float64 // Duration multiplier for high complexity
}

// DefaultParams returns the standard scoring constants
func DefaultParams() Params {
	return Params{
		MediumThreshold:  4,
		HighThreshold:    7,
		LowMultiplier:    0.7,
		MediumMultiplier: 1.0,
		HighMultiplier:   1.5,
	}
}

// Multiplier returns the duration multiplier for a complexity bucket
func (p Params) Multiplier(c types.Complexity) float64 {
	switch c {
	case types.ComplexityLow:
		return p.LowMultiplier
	case types.ComplexityHigh:
		return p.HighMultiplier
	default:
		return p.MediumMultiplier
	}
}

// Analyzer turns goal strings into GoalAnalysis records
type Analyzer struct {
	params Params
}

// New creates an analyzer with the given scoring parameters
func New(params Params) *Analyzer {
	return &Analyzer{params: params}
}

// Analyze classifies a raw goal string. It is a pure function of its
// input: no state is read or written.
func (a *Analyzer) Analyze(goal string) types.GoalAnalysis {
	keywords := extractKeywords(goal)
	entities := extractEntities(goal)
	goalType := classifyGoalType(goal)
	complexity := a.scoreComplexity(goal, keywords, entities)

	analysis := types.GoalAnalysis{
		Goal:             goal,
		GoalType:         goalType,
		Domain:           classifyDomain(goal),
		Intent:           classifyIntent(goal),
		Complexity:       complexity,
		Keywords:         keywords,
		Entities:         entities,
		RiskFactors:      detectRiskFactors(goal),
		EstimatedMinutes: a.estimateMinutes(goalType, complexity, len(keywords)),
		Capabilities:     append([]string(nil), typeCapabilities[goalType]...),
		// Template sets are keyed by goal type in the catalog
		SuggestedTemplate: string(goalType),
	}
	return analysis
}

var tokenRe = regexp.MustCompile(`[a-z0-9][a-z0-9'-]*`)

// extractKeywords lower-cases, tokenizes, and strips stop words,
// keeping original order and capping the list at maxKeywords.
func extractKeywords(goal string) []string {
	tokens := tokenRe.FindAllString(strings.ToLower(goal), -1)
	seen := make(map[string]bool, len(tokens))
	var keywords []string
	for _, tok := range tokens {
		if stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

var (
	quotedRe     = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	capitalRunRe = regexp.MustCompile(`\b[A-Z][a-zA-Z0-9]*(?:\s+[A-Z][a-zA-Z0-9]*)*\b`)
)

// extractEntities pulls quoted substrings and capitalized runs,
// de-duplicated and capped at maxEntities. The leading word of the
// goal is skipped: sentence case is not an entity signal.
func extractEntities(goal string) []string {
	var candidates []string
	for _, m := range quotedRe.FindAllStringSubmatch(goal, -1) {
		if m[1] != "" {
			candidates = append(candidates, m[1])
		} else {
			candidates = append(candidates, m[2])
		}
	}
	for _, m := range capitalRunRe.FindAllStringIndex(goal, -1) {
		if m[0] == 0 {
			continue
		}
		candidates = append(candidates, goal[m[0]:m[1]])
	}

	seen := make(map[string]bool, len(candidates))
	var entities []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		entities = append(entities, c)
		if len(entities) == maxEntities {
			break
		}
	}
	return entities
}

// classifyGoalType tests the goal against the ordered pattern groups;
// the first matching group wins.
func classifyGoalType(goal string) types.GoalType {
	for _, p := range goalPatterns {
		if p.re.MatchString(goal) {
			return p.goalType
		}
	}
	return types.GoalResearchAndAnalysis
}

func classifyDomain(goal string) string {
	for _, p := range domainPatterns {
		if p.re.MatchString(goal) {
			return p.domain
		}
	}
	return defaultDomain
}

func classifyIntent(goal string) types.Intent {
	for _, p := range intentPatterns {
		if p.re.MatchString(goal) {
			return p.intent
		}
	}
	return types.IntentCreate
}

// scoreComplexity computes the weighted complexity score:
// length/50 + keywords/3 + entities/2, +2 for a complex action verb,
// +1 for a multi-step connective, then bucketed at the thresholds.
func (a *Analyzer) scoreComplexity(goal string, keywords, entities []string) types.Complexity {
	score := float64(len(goal))/50 +
		float64(len(keywords))/3 +
		float64(len(entities))/2

	lower := strings.ToLower(goal)
	for _, action := range complexActions {
		if strings.Contains(lower, action) {
			score += 2
			break
		}
	}
	for _, conn := range connectives {
		if containsWord(lower, conn) {
			score++
			break
		}
	}

	switch {
	case score >= a.params.HighThreshold:
		return types.ComplexityHigh
	case score >= a.params.MediumThreshold:
		return types.ComplexityMedium
	default:
		return types.ComplexityLow
	}
}

// containsWord matches whole words so "sandbox" does not count as "and"
func containsWord(s, word string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(s[start-1])
		afterOK := end == len(s) || !isWordChar(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// detectRiskFactors appends one factor per matching risk category
func detectRiskFactors(goal string) []types.RiskFactor {
	var factors []types.RiskFactor
	for _, p := range riskPatterns {
		if p.re.MatchString(goal) {
			factors = append(factors, p.factor())
		}
	}
	return factors
}

// estimateMinutes scales the per-type baseline by complexity and
// keyword count
func (a *Analyzer) estimateMinutes(goalType types.GoalType, complexity types.Complexity, keywordCount int) int {
	base := float64(baseMinutes[goalType])
	return int(base * a.params.Multiplier(complexity) * (1 + 0.1*float64(keywordCount)))
}
