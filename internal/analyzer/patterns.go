package analyzer

import (
	"regexp"

	"github.com/planforge/planforge/internal/types"
)

// stopWords are stripped before keyword extraction
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "to": true, "of": true,
	"for": true, "in": true, "on": true, "at": true, "by": true,
	"with": true, "from": true, "into": true, "is": true, "are": true,
	"was": true, "be": true, "been": true, "this": true, "that": true,
	"it": true, "its": true, "as": true, "and": true, "or": true,
	"but": true, "then": true, "after": true, "before": true,
	"our": true, "my": true, "your": true, "their": true, "we": true,
	"i": true, "you": true, "they": true, "will": true, "should": true,
	"can": true, "could": true, "would": true, "all": true, "some": true,
	"please": true, "need": true, "want": true,
}

// connectives signal a multi-step goal
var connectives = []string{"and", "then", "after", "before", "followed by", "as well as"}

// complexActions bump the complexity score when present
var complexActions = []string{
	"analyze", "integrate", "migrate", "optimize", "implement",
	"deploy", "orchestrate", "refactor", "automate", "architect",
}

// goalPattern maps an ordered regex group to a goal type.
// First matching group wins; order is significant.
type goalPattern struct {
	goalType types.GoalType
	re       *regexp.Regexp
}

var goalPatterns = []goalPattern{
	{types.GoalComplianceAudit, regexp.MustCompile(`(?i)\b(audit|compliance|regulation|regulatory|gdpr|hipaa|sox)\b`)},
	{types.GoalSystemIntegration, regexp.MustCompile(`(?i)\b(integrat\w*|connect|sync|webhook|interoperab\w*)\b`)},
	{types.GoalSoftwareDevelopment, regexp.MustCompile(`(?i)\b(develop|build|code|implement|program|app|application|api|software|feature|bug|deploy)\b`)},
	{types.GoalDataProcessing, regexp.MustCompile(`(?i)\b(data|dataset|etl|pipeline|transform|cleanse|aggregate|database)\b`)},
	{types.GoalMarketingCampaign, regexp.MustCompile(`(?i)\b(marketing|campaign|advertis\w*|brand|seo|social media|promotion)\b`)},
	{types.GoalBusinessPlanning, regexp.MustCompile(`(?i)\b(business plan|strategy|strategic|forecast|budget|revenue|roadmap)\b`)},
	{types.GoalProjectManagement, regexp.MustCompile(`(?i)\b(project|milestone|sprint|schedule|coordinate|kanban|backlog)\b`)},
	{types.GoalLearningAndTraining, regexp.MustCompile(`(?i)\b(learn|training|course|curriculum|onboard\w*|tutorial|teach)\b`)},
	{types.GoalContentCreation, regexp.MustCompile(`(?i)\b(write|draft|article|blog|content|documentation|copy|post|newsletter)\b`)},
	{types.GoalResearchAndAnalysis, regexp.MustCompile(`(?i)\b(research|analyz\w*|investigat\w*|study|explore|compare|evaluat\w*)\b`)},
}

// domainPattern maps keyword hits to a domain label
type domainPattern struct {
	domain string
	re     *regexp.Regexp
}

var domainPatterns = []domainPattern{
	{"finance", regexp.MustCompile(`(?i)\b(payment|invoice|billing|bank\w*|financial|accounting|trading|pricing)\b`)},
	{"healthcare", regexp.MustCompile(`(?i)\b(patient|medical|health\w*|clinical|pharma\w*)\b`)},
	{"technology", regexp.MustCompile(`(?i)\b(software|api|cloud|server|infrastructure|database|deploy\w*|code)\b`)},
	{"marketing", regexp.MustCompile(`(?i)\b(market\w*|campaign|brand|customer|audience|competitor)\b`)},
	{"education", regexp.MustCompile(`(?i)\b(student|course|learn\w*|training|curriculum)\b`)},
	{"legal", regexp.MustCompile(`(?i)\b(legal|contract|compliance|regulation|policy)\b`)},
	{"ecommerce", regexp.MustCompile(`(?i)\b(shop|store|product catalog|checkout|order\w*|inventory)\b`)},
}

const defaultDomain = "general"

// intentPattern maps keyword hits to an intent
type intentPattern struct {
	intent types.Intent
	re     *regexp.Regexp
}

var intentPatterns = []intentPattern{
	{types.IntentMigrate, regexp.MustCompile(`(?i)\b(migrat\w*|port|move to|transition)\b`)},
	{types.IntentIntegrate, regexp.MustCompile(`(?i)\b(integrat\w*|connect|sync)\b`)},
	{types.IntentAutomate, regexp.MustCompile(`(?i)\b(automat\w*|schedule|orchestrat\w*)\b`)},
	{types.IntentValidate, regexp.MustCompile(`(?i)\b(test|verify|validat\w*|audit|check)\b`)},
	{types.IntentImprove, regexp.MustCompile(`(?i)\b(improve|optimi\w*|enhance|speed up|fix|refactor)\b`)},
	{types.IntentAnalyze, regexp.MustCompile(`(?i)\b(analyz\w*|research|investigat\w*|study|compare|evaluat\w*)\b`)},
	{types.IntentCreate, regexp.MustCompile(`(?i)\b(create|build|write|develop|draft|design|launch|make)\b`)},
}

// riskPattern maps keyword hits to a risk factor template
type riskPattern struct {
	category    types.RiskCategory
	severity    types.Severity
	re          *regexp.Regexp
	description string
	mitigation  string
}

var riskPatterns = []riskPattern{
	{
		category:    types.RiskDataAccess,
		severity:    types.SeverityMedium,
		re:          regexp.MustCompile(`(?i)\b(database|records|personal|customer data|user data|pii|credentials)\b`),
		description: "goal touches stored or personal data",
		mitigation:  "restrict data scope and log every read",
	},
	{
		category:    types.RiskExternalCommunication,
		severity:    types.SeverityMedium,
		re:          regexp.MustCompile(`(?i)\b(email|send|publish|post|notify|broadcast|external api)\b`),
		description: "goal communicates outside the system boundary",
		mitigation:  "route outbound messages through review",
	},
	{
		category:    types.RiskSystemModification,
		severity:    types.SeverityHigh,
		re:          regexp.MustCompile(`(?i)\b(deploy|production|install|uninstall|modify system|delete|migrate|infrastructure)\b`)},
	{
		category:    types.RiskFinancialImpact,
		severity:    types.SeverityHigh,
		re:          regexp.MustCompile(`(?i)\b(payment|purchase|invoice|billing|transaction|refund|payout)\b`)},
	{
		category:    types.RiskComplianceRequirement,
		severity:    types.SeverityMedium,
		re:          regexp.MustCompile(`(?i)\b(compliance|regulation|gdpr|hipaa|sox|audit trail|legal)\b`)},
}

// riskDetail fills the free-text fields for patterns declared without them
func (r riskPattern) factor() types.RiskFactor {
	f := types.RiskFactor{
		Category:    r.category,
		Severity:    r.severity,
		Description: r.description,
		Mitigation:  r.mitigation,
	}
	if f.Description == "" {
		switch r.category {
		case types.RiskSystemModification:
			f.Description = "goal changes live systems or infrastructure"
			f.Mitigation = "stage changes and keep a rollback path"
		case types.RiskFinancialImpact:
			f.Description = "goal moves or affects money"
			f.Mitigation = "require explicit approval for financial actions"
		case types.RiskComplianceRequirement:
			f.Description = "goal falls under a compliance regime"
			f.Mitigation = "insert a compliance review phase"
		}
	}
	return f
}

// baseMinutes is the per-type duration baseline before complexity scaling
var baseMinutes = map[types.GoalType]int{
	types.GoalResearchAndAnalysis: 120,
	types.GoalContentCreation:     90,
	types.GoalSoftwareDevelopment: 240,
	types.GoalDataProcessing:      150,
	types.GoalBusinessPlanning:    180,
	types.GoalMarketingCampaign:   120,
	types.GoalProjectManagement:   200,
	types.GoalComplianceAudit:     160,
	types.GoalSystemIntegration:   220,
	types.GoalLearningAndTraining: 100,
}

// typeCapabilities is the required-capability set per goal type
var typeCapabilities = map[types.GoalType][]string{
	types.GoalResearchAndAnalysis: {"web-research", "synthesis", "reporting"},
	types.GoalContentCreation:     {"writing", "editing", "formatting"},
	types.GoalSoftwareDevelopment: {"coding", "testing", "version-control"},
	types.GoalDataProcessing:      {"data-transformation", "validation", "storage"},
	types.GoalBusinessPlanning:    {"market-analysis", "financial-modeling", "documentation"},
	types.GoalMarketingCampaign:   {"audience-analysis", "content-production", "scheduling"},
	types.GoalProjectManagement:   {"scheduling", "coordination", "tracking"},
	types.GoalComplianceAudit:     {"policy-review", "evidence-collection", "reporting"},
	types.GoalSystemIntegration:   {"api-design", "configuration", "testing"},
	types.GoalLearningAndTraining: {"curriculum-design", "content-production", "assessment"},
}
