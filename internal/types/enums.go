// Package types defines the shared domain vocabulary: goal
// classifications, plan and phase state machines, risk taxonomy, and
// the record types that flow between the analyzer, assembler, and
// execution engine.
package types

// GoalType classifies what kind of work a goal describes
type GoalType string

const (
	GoalResearchAndAnalysis GoalType = "research-and-analysis"
	GoalContentCreation     GoalType = "content-creation"
	GoalSoftwareDevelopment GoalType = "software-development"
	GoalDataProcessing      GoalType = "data-processing"
	GoalBusinessPlanning    GoalType = "business-planning"
	GoalMarketingCampaign   GoalType = "marketing-campaign"
	GoalProjectManagement   GoalType = "project-management"
	GoalComplianceAudit     GoalType = "compliance-audit"
	GoalSystemIntegration   GoalType = "system-integration"
	GoalLearningAndTraining GoalType = "learning-and-training"
)

// AllGoalTypes returns every recognized goal type
func AllGoalTypes() []GoalType {
	return []GoalType{
		GoalResearchAndAnalysis,
		GoalContentCreation,
		GoalSoftwareDevelopment,
		GoalDataProcessing,
		GoalBusinessPlanning,
		GoalMarketingCampaign,
		GoalProjectManagement,
		GoalComplianceAudit,
		GoalSystemIntegration,
		GoalLearningAndTraining,
	}
}

// IsValid reports whether the goal type is recognized
func (g GoalType) IsValid() bool {
	for _, t := range AllGoalTypes() {
		if g == t {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer
func (g GoalType) String() string {
	return string(g)
}

// Complexity buckets a goal by how much effort it implies
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// IsValid reports whether the complexity is recognized
func (c Complexity) IsValid() bool {
	return c == ComplexityLow || c == ComplexityMedium || c == ComplexityHigh
}

// String implements fmt.Stringer
func (c Complexity) String() string {
	return string(c)
}

// Intent is the primary verb-sense of a goal
type Intent string

const (
	IntentCreate    Intent = "create"
	IntentAnalyze   Intent = "analyze"
	IntentImprove   Intent = "improve"
	IntentAutomate  Intent = "automate"
	IntentIntegrate Intent = "integrate"
	IntentMigrate   Intent = "migrate"
	IntentValidate  Intent = "validate"
)

// AllIntents returns every recognized intent
func AllIntents() []Intent {
	return []Intent{
		IntentCreate,
		IntentAnalyze,
		IntentImprove,
		IntentAutomate,
		IntentIntegrate,
		IntentMigrate,
		IntentValidate,
	}
}

// IsValid reports whether the intent is recognized
func (i Intent) IsValid() bool {
	for _, v := range AllIntents() {
		if i == v {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer
func (i Intent) String() string {
	return string(i)
}

// Severity grades a single risk factor
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// IsValid reports whether the severity is recognized
func (s Severity) IsValid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// RiskLevel is an aggregate risk classification. Critical appears only
// in extension risk roll-ups, never on templates or assembled plans.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// IsValid reports whether the risk level is recognized
func (r RiskLevel) IsValid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh || r == RiskCritical
}

// String implements fmt.Stringer
func (r RiskLevel) String() string {
	return string(r)
}

// RiskCategory names one of the detectable exposure categories
type RiskCategory string

const (
	RiskDataAccess            RiskCategory = "data-access"
	RiskSystemModification    RiskCategory = "system-modification"
	RiskExternalCommunication RiskCategory = "external-communication"
	RiskFinancialImpact       RiskCategory = "financial-impact"
	RiskComplianceRequirement RiskCategory = "compliance-requirement"
)

// AllRiskCategories returns every recognized risk category
func AllRiskCategories() []RiskCategory {
	return []RiskCategory{
		RiskDataAccess,
		RiskSystemModification,
		RiskExternalCommunication,
		RiskFinancialImpact,
		RiskComplianceRequirement,
	}
}

// IsValid reports whether the risk category is recognized
func (r RiskCategory) IsValid() bool {
	for _, c := range AllRiskCategories() {
		if r == c {
			return true
		}
	}
	return false
}

// PhaseStatus is the lifecycle state of a single phase
type PhaseStatus string

const (
	PhasePending    PhaseStatus = "pending"
	PhaseInProgress PhaseStatus = "in-progress"
	PhaseCompleted  PhaseStatus = "completed"
	PhaseFailed     PhaseStatus = "failed"
	PhaseSkipped    PhaseStatus = "skipped"
)

// AllPhaseStatuses returns every recognized phase status
func AllPhaseStatuses() []PhaseStatus {
	return []PhaseStatus{PhasePending, PhaseInProgress, PhaseCompleted, PhaseFailed, PhaseSkipped}
}

// IsValid reports whether the phase status is recognized
func (p PhaseStatus) IsValid() bool {
	for _, s := range AllPhaseStatuses() {
		if p == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the phase can no longer change state
func (p PhaseStatus) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseFailed || p == PhaseSkipped
}

// String implements fmt.Stringer
func (p PhaseStatus) String() string {
	return string(p)
}

// PlanStatus is the lifecycle state of a whole plan
type PlanStatus string

const (
	PlanPlanning  PlanStatus = "planning"
	PlanExecuting PlanStatus = "executing"
	PlanPaused    PlanStatus = "paused"
	PlanCompleted PlanStatus = "completed"
	PlanFailed    PlanStatus = "failed"
)

// AllPlanStatuses returns every recognized plan status
func AllPlanStatuses() []PlanStatus {
	return []PlanStatus{PlanPlanning, PlanExecuting, PlanPaused, PlanCompleted, PlanFailed}
}

// IsValid reports whether the plan status is recognized
func (p PlanStatus) IsValid() bool {
	for _, s := range AllPlanStatuses() {
		if p == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the plan can no longer change state
func (p PlanStatus) IsTerminal() bool {
	return p == PlanCompleted || p == PlanFailed
}

// String implements fmt.Stringer
func (p PlanStatus) String() string {
	return string(p)
}

// ApprovalStatus tracks a phase's position in the approval workflow
type ApprovalStatus string

const (
	ApprovalNotRequired ApprovalStatus = "not-required"
	ApprovalPending     ApprovalStatus = "pending"
	ApprovalGranted     ApprovalStatus = "granted"
	ApprovalRejected    ApprovalStatus = "rejected"
)

// AllApprovalStatuses returns every recognized approval status
func AllApprovalStatuses() []ApprovalStatus {
	return []ApprovalStatus{ApprovalNotRequired, ApprovalPending, ApprovalGranted, ApprovalRejected}
}

// IsValid reports whether the approval status is recognized
func (a ApprovalStatus) IsValid() bool {
	for _, s := range AllApprovalStatuses() {
		if a == s {
			return true
		}
	}
	return false
}

// ResultStatus classifies the outcome of a completed execution
type ResultStatus string

const (
	ResultSuccess   ResultStatus = "success"
	ResultPartial   ResultStatus = "partial"
	ResultFailure   ResultStatus = "failure"
	ResultCancelled ResultStatus = "cancelled"
)

// IsValid reports whether the result status is recognized
func (r ResultStatus) IsValid() bool {
	return r == ResultSuccess || r == ResultPartial || r == ResultFailure || r == ResultCancelled
}

// String implements fmt.Stringer
func (r ResultStatus) String() string {
	return string(r)
}

// RiskProfile is the caller's appetite for autonomous action
type RiskProfile string

const (
	ProfileConservative RiskProfile = "conservative"
	ProfileBalanced     RiskProfile = "balanced"
	ProfileAggressive   RiskProfile = "aggressive"
)

// AllRiskProfiles returns every recognized risk profile
func AllRiskProfiles() []RiskProfile {
	return []RiskProfile{ProfileConservative, ProfileBalanced, ProfileAggressive}
}

// IsValid reports whether the risk profile is recognized
func (r RiskProfile) IsValid() bool {
	for _, p := range AllRiskProfiles() {
		if r == p {
			return true
		}
	}
	return false
}

// ExtensionType classifies what an extension adds to a finished plan
type ExtensionType string

const (
	ExtFeatureAddition ExtensionType = "feature-addition"
	ExtEnhancement     ExtensionType = "enhancement"
	ExtIntegration     ExtensionType = "integration"
	ExtDeployment      ExtensionType = "deployment"
	ExtTesting         ExtensionType = "testing"
	ExtDocumentation   ExtensionType = "documentation"
	ExtSecurity        ExtensionType = "security"
	ExtPerformance     ExtensionType = "performance"
	ExtUIImprovement   ExtensionType = "ui-improvement"
	ExtAPIExtension    ExtensionType = "api-extension"
)

// AllExtensionTypes returns every recognized extension type
func AllExtensionTypes() []ExtensionType {
	return []ExtensionType{
		ExtFeatureAddition,
		ExtEnhancement,
		ExtIntegration,
		ExtDeployment,
		ExtTesting,
		ExtDocumentation,
		ExtSecurity,
		ExtPerformance,
		ExtUIImprovement,
		ExtAPIExtension,
	}
}

// IsValid reports whether the extension type is recognized
func (e ExtensionType) IsValid() bool {
	for _, t := range AllExtensionTypes() {
		if e == t {
			return true
		}
	}
	return false
}

// RequiresApproval reports whether the extension type always needs
// human sign-off regardless of its assessed risk
func (e ExtensionType) RequiresApproval() bool {
	return e == ExtDeployment || e == ExtSecurity || e == ExtIntegration
}

// String implements fmt.Stringer
func (e ExtensionType) String() string {
	return string(e)
}

// ExtensionStatus is the lifecycle state of an extension
type ExtensionStatus string

const (
	ExtStatusPlanning         ExtensionStatus = "planning"
	ExtStatusRiskAssessment   ExtensionStatus = "risk-assessment"
	ExtStatusAwaitingApproval ExtensionStatus = "awaiting-approval"
	ExtStatusApproved         ExtensionStatus = "approved"
	ExtStatusExecuting        ExtensionStatus = "executing"
	ExtStatusTesting          ExtensionStatus = "testing"
	ExtStatusCompleted        ExtensionStatus = "completed"
	ExtStatusFailed           ExtensionStatus = "failed"
	ExtStatusRolledBack       ExtensionStatus = "rolled-back"
	ExtStatusCancelled        ExtensionStatus = "cancelled"
)

// AllExtensionStatuses returns every recognized extension status
func AllExtensionStatuses() []ExtensionStatus {
	return []ExtensionStatus{
		ExtStatusPlanning,
		ExtStatusRiskAssessment,
		ExtStatusAwaitingApproval,
		ExtStatusApproved,
		ExtStatusExecuting,
		ExtStatusTesting,
		ExtStatusCompleted,
		ExtStatusFailed,
		ExtStatusRolledBack,
		ExtStatusCancelled,
	}
}

// IsValid reports whether the extension status is recognized
func (s ExtensionStatus) IsValid() bool {
	for _, v := range AllExtensionStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the extension can no longer change state
func (s ExtensionStatus) IsTerminal() bool {
	return s == ExtStatusCompleted || s == ExtStatusRolledBack || s == ExtStatusCancelled
}

// extensionTransitions is the allowed state machine. Executing is
// reachable only from approved; terminal states have no exits.
var extensionTransitions = map[ExtensionStatus][]ExtensionStatus{
	ExtStatusPlanning:         {ExtStatusRiskAssessment, ExtStatusCancelled},
	ExtStatusRiskAssessment:   {ExtStatusAwaitingApproval, ExtStatusApproved, ExtStatusCancelled},
	ExtStatusAwaitingApproval: {ExtStatusApproved, ExtStatusCancelled},
	ExtStatusApproved:         {ExtStatusExecuting, ExtStatusCancelled},
	ExtStatusExecuting:        {ExtStatusTesting, ExtStatusCompleted, ExtStatusFailed, ExtStatusCancelled},
	ExtStatusTesting:          {ExtStatusCompleted, ExtStatusFailed, ExtStatusCancelled},
	ExtStatusFailed:           {ExtStatusRolledBack, ExtStatusCancelled},
}

// CanTransitionTo reports whether the transition is allowed
func (s ExtensionStatus) CanTransitionTo(to ExtensionStatus) bool {
	for _, allowed := range extensionTransitions[s] {
		if to == allowed {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer
func (s ExtensionStatus) String() string {
	return string(s)
}
