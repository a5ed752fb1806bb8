package types

import (
	"time"
)

// GoalAnalysis is the derived classification of a raw goal string.
// Produced once per goal by the analyzer and never mutated afterwards.
type GoalAnalysis struct {
	Goal              string       `json:"goal"`
	GoalType          GoalType     `json:"goal_type"`
	Domain            string       `json:"domain"`
	Intent            Intent       `json:"intent"`
	Complexity        Complexity   `json:"complexity"`
	Keywords          []string     `json:"keywords"`           // Ordered, capped at 10
	Entities          []string     `json:"entities"`           // De-duplicated, capped at 5
	RiskFactors       []RiskFactor `json:"risk_factors"`
	EstimatedMinutes  int          `json:"estimated_minutes"`
	Capabilities      []string     `json:"capabilities"`
	SuggestedTemplate string       `json:"suggested_template,omitempty"`
}

// RiskFactor describes one category of exposure a goal carries
type RiskFactor struct {
	Category    RiskCategory `json:"category"`
	Severity    Severity     `json:"severity"`
	Description string       `json:"description"`
	Mitigation  string       `json:"mitigation"`
}

// PhaseTemplate is one reusable phase definition from the catalog.
// Loaded at process start, never mutated. Title and Description may
// contain {domain}, {type}, {keywords}, and {entities} placeholders.
type PhaseTemplate struct {
	ID               string    `yaml:"id" json:"id"`
	Title            string    `yaml:"title" json:"title"`
	Description      string    `yaml:"description" json:"description"`
	BaseMinutes      int       `yaml:"base_minutes" json:"base_minutes"`
	Capabilities     []string  `yaml:"capabilities" json:"capabilities"`
	Tools            []string  `yaml:"tools" json:"tools"`
	DependsOn        []string  `yaml:"depends_on" json:"depends_on"` // Template IDs
	RequiresApproval bool      `yaml:"requires_approval" json:"requires_approval"`
	RiskLevel        RiskLevel `yaml:"risk_level" json:"risk_level"`
	ArtifactTypes    []string  `yaml:"artifact_types" json:"artifact_types"`
}

// Phase is one executable step of a task plan, instantiated from a
// template. Created by the assembler; mutated only by the execution
// engine and the reflection engine.
type Phase struct {
	ID               int            `json:"id"` // Unique within its plan, 1-based
	TemplateID       string         `json:"template_id,omitempty"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Status           PhaseStatus    `json:"status"`
	DependsOn        []int          `json:"depends_on"` // Phase IDs, all completed before start
	EstimatedMinutes int            `json:"estimated_minutes"`
	ActualMinutes    int            `json:"actual_minutes,omitempty"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	EndedAt          *time.Time     `json:"ended_at,omitempty"`
	Capabilities     []string       `json:"capabilities"`
	Tools            []string       `json:"tools"`
	RequiresApproval bool           `json:"requires_approval"`
	ApprovalStatus   ApprovalStatus `json:"approval_status"`
	Artifacts        []Artifact     `json:"artifacts,omitempty"`
	ReceiptIDs       []string       `json:"receipt_ids,omitempty"`
	Reflection       *Reflection    `json:"reflection,omitempty"`
	ParallelGroup    int            `json:"parallel_group,omitempty"` // 0 = not grouped
}

// PlanMetadata aggregates plan-level facts computed at assembly time
type PlanMetadata struct {
	Complexity         Complexity `json:"complexity"`
	RiskLevel          RiskLevel  `json:"risk_level"`
	RequiresApproval   bool       `json:"requires_approval"`
	InterventionPoints []string   `json:"intervention_points"` // Phase titles needing a human
}

// TaskPlan is the full compiled plan for one goal. Owned exclusively
// by the execution engine for its lifetime; read-only to viewers.
type TaskPlan struct {
	ID               string            `json:"id"`
	Goal             string            `json:"goal"`
	Description      string            `json:"description"`
	Phases           []Phase           `json:"phases"`
	CurrentPhase     int               `json:"current_phase"` // Phase ID, 0 before start
	Status           PlanStatus        `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	EstimatedMinutes int               `json:"estimated_minutes"`
	Governance       GovernanceContext `json:"governance"`
	Metadata         PlanMetadata      `json:"metadata"`
}

// PhaseByID returns the phase with the given id, or nil
func (p *TaskPlan) PhaseByID(id int) *Phase {
	for i := range p.Phases {
		if p.Phases[i].ID == id {
			return &p.Phases[i]
		}
	}
	return nil
}

// CompletedCount returns how many phases are completed
func (p *TaskPlan) CompletedCount() int {
	n := 0
	for i := range p.Phases {
		if p.Phases[i].Status == PhaseCompleted {
			n++
		}
	}
	return n
}

// ApprovalGates are the per-action gate policy flags of a context
type ApprovalGates struct {
	PhaseTransition  bool `json:"phase_transition" mapstructure:"phase_transition"`
	ToolExecution    bool `json:"tool_execution" mapstructure:"tool_execution"`
	HighRiskAction   bool `json:"high_risk_action" mapstructure:"high_risk_action"`
	PlanModification bool `json:"plan_modification" mapstructure:"plan_modification"`
}

// ResourceLimits bound what a plan execution may consume
type ResourceLimits struct {
	MaxMinutes   int      `json:"max_minutes" mapstructure:"max_minutes"`
	MaxCost      float64  `json:"max_cost" mapstructure:"max_cost"`
	MaxToolCalls int      `json:"max_tool_calls" mapstructure:"max_tool_calls"`
	AllowedTools []string `json:"allowed_tools" mapstructure:"allowed_tools"` // Empty = allow all
}

// ToolAllowed reports whether a tool passes the allow-list.
// An empty allow-list permits every tool.
func (r ResourceLimits) ToolAllowed(tool string) bool {
	if len(r.AllowedTools) == 0 {
		return true
	}
	for _, t := range r.AllowedTools {
		if t == tool {
			return true
		}
	}
	return false
}

// GovernanceContext is supplied at plan creation and immutable thereafter
type GovernanceContext struct {
	AgentID     string         `json:"agent_id"`
	UserID      string         `json:"user_id"`
	SessionID   string         `json:"session_id"`
	RiskProfile RiskProfile    `json:"risk_profile"`
	Gates       ApprovalGates  `json:"gates"`
	Limits      ResourceLimits `json:"limits"`
	Compliance  []string       `json:"compliance"` // Requirement tags
}

// Reflection is a computed self-assessment taken before a phase or
// after the whole plan. GoalAlignment and Confidence are bounded 0-1.
type Reflection struct {
	CurrentState       string    `json:"current_state"`
	GoalAlignment      float64   `json:"goal_alignment"`
	NextActions        []string  `json:"next_actions"`
	RiskAssessment     RiskLevel `json:"risk_assessment"`
	Confidence         float64   `json:"confidence"`
	AdaptationRequired bool      `json:"adaptation_required"`
	Reasoning          string    `json:"reasoning"`
	Timestamp          time.Time `json:"timestamp"`
}

// Artifact is an immutable record of something a phase produced.
// Referenced, never duplicated, by downstream phases.
type Artifact struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Location  string    `json:"location"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
	ReceiptID string    `json:"receipt_id,omitempty"`
}

// Receipt records one tool invocation on behalf of a phase
type Receipt struct {
	ID        string    `json:"id"`
	PlanID    string    `json:"plan_id"`
	PhaseID   int       `json:"phase_id"`
	Tool      string    `json:"tool"`
	Cost      float64   `json:"cost"`
	CreatedAt time.Time `json:"created_at"`
}

// ResourceUsage aggregates what an execution consumed
type ResourceUsage struct {
	Minutes   int     `json:"minutes"`
	Cost      float64 `json:"cost"`
	ToolCalls int     `json:"tool_calls"`
}

// GovernanceMetrics carries trust/compliance readings attached to a result
type GovernanceMetrics struct {
	TrustScore       float64 `json:"trust_score"`
	ComplianceStatus string  `json:"compliance_status"`
	RiskEvents       int     `json:"risk_events"`
	Interventions    int     `json:"interventions"`
}

// ExecutionResult is the complete outcome of one plan execution.
// Every terminating path produces one.
type ExecutionResult struct {
	PlanID          string            `json:"plan_id"`
	Status          ResultStatus      `json:"status"`
	CompletedPhases int               `json:"completed_phases"`
	TotalPhases     int               `json:"total_phases"`
	Artifacts       []Artifact        `json:"artifacts"`
	ReceiptIDs      []string          `json:"receipt_ids"`
	Usage           ResourceUsage     `json:"usage"`
	Governance      GovernanceMetrics `json:"governance"`
	FinalReflection *Reflection       `json:"final_reflection,omitempty"`
	Error           string            `json:"error,omitempty"`
}

// ExtensionConflict is a detected collision between an extension's
// planned artifacts and artifacts already present in the target plan.
// Requires explicit user resolution.
type ExtensionConflict struct {
	ArtifactType string `json:"artifact_type"`
	ExistingID   string `json:"existing_id"`
	PhaseTitle   string `json:"phase_title"`
	Resolved     bool   `json:"resolved"`
}

// ExtensionPlan is the compiled phase list of an extension plus its
// resource and conflict bookkeeping
type ExtensionPlan struct {
	Phases           []Phase             `json:"phases"`
	EstimatedMinutes int                 `json:"estimated_minutes"`
	Capabilities     []string            `json:"capabilities"`
	DependsOn        []string            `json:"depends_on"` // Existing artifact IDs
	Conflicts        []ExtensionConflict `json:"conflicts"`
	RollbackStrategy string              `json:"rollback_strategy"`
}

// RollbackPoint is a named, restorable snapshot of plan state taken at
// a safe boundary
type RollbackPoint struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	CreatedAt     time.Time  `json:"created_at"`
	CanRollbackTo bool       `json:"can_rollback_to"`
	Phases        []Phase    `json:"phases"`    // Snapshot of the target plan's phases
	Artifacts     []Artifact `json:"artifacts"` // Snapshot of produced artifacts
}

// Extension is a goal increment applied to an existing plan
type Extension struct {
	ID             string          `json:"id"`
	TargetPlanID   string          `json:"target_plan_id"`
	Goal           string          `json:"goal"`
	Type           ExtensionType   `json:"type"`
	Status         ExtensionStatus `json:"status"`
	Plan           ExtensionPlan   `json:"plan"`
	OverallRisk    RiskLevel       `json:"overall_risk"`
	RiskFactors    []RiskFactor    `json:"risk_factors"`
	BaseVersion    string          `json:"base_version"`
	Version        string          `json:"version"`
	RollbackPoints []RollbackPoint `json:"rollback_points"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// RollbackPointByName returns the named rollback point, or nil
func (e *Extension) RollbackPointByName(name string) *RollbackPoint {
	for i := range e.RollbackPoints {
		if e.RollbackPoints[i].Name == name {
			return &e.RollbackPoints[i]
		}
	}
	return nil
}

// UnresolvedConflicts returns the conflicts still awaiting user resolution
func (e *Extension) UnresolvedConflicts() []ExtensionConflict {
	var out []ExtensionConflict
	for _, c := range e.Plan.Conflicts {
		if !c.Resolved {
			out = append(out, c)
		}
	}
	return out
}
