package types

import (
	"fmt"
)

// ValidationError describes a single field-level problem
type ValidationError struct {
	Field    string      `json:"field"`
	Expected string      `json:"expected"`
	Got      interface{} `json:"got"`
	Fix      string      `json:"fix"`
}

// ValidationErrors collects field-level problems across a record
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Add appends a validation error
func (v *ValidationErrors) Add(field, expected string, got interface{}, fix string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:    field,
		Expected: expected,
		Got:      got,
		Fix:      fix,
	})
}

// HasErrors reports whether any errors were collected
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "no validation errors"
	}
	msg := fmt.Sprintf("%d validation error(s):", len(v.Errors))
	for _, e := range v.Errors {
		msg += fmt.Sprintf("\n  %s: expected %s, got %v (%s)", e.Field, e.Expected, e.Got, e.Fix)
	}
	return msg
}

// Validate ensures the template is well-formed. Dependency ids are
// checked against the catalog separately at load time.
func (t *PhaseTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("template.id: field is required")
	}
	if t.Title == "" {
		return fmt.Errorf("template[%s].title: field is required", t.ID)
	}
	if t.BaseMinutes <= 0 {
		return fmt.Errorf("template[%s].base_minutes: must be positive", t.ID)
	}
	if t.RiskLevel == "" {
		t.RiskLevel = RiskLow
	}
	if !t.RiskLevel.IsValid() || t.RiskLevel == RiskCritical {
		return fmt.Errorf("template[%s].risk_level: invalid value %q, must be one of: low, medium, high", t.ID, t.RiskLevel)
	}
	return nil
}

// Validate ensures the phase is well-formed
func (p *Phase) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("phase.id: must be positive")
	}
	if p.Title == "" {
		return fmt.Errorf("phase[%d].title: field is required", p.ID)
	}
	if p.Status == "" {
		p.Status = PhasePending
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("phase[%d].status: invalid value %q, must be one of: %v", p.ID, p.Status, AllPhaseStatuses())
	}
	if p.ApprovalStatus == "" {
		p.ApprovalStatus = ApprovalNotRequired
	}
	if !p.ApprovalStatus.IsValid() {
		return fmt.Errorf("phase[%d].approval_status: invalid value %q, must be one of: %v", p.ID, p.ApprovalStatus, AllApprovalStatuses())
	}
	for _, dep := range p.DependsOn {
		if dep <= 0 {
			return fmt.Errorf("phase[%d].depends_on: invalid phase id %d", p.ID, dep)
		}
		if dep == p.ID {
			return fmt.Errorf("phase[%d].depends_on: phase cannot depend on itself", p.ID)
		}
	}
	return nil
}

// Validate ensures the plan is well-formed: valid phases, no dangling
// or forward dependency references, and ids unique within the plan.
func (p *TaskPlan) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("plan.id: field is required")
	}
	if p.Goal == "" {
		return fmt.Errorf("plan.goal: field is required")
	}
	if p.Status == "" {
		p.Status = PlanPlanning
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("plan.status: invalid value %q, must be one of: %v", p.Status, AllPlanStatuses())
	}
	if len(p.Phases) == 0 {
		return fmt.Errorf("plan.phases: at least one phase is required")
	}
	seen := make(map[int]bool, len(p.Phases))
	for i := range p.Phases {
		phase := &p.Phases[i]
		if err := phase.Validate(); err != nil {
			return fmt.Errorf("plan.phases[%d]: %w", i, err)
		}
		if seen[phase.ID] {
			return fmt.Errorf("plan.phases[%d]: duplicate phase id %d", i, phase.ID)
		}
		// Dependencies may only reference phases earlier in the list
		for _, dep := range phase.DependsOn {
			if !seen[dep] {
				return fmt.Errorf("plan.phases[%d].depends_on: forward or dangling reference to phase %d", i, dep)
			}
		}
		seen[phase.ID] = true
	}
	return nil
}

// Validate ensures the governance context is well-formed
func (g *GovernanceContext) Validate() error {
	if g.AgentID == "" {
		return fmt.Errorf("governance.agent_id: field is required")
	}
	if g.UserID == "" {
		return fmt.Errorf("governance.user_id: field is required")
	}
	if g.RiskProfile == "" {
		g.RiskProfile = ProfileBalanced
	}
	if !g.RiskProfile.IsValid() {
		return fmt.Errorf("governance.risk_profile: invalid value %q, must be one of: %v", g.RiskProfile, AllRiskProfiles())
	}
	return nil
}

// Validate ensures the extension record is well-formed
func (e *Extension) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("extension.id: field is required")
	}
	if e.TargetPlanID == "" {
		return fmt.Errorf("extension.target_plan_id: field is required")
	}
	if e.Goal == "" {
		return fmt.Errorf("extension.goal: field is required")
	}
	if !e.Type.IsValid() {
		return fmt.Errorf("extension.type: invalid value %q, must be one of: %v", e.Type, AllExtensionTypes())
	}
	if e.Status == "" {
		e.Status = ExtStatusPlanning
	}
	if !e.Status.IsValid() {
		return fmt.Errorf("extension.status: invalid value %q, must be one of: %v", e.Status, AllExtensionStatuses())
	}
	return nil
}
