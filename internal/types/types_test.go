package types

import (
	"strings"
	"testing"
	"time"
)

func containsString(s, substr string) bool {
	return strings.Contains(s, substr)
}

func TestPhaseValidate(t *testing.T) {
	tests := []struct {
		name    string
		phase   Phase
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid phase",
			phase: Phase{
				ID:     1,
				Title:  "Topic Analysis",
				Status: PhasePending,
			},
			wantErr: false,
		},
		{
			name: "empty status defaults to pending",
			phase: Phase{
				ID:    1,
				Title: "Topic Analysis",
			},
			wantErr: false,
		},
		{
			name: "zero id",
			phase: Phase{
				ID:    0,
				Title: "Topic Analysis",
			},
			wantErr: true,
			errMsg:  "phase.id: must be positive",
		},
		{
			name: "missing title",
			phase: Phase{
				ID: 1,
			},
			wantErr: true,
			errMsg:  "title: field is required",
		},
		{
			name: "invalid status",
			phase: Phase{
				ID:     1,
				Title:  "Topic Analysis",
				Status: PhaseStatus("bogus"),
			},
			wantErr: true,
			errMsg:  "invalid value",
		},
		{
			name: "self dependency",
			phase: Phase{
				ID:        2,
				Title:     "Information Gathering",
				DependsOn: []int{2},
			},
			wantErr: true,
			errMsg:  "cannot depend on itself",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.phase.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Phase.Validate() expected error containing %q, got nil", tt.errMsg)
					return
				}
				if tt.errMsg != "" && !containsString(err.Error(), tt.errMsg) {
					t.Errorf("Phase.Validate() error = %q, want error containing %q", err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("Phase.Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestTaskPlanValidate(t *testing.T) {
	valid := func() TaskPlan {
		return TaskPlan{
			ID:        "plan-1",
			Goal:      "Research market trends",
			Status:    PlanPlanning,
			CreatedAt: time.Now(),
			Phases: []Phase{
				{ID: 1, Title: "Topic Analysis"},
				{ID: 2, Title: "Information Gathering", DependsOn: []int{1}},
				{ID: 3, Title: "Analysis and Synthesis", DependsOn: []int{2}},
			},
		}
	}

	t.Run("valid plan", func(t *testing.T) {
		p := valid()
		if err := p.Validate(); err != nil {
			t.Errorf("TaskPlan.Validate() unexpected error = %v", err)
		}
	})

	t.Run("forward dependency reference", func(t *testing.T) {
		p := valid()
		p.Phases[0].DependsOn = []int{3}
		err := p.Validate()
		if err == nil || !containsString(err.Error(), "forward or dangling reference") {
			t.Errorf("TaskPlan.Validate() error = %v, want forward reference error", err)
		}
	})

	t.Run("dangling dependency reference", func(t *testing.T) {
		p := valid()
		p.Phases[2].DependsOn = []int{99}
		err := p.Validate()
		if err == nil || !containsString(err.Error(), "reference to phase 99") {
			t.Errorf("TaskPlan.Validate() error = %v, want dangling reference error", err)
		}
	})

	t.Run("duplicate phase ids", func(t *testing.T) {
		p := valid()
		p.Phases[2].ID = 2
		p.Phases[2].DependsOn = nil
		err := p.Validate()
		if err == nil || !containsString(err.Error(), "duplicate phase id") {
			t.Errorf("TaskPlan.Validate() error = %v, want duplicate id error", err)
		}
	})

	t.Run("no phases", func(t *testing.T) {
		p := valid()
		p.Phases = nil
		err := p.Validate()
		if err == nil || !containsString(err.Error(), "at least one phase") {
			t.Errorf("TaskPlan.Validate() error = %v, want phases required error", err)
		}
	})
}

func TestExtensionStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from ExtensionStatus
		to   ExtensionStatus
		want bool
	}{
		{"planning to risk-assessment", ExtStatusPlanning, ExtStatusRiskAssessment, true},
		{"risk-assessment to awaiting-approval", ExtStatusRiskAssessment, ExtStatusAwaitingApproval, true},
		{"risk-assessment auto-approve", ExtStatusRiskAssessment, ExtStatusApproved, true},
		{"awaiting-approval to approved", ExtStatusAwaitingApproval, ExtStatusApproved, true},
		{"approved to executing", ExtStatusApproved, ExtStatusExecuting, true},
		{"executing only from approved", ExtStatusAwaitingApproval, ExtStatusExecuting, false},
		{"planning skips straight to executing", ExtStatusPlanning, ExtStatusExecuting, false},
		{"executing to testing", ExtStatusExecuting, ExtStatusTesting, true},
		{"testing to completed", ExtStatusTesting, ExtStatusCompleted, true},
		{"failed to rolled-back", ExtStatusFailed, ExtStatusRolledBack, true},
		{"completed is terminal", ExtStatusCompleted, ExtStatusCancelled, false},
		{"rolled-back is terminal", ExtStatusRolledBack, ExtStatusExecuting, false},
		{"anything may cancel", ExtStatusExecuting, ExtStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("%s.CanTransitionTo(%s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestEnumIsValid(t *testing.T) {
	if !GoalSoftwareDevelopment.IsValid() {
		t.Error("GoalSoftwareDevelopment should be valid")
	}
	if GoalType("writing-poetry").IsValid() {
		t.Error("unknown goal type should be invalid")
	}
	if len(AllGoalTypes()) != 10 {
		t.Errorf("AllGoalTypes() = %d values, want 10", len(AllGoalTypes()))
	}
	if len(AllExtensionTypes()) != 10 {
		t.Errorf("AllExtensionTypes() = %d values, want 10", len(AllExtensionTypes()))
	}
	if !PhaseSkipped.IsTerminal() || PhaseInProgress.IsTerminal() {
		t.Error("phase terminal classification is wrong")
	}
	if !ExtDeployment.RequiresApproval() || ExtDocumentation.RequiresApproval() {
		t.Error("extension type approval classification is wrong")
	}
}

func TestResourceLimitsToolAllowed(t *testing.T) {
	open := ResourceLimits{}
	if !open.ToolAllowed("database-write") {
		t.Error("empty allow-list should permit every tool")
	}
	restricted := ResourceLimits{AllowedTools: []string{"web-search", "document-writer"}}
	if !restricted.ToolAllowed("web-search") {
		t.Error("allow-listed tool should be permitted")
	}
	if restricted.ToolAllowed("system-deploy") {
		t.Error("tool outside the allow-list should be refused")
	}
}
