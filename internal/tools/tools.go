// Package tools defines the tool-execution collaborator boundary.
// The engine treats execution as an opaque, possibly slow, possibly
// failing call; the simulated implementation stands in for real tool
// backends in tests and offline runs.
package tools

import (
	"context"
	"fmt"
	"time"
)

// CallerContext identifies who is invoking a tool and on whose behalf
type CallerContext struct {
	PlanID  string `json:"plan_id"`
	PhaseID int    `json:"phase_id"`
	AgentID string `json:"agent_id"`
	UserID  string `json:"user_id"`
}

// Call is one tool invocation request
type Call struct {
	Tool       string                 `json:"tool"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Caller     CallerContext          `json:"caller"`
}

// Result is what a tool invocation produced
type Result struct {
	ArtifactType string  `json:"artifact_type"`
	Location     string  `json:"location"`
	SizeBytes    int64   `json:"size_bytes"`
	Cost         float64 `json:"cost"`
	RiskEvents   int     `json:"risk_events"`
}

// Executor is the execution collaborator. Implementations may block
// for a long time; callers must pass a context and must not assume a
// low-latency return.
type Executor interface {
	Execute(ctx context.Context, call Call) (*Result, error)
}

// Simulated is a deterministic stand-in executor. Each call succeeds
// after Delay unless the tool is listed in FailTools.
type Simulated struct {
	Delay     time.Duration
	FailTools map[string]bool
	CostPer   float64
}

// NewSimulated returns a simulated executor with a tiny default cost
func NewSimulated(delay time.Duration) *Simulated {
	return &Simulated{Delay: delay, CostPer: 0.01}
}

// Execute implements Executor
func (s *Simulated) Execute(ctx context.Context, call Call) (*Result, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.FailTools[call.Tool] {
		return nil, fmt.Errorf("tool %q: simulated failure", call.Tool)
	}

	artifactType := "output"
	if v, ok := call.Parameters["artifact_type"].(string); ok && v != "" {
		artifactType = v
	}
	return &Result{
		ArtifactType: artifactType,
		Location: fmt.Sprintf("workspace://%s/phase-%d/%s",
			call.Caller.PlanID, call.Caller.PhaseID, artifactType),
		SizeBytes: int64(1024 + len(call.Tool)),
		Cost:      s.CostPer,
	}, nil
}
