package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/planforge/planforge/internal/analyzer"
	"github.com/planforge/planforge/internal/assembler"
	"github.com/planforge/planforge/internal/audit"
	"github.com/planforge/planforge/internal/config"
	"github.com/planforge/planforge/internal/display"
	"github.com/planforge/planforge/internal/extension"
	"github.com/planforge/planforge/internal/governance"
	"github.com/planforge/planforge/internal/optimizer"
	"github.com/planforge/planforge/internal/store"
	"github.com/planforge/planforge/internal/template"
	"github.com/planforge/planforge/internal/types"
)

// requireWorkspace locates the enclosing workspace and loads its config
func requireWorkspace() (string, *config.Config, error) {
	dir, err := store.Find()
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return "", nil, err
	}
	return dir, cfg, nil
}

func newDisplay() *display.Display {
	return display.NewWithOptions(noColor)
}

func newTrail(workspaceDir string, cfg *config.Config) (*audit.FileTrail, error) {
	return audit.NewFileTrail(store.AuditPath(workspaceDir), cfg.MaxLogSize())
}

func newExtensionManager(cfg *config.Config, trail audit.Trail) (*extension.Manager, error) {
	catalog, err := template.Load()
	if err != nil {
		return nil, err
	}
	return extension.NewManager(extension.Options{
		Catalog:   catalog,
		Analyzer:  cfg.AnalyzerParams(),
		Risk:      cfg.RiskParams(),
		Optimizer: cfg.OptimizerParams(),
		Trail:     trail,
	}), nil
}

// compilePlan runs the full analyze-assemble-optimize-assess pipeline
func compilePlan(cfg *config.Config, goal string) (*types.TaskPlan, types.GoalAnalysis, error) {
	catalog, err := template.Load()
	if err != nil {
		return nil, types.GoalAnalysis{}, err
	}

	analysis := analyzer.New(cfg.AnalyzerParams()).Analyze(goal)
	ctx := cfg.GovernanceContext(uuid.NewString())

	plan, err := assembler.New(catalog, cfg.AnalyzerParams()).Assemble(analysis, ctx)
	if err != nil {
		return nil, analysis, err
	}

	optimizer.New(cfg.OptimizerParams()).Optimize(plan)
	governance.AssessPlan(cfg.RiskParams(), plan, analysis.RiskFactors)
	return plan, analysis, nil
}

// consoleApprover answers approval requests interactively on the terminal
type consoleApprover struct {
	in *bufio.Reader
	d  *display.Display
}

func newConsoleApprover(d *display.Display) *consoleApprover {
	return &consoleApprover{in: bufio.NewReader(os.Stdin), d: d}
}

// Decide implements governance.Approver
func (c *consoleApprover) Decide(_ context.Context, req governance.ApprovalRequest) (governance.Decision, error) {
	c.d.Warning(fmt.Sprintf("approval required: %s [risk: %s]", req.Summary, req.Risk))
	fmt.Print("  approve/reject/pause> ")

	line, err := c.in.ReadString('\n')
	if err != nil {
		return governance.DecisionReject, fmt.Errorf("read approval decision: %w", err)
	}
	switch strings.TrimSpace(strings.ToLower(line)) {
	case "a", "approve", "y", "yes":
		return governance.DecisionApprove, nil
	case "p", "pause":
		return governance.DecisionPause, nil
	default:
		return governance.DecisionReject, nil
	}
}
