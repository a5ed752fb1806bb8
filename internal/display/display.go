// Package display provides unified output formatting for the planforge
// CLI: plan summaries, phase progress lines, and risk-colored status.
package display

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/planforge/planforge/internal/types"
	"golang.org/x/term"
)

// Display handles all CLI output with visual hierarchy
type Display struct {
	theme     *Theme
	termWidth int
	noColor   bool
}

// New creates a new Display instance
func New() *Display {
	return NewWithOptions(false)
}

// NewWithOptions creates a Display with configuration
func NewWithOptions(noColor bool) *Display {
	d := &Display{
		termWidth: getTerminalWidth(),
		noColor:   noColor,
	}
	if noColor {
		d.theme = NoColorTheme()
	} else {
		d.theme = DefaultTheme()
	}
	return d
}

// getTerminalWidth returns the terminal width, defaulting to 80
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 40 {
		return 80
	}
	if width > 120 {
		return 120 // Cap at 120 for readability
	}
	return width
}

// Box prints a titled box around the given lines
func (d *Display) Box(title string, lines ...string) {
	if len(lines) == 0 {
		return
	}

	width := d.termWidth - 2
	titleLen := len(title) + 4 // "─ TITLE "
	remainingWidth := width - titleLen
	if remainingWidth < 1 {
		remainingWidth = 1
	}

	topLine := BoxTopLeft + BoxHorizontal + " " + title + " " + strings.Repeat(BoxHorizontal, remainingWidth) + BoxTopRight
	fmt.Println(d.theme.Border(topLine))

	for _, line := range lines {
		paddedLine := d.padRight(line, width-2)
		fmt.Println(d.theme.Border(BoxVertical) + " " + d.theme.Text(paddedLine) + " " + d.theme.Border(BoxVertical))
	}

	bottomLine := BoxBottomLeft + strings.Repeat(BoxHorizontal, width) + BoxBottomRight
	fmt.Println(d.theme.Border(bottomLine))
}

// Status prints a single timestamped status line
func (d *Display) Status(symbol, message string) {
	timestamp := time.Now().Format("[15:04:05]")
	fmt.Printf("%s %s %s\n",
		d.theme.Dim(timestamp),
		symbol,
		d.theme.Text(message))
}

// Success prints a success message with green checkmark
func (d *Display) Success(message string) {
	d.Status(d.theme.Success(SymbolCompleted), message)
}

// Error prints an error message with red X
func (d *Display) Error(message string) {
	d.Status(d.theme.Error(SymbolFailed), message)
}

// Warning prints a warning message with yellow marker
func (d *Display) Warning(message string) {
	d.Status(d.theme.Warning(SymbolApproval), message)
}

// Info prints a labeled info message
func (d *Display) Info(label, message string) {
	d.Status(d.theme.Info(label+":"), message)
}

// Risk renders a risk level in its color
func (d *Display) Risk(level types.RiskLevel) string {
	switch level {
	case types.RiskCritical:
		return d.theme.RiskCritical(string(level))
	case types.RiskHigh:
		return d.theme.RiskHigh(string(level))
	case types.RiskMedium:
		return d.theme.RiskMedium(string(level))
	default:
		return d.theme.RiskLow(string(level))
	}
}

// AnalysisSummary prints the classification of a goal
func (d *Display) AnalysisSummary(analysis types.GoalAnalysis) {
	lines := []string{
		fmt.Sprintf("Type:       %s", analysis.GoalType),
		fmt.Sprintf("Domain:     %s", analysis.Domain),
		fmt.Sprintf("Intent:     %s", analysis.Intent),
		fmt.Sprintf("Complexity: %s", analysis.Complexity),
		fmt.Sprintf("Estimate:   %s", formatMinutes(analysis.EstimatedMinutes)),
	}
	if analysis.SuggestedTemplate != "" {
		lines = append(lines, fmt.Sprintf("Templates:  %s", analysis.SuggestedTemplate))
	}
	if len(analysis.Keywords) > 0 {
		lines = append(lines, fmt.Sprintf("Keywords:   %s", strings.Join(analysis.Keywords, ", ")))
	}
	for _, factor := range analysis.RiskFactors {
		lines = append(lines, fmt.Sprintf("Risk:       %s (%s)", factor.Category, factor.Severity))
	}
	d.Box("ANALYSIS", lines...)
}

// PlanSummary prints the plan header and one line per phase
func (d *Display) PlanSummary(plan *types.TaskPlan) {
	header := []string{
		fmt.Sprintf("Goal:     %s", plan.Goal),
		fmt.Sprintf("Plan:     %s", plan.ID),
		fmt.Sprintf("Status:   %s", plan.Status),
		fmt.Sprintf("Risk:     %s", plan.Metadata.RiskLevel),
		fmt.Sprintf("Estimate: %s across %d phases", formatMinutes(plan.EstimatedMinutes), len(plan.Phases)),
	}
	if plan.Metadata.RequiresApproval {
		header = append(header, "Approval: required before execution")
	}
	d.Box("PLAN", header...)

	for i := range plan.Phases {
		d.PhaseLine(&plan.Phases[i])
	}
}

// PhaseLine prints one phase with its status symbol and dependencies
func (d *Display) PhaseLine(phase *types.Phase) {
	symbol := d.phaseSymbol(phase.Status)
	deps := ""
	if len(phase.DependsOn) > 0 {
		parts := make([]string, len(phase.DependsOn))
		for i, dep := range phase.DependsOn {
			parts[i] = fmt.Sprintf("%d", dep)
		}
		deps = d.theme.Dim(fmt.Sprintf(" (after %s)", strings.Join(parts, ", ")))
	}
	approval := ""
	if phase.RequiresApproval {
		approval = " " + d.theme.Warning(SymbolApproval)
	}
	fmt.Printf("  %s %2d. %s %s%s%s\n",
		symbol,
		phase.ID,
		d.theme.Text(phase.Title),
		d.theme.Dim(formatMinutes(phase.EstimatedMinutes)),
		deps,
		approval)
}

// ResultSummary prints the outcome of an execution
func (d *Display) ResultSummary(result *types.ExecutionResult) {
	lines := []string{
		fmt.Sprintf("Status:    %s", result.Status),
		fmt.Sprintf("Phases:    %d/%d completed", result.CompletedPhases, result.TotalPhases),
		fmt.Sprintf("Artifacts: %d", len(result.Artifacts)),
		fmt.Sprintf("Tools:     %d calls, %.2f cost", result.Usage.ToolCalls, result.Usage.Cost),
		fmt.Sprintf("Trust:     %.2f (%s)", result.Governance.TrustScore, result.Governance.ComplianceStatus),
	}
	if result.Governance.Interventions > 0 {
		lines = append(lines, fmt.Sprintf("Adapted:   %d intervention(s)", result.Governance.Interventions))
	}
	if result.Error != "" {
		lines = append(lines, fmt.Sprintf("Error:     %s", result.Error))
	}
	d.Box("RESULT", lines...)
}

// ExtensionSummary prints an extension record with its conflicts
func (d *Display) ExtensionSummary(ext *types.Extension) {
	lines := []string{
		fmt.Sprintf("Extension: %s", ext.ID),
		fmt.Sprintf("Target:    %s", ext.TargetPlanID),
		fmt.Sprintf("Type:      %s", ext.Type),
		fmt.Sprintf("Status:    %s", ext.Status),
		fmt.Sprintf("Risk:      %s", ext.OverallRisk),
		fmt.Sprintf("Version:   %s -> %s", ext.BaseVersion, ext.Version),
		fmt.Sprintf("Phases:    %d, %s", len(ext.Plan.Phases), formatMinutes(ext.Plan.EstimatedMinutes)),
	}
	for _, conflict := range ext.Plan.Conflicts {
		state := "unresolved"
		if conflict.Resolved {
			state = "resolved"
		}
		lines = append(lines, fmt.Sprintf("Conflict:  %s with %s (%s)", conflict.ArtifactType, conflict.ExistingID, state))
	}
	d.Box("EXTENSION", lines...)
}

func (d *Display) phaseSymbol(status types.PhaseStatus) string {
	switch status {
	case types.PhaseCompleted:
		return d.theme.Success(SymbolCompleted)
	case types.PhaseFailed:
		return d.theme.Error(SymbolFailed)
	case types.PhaseSkipped:
		return d.theme.Dim(SymbolSkipped)
	case types.PhaseInProgress:
		return d.theme.Info(SymbolInProgress)
	default:
		return d.theme.Dim(SymbolPending)
	}
}

// padRight pads or truncates a line to the given display width
func (d *Display) padRight(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		if width > 3 {
			return string(runes[:width-3]) + "..."
		}
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}

func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}
