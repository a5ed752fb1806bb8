package display

import "github.com/fatih/color"

// Box drawing characters
const (
	BoxTopLeft     = "┌"
	BoxTopRight    = "┐"
	BoxBottomLeft  = "└"
	BoxBottomRight = "┘"
	BoxHorizontal  = "─"
	BoxVertical    = "│"
)

// Status symbols
const (
	SymbolCompleted  = "✓"
	SymbolFailed     = "✗"
	SymbolSkipped    = "⊘"
	SymbolInProgress = "▸"
	SymbolPending    = "○"
	SymbolApproval   = "⚑"
)

// Theme holds all color functions for consistent styling
type Theme struct {
	// Structural chrome
	Border func(a ...interface{}) string
	Label  func(a ...interface{}) string
	Text   func(a ...interface{}) string

	// Status indicators
	Success func(a ...interface{}) string
	Error   func(a ...interface{}) string
	Warning func(a ...interface{}) string
	Info    func(a ...interface{}) string

	// Risk levels
	RiskLow      func(a ...interface{}) string
	RiskMedium   func(a ...interface{}) string
	RiskHigh     func(a ...interface{}) string
	RiskCritical func(a ...interface{}) string

	Bold func(a ...interface{}) string
	Dim  func(a ...interface{}) string
}

// DefaultTheme creates the default color theme
func DefaultTheme() *Theme {
	return &Theme{
		Border: color.New(color.FgCyan).SprintFunc(),
		Label:  color.New(color.FgCyan, color.Bold).SprintFunc(),
		Text:   color.New(color.FgWhite).SprintFunc(),

		Success: color.New(color.FgGreen).SprintFunc(),
		Error:   color.New(color.FgRed).SprintFunc(),
		Warning: color.New(color.FgYellow).SprintFunc(),
		Info:    color.New(color.FgCyan).SprintFunc(),

		RiskLow:      color.New(color.FgGreen).SprintFunc(),
		RiskMedium:   color.New(color.FgYellow).SprintFunc(),
		RiskHigh:     color.New(color.FgRed).SprintFunc(),
		RiskCritical: color.New(color.FgRed, color.Bold).SprintFunc(),

		Bold: color.New(color.Bold).SprintFunc(),
		Dim:  color.New(color.FgHiBlack).SprintFunc(),
	}
}

// NoColorTheme creates a theme without colors (for --no-color flag or non-TTY)
func NoColorTheme() *Theme {
	identity := func(a ...interface{}) string {
		if len(a) == 0 {
			return ""
		}
		return a[0].(string)
	}
	return &Theme{
		Border:       identity,
		Label:        identity,
		Text:         identity,
		Success:      identity,
		Error:        identity,
		Warning:      identity,
		Info:         identity,
		RiskLow:      identity,
		RiskMedium:   identity,
		RiskHigh:     identity,
		RiskCritical: identity,
		Bold:         identity,
		Dim:          identity,
	}
}
