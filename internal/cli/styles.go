// Package cli is the terminal face of the optimizer: prompts, plan replay,
// progress bars and lipgloss-styled reports.
package cli

import (
	"strings"

	"github.com/Veraticus/portfolio-optimizer/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	PrimaryColor = lipgloss.Color("#FF9F1C") // Amber
	GoodColor    = lipgloss.Color("#2EC4B6") // Teal
	BadColor     = lipgloss.Color("#E71D36") // Red
	WarningColor = lipgloss.Color("#FFE66D") // Yellow
	InfoColor    = lipgloss.Color("#95E1D3") // Light teal
	SubtleColor  = lipgloss.Color("#666666") // Gray
	BorderColor  = lipgloss.Color("#333333")
)

var (
	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle marks completed work and moves into a good tier.
	SuccessStyle = lipgloss.NewStyle().Foreground(GoodColor)

	// ErrorStyle marks failures and moves into a bad tier.
	ErrorStyle = lipgloss.NewStyle().Foreground(BadColor)

	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)

	// BoxStyle frames prompts and summaries.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	// TableHeaderStyle has no border so tabwriter column widths stay intact.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(InfoColor)

	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	BoxIcon     = "📦"
	ChartIcon   = "📊"
	GoodIcon    = "▲"
	BadIcon     = "▼"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a top-level heading.
func FormatTitle(title string) string {
	return TitleStyle.Render(BoxIcon + " " + title)
}

// FormatPrompt formats a prompt message.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// FormatTier colors a tier label.
func FormatTier(t model.Tier) string {
	switch t {
	case model.TierGood:
		return SuccessStyle.Render(t.String())
	case model.TierBad:
		return ErrorStyle.Render(t.String())
	default:
		return SubtleStyle.Render(t.String())
	}
}

// OutcomeLabel is the report label for an outcome.
func OutcomeLabel(o model.Outcome) string {
	switch o {
	case model.OutcomeMovedToGood:
		return SuccessStyle.Render(GoodIcon + " Moved to good")
	case model.OutcomeMovedToBad:
		return ErrorStyle.Render(BadIcon + " Moved to bad")
	case model.OutcomeNoAction:
		return "• No action"
	case model.OutcomeUnassigned:
		return WarningStyle.Render("? Unassigned")
	default:
		return string(o)
	}
}

// TableHeader renders a tab-separated header line for a tabwriter.
func TableHeader(columns ...string) string {
	rendered := make([]string, len(columns))
	for i, c := range columns {
		rendered[i] = TableHeaderStyle.Render(c)
	}
	return strings.Join(rendered, "\t") + "\n"
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	boxContent := lipgloss.JoinVertical(
		lipgloss.Left,
		boxTitle,
		content,
	)

	return BoxStyle.Render(boxContent)
}

// StyleTitle formats text as a title.
func StyleTitle(text string) string {
	return TitleStyle.Render(text)
}
