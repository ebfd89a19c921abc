package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor       = lipgloss.Color("7")
	accentColor    = lipgloss.Color("12")
	successColor   = lipgloss.Color("10")
	warningColor   = lipgloss.Color("11")
	dangerColor    = lipgloss.Color("9")
	highlightColor = lipgloss.Color("13")

	TitleStyle = lipgloss.NewStyle().
			Bold(true)

	// Field labels in recognition output
	LabelStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)

	TagStyle = lipgloss.NewStyle().
			Foreground(highlightColor)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			Bold(true)
)

// FormatTags renders keywords as a single highlighted line.
func FormatTags(tags []string) string {
	rendered := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		rendered = append(rendered, TagStyle.Render("#"+t))
	}
	return strings.Join(rendered, " ")
}

// ConfidenceStyle picks a color for a 0..1 confidence score.
func ConfidenceStyle(c float64) lipgloss.Style {
	switch {
	case c >= 0.8:
		return SuccessStyle
	case c >= 0.5:
		return WarningStyle
	default:
		return ErrorStyle
	}
}
