package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	budgetWarnPercent = 75
	budgetCritPercent = 90
)

// RenderBudgetGauge fills left to right as month-to-date spend approaches
// the budget. Colors shift green→yellow→red at the warn and crit marks.
// Spend over the limit draws a full red bar with the real percentage.
func RenderBudgetGauge(usedPercent float64, width int) string {
	if width < 5 {
		width = 5
	}
	if usedPercent < 0 {
		return dimStyle.Render(strings.Repeat("─", width) + " N/A")
	}

	var color lipgloss.Color
	switch {
	case usedPercent >= budgetCritPercent:
		color = colorCrit
	case usedPercent >= budgetWarnPercent:
		color = colorWarn
	default:
		color = colorOK
	}

	fill := min(usedPercent, 100)
	filled := int(fill / 100 * float64(width))
	empty := width - filled

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("━", filled)) +
		lipgloss.NewStyle().Foreground(colorSurface1).Render(strings.Repeat("━", empty))

	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	return fmt.Sprintf("%s %s", bar, pctStyle.Render(fmt.Sprintf("%5.1f%%", usedPercent)))
}

// RenderShareBar is a compact inline bar for a share of a total
// (no percentage label).
func RenderShareBar(value, total float64, width int, color lipgloss.Color) string {
	if width < 3 {
		width = 3
	}
	filled := 0
	if total > 0 && value > 0 {
		filled = int(value / total * float64(width))
		if filled == 0 {
			filled = 1
		}
	}
	filled = clamp(filled, 0, width)
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(colorSurface1).Render(strings.Repeat("░", width-filled))
}
