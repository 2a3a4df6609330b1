package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/janekbaraniewski/ccmeter/internal/core"
)

// renderHelpOverlay draws a centered help popup explaining intensity badges
// and keybindings. Dismissed by pressing any key.
func (m Model) renderHelpOverlay(screenW, screenH int) string {
	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(colorSapphire)
	descStyle := lipgloss.NewStyle().Foreground(colorText)

	var lines []string
	lines = append(lines, detailTitleStyle.Render("  ccmeter Help"), "")

	lines = append(lines, sectionHeaderStyle.Render("  Today's Intensity"), "")
	levels := []struct {
		intensity core.Intensity
		desc      string
	}{
		{core.IntensityLow, "under 10K tokens"},
		{core.IntensityMedium, "10K to 50K tokens"},
		{core.IntensityHigh, "50K to 100K tokens"},
		{core.IntensityVeryHigh, "100K tokens or more"},
	}
	for _, l := range levels {
		pill := lipgloss.NewStyle().Width(14).Render(IntensityPill(l.intensity))
		lines = append(lines, "    "+pill+descStyle.Render(l.desc))
	}
	lines = append(lines, "")

	lines = append(lines, sectionHeaderStyle.Render("  Keys"), "")
	keys := []struct{ key, desc string }{
		{"↑↓ / j k", "Navigate sections, scroll details"},
		{"⏎ / → / l", "Open detail view"},
		{"Esc / ← / h", "Back to list"},
		{"g / G", "Jump to top / bottom (detail)"},
		{"r", "Refresh every report now"},
		{"w", "Cycle history window (1d · 3d · 7d · 30d)"},
		{"?", "Toggle this help"},
		{"q", "Quit"},
	}
	for _, k := range keys {
		lines = append(lines, "    "+keyStyle.Render(padRight(k.key, 14))+descStyle.Render(k.desc))
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(colorDim).Italic(true).Render("  Press any key to close"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSurface1).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(screenW, screenH, lipgloss.Center, lipgloss.Center, box)
}

func padRight(s string, w int) string {
	if pad := w - lipgloss.Width(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
