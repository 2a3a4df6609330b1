package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/janekbaraniewski/ccmeter/internal/core"
)

// ─── Color Palette (Catppuccin Mocha) ───────────────────────────────────────

var (
	colorMantle   = lipgloss.Color("#181825") // deeper bg
	colorSurface0 = lipgloss.Color("#313244") // card bg
	colorSurface1 = lipgloss.Color("#45475A") // lighter surface
	colorText     = lipgloss.Color("#CDD6F4") // primary text
	colorSubtext  = lipgloss.Color("#A6ADC8") // secondary text
	colorDim      = lipgloss.Color("#585B70") // muted, borders

	colorAccent    = lipgloss.Color("#CBA6F7") // mauve – primary accent
	colorBlue      = lipgloss.Color("#89B4FA") // section headers
	colorSapphire  = lipgloss.Color("#74C7EC") // keys, secondary accent
	colorGreen     = lipgloss.Color("#A6E3A1")
	colorYellow    = lipgloss.Color("#F9E2AF")
	colorRed       = lipgloss.Color("#F38BA8")
	colorPeach     = lipgloss.Color("#FAB387")
	colorTeal      = lipgloss.Color("#94E2D5")
	colorRosewater = lipgloss.Color("#F5E0DC")
	colorLavender  = lipgloss.Color("#B4BEFE") // titles

	colorOK   = colorGreen
	colorWarn = colorYellow
	colorCrit = colorRed
)

// ─── Reusable Styles ────────────────────────────────────────────────────────

var (
	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorLavender)

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorSapphire).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtext)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorText)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	metricValueStyle = lipgloss.NewStyle().
				Foreground(colorRosewater).
				Bold(true)

	costStyle = lipgloss.NewStyle().
			Foreground(colorPeach).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorLavender)

	cardNormalStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			PaddingRight(1)

	cardSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				PaddingRight(1).
				Background(colorSurface0)

	statusPillStyle = lipgloss.NewStyle().
			Foreground(colorMantle).
			Bold(true).
			Padding(0, 1)

	sectionSepStyle = lipgloss.NewStyle().
			Foreground(colorSurface1)
)

// IntensityColor maps today's usage intensity to the gauge palette.
func IntensityColor(i core.Intensity) lipgloss.Color {
	switch i {
	case core.IntensityLow:
		return colorGreen
	case core.IntensityMedium:
		return colorYellow
	case core.IntensityHigh:
		return colorPeach
	case core.IntensityVeryHigh:
		return colorRed
	default:
		return colorDim
	}
}

// IntensityPill renders the intensity as a colored background badge.
func IntensityPill(i core.Intensity) string {
	return statusPillStyle.Background(IntensityColor(i)).Render(string(i))
}

// TierColor is the accent for a model tier row.
func TierColor(t core.ModelTier) lipgloss.Color {
	switch t {
	case core.TierPremium:
		return colorAccent
	case core.TierStandard:
		return colorBlue
	case core.TierFast:
		return colorTeal
	default:
		return colorSubtext
	}
}

// modelPalette colors per-model rows by rank.
var modelPalette = []lipgloss.Color{colorPeach, colorBlue, colorTeal, colorAccent, colorYellow, colorSapphire}

func modelColor(rank int) lipgloss.Color {
	if rank < 0 {
		rank = 0
	}
	return modelPalette[rank%len(modelPalette)]
}
