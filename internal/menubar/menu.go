// Package menubar builds the status-bar menu and renders it as an
// xbar/SwiftBar plugin.
package menubar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/janekbaraniewski/ccmeter/internal/core"
	"github.com/janekbaraniewski/ccmeter/internal/format"
	"github.com/janekbaraniewski/ccmeter/internal/stats"
)

const (
	ccusageRepoURL = "https://github.com/ryoppippi/ccusage"
	claudeCodeURL  = "https://claude.ai/code"

	maxRecentItems = 3
	maxModelItems  = 3
)

type State int

const (
	StateLoading State = iota
	StateSetupRequired
	StateUnavailable
	StateError
	StateNormal
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSetupRequired:
		return "setup_required"
	case StateUnavailable:
		return "unavailable"
	case StateError:
		return "error"
	default:
		return "normal"
	}
}

var (
	colorMuted  = lipgloss.Color("#A6ADC8")
	colorGreen  = lipgloss.Color("#A6E3A1")
	colorYellow = lipgloss.Color("#F9E2AF")
	colorOrange = lipgloss.Color("#FAB387")
	colorRed    = lipgloss.Color("#F38BA8")
)

type Item struct {
	Title    string
	Subtitle string
	Glyph    string
	Href     string
}

type Section struct {
	Title string
	Items []Item
}

// Menu is a renderer-agnostic description of the status-bar entry.
type Menu struct {
	State    State
	Glyph    string
	Title    string
	Color    lipgloss.Color
	Tooltip  string
	Sections []Section
}

// Availability is the latest result of the ccusage --help probe.
type Availability struct {
	Available bool
	Loading   bool
}

// Build chooses the menu for the current state. Loading wins over every
// other state, then missing setup, then an unavailable ccusage, then errors.
func Build(s core.UsageStats, avail Availability, configured bool, now time.Time) Menu {
	switch {
	case avail.Loading || s.IsLoading:
		return Menu{State: StateLoading, Glyph: "◷", Color: colorMuted, Tooltip: "Loading Claude usage..."}
	case !configured:
		return Menu{
			State:   StateSetupRequired,
			Glyph:   "⚙",
			Color:   colorOrange,
			Tooltip: "Setup required for Claude usage monitoring",
			Sections: []Section{{Items: []Item{
				{Title: "Setup Required", Subtitle: "Run ccmeter setup"},
			}}},
		}
	case !avail.Available:
		return Menu{
			State:   StateUnavailable,
			Glyph:   "⚠",
			Color:   colorRed,
			Tooltip: "ccusage not available",
			Sections: []Section{{Items: []Item{
				{Title: "ccusage not available", Subtitle: "Please install ccusage to monitor Claude usage", Href: ccusageRepoURL},
			}}},
		}
	case s.Error != "":
		return Menu{
			State:   StateError,
			Glyph:   "⚠",
			Color:   colorRed,
			Tooltip: "Error loading usage data",
			Sections: []Section{{Items: []Item{
				{Title: "Error", Subtitle: s.Error},
			}}},
		}
	}
	return buildNormal(s, now)
}

func buildNormal(s core.UsageStats, now time.Time) Menu {
	glyph, color := intensityIcon(s.TodayUsage)
	m := Menu{State: StateNormal, Glyph: glyph, Color: color, Tooltip: "No Claude usage today"}
	if s.TodayUsage != nil {
		m.Title = format.Tokens(s.TodayUsage.TotalTokens)
		m.Tooltip = fmt.Sprintf("Today: %s tokens, %s", format.Tokens(s.TodayUsage.TotalTokens), format.Cost(s.TodayUsage.Cost))
	}

	m.Sections = []Section{
		todaySection(s.TodayUsage),
		totalSection(s.TotalUsage),
		recentSection(s.RecentSessions, now),
		modelsSection(s.TopModels),
		{Title: "Actions", Items: []Item{
			{Title: "Open Claude Code", Href: claudeCodeURL},
			{Title: "ccusage Repository", Href: ccusageRepoURL},
		}},
	}
	return m
}

func intensityIcon(today *core.DailyUsage) (string, lipgloss.Color) {
	if today == nil {
		return "○", colorMuted
	}
	switch stats.Intensity(today.TotalTokens) {
	case core.IntensityLow:
		return "○", colorGreen
	case core.IntensityMedium:
		return "◔", colorYellow
	case core.IntensityHigh:
		return "◕", colorOrange
	default:
		return "●", colorRed
	}
}

func todaySection(today *core.DailyUsage) Section {
	sec := Section{Title: "Today's Usage"}
	if today == nil {
		sec.Items = []Item{{Title: "No usage today", Subtitle: "Start using Claude Code to see metrics"}}
		return sec
	}
	glyph, _ := intensityIcon(today)
	sec.Items = []Item{
		{Title: "Total Tokens", Subtitle: format.Tokens(today.TotalTokens)},
		{Title: "Input Tokens", Subtitle: format.Tokens(today.InputTokens)},
		{Title: "Output Tokens", Subtitle: format.Tokens(today.OutputTokens)},
		{Title: "Cost", Subtitle: format.Cost(today.Cost)},
		{Title: "Usage Intensity", Subtitle: string(stats.Intensity(today.TotalTokens)), Glyph: glyph},
	}
	return sec
}

func totalSection(total *core.TotalUsage) Section {
	sec := Section{Title: "Total Usage"}
	if total == nil {
		sec.Items = []Item{{Title: "No total usage data"}}
		return sec
	}
	sec.Items = []Item{
		{Title: "All-time Tokens", Subtitle: format.Tokens(total.TotalTokens)},
		{Title: "All-time Cost", Subtitle: format.Cost(total.Cost)},
	}
	return sec
}

func recentSection(sessions []core.Session, now time.Time) Section {
	sec := Section{Title: "Recent Activity"}
	if len(sessions) == 0 {
		sec.Items = []Item{{Title: "No recent sessions"}}
		return sec
	}
	sec.Items = append(sec.Items, Item{Title: "Recent Sessions", Subtitle: fmt.Sprintf("%d sessions", len(sessions))})
	for _, s := range sessions[:min(len(sessions), maxRecentItems)] {
		when := s.StartTime
		if when == "" {
			when = s.LastActivity
		}
		sec.Items = append(sec.Items, Item{
			Title:    format.ModelName(s.Model),
			Subtitle: strings.Join([]string{format.Tokens(s.TotalTokens), format.Cost(s.Cost), format.RelativeTimeString(when, now)}, " • "),
			Glyph:    modelGlyph(s.Model),
		})
	}
	return sec
}

func modelsSection(models []core.ModelUsage) Section {
	sec := Section{Title: "Top Models"}
	if len(models) == 0 {
		sec.Items = []Item{{Title: "No model data"}}
		return sec
	}
	for _, m := range models[:min(len(models), maxModelItems)] {
		sec.Items = append(sec.Items, Item{
			Title:    format.ModelName(m.Model),
			Subtitle: format.Tokens(m.TotalTokens) + " • " + format.Cost(m.Cost),
			Glyph:    modelGlyph(m.Model),
		})
	}
	return sec
}

func modelGlyph(model string) string {
	switch core.ModelFamily(model) {
	case "opus":
		return "♛"
	case "sonnet":
		return "★"
	case "haiku":
		return "❧"
	default:
		return "✉"
	}
}
