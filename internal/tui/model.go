package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/janekbaraniewski/ccmeter/internal/core"
	"github.com/janekbaraniewski/ccmeter/internal/format"
	"github.com/janekbaraniewski/ccmeter/internal/stats"
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type viewMode int

const (
	modeList   viewMode = iota // navigating the section list (left panel focus)
	modeDetail                 // scrolling the detail panel (right panel focus)
)

// row is one entry of the section list.
type row int

const (
	rowToday row = iota
	rowSessions
	rowCosts
	rowModels
	rowCount
)

var rowTitles = map[row]string{
	rowToday:    "Today",
	rowSessions: "Sessions",
	rowCosts:    "Costs",
	rowModels:   "Models",
}

const (
	minLeftWidth = 24
	maxLeftWidth = 32
)

// SnapshotMsg carries the latest poller state into the model. The model
// never fetches anything itself.
type SnapshotMsg struct {
	Stats               core.UsageStats
	Monthly             *core.MonthlyUsage
	Sessions            []core.Session // every reported session, not only the recent ones
	History             []core.DailyUsage
	Window              core.TimeWindow
	Available           bool
	AvailabilityLoading bool
	Configured          bool
	UpdatedAt           time.Time
}

type Model struct {
	data     SnapshotMsg
	hasData  bool
	cursor   int
	mode     viewMode
	showHelp bool

	detailOffset int
	width        int
	height       int

	refreshing bool
	animFrame  int

	budget float64
	window core.TimeWindow
	now    func() time.Time

	onRefresh      func()
	onWindowChange func(core.TimeWindow)
}

func NewModel(monthlyBudget float64, window core.TimeWindow) Model {
	return Model{
		budget: monthlyBudget,
		window: window,
		now:    time.Now,
	}
}

// SetOnRefresh registers the callback for the refresh key.
func (m *Model) SetOnRefresh(fn func()) {
	m.onRefresh = fn
}

// SetOnWindowChange registers the callback for the history window key.
func (m *Model) SetOnWindowChange(fn func(core.TimeWindow)) {
	m.onWindowChange = fn
}

func (m Model) Init() tea.Cmd { return tickCmd() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.animFrame++
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case SnapshotMsg:
		m.data = msg
		m.hasData = true
		if msg.Window != "" {
			m.window = msg.Window
		}
		if !msg.Stats.IsLoading {
			m.refreshing = false
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "r":
		m = m.requestRefresh()
		return m, nil
	case "w":
		m.window = core.NextTimeWindow(m.window)
		if m.onWindowChange != nil {
			m.onWindowChange(m.window)
		}
		return m, nil
	}

	if m.mode == modeDetail {
		return m.handleDetailKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.detailOffset = 0
		}
	case "down", "j":
		if m.cursor < int(rowCount)-1 {
			m.cursor++
			m.detailOffset = 0
		}
	case "enter", "right", "l":
		m.mode = modeDetail
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "left", "h", "backspace":
		m.mode = modeList
	case "up", "k":
		if m.detailOffset > 0 {
			m.detailOffset--
		}
	case "down", "j":
		m.detailOffset++
	case "g":
		m.detailOffset = 0
	case "G":
		m.detailOffset = 9999
	}
	return m, nil
}

func (m Model) requestRefresh() Model {
	if m.refreshing {
		return m
	}
	m.refreshing = true
	if m.onRefresh != nil {
		m.onRefresh()
	}
	return m
}

func (m Model) selectedRow() row {
	return row(clamp(m.cursor, 0, int(rowCount)-1))
}

func (m Model) View() string {
	if m.width < 30 || m.height < 8 {
		return "Terminal too small"
	}
	if m.showHelp {
		return m.renderHelpOverlay(m.width, m.height)
	}

	header := m.renderHeader(m.width)
	footer := m.renderFooter(m.width)
	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentH < 3 {
		contentH = 3
	}

	var body string
	switch {
	case !m.hasData:
		body = m.renderNotice(m.width, contentH,
			"Loading usage data…",
			"Fetching daily, total and session reports from ccusage.")
	case !m.data.Configured:
		body = m.renderNotice(m.width, contentH,
			"Setup required",
			"Run `ccmeter setup` to choose a runtime (npx, bunx, pnpm or deno).")
	case !m.data.Available && !m.data.AvailabilityLoading:
		body = m.renderNotice(m.width, contentH,
			"ccusage not available",
			"Check the configured runtime with `ccmeter status`.")
	default:
		body = m.renderBody(m.width, contentH)
	}

	return header + "\n" + body + "\n" + footer
}

func (m Model) renderBody(w, h int) string {
	leftW := clamp(w/4, minLeftWidth, maxLeftWidth)
	rightW := w - leftW - 1
	list := m.renderList(leftW, h)
	detail := m.renderDetailPanel(rightW, h)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, renderVerticalSep(h), detail)
}

func (m Model) renderHeader(w int) string {
	brand := headerBrandStyle.Render("◆ ccmeter") + " " + headerStyle.Render("Claude Code usage")

	var status string
	switch {
	case m.refreshing || m.data.Stats.IsLoading:
		status = dimStyle.Render(spinner(m.animFrame) + " refreshing")
	case !m.data.UpdatedAt.IsZero():
		status = dimStyle.Render("updated " + format.RelativeTime(m.data.UpdatedAt, m.now()))
	}

	gap := w - lipgloss.Width(brand) - lipgloss.Width(status) - 2
	line := " " + brand + strings.Repeat(" ", max(gap, 1)) + status
	line = fitAnsiWidth(line, w)

	lines := []string{line}
	if errText := m.data.Stats.Error; errText != "" && m.hasData {
		lines = append(lines, fitAnsiWidth(" "+errorStyle.Render("✗ "+errText), w))
	}
	lines = append(lines, sectionSepStyle.Render(strings.Repeat("━", w)))
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter(w int) string {
	keys := []struct{ key, desc string }{
		{"↑↓", "navigate"},
		{"⏎", "details"},
		{"r", "refresh"},
		{"w", "window " + string(m.window)},
		{"?", "help"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k.key)+" "+helpStyle.Render(k.desc))
	}
	return fitAnsiWidth(" "+strings.Join(parts, helpStyle.Render(" · ")), w)
}

func (m Model) renderNotice(w, h int, title, body string) string {
	lines := []string{
		"",
		"  " + detailTitleStyle.Render(title),
		"",
		"  " + labelStyle.Render(body),
	}
	return padToSize(strings.Join(lines, "\n"), w, h)
}

func (m Model) renderList(w, h int) string {
	var lines []string
	for r := rowToday; r < rowCount; r++ {
		lines = append(lines, m.renderListItem(r, r == m.selectedRow(), w))
	}
	return lipgloss.NewStyle().Width(w).Render(padToSize(strings.Join(lines, "\n"), w, h))
}

func (m Model) renderListItem(r row, selected bool, w int) string {
	nameStyle := lipgloss.NewStyle().Foreground(colorText)
	marker := " "
	if selected {
		nameStyle = nameStyle.Bold(true).Foreground(colorLavender)
		marker = lipgloss.NewStyle().Foreground(colorAccent).Render("▌")
		if m.mode == modeList {
			marker = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("▌")
		}
	}

	title := marker + " " + nameStyle.Render(rowTitles[r])
	summary := "  " + dimStyle.Render(m.rowSummary(r))

	style := cardNormalStyle
	if selected {
		style = cardSelectedStyle
	}
	innerW := max(w-2, 1)
	card := style.Width(w).Render(fitAnsiWidth(title, innerW) + "\n" + fitAnsiWidth(summary, innerW))
	return card + "\n"
}

func (m Model) rowSummary(r row) string {
	s := m.data.Stats
	switch r {
	case rowToday:
		if s.TodayUsage == nil {
			return "no usage today"
		}
		return fmt.Sprintf("%s tokens · %s", format.Tokens(s.TodayUsage.TotalTokens), format.Cost(s.TodayUsage.Cost))
	case rowSessions:
		return fmt.Sprintf("%d sessions", len(m.data.Sessions))
	case rowCosts:
		if s.TotalUsage == nil {
			return "no totals yet"
		}
		return format.Cost(s.TotalUsage.Cost) + " total"
	case rowModels:
		n := len(stats.ModelsFromSessions(m.data.Sessions))
		if n == 1 {
			return "1 model"
		}
		return fmt.Sprintf("%d models", n)
	}
	return ""
}

func (m Model) renderDetailPanel(w, h int) string {
	content := m.renderDetailContent(m.selectedRow(), max(w-2, 10))

	lines := strings.Split(content, "\n")
	total := len(lines)
	bodyH := h
	scrollable := total > h
	if scrollable {
		bodyH = h - 1
	}

	offset := clamp(m.detailOffset, 0, max(total-bodyH, 0))
	end := min(offset+bodyH, total)
	visible := append([]string{}, lines[offset:end]...)
	for len(visible) < bodyH {
		visible = append(visible, "")
	}
	if scrollable {
		visible = append(visible, renderScrollBarLine(w-2, offset, bodyH, total))
	}

	return lipgloss.NewStyle().Width(w).Padding(0, 1).Render(strings.Join(visible, "\n"))
}

func renderVerticalSep(h int) string {
	style := lipgloss.NewStyle().Foreground(colorSurface1)
	lines := make([]string, h)
	for i := range lines {
		lines[i] = style.Render("┃")
	}
	return strings.Join(lines, "\n")
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func spinner(frame int) string {
	return spinnerFrames[((frame%len(spinnerFrames))+len(spinnerFrames))%len(spinnerFrames)]
}

func padToSize(content string, w, h int) string {
	lines := strings.Split(content, "\n")
	for len(lines) < h {
		lines = append(lines, "")
	}
	if len(lines) > h {
		lines = lines[:h]
	}
	return strings.Join(lines, "\n")
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
