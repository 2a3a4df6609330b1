package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/janekbaraniewski/ccmeter/internal/core"
	"github.com/janekbaraniewski/ccmeter/internal/format"
	"github.com/janekbaraniewski/ccmeter/internal/stats"
)

const (
	labelWidth          = 22
	detailSessionsLimit = 8
	breakdownBarWidth   = 16
)

func (m Model) renderDetailContent(r row, w int) string {
	var sb strings.Builder
	switch r {
	case rowToday:
		m.renderTodayDetail(&sb, w)
	case rowSessions:
		m.renderSessionsDetail(&sb, w)
	case rowCosts:
		m.renderCostsDetail(&sb, w)
	case rowModels:
		m.renderModelsDetail(&sb, w)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderDetailSectionHeader(sb *strings.Builder, title string, w int) {
	sb.WriteString("\n")
	head := sectionHeaderStyle.Render(title)
	lineW := max(w-lipgloss.Width(head)-1, 0)
	sb.WriteString(head + " " + sectionSepStyle.Render(strings.Repeat("─", lineW)) + "\n")
}

func renderKV(sb *strings.Builder, label, value string) {
	sb.WriteString("  " + labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, label)) + value + "\n")
}

// ─── Today ──────────────────────────────────────────────────────────────────

func (m Model) renderTodayDetail(sb *strings.Builder, w int) {
	sb.WriteString(detailTitleStyle.Render("Today's Usage") + "\n")

	d := m.data.Stats.TodayUsage
	if d == nil {
		sb.WriteString("\n  " + dimStyle.Render("No Claude usage today") + "\n")
	} else {
		renderKV(sb, "Date", valueStyle.Render(format.Date(d.Date)))
		renderKV(sb, "Intensity", IntensityPill(stats.Intensity(d.TotalTokens)))

		renderDetailSectionHeader(sb, "Tokens", w)
		renderKV(sb, "Total", metricValueStyle.Render(format.Tokens(d.TotalTokens)))
		renderKV(sb, "Input", valueStyle.Render(format.Tokens(d.InputTokens)))
		renderKV(sb, "Output", valueStyle.Render(format.Tokens(d.OutputTokens)))
		if d.CacheCreationTokens > 0 || d.CacheReadTokens > 0 {
			renderKV(sb, "Cache write / read", valueStyle.Render(
				format.Tokens(d.CacheCreationTokens)+" / "+format.Tokens(d.CacheReadTokens)))
		}
		renderKV(sb, "Output/input ratio", valueStyle.Render(format.TokenEfficiency(d.InputTokens, d.OutputTokens)))

		renderDetailSectionHeader(sb, "Cost", w)
		renderKV(sb, "Cost", costStyle.Render(format.Cost(d.Cost)))
		renderKV(sb, "Cost per token", valueStyle.Render(format.CostPerToken(d.Cost, d.TotalTokens)))

		if len(d.ModelsUsed) > 0 {
			renderDetailSectionHeader(sb, "Models", w)
			for _, model := range d.ModelsUsed {
				sb.WriteString("  " + valueStyle.Render(format.ModelName(model)) + "\n")
			}
		}
	}

	now := m.now()
	renderDetailSectionHeader(sb, "History", w)
	sb.WriteString(renderCostChart(m.data.History, m.window, now, w-2) + "\n")
	if growth, ok := dayOverDay(m.data.History, now); ok {
		renderKV(sb, "Cost vs yesterday", growthStyle(growth.CostGrowth).Render(growth.CostGrowthPercentage))
		renderKV(sb, "Tokens vs yesterday", growthStyle(float64(growth.TokenGrowth)).Render(growth.TokenGrowthPercentage))
	}
}

// dayOverDay compares today with yesterday. ok is false unless both days
// are in history.
func dayOverDay(history []core.DailyUsage, now time.Time) (growth stats.Growth, ok bool) {
	today, okToday := lo.Find(history, func(d core.DailyUsage) bool { return d.Date == core.Today(now) })
	yesterday, okYesterday := lo.Find(history, func(d core.DailyUsage) bool {
		return d.Date == core.Today(now.AddDate(0, 0, -1))
	})
	if !okToday || !okYesterday {
		return stats.Growth{}, false
	}
	return stats.DailyGrowth(&today, &yesterday), true
}

func growthStyle(growth float64) lipgloss.Style {
	switch {
	case growth > 0:
		return warnStyle
	case growth < 0:
		return lipgloss.NewStyle().Foreground(colorGreen)
	default:
		return dimStyle
	}
}

// ─── Sessions ───────────────────────────────────────────────────────────────

func (m Model) renderSessionsDetail(sb *strings.Builder, w int) {
	sessions := m.data.Sessions
	now := m.now()

	sb.WriteString(detailTitleStyle.Render("Sessions") + "\n")
	if len(sessions) == 0 {
		sb.WriteString("\n  " + dimStyle.Render("No sessions reported") + "\n")
		return
	}

	renderKV(sb, "Sessions", metricValueStyle.Render(fmt.Sprintf("%d", len(sessions))))
	renderKV(sb, "Active last 24h", valueStyle.Render(fmt.Sprintf("%d", len(stats.SessionsWithin(sessions, 24*time.Hour, now)))))
	renderKV(sb, "Average cost", costStyle.Render(format.Cost(stats.AverageSessionCost(sessions))))
	renderKV(sb, "Average tokens", valueStyle.Render(format.Tokens(int64(stats.AverageSessionTokens(sessions)))))

	eff := stats.Efficiency(sessions)
	renderDetailSectionHeader(sb, "Efficiency", w)
	renderKV(sb, "Output/input ratio", valueStyle.Render(fmt.Sprintf("%.2fx", eff.AverageOutputInputRatio)))
	renderKV(sb, "Cost per output token", valueStyle.Render(fmt.Sprintf("$%.6f", eff.AverageCostPerOutput)))
	most := "N/A"
	if eff.MostEfficientModel != "" {
		most = format.ModelName(eff.MostEfficientModel)
	}
	renderKV(sb, "Most efficient model", valueStyle.Render(most))

	renderDetailSectionHeader(sb, "Recent Activity", w)
	for _, s := range stats.RecentSessions(sessions, detailSessionsLimit) {
		when := "unknown"
		if at := s.Activity(); !at.IsZero() {
			when = format.RelativeTime(at, now)
		}
		right := costStyle.Render(format.Cost(s.Cost)) + dimStyle.Render("  "+when)
		left := "  " + valueStyle.Render(s.ProjectName)
		gap := max(w-lipgloss.Width(left)-lipgloss.Width(right), 1)
		sb.WriteString(fitAnsiWidth(left+strings.Repeat(" ", gap)+right, w) + "\n")
		sb.WriteString("    " + dimStyle.Render(format.ModelName(s.Model)+" · "+format.Tokens(s.TotalTokens)+" tokens") + "\n")
	}
}

// ─── Costs ──────────────────────────────────────────────────────────────────

func (m Model) renderCostsDetail(sb *strings.Builder, w int) {
	s := m.data.Stats
	now := m.now()

	sb.WriteString(detailTitleStyle.Render("Cost Analysis") + "\n")
	if s.TotalUsage == nil && s.TodayUsage == nil {
		sb.WriteString("\n  " + dimStyle.Render("No cost data yet") + "\n")
		return
	}

	var todayCost, totalCost float64
	var totalTokens, totalIn, totalOut int64
	if s.TodayUsage != nil {
		todayCost = s.TodayUsage.Cost
	}
	if s.TotalUsage != nil {
		totalCost = s.TotalUsage.Cost
		totalTokens = s.TotalUsage.TotalTokens
		totalIn = s.TotalUsage.InputTokens
		totalOut = s.TotalUsage.OutputTokens
	}

	renderKV(sb, "Today", costStyle.Render(format.Cost(todayCost)))
	renderKV(sb, "All time", costStyle.Render(format.Cost(totalCost)))
	renderKV(sb, "Today of total", valueStyle.Render(format.Percentage(todayCost, totalCost)))

	renderDetailSectionHeader(sb, "Unit Cost", w)
	renderKV(sb, "Per token", valueStyle.Render(format.CostPerToken(totalCost, totalTokens)))
	renderKV(sb, "Per input token", valueStyle.Render(format.CostPerToken(totalCost, totalIn)))
	renderKV(sb, "Per output token", valueStyle.Render(format.CostPerToken(totalCost, totalOut)))

	monthCost := totalCost
	monthLabel := "All time (no monthly report)"
	if m.data.Monthly != nil {
		monthCost = m.data.Monthly.Cost
		monthLabel = "Month to date"
	}
	proj := stats.ProjectMonthly(monthCost, now)
	budget := stats.RemainingBudget(monthCost, m.budget, now)

	renderDetailSectionHeader(sb, "Projection", w)
	renderKV(sb, monthLabel, costStyle.Render(format.Cost(monthCost)))
	renderKV(sb, "Daily average", valueStyle.Render(format.Cost(proj.DailyAverage)))
	renderKV(sb, "Projected month", valueStyle.Render(format.Cost(proj.ProjectedMonthly)))
	renderKV(sb, "Day of month", dimStyle.Render(fmt.Sprintf("%d / %d", proj.DaysElapsed, proj.DaysInMonth)))

	if m.budget > 0 {
		renderDetailSectionHeader(sb, "Budget", w)
		renderKV(sb, "Monthly budget", valueStyle.Render(format.Cost(budget.Limit)))
		sb.WriteString("  " + RenderBudgetGauge(budget.PercentUsed, max(min(w-12, 40), 5)) + "\n")
		renderKV(sb, "Remaining", valueStyle.Render(format.Cost(budget.Remaining)))
		renderKV(sb, "Daily allowance", valueStyle.Render(format.Cost(budget.DailyAllowance)))
		switch {
		case budget.OverBudget:
			sb.WriteString("  " + errorStyle.Render("✗ Over budget by "+format.Cost(budget.Spent-budget.Limit)) + "\n")
		case budget.ProjectedOver:
			sb.WriteString("  " + warnStyle.Render("⚠ Projected to exceed budget by "+format.Cost(-budget.ProjectedRemaining)) + "\n")
		}
	}

	models := stats.ModelsFromSessions(m.data.Sessions)
	if len(models) == 0 {
		return
	}
	renderDetailSectionHeader(sb, "Cost by Model", w)
	renderBreakdown(sb, stats.CostBreakdown(models), format.Cost)

	renderDetailSectionHeader(sb, "Token Distribution", w)
	renderBreakdown(sb, stats.TokenBreakdown(models), func(v float64) string { return format.Tokens(int64(v)) })
}

func renderBreakdown(sb *strings.Builder, b stats.Breakdown, value func(float64) string) {
	for i, share := range b.PerModel {
		color := modelColor(i)
		name := lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%-*s", labelWidth, truncateName(format.ModelName(share.Model), labelWidth-1)))
		sb.WriteString("  " + name +
			RenderShareBar(share.Value, b.Total, breakdownBarWidth, color) + " " +
			valueStyle.Render(fmt.Sprintf("%7s", share.Percentage)) + "  " +
			dimStyle.Render(value(share.Value)) + "\n")
	}
}

// ─── Models ─────────────────────────────────────────────────────────────────

func (m Model) renderModelsDetail(sb *strings.Builder, w int) {
	models := stats.ModelsFromSessions(m.data.Sessions)

	sb.WriteString(detailTitleStyle.Render("Models") + "\n")
	if len(models) == 0 {
		sb.WriteString("\n  " + dimStyle.Render("No model usage reported") + "\n")
		return
	}

	totalTokens := lo.SumBy(models, func(mu core.ModelUsage) int64 { return mu.TotalTokens })
	totalCost := lo.SumBy(models, func(mu core.ModelUsage) float64 { return mu.Cost })
	renderKV(sb, "Models used", metricValueStyle.Render(fmt.Sprintf("%d", len(models))))
	renderKV(sb, "Tokens", valueStyle.Render(format.Tokens(totalTokens)))
	renderKV(sb, "Cost", costStyle.Render(format.Cost(totalCost)))

	renderDetailSectionHeader(sb, "Tiers", w)
	for _, g := range stats.GroupByTier(models) {
		tier := lipgloss.NewStyle().Foreground(TierColor(g.Tier)).Bold(true).Render(fmt.Sprintf("%-10s", g.Tier))
		sb.WriteString("  " + tier +
			RenderShareBar(float64(g.Tokens), float64(totalTokens), breakdownBarWidth, TierColor(g.Tier)) + " " +
			valueStyle.Render(format.Percentage(float64(g.Tokens), float64(totalTokens))) + "  " +
			dimStyle.Render(fmt.Sprintf("%d models · %s", len(g.Models), format.Cost(g.Cost))) + "\n")
	}

	renderDetailSectionHeader(sb, "Top Models", w)
	for i, mu := range m.data.Stats.TopModels {
		name := lipgloss.NewStyle().Foreground(modelColor(i)).Bold(true).Render(format.ModelName(mu.Model))
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, name))
		sb.WriteString("     " + dimStyle.Render(fmt.Sprintf("%s tokens · %s · %d sessions · %s",
			format.Tokens(mu.TotalTokens), format.Cost(mu.Cost), mu.SessionCount,
			format.TokenEfficiency(mu.InputTokens, mu.OutputTokens))) + "\n")
	}
}

func truncateName(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
