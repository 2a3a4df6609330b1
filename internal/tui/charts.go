package tui

import (
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/janekbaraniewski/ccmeter/internal/core"
	"github.com/janekbaraniewski/ccmeter/internal/format"
)

const (
	costChartHeight = 7 // bars plus the label row
	costChartMinW   = 14
)

// dailyCostSeries lays history out over every calendar day of the window
// ending at now, oldest first. Days ccusage did not report are zero.
func dailyCostSeries(history []core.DailyUsage, tw core.TimeWindow, now time.Time) []core.DailyUsage {
	byDate := lo.SliceToMap(history, func(d core.DailyUsage) (string, core.DailyUsage) { return d.Date, d })
	days := tw.Days()
	series := make([]core.DailyUsage, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := core.Today(now.AddDate(0, 0, -i))
		d, ok := byDate[date]
		if !ok {
			d = core.DailyUsage{Date: date}
		}
		series = append(series, d)
	}
	return series
}

// chartGeometry picks bar width and gap so n bars fit in width. Bars are
// capped at six cells.
func chartGeometry(n, width int) (barW, gap int) {
	if n <= 0 {
		return 1, 0
	}
	gap = 1
	barW = (width - gap*(n-1)) / n
	if barW < 2 {
		gap = 0
		barW = max(width/n, 1)
	}
	return min(barW, 6), gap
}

// renderCostChart draws a daily cost bar chart for the history window.
// Today's bar is highlighted.
func renderCostChart(history []core.DailyUsage, tw core.TimeWindow, now time.Time, width int) string {
	series := dailyCostSeries(history, tw, now)
	total := lo.SumBy(series, func(d core.DailyUsage) float64 { return d.Cost })
	peak := lo.MaxBy(series, func(a, b core.DailyUsage) bool { return a.Cost > b.Cost })

	legend := labelStyle.Render("Daily cost · "+tw.Label()+"  ") +
		costStyle.Render(format.Cost(total)) +
		dimStyle.Render("  peak "+format.Cost(peak.Cost))

	if total == 0 {
		return legend + "\n" + dimStyle.Render("  No usage in this window")
	}
	if width < costChartMinW {
		return legend
	}

	barW, gap := chartGeometry(len(series), width)
	chartW := len(series)*barW + (len(series)-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(colorDim)
	axisLabelStyle := lipgloss.NewStyle().Foreground(colorSubtext)
	chart := barchart.New(chartW, costChartHeight,
		barchart.WithStyles(axisStyle, axisLabelStyle),
	)
	chart.SetBarWidth(barW)
	chart.SetBarGap(gap)
	chart.SetMax(peak.Cost)

	dayStyle := lipgloss.NewStyle().Foreground(colorBlue)
	todayStyle := lipgloss.NewStyle().Foreground(colorPeach)
	today := core.Today(now)
	labelEvery := max(len(series)/10, 1)

	for i, d := range series {
		style := dayStyle
		if d.Date == today {
			style = todayStyle
		}
		label := ""
		if (len(series)-1-i)%labelEvery == 0 && barW >= 2 {
			label = dayLabel(d.Date)
		}
		chart.Push(barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{
				{Name: d.Date, Value: d.Cost, Style: style},
			},
		})
	}

	chart.Draw()
	var sb strings.Builder
	sb.WriteString(legend)
	sb.WriteString("\n")
	sb.WriteString(chart.View())
	return sb.String()
}

// dayLabel is the two-digit day of month of a YYYY-MM-DD date.
func dayLabel(date string) string {
	if len(date) < 10 {
		return date
	}
	return date[8:10]
}
