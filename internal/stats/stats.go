// Package stats derives summaries from normalized ccusage records. Every
// function is pure and total: nil or empty inputs yield zero values.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/ccmeter/internal/core"
)

const (
	intensityMediumFrom   = 10_000
	intensityHighFrom     = 50_000
	intensityVeryHighFrom = 100_000
)

// TopModels returns up to limit models ordered by total tokens, highest
// first. Ties keep their input order. The input is not modified.
func TopModels(models []core.ModelUsage, limit int) []core.ModelUsage {
	sorted := append([]core.ModelUsage(nil), models...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalTokens > sorted[j].TotalTokens
	})
	return truncate(sorted, limit)
}

// RecentSessions returns up to limit sessions ordered by activity time,
// newest first.
func RecentSessions(sessions []core.Session, limit int) []core.Session {
	sorted := append([]core.Session(nil), sessions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Activity().After(sorted[j].Activity())
	})
	return truncate(sorted, limit)
}

func truncate[T any](items []T, limit int) []T {
	if limit < 0 {
		limit = 0
	}
	if len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		return []T{}
	}
	return items
}

// Intensity buckets a token count.
func Intensity(tokens int64) core.Intensity {
	switch {
	case tokens < intensityMediumFrom:
		return core.IntensityLow
	case tokens < intensityHighFrom:
		return core.IntensityMedium
	case tokens < intensityVeryHighFrom:
		return core.IntensityHigh
	default:
		return core.IntensityVeryHigh
	}
}

type ModelShare struct {
	Model      string
	Value      float64
	Percentage string
}

type Breakdown struct {
	Total    float64
	PerModel []ModelShare
}

// CostBreakdown sums model costs and reports each model's share.
func CostBreakdown(models []core.ModelUsage) Breakdown {
	return breakdown(models, func(m core.ModelUsage) float64 { return m.Cost })
}

// TokenBreakdown is CostBreakdown over total tokens.
func TokenBreakdown(models []core.ModelUsage) Breakdown {
	return breakdown(models, func(m core.ModelUsage) float64 { return float64(m.TotalTokens) })
}

func breakdown(models []core.ModelUsage, value func(core.ModelUsage) float64) Breakdown {
	total := lo.SumBy(models, value)
	shares := lo.Map(models, func(m core.ModelUsage, _ int) ModelShare {
		v := value(m)
		return ModelShare{Model: m.Model, Value: v, Percentage: sharePercent(v, total)}
	})
	return Breakdown{Total: total, PerModel: shares}
}

func sharePercent(v, total float64) string {
	if total <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", v/total*100)
}

type EfficiencyReport struct {
	AverageOutputInputRatio float64
	AverageCostPerOutput    float64
	MostEfficientModel      string
}

// Efficiency divides summed output by summed input and summed cost by
// summed output across sessions, and names the model with the lowest cost
// per output token.
func Efficiency(sessions []core.Session) EfficiencyReport {
	var report EfficiencyReport

	input := lo.SumBy(sessions, func(s core.Session) int64 { return s.InputTokens })
	output := lo.SumBy(sessions, func(s core.Session) int64 { return s.OutputTokens })
	cost := lo.SumBy(sessions, func(s core.Session) float64 { return s.Cost })
	if input > 0 {
		report.AverageOutputInputRatio = float64(output) / float64(input)
	}
	if output > 0 {
		report.AverageCostPerOutput = cost / float64(output)
	}

	best := -1.0
	for _, m := range ModelsFromSessions(sessions) {
		if m.OutputTokens <= 0 {
			continue
		}
		perOutput := m.Cost / float64(m.OutputTokens)
		if best < 0 || perOutput < best {
			best = perOutput
			report.MostEfficientModel = m.Model
		}
	}
	return report
}

type Projection struct {
	DailyAverage     float64
	ProjectedMonthly float64
	DaysElapsed      int
	DaysInMonth      int
}

// ProjectMonthly extrapolates month-to-date cost linearly to month end.
func ProjectMonthly(monthCost float64, now time.Time) Projection {
	day := max(now.Day(), 1)
	days := core.DaysInMonth(now)
	avg := monthCost / float64(day)
	return Projection{
		DailyAverage:     avg,
		ProjectedMonthly: avg * float64(days),
		DaysElapsed:      day,
		DaysInMonth:      days,
	}
}

type Growth struct {
	TokenGrowth           int64
	CostGrowth            float64
	TokenGrowthPercentage string
	CostGrowthPercentage  string
}

// DailyGrowth compares two days. A missing day or a zero previous value
// reports "0%".
func DailyGrowth(current, previous *core.DailyUsage) Growth {
	g := Growth{TokenGrowthPercentage: "0%", CostGrowthPercentage: "0%"}
	if current == nil || previous == nil {
		return g
	}
	g.TokenGrowth = current.TotalTokens - previous.TotalTokens
	g.CostGrowth = current.Cost - previous.Cost
	if previous.TotalTokens > 0 {
		g.TokenGrowthPercentage = fmt.Sprintf("%.1f%%", float64(g.TokenGrowth)/float64(previous.TotalTokens)*100)
	}
	if previous.Cost > 0 {
		g.CostGrowthPercentage = fmt.Sprintf("%.1f%%", g.CostGrowth/previous.Cost*100)
	}
	return g
}

func AverageSessionCost(sessions []core.Session) float64 {
	if len(sessions) == 0 {
		return 0
	}
	return lo.SumBy(sessions, func(s core.Session) float64 { return s.Cost }) / float64(len(sessions))
}

func AverageSessionTokens(sessions []core.Session) float64 {
	if len(sessions) == 0 {
		return 0
	}
	return float64(lo.SumBy(sessions, func(s core.Session) int64 { return s.TotalTokens })) / float64(len(sessions))
}

// SessionsWithin returns sessions active at or after now-d.
// Sessions with unparseable timestamps are excluded.
func SessionsWithin(sessions []core.Session, d time.Duration, now time.Time) []core.Session {
	cutoff := now.Add(-d)
	return lo.Filter(sessions, func(s core.Session, _ int) bool {
		at := s.Activity()
		return !at.IsZero() && !at.Before(cutoff)
	})
}

type Budget struct {
	Limit          float64
	Spent          float64
	Remaining      float64
	PercentUsed    float64
	DailyAllowance float64 // remaining spread over the rest of the month, including today
	OverBudget     bool

	ProjectedMonthly   float64
	ProjectedRemaining float64 // limit minus projection, negative when the projection overshoots
	ProjectedOver      bool
	DaysRemaining      int // days after today
}

// RemainingBudget compares month-to-date spend and its linear projection
// against a monthly limit.
func RemainingBudget(spent, limit float64, now time.Time) Budget {
	proj := ProjectMonthly(spent, now)
	b := Budget{
		Limit:              limit,
		Spent:              spent,
		Remaining:          max(limit-spent, 0),
		ProjectedMonthly:   proj.ProjectedMonthly,
		ProjectedRemaining: limit - proj.ProjectedMonthly,
		DaysRemaining:      proj.DaysInMonth - proj.DaysElapsed,
	}
	if limit > 0 {
		b.PercentUsed = spent / limit * 100
		b.OverBudget = spent > limit
		b.ProjectedOver = proj.ProjectedMonthly > limit
	}
	if daysLeft := b.DaysRemaining + 1; daysLeft > 0 {
		b.DailyAllowance = b.Remaining / float64(daysLeft)
	}
	return b
}

// ModelsFromSessions aggregates sessions per model in first-seen order.
func ModelsFromSessions(sessions []core.Session) []core.ModelUsage {
	grouped := lo.GroupBy(sessions, func(s core.Session) string { return s.Model })
	order := lo.Uniq(lo.Map(sessions, func(s core.Session, _ int) string { return s.Model }))
	return lo.Map(order, func(model string, _ int) core.ModelUsage {
		group := grouped[model]
		return core.ModelUsage{
			Model:        model,
			InputTokens:  lo.SumBy(group, func(s core.Session) int64 { return s.InputTokens }),
			OutputTokens: lo.SumBy(group, func(s core.Session) int64 { return s.OutputTokens }),
			TotalTokens:  lo.SumBy(group, func(s core.Session) int64 { return s.TotalTokens }),
			Cost:         lo.SumBy(group, func(s core.Session) float64 { return s.Cost }),
			SessionCount: len(group),
		}
	})
}

type TierGroup struct {
	Tier   core.ModelTier
	Models []core.ModelUsage
	Cost   float64
	Tokens int64
}

// GroupByTier buckets models by tier in core.ModelTiers order, omitting
// empty tiers.
func GroupByTier(models []core.ModelUsage) []TierGroup {
	byTier := lo.GroupBy(models, func(m core.ModelUsage) core.ModelTier { return core.TierForModel(m.Model) })
	groups := make([]TierGroup, 0, len(byTier))
	for _, tier := range core.ModelTiers {
		members, ok := byTier[tier]
		if !ok {
			continue
		}
		groups = append(groups, TierGroup{
			Tier:   tier,
			Models: members,
			Cost:   lo.SumBy(members, func(m core.ModelUsage) float64 { return m.Cost }),
			Tokens: lo.SumBy(members, func(m core.ModelUsage) int64 { return m.TotalTokens }),
		})
	}
	return groups
}

// BuildStats assembles the summary shown by every surface.
func BuildStats(daily *core.DailyUsage, total *core.TotalUsage, sessions []core.Session, err error, recentN, topN int) core.UsageStats {
	s := core.UsageStats{
		TodayUsage:     daily,
		TotalUsage:     total,
		RecentSessions: RecentSessions(sessions, recentN),
		TopModels:      TopModels(ModelsFromSessions(sessions), topN),
	}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}
