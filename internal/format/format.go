// Package format renders usage numbers, timestamps and model ids for display.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/janekbaraniewski/ccmeter/internal/core"
)

const unknownModel = "Unknown Model"

var modelNames = map[string]string{
	"claude-3-5-sonnet-20241022": "Claude 3.5 Sonnet",
	"claude-3-5-sonnet-20240620": "Claude 3.5 Sonnet (Legacy)",
	"claude-3-5-haiku-20241022":  "Claude 3.5 Haiku",
	"claude-3-7-sonnet-20250219": "Claude 3.7 Sonnet",
	"claude-3-opus-20240229":     "Claude 3 Opus",
	"claude-3-sonnet-20240229":   "Claude 3 Sonnet",
	"claude-3-haiku-20240307":    "Claude 3 Haiku",
	"claude-sonnet-4-20250514":   "Claude Sonnet 4",
	"claude-opus-4-20250514":     "Claude Opus 4",
	"claude-opus-4-1-20250805":   "Claude Opus 4.1",
}

// Tokens abbreviates counts: 999, 1.5K, 2.3M.
func Tokens(n int64) string {
	switch {
	case n < 1_000:
		return strconv.FormatInt(n, 10)
	case n < 1_000_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	}
}

// Cost renders USD with two decimals and thousands separators.
func Cost(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(math.Round(v * 100))
	return fmt.Sprintf("%s$%s.%02d", sign, groupThousands(cents/100), cents%100)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Percentage renders value as a share of total, "0%" when total is zero.
func Percentage(value, total float64) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", value/total*100)
}

// RelativeTime describes t relative to now for the last week and falls back
// to Date for anything older.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
	default:
		return t.Format("2006/01/02")
	}
}

// RelativeTimeString parses raw first; unparseable input is returned as is.
func RelativeTimeString(raw string, now time.Time) string {
	t := core.ParseTimestamp(raw)
	if t.IsZero() {
		return raw
	}
	return RelativeTime(t, now)
}

// Date renders a ccusage timestamp as 2006/01/02.
func Date(raw string) string {
	t := core.ParseTimestamp(raw)
	if t.IsZero() {
		return raw
	}
	return t.Format("2006/01/02")
}

// DateTime renders a ccusage timestamp as "Jan 2, 2006, 03:04 PM".
func DateTime(raw string) string {
	t := core.ParseTimestamp(raw)
	if t.IsZero() {
		return raw
	}
	return t.Format("Jan 2, 2006, 03:04 PM")
}

func ModelName(model string) string {
	if strings.TrimSpace(model) == "" {
		return unknownModel
	}
	if name, ok := modelNames[model]; ok {
		return name
	}
	return model
}

// TokenEfficiency is the output/input ratio, e.g. "1.50x".
func TokenEfficiency(input, output int64) string {
	if input == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2fx", float64(output)/float64(input))
}

func CostPerToken(cost float64, totalTokens int64) string {
	if totalTokens == 0 {
		return "$0.000"
	}
	return fmt.Sprintf("$%.6f", cost/float64(totalTokens))
}
