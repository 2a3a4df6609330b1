package core

import "time"

// TimeWindow represents a lookback window for period queries.
type TimeWindow string

const (
	TimeWindow1d  TimeWindow = "1d"
	TimeWindow3d  TimeWindow = "3d"
	TimeWindow7d  TimeWindow = "7d"
	TimeWindow30d TimeWindow = "30d"
)

var ValidTimeWindows = []TimeWindow{
	TimeWindow1d,
	TimeWindow3d,
	TimeWindow7d,
	TimeWindow30d,
}

// CompactDateLayout is the date format accepted by ccusage --since/--until.
const CompactDateLayout = "20060102"

// Days returns the window size in days.
func (tw TimeWindow) Days() int {
	switch tw {
	case TimeWindow1d:
		return 1
	case TimeWindow3d:
		return 3
	case TimeWindow7d:
		return 7
	case TimeWindow30d:
		return 30
	default:
		return 30
	}
}

func (tw TimeWindow) Label() string {
	switch tw {
	case TimeWindow1d:
		return "Today"
	case TimeWindow3d:
		return "3 Days"
	case TimeWindow7d:
		return "7 Days"
	case TimeWindow30d:
		return "30 Days"
	default:
		return "30 Days"
	}
}

// Range returns the inclusive ccusage --since/--until arguments for the
// window ending on now's calendar day.
func (tw TimeWindow) Range(now time.Time) (since, until string) {
	start := now.AddDate(0, 0, -(tw.Days() - 1))
	return start.Format(CompactDateLayout), now.Format(CompactDateLayout)
}

func ParseTimeWindow(s string) TimeWindow {
	for _, tw := range ValidTimeWindows {
		if string(tw) == s {
			return tw
		}
	}
	return TimeWindow30d
}

// NextTimeWindow returns the next time window in the cycle.
func NextTimeWindow(current TimeWindow) TimeWindow {
	for i, tw := range ValidTimeWindows {
		if tw == current {
			return ValidTimeWindows[(i+1)%len(ValidTimeWindows)]
		}
	}
	return ValidTimeWindows[0]
}

// Today returns now's calendar date as "2006-01-02".
func Today(now time.Time) string {
	return now.Format("2006-01-02")
}

// CurrentMonth returns now's calendar month as "2006-01".
func CurrentMonth(now time.Time) string {
	return now.Format("2006-01")
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
