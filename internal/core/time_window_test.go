package core

import (
	"testing"
	"time"
)

func TestTimeWindowDays(t *testing.T) {
	tests := []struct {
		tw   TimeWindow
		want int
	}{
		{TimeWindow1d, 1},
		{TimeWindow3d, 3},
		{TimeWindow7d, 7},
		{TimeWindow30d, 30},
		{TimeWindow(""), 30},
		{TimeWindow("999d"), 30},
	}
	for _, tt := range tests {
		t.Run(string(tt.tw), func(t *testing.T) {
			if got := tt.tw.Days(); got != tt.want {
				t.Errorf("TimeWindow(%q).Days() = %d, want %d", tt.tw, got, tt.want)
			}
		})
	}
}

func TestTimeWindowLabel(t *testing.T) {
	tests := []struct {
		tw   TimeWindow
		want string
	}{
		{TimeWindow1d, "Today"},
		{TimeWindow3d, "3 Days"},
		{TimeWindow7d, "7 Days"},
		{TimeWindow30d, "30 Days"},
		{TimeWindow("bogus"), "30 Days"},
	}
	for _, tt := range tests {
		if got := tt.tw.Label(); got != tt.want {
			t.Errorf("TimeWindow(%q).Label() = %q, want %q", tt.tw, got, tt.want)
		}
	}
}

func TestTimeWindowRange(t *testing.T) {
	now := time.Date(2025, 3, 2, 15, 0, 0, 0, time.UTC)

	since, until := TimeWindow7d.Range(now)
	if since != "20250224" {
		t.Errorf("since = %q, want 20250224", since)
	}
	if until != "20250302" {
		t.Errorf("until = %q, want 20250302", until)
	}

	since, until = TimeWindow1d.Range(now)
	if since != until {
		t.Errorf("1d range = %q..%q, want a single day", since, until)
	}
}

func TestParseTimeWindow(t *testing.T) {
	if got := ParseTimeWindow("7d"); got != TimeWindow7d {
		t.Errorf("ParseTimeWindow(7d) = %q", got)
	}
	if got := ParseTimeWindow("nope"); got != TimeWindow30d {
		t.Errorf("ParseTimeWindow(nope) = %q, want 30d", got)
	}
}

func TestNextTimeWindow(t *testing.T) {
	if got := NextTimeWindow(TimeWindow30d); got != TimeWindow1d {
		t.Errorf("NextTimeWindow(30d) = %q, want 1d", got)
	}
	if got := NextTimeWindow(TimeWindow1d); got != TimeWindow3d {
		t.Errorf("NextTimeWindow(1d) = %q, want 3d", got)
	}
	if got := NextTimeWindow("x"); got != TimeWindow1d {
		t.Errorf("NextTimeWindow(x) = %q, want 1d", got)
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		t    time.Time
		want int
	}{
		{time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 29},
		{time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), 28},
		{time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), 30},
		{time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), 31},
	}
	for _, tt := range tests {
		if got := DaysInMonth(tt.t); got != tt.want {
			t.Errorf("DaysInMonth(%s) = %d, want %d", tt.t.Format("2006-01"), got, tt.want)
		}
	}
}
