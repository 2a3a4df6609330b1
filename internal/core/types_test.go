package core

import (
	"testing"
	"time"
)

func TestProjectNameFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/Users/me/code/ccmeter", "ccmeter"},
		{"/Users/me/code/ccmeter/", "ccmeter"},
		{"ccmeter", "ccmeter"},
		{"", "Unknown Project"},
		{"/", "Unknown Project"},
	}
	for _, tt := range tests {
		if got := ProjectNameFromPath(tt.path); got != tt.want {
			t.Errorf("ProjectNameFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSessionActivity_PrefersStartTime(t *testing.T) {
	s := Session{
		StartTime:    "2025-01-02T10:00:00Z",
		LastActivity: "2025-01-01",
	}
	want := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	if got := s.Activity(); !got.Equal(want) {
		t.Errorf("Activity() = %v, want %v", got, want)
	}
}

func TestSessionActivity_FallsBackToLastActivity(t *testing.T) {
	s := Session{LastActivity: "2025-01-01"}
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := s.Activity(); !got.Equal(want) {
		t.Errorf("Activity() = %v, want %v", got, want)
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	if got := ParseTimestamp("yesterday-ish"); !got.IsZero() {
		t.Errorf("ParseTimestamp(invalid) = %v, want zero", got)
	}
	if got := ParseTimestamp(""); !got.IsZero() {
		t.Errorf("ParseTimestamp(empty) = %v, want zero", got)
	}
}

func TestTierForModel(t *testing.T) {
	tests := []struct {
		model string
		want  ModelTier
	}{
		{"claude-3-opus-20240229", TierPremium},
		{"claude-opus-4-20250514", TierPremium},
		{"Claude-3-5-SONNET-20241022", TierStandard},
		{"claude-3-haiku-20240307", TierFast},
		{"gpt-4o", TierUnknown},
		{"", TierUnknown},
	}
	for _, tt := range tests {
		if got := TierForModel(tt.model); got != tt.want {
			t.Errorf("TierForModel(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestModelFamily(t *testing.T) {
	if got := ModelFamily("claude-3-haiku"); got != "haiku" {
		t.Errorf("ModelFamily(haiku) = %q", got)
	}
	if got := ModelFamily("mystery"); got != "" {
		t.Errorf("ModelFamily(mystery) = %q, want empty", got)
	}
}
