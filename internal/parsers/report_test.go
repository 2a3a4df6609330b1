package parsers

import (
	"errors"
	"testing"

	"github.com/janekbaraniewski/ccmeter/internal/core"
)

func TestDetectSchema(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Schema
	}{
		{"empty", "", SchemaEmpty},
		{"whitespace", "  \n", SchemaEmpty},
		{"invalid", "{not json", SchemaInvalid},
		{"array", "[1,2]", SchemaInvalid},
		{"legacy", `{"inputTokens":1,"outputTokens":2}`, SchemaLegacy},
		{"structured daily", `{"daily":[]}`, SchemaStructured},
		{"structured totals", `{"totals":{"inputTokens":1}}`, SchemaStructured},
		{"unknown", `{"hello":"world"}`, SchemaUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectSchema([]byte(tt.raw)); got != tt.want {
				t.Errorf("DetectSchema(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseEmptyAndInvalid(t *testing.T) {
	for _, raw := range []string{"", "garbage"} {
		report, err := Parse([]byte(raw))
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("Parse(%q) error = %v, want *ParseError", raw, err)
		}
		if report.Totals != nil || len(report.Daily) != 0 || len(report.Sessions) != 0 {
			t.Errorf("Parse(%q) report = %+v, want empty", raw, report)
		}
	}
}

func TestParseTotalsOnly(t *testing.T) {
	raw := `{"totals":{"inputTokens":100,"outputTokens":50,"totalTokens":150,"totalCost":2.5}}`
	got := ParseTotals([]byte(raw))
	want := core.TotalUsage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150, Cost: 2.5}
	if got == nil || *got != want {
		t.Fatalf("ParseTotals = %+v, want %+v", got, want)
	}
}

func TestParseLegacyShape(t *testing.T) {
	raw := `{"date":"2025-01-15","inputTokens":10,"outputTokens":5,"totalTokens":15,"cost":0.3}`
	report, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if report.Schema != SchemaLegacy {
		t.Fatalf("schema = %s, want legacy", report.Schema)
	}
	if report.Totals == nil || report.Totals.Cost != 0.3 || report.Totals.TotalTokens != 15 {
		t.Errorf("totals = %+v", report.Totals)
	}
	if len(report.Daily) != 1 || report.Daily[0].Date != "2025-01-15" {
		t.Errorf("daily = %+v, want single 2025-01-15 entry", report.Daily)
	}
}

func TestParseDailyFallsBackToLatest(t *testing.T) {
	raw := `{"daily":[
		{"date":"2025-01-13","inputTokens":1,"outputTokens":1,"totalTokens":2,"totalCost":0.1},
		{"date":"2025-01-14","inputTokens":3,"outputTokens":4,"totalTokens":7,"totalCost":0.7}
	]}`

	got := ParseDaily([]byte(raw), "2025-01-13")
	if got == nil || got.Date != "2025-01-13" {
		t.Fatalf("exact match = %+v, want 2025-01-13", got)
	}

	got = ParseDaily([]byte(raw), "2025-01-15")
	if got == nil || got.Date != "2025-01-14" || got.TotalTokens != 7 || got.Cost != 0.7 {
		t.Fatalf("fallback = %+v, want 2025-01-14 entry", got)
	}

	if got := ParseDaily([]byte(`{"daily":[]}`), "2025-01-15"); got != nil {
		t.Errorf("empty daily = %+v, want nil", got)
	}
}

func TestParseMonthly(t *testing.T) {
	raw := `{"monthly":[{"month":"2025-01","totalTokens":10,"totalCost":1},{"month":"2025-02","totalTokens":20,"totalCost":2}]}`
	if got := ParseMonthly([]byte(raw), "2025-01"); got == nil || got.Cost != 1 {
		t.Errorf("ParseMonthly exact = %+v", got)
	}
	if got := ParseMonthly([]byte(raw), "2025-03"); got == nil || got.Month != "2025-02" {
		t.Errorf("ParseMonthly fallback = %+v", got)
	}
}

func TestParseSessionsNormalizes(t *testing.T) {
	raw := `{"sessions":[
		{"sessionId":"a","projectPath":"/Users/me/code/ccmeter","lastActivity":"2025-01-15T10:00:00Z","inputTokens":10,"outputTokens":20,"cost":0.5},
		{"sessionId":"b","projectPath":"","lastActivity":"2025-01-14","modelsUsed":["claude-opus-4-20250514"],"totalTokens":5,"totalCost":1.5}
	]}`
	sessions := ParseSessions([]byte(raw))
	if len(sessions) != 2 {
		t.Fatalf("len = %d, want 2", len(sessions))
	}

	a := sessions[0]
	if a.ProjectName != "ccmeter" {
		t.Errorf("ProjectName = %q, want ccmeter", a.ProjectName)
	}
	if a.StartTime != a.LastActivity {
		t.Errorf("StartTime = %q, want alias of %q", a.StartTime, a.LastActivity)
	}
	if a.Model != core.DefaultSessionModel {
		t.Errorf("Model = %q, want default", a.Model)
	}
	if a.Cost != 0.5 {
		t.Errorf("Cost = %v, want 0.5", a.Cost)
	}
	if a.TotalTokens != 30 {
		t.Errorf("TotalTokens = %d, want 30", a.TotalTokens)
	}

	b := sessions[1]
	if b.ProjectName != "Unknown Project" {
		t.Errorf("ProjectName = %q, want Unknown Project", b.ProjectName)
	}
	if b.Model != "claude-opus-4-20250514" {
		t.Errorf("Model = %q, want first modelsUsed entry", b.Model)
	}
	if b.Cost != 1.5 || b.TotalTokens != 5 {
		t.Errorf("b = %+v", b)
	}
}

func TestParseSessionsNeverNil(t *testing.T) {
	for _, raw := range []string{"", "{}", `{"daily":[]}`} {
		if got := ParseSessions([]byte(raw)); got == nil {
			t.Errorf("ParseSessions(%q) = nil, want empty slice", raw)
		}
	}
}
