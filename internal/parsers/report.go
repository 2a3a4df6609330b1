// Package parsers normalizes ccusage JSON output into core usage records.
package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/ccmeter/internal/core"
)

// Schema identifies which ccusage output shape a payload uses.
type Schema int

const (
	SchemaEmpty Schema = iota
	SchemaInvalid
	SchemaUnknown    // valid JSON object without any recognised field
	SchemaLegacy     // flat top-level inputTokens/outputTokens/cost
	SchemaStructured // daily[], sessions[], monthly[], totals{}
)

func (s Schema) String() string {
	switch s {
	case SchemaEmpty:
		return "empty"
	case SchemaInvalid:
		return "invalid"
	case SchemaLegacy:
		return "legacy"
	case SchemaStructured:
		return "structured"
	default:
		return "unknown"
	}
}

var (
	structuredKeys = []string{"daily", "sessions", "monthly", "totals"}
	legacyKeys     = []string{"inputTokens", "outputTokens", "totalTokens", "cost", "totalCost"}
)

type ParseError struct {
	Schema Schema
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("ccusage output is %s", e.Schema)
	}
	return fmt.Sprintf("parsing ccusage output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Report is the normalized content of one ccusage payload.
type Report struct {
	Schema   Schema
	Daily    []core.DailyUsage
	Monthly  []core.MonthlyUsage
	Sessions []core.Session
	Totals   *core.TotalUsage
}

type rawRecord struct {
	Date                string   `json:"date"`
	Month               string   `json:"month"`
	SessionID           string   `json:"sessionId"`
	ProjectPath         string   `json:"projectPath"`
	ProjectName         string   `json:"projectName"`
	LastActivity        string   `json:"lastActivity"`
	StartTime           string   `json:"startTime"`
	EndTime             string   `json:"endTime"`
	Model               string   `json:"model"`
	ModelsUsed          []string `json:"modelsUsed"`
	InputTokens         number   `json:"inputTokens"`
	OutputTokens        number   `json:"outputTokens"`
	CacheCreationTokens number   `json:"cacheCreationTokens"`
	CacheReadTokens     number   `json:"cacheReadTokens"`
	TotalTokens         number   `json:"totalTokens"`
	TotalCost           number   `json:"totalCost"`
	Cost                number   `json:"cost"`
}

type rawStructured struct {
	Daily    []rawRecord `json:"daily"`
	Monthly  []rawRecord `json:"monthly"`
	Sessions []rawRecord `json:"sessions"`
	Totals   *rawRecord  `json:"totals"`
}

// DetectSchema classifies raw without decoding the records.
func DetectSchema(raw []byte) Schema {
	schema, _, _ := detect(raw)
	return schema
}

func detect(raw []byte) (Schema, map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return SchemaEmpty, nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return SchemaInvalid, nil, err
	}
	has := func(k string) bool { _, ok := fields[k]; return ok }
	switch {
	case lo.SomeBy(structuredKeys, has):
		return SchemaStructured, fields, nil
	case lo.SomeBy(legacyKeys, has):
		return SchemaLegacy, fields, nil
	default:
		return SchemaUnknown, fields, nil
	}
}

// Parse decodes raw using the parser for its detected schema. Empty or
// malformed input returns a *ParseError together with an empty report.
func Parse(raw []byte) (Report, error) {
	schema, _, err := detect(raw)
	report := Report{Schema: schema}

	switch schema {
	case SchemaEmpty:
		return report, &ParseError{Schema: schema}
	case SchemaInvalid:
		return report, &ParseError{Schema: schema, Err: err}
	case SchemaLegacy:
		return parseLegacy(raw)
	case SchemaStructured:
		return parseStructured(raw)
	default:
		return report, nil
	}
}

func parseStructured(raw []byte) (Report, error) {
	var doc rawStructured
	if err := json.Unmarshal(bytes.TrimSpace(raw), &doc); err != nil {
		return Report{Schema: SchemaInvalid}, &ParseError{Schema: SchemaStructured, Err: err}
	}
	report := Report{Schema: SchemaStructured}
	report.Daily = lo.Map(doc.Daily, func(r rawRecord, _ int) core.DailyUsage { return toDaily(r) })
	report.Monthly = lo.Map(doc.Monthly, func(r rawRecord, _ int) core.MonthlyUsage { return toMonthly(r) })
	report.Sessions = lo.Map(doc.Sessions, func(r rawRecord, _ int) core.Session { return toSession(r) })
	if doc.Totals != nil {
		t := toTotals(*doc.Totals)
		report.Totals = &t
	}
	return report, nil
}

func parseLegacy(raw []byte) (Report, error) {
	var r rawRecord
	if err := json.Unmarshal(bytes.TrimSpace(raw), &r); err != nil {
		return Report{Schema: SchemaInvalid}, &ParseError{Schema: SchemaLegacy, Err: err}
	}
	totals := toTotals(r)
	report := Report{Schema: SchemaLegacy, Totals: &totals}
	if r.Date != "" {
		report.Daily = []core.DailyUsage{toDaily(r)}
	}
	return report, nil
}

func toDaily(r rawRecord) core.DailyUsage {
	return core.DailyUsage{
		Date:                r.Date,
		InputTokens:         r.InputTokens.Int(),
		OutputTokens:        r.OutputTokens.Int(),
		CacheCreationTokens: r.CacheCreationTokens.Int(),
		CacheReadTokens:     r.CacheReadTokens.Int(),
		TotalTokens:         r.TotalTokens.Int(),
		Cost:                resolveCost(r.TotalCost, r.Cost),
		ModelsUsed:          r.ModelsUsed,
	}
}

func toMonthly(r rawRecord) core.MonthlyUsage {
	return core.MonthlyUsage{
		Month:               r.Month,
		InputTokens:         r.InputTokens.Int(),
		OutputTokens:        r.OutputTokens.Int(),
		CacheCreationTokens: r.CacheCreationTokens.Int(),
		CacheReadTokens:     r.CacheReadTokens.Int(),
		TotalTokens:         r.TotalTokens.Int(),
		Cost:                resolveCost(r.TotalCost, number{}),
		ModelsUsed:          r.ModelsUsed,
	}
}

func toTotals(r rawRecord) core.TotalUsage {
	return core.TotalUsage{
		InputTokens:  r.InputTokens.Int(),
		OutputTokens: r.OutputTokens.Int(),
		TotalTokens:  r.TotalTokens.Int(),
		Cost:         resolveCost(r.TotalCost, r.Cost),
	}
}

func toSession(r rawRecord) core.Session {
	lastActivity := firstNonEmpty(r.LastActivity, r.Date)
	model := firstNonEmpty(r.Model)
	if model == "" && len(r.ModelsUsed) > 0 {
		model = firstNonEmpty(r.ModelsUsed...)
	}
	if model == "" {
		model = core.DefaultSessionModel
	}
	total := r.TotalTokens.Int()
	if !r.TotalTokens.set {
		total = r.InputTokens.Int() + r.OutputTokens.Int()
	}
	projectName := firstNonEmpty(r.ProjectName)
	if projectName == "" {
		projectName = core.ProjectNameFromPath(r.ProjectPath)
	}
	return core.Session{
		SessionID:           r.SessionID,
		ProjectPath:         r.ProjectPath,
		ProjectName:         projectName,
		LastActivity:        lastActivity,
		StartTime:           firstNonEmpty(r.StartTime, lastActivity),
		EndTime:             r.EndTime,
		InputTokens:         r.InputTokens.Int(),
		OutputTokens:        r.OutputTokens.Int(),
		CacheCreationTokens: r.CacheCreationTokens.Int(),
		CacheReadTokens:     r.CacheReadTokens.Int(),
		TotalTokens:         total,
		Cost:                resolveCost(r.TotalCost, r.Cost),
		Model:               model,
	}
}

// DailyFor returns the entry for date, or the most recent entry when there
// is no exact match. It returns nil for an empty report.
func (r Report) DailyFor(date string) *core.DailyUsage {
	if len(r.Daily) == 0 {
		return nil
	}
	entry, ok := lo.Find(r.Daily, func(d core.DailyUsage) bool { return d.Date == date })
	if !ok {
		entry = r.Daily[len(r.Daily)-1]
	}
	return &entry
}

// MonthFor applies the DailyFor fallback policy to monthly entries.
func (r Report) MonthFor(month string) *core.MonthlyUsage {
	if len(r.Monthly) == 0 {
		return nil
	}
	entry, ok := lo.Find(r.Monthly, func(m core.MonthlyUsage) bool { return m.Month == month })
	if !ok {
		entry = r.Monthly[len(r.Monthly)-1]
	}
	return &entry
}

// parseLogged parses raw and logs (rather than returns) parse failures.
func parseLogged(kind string, raw []byte) Report {
	report, err := Parse(raw)
	if err != nil {
		log.Printf("[parsers] %s: %v", kind, err)
	}
	return report
}

// ParseDaily returns the entry for today (YYYY-MM-DD) with latest fallback.
func ParseDaily(raw []byte, today string) *core.DailyUsage {
	return parseLogged("daily", raw).DailyFor(today)
}

// ParseMonthly returns the entry for month (YYYY-MM) with latest fallback.
func ParseMonthly(raw []byte, month string) *core.MonthlyUsage {
	return parseLogged("monthly", raw).MonthFor(month)
}

func ParseTotals(raw []byte) *core.TotalUsage {
	return parseLogged("totals", raw).Totals
}

// ParseSessions never returns nil.
func ParseSessions(raw []byte) []core.Session {
	sessions := parseLogged("sessions", raw).Sessions
	if sessions == nil {
		return []core.Session{}
	}
	return sessions
}
