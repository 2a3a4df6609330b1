package core

import (
	"strings"
	"time"
)

// DefaultSessionModel is reported for sessions where ccusage does not name a model.
const DefaultSessionModel = "claude-3-5-sonnet-20241022"

const unknownProject = "Unknown Project"

type DailyUsage struct {
	Date                string   `json:"date"` // "2025-01-15"
	InputTokens         int64    `json:"inputTokens"`
	OutputTokens        int64    `json:"outputTokens"`
	CacheCreationTokens int64    `json:"cacheCreationTokens,omitempty"`
	CacheReadTokens     int64    `json:"cacheReadTokens,omitempty"`
	TotalTokens         int64    `json:"totalTokens"`
	Cost                float64  `json:"cost"`
	ModelsUsed          []string `json:"modelsUsed,omitempty"`
}

type MonthlyUsage struct {
	Month               string   `json:"month"` // "2025-01"
	InputTokens         int64    `json:"inputTokens"`
	OutputTokens        int64    `json:"outputTokens"`
	CacheCreationTokens int64    `json:"cacheCreationTokens,omitempty"`
	CacheReadTokens     int64    `json:"cacheReadTokens,omitempty"`
	TotalTokens         int64    `json:"totalTokens"`
	Cost                float64  `json:"cost"`
	ModelsUsed          []string `json:"modelsUsed,omitempty"`
}

type Session struct {
	SessionID           string  `json:"sessionId"`
	ProjectPath         string  `json:"projectPath"`
	ProjectName         string  `json:"projectName"`
	LastActivity        string  `json:"lastActivity"`
	StartTime           string  `json:"startTime,omitempty"` // alias of LastActivity when ccusage omits it
	EndTime             string  `json:"endTime,omitempty"`
	InputTokens         int64   `json:"inputTokens"`
	OutputTokens        int64   `json:"outputTokens"`
	CacheCreationTokens int64   `json:"cacheCreationTokens,omitempty"`
	CacheReadTokens     int64   `json:"cacheReadTokens,omitempty"`
	TotalTokens         int64   `json:"totalTokens"`
	Cost                float64 `json:"cost"`
	Model               string  `json:"model"`
}

// Activity returns the session's start time, falling back to its last
// activity. Unparseable timestamps yield the zero time.
func (s Session) Activity() time.Time {
	raw := s.StartTime
	if strings.TrimSpace(raw) == "" {
		raw = s.LastActivity
	}
	return ParseTimestamp(raw)
}

type ModelUsage struct {
	Model        string  `json:"model"`
	InputTokens  int64   `json:"inputTokens"`
	OutputTokens int64   `json:"outputTokens"`
	TotalTokens  int64   `json:"totalTokens"`
	Cost         float64 `json:"cost"`
	SessionCount int     `json:"sessionCount"`
}

type TotalUsage struct {
	InputTokens  int64   `json:"inputTokens"`
	OutputTokens int64   `json:"outputTokens"`
	TotalTokens  int64   `json:"totalTokens"`
	Cost         float64 `json:"cost"`
}

// UsageData is the normalized bundle handed to every presentation surface.
type UsageData struct {
	Daily       *DailyUsage  `json:"daily"`
	Total       *TotalUsage  `json:"total"`
	Sessions    []Session    `json:"sessions"`
	Models      []ModelUsage `json:"models"`
	Error       string       `json:"error,omitempty"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

type UsageStats struct {
	TodayUsage     *DailyUsage  `json:"todayUsage"`
	TotalUsage     *TotalUsage  `json:"totalUsage"`
	RecentSessions []Session    `json:"recentSessions"`
	TopModels      []ModelUsage `json:"topModels"`
	IsLoading      bool         `json:"isLoading"`
	Error          string       `json:"error,omitempty"`
}

type Intensity string

const (
	IntensityLow      Intensity = "Low"
	IntensityMedium   Intensity = "Medium"
	IntensityHigh     Intensity = "High"
	IntensityVeryHigh Intensity = "Very High"
)

// ProjectNameFromPath returns the last segment of a project path.
func ProjectNameFromPath(path string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return unknownProject
	}
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return unknownProject
	}
	return trimmed
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the timestamp formats ccusage has emitted over time.
func ParseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
