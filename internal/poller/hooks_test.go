package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/janekbaraniewski/ccmeter/internal/config"
	"github.com/janekbaraniewski/ccmeter/internal/core"
	"github.com/janekbaraniewski/ccmeter/internal/parsers"
)

type fakeClient struct {
	sessionsErr error
	dailyCalls  atomic.Int32
	windows     chan core.TimeWindow
}

func (f *fakeClient) Daily(context.Context) (*core.DailyUsage, error) {
	f.dailyCalls.Add(1)
	return &core.DailyUsage{Date: "2025-01-15", TotalTokens: 12_000}, nil
}

func (f *fakeClient) Totals(context.Context) (*core.TotalUsage, error) {
	return &core.TotalUsage{TotalTokens: 150, Cost: 2.5}, nil
}

func (f *fakeClient) Sessions(context.Context) ([]core.Session, error) {
	if f.sessionsErr != nil {
		return []core.Session{}, f.sessionsErr
	}
	return []core.Session{
		{SessionID: "a", Model: "opus", TotalTokens: 10, LastActivity: "2025-01-14"},
		{SessionID: "b", Model: "haiku", TotalTokens: 30, LastActivity: "2025-01-15"},
	}, nil
}

func (f *fakeClient) Monthly(context.Context) (*core.MonthlyUsage, error) {
	return &core.MonthlyUsage{Month: "2025-01"}, nil
}

func (f *fakeClient) Available(context.Context) (bool, error) { return true, nil }

func (f *fakeClient) Window(_ context.Context, tw core.TimeWindow) (parsers.Report, error) {
	if f.windows != nil {
		select {
		case f.windows <- tw:
		default:
		}
	}
	days := make([]core.DailyUsage, tw.Days())
	return parsers.Report{Schema: parsers.SchemaStructured, Daily: days}, nil
}

func TestHooksIntervalsFromConfig(t *testing.T) {
	h := NewHooks(&fakeClient{}, config.DefaultConfig())
	want := map[string]time.Duration{
		"daily": 10 * time.Second, "total": 30 * time.Second, "sessions": 15 * time.Second,
		"monthly": 60 * time.Second, "availability": 60 * time.Second, "history": 60 * time.Second,
	}
	got := map[string]time.Duration{
		h.Daily.Name(): h.Daily.Interval(), h.Total.Name(): h.Total.Interval(),
		h.Sessions.Name(): h.Sessions.Interval(), h.Monthly.Name(): h.Monthly.Interval(),
		h.Availability.Name(): h.Availability.Interval(), h.History.Name(): h.History.Interval(),
	}
	for name, w := range want {
		if got[name] != w {
			t.Errorf("%s interval = %s, want %s", name, got[name], w)
		}
	}
}

func TestHooksStats(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RecentSessions = 1
	h := NewHooks(&fakeClient{}, cfg)
	h.RefreshAll(context.Background())

	s := h.Stats()
	if s.IsLoading || s.Error != "" {
		t.Fatalf("stats = %+v", s)
	}
	if s.TodayUsage == nil || s.TodayUsage.TotalTokens != 12_000 {
		t.Errorf("TodayUsage = %+v", s.TodayUsage)
	}
	if len(s.RecentSessions) != 1 || s.RecentSessions[0].SessionID != "b" {
		t.Errorf("RecentSessions = %+v", s.RecentSessions)
	}
	if len(s.TopModels) != 2 || s.TopModels[0].Model != "haiku" {
		t.Errorf("TopModels = %+v", s.TopModels)
	}
	if ok := h.Availability.Snapshot().Data; !ok {
		t.Error("availability = false")
	}
}

func TestHooksStatsError(t *testing.T) {
	h := NewHooks(&fakeClient{sessionsErr: errors.New("sessions failed")}, config.DefaultConfig())
	h.RefreshAll(context.Background())
	if got := h.Stats().Error; got != "sessions failed" {
		t.Errorf("Error = %q, want sessions failed", got)
	}
}

func TestGroupRunAndRevalidate(t *testing.T) {
	client := &fakeClient{}
	h := NewHooks(client, config.DefaultConfig())

	changes := make(chan struct{}, 64)
	h.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	waitFor(t, func() bool { return h.Daily.Snapshot().Seq == 1 })
	h.RevalidateAll()
	waitFor(t, func() bool { return client.dailyCalls.Load() >= 2 })

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run = %v", err)
	}
	if len(changes) == 0 {
		t.Error("OnChange never fired")
	}
}

func TestHooksHistoryWindow(t *testing.T) {
	client := &fakeClient{windows: make(chan core.TimeWindow, 8)}
	h := NewHooks(client, config.DefaultConfig())
	if got := h.HistoryWindow(); got != core.TimeWindow7d {
		t.Fatalf("HistoryWindow() = %q, want 7d", got)
	}

	h.History.Refresh(context.Background())
	if got := len(h.History.Snapshot().Data); got != 7 {
		t.Errorf("history days = %d, want 7", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- h.History.Run(ctx) }()

	h.SetHistoryWindow(core.TimeWindow3d)
	waitFor(t, func() bool { return len(h.History.Snapshot().Data) == 3 })

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run = %v", err)
	}
}
