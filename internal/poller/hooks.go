package poller

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/janekbaraniewski/ccmeter/internal/config"
	"github.com/janekbaraniewski/ccmeter/internal/core"
	"github.com/janekbaraniewski/ccmeter/internal/parsers"
	"github.com/janekbaraniewski/ccmeter/internal/stats"
)

// UsageClient is the subset of the ccusage client the hooks poll.
type UsageClient interface {
	Daily(ctx context.Context) (*core.DailyUsage, error)
	Totals(ctx context.Context) (*core.TotalUsage, error)
	Sessions(ctx context.Context) ([]core.Session, error)
	Monthly(ctx context.Context) (*core.MonthlyUsage, error)
	Available(ctx context.Context) (bool, error)
	Window(ctx context.Context, tw core.TimeWindow) (parsers.Report, error)
}

// Hooks are the standard usage sources, each on its own timer.
type Hooks struct {
	Daily        *Source[*core.DailyUsage]
	Total        *Source[*core.TotalUsage]
	Sessions     *Source[[]core.Session]
	Monthly      *Source[*core.MonthlyUsage]
	Availability *Source[bool]
	// History holds per-day usage for the selected window.
	History *Source[[]core.DailyUsage]

	mu             sync.Mutex
	window         core.TimeWindow
	recentSessions int
	topModels      int
	group          *Group
}

func NewHooks(client UsageClient, cfg config.Config) *Hooks {
	h := &Hooks{
		Daily:          NewSource("daily", cfg.Refresh.Daily(), client.Daily),
		Total:          NewSource("total", cfg.Refresh.Total(), client.Totals),
		Sessions:       NewSource("sessions", cfg.Refresh.Session(), client.Sessions),
		Monthly:        NewSource("monthly", cfg.Refresh.Monthly(), client.Monthly),
		Availability:   NewSource("availability", cfg.Refresh.Availability(), client.Available),
		recentSessions: cfg.RecentSessions,
		topModels:      cfg.TopModels,
		window:         cfg.Window(),
	}
	h.History = NewSource("history", cfg.Refresh.Monthly(), func(ctx context.Context) ([]core.DailyUsage, error) {
		rep, err := client.Window(ctx, h.HistoryWindow())
		if rep.Daily == nil {
			rep.Daily = []core.DailyUsage{}
		}
		return rep.Daily, err
	})
	h.group = NewGroup(h.Daily, h.Total, h.Sessions, h.Monthly, h.Availability, h.History)
	return h
}

func (h *Hooks) HistoryWindow() core.TimeWindow {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.window
}

// SetHistoryWindow switches the history lookback and revalidates it.
func (h *Hooks) SetHistoryWindow(tw core.TimeWindow) {
	h.mu.Lock()
	changed := h.window != tw
	h.window = tw
	h.mu.Unlock()
	if changed {
		h.History.Revalidate()
	}
}

func (h *Hooks) Run(ctx context.Context) error { return h.group.Run(ctx) }

func (h *Hooks) RevalidateAll() { h.group.RevalidateAll() }

// RefreshAll runs one fetch of every source concurrently and waits for
// them. One-shot commands use it instead of Run.
func (h *Hooks) RefreshAll(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error { h.Daily.Refresh(ctx); return nil })
	g.Go(func() error { h.Total.Refresh(ctx); return nil })
	g.Go(func() error { h.Sessions.Refresh(ctx); return nil })
	g.Go(func() error { h.Monthly.Refresh(ctx); return nil })
	g.Go(func() error { h.Availability.Refresh(ctx); return nil })
	g.Go(func() error { h.History.Refresh(ctx); return nil })
	_ = g.Wait()
}

// OnChange calls fn after any source publishes.
func (h *Hooks) OnChange(fn func()) {
	h.Daily.OnUpdate(func(Snapshot[*core.DailyUsage]) { fn() })
	h.Total.OnUpdate(func(Snapshot[*core.TotalUsage]) { fn() })
	h.Sessions.OnUpdate(func(Snapshot[[]core.Session]) { fn() })
	h.Monthly.OnUpdate(func(Snapshot[*core.MonthlyUsage]) { fn() })
	h.Availability.OnUpdate(func(Snapshot[bool]) { fn() })
	h.History.OnUpdate(func(Snapshot[[]core.DailyUsage]) { fn() })
}

// Stats combines the latest daily, total and session snapshots. The first
// error in total, daily, session order is reported.
func (h *Hooks) Stats() core.UsageStats {
	daily, total, sessions := h.Daily.Snapshot(), h.Total.Snapshot(), h.Sessions.Snapshot()

	var err error
	for _, e := range []error{total.Err, daily.Err, sessions.Err} {
		if e != nil {
			err = e
			break
		}
	}
	s := stats.BuildStats(daily.Data, total.Data, sessions.Data, err, h.recentSessions, h.topModels)
	s.IsLoading = daily.IsLoading || total.IsLoading || sessions.IsLoading
	return s
}
