package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/janekbaraniewski/ccmeter/internal/ccusage"
	"github.com/janekbaraniewski/ccmeter/internal/config"
	"github.com/janekbaraniewski/ccmeter/internal/poller"
	"github.com/janekbaraniewski/ccmeter/internal/settings"
	"github.com/janekbaraniewski/ccmeter/internal/tui"
)

// app wires the settings provider, invoker and client every command uses.
type app struct {
	cfg      config.Config
	settings settings.Provider
	client   *ccusage.Client
}

func newApp(cfg config.Config) (*app, error) {
	provider, err := settings.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening runtime settings: %w", err)
	}
	inv := ccusage.NewInvoker(cfg.Invoker)
	return &app{
		cfg:      cfg,
		settings: provider,
		client:   ccusage.NewClient(inv, provider),
	}, nil
}

func (a *app) Close() error {
	if c, ok := a.settings.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (a *app) configured(ctx context.Context) bool {
	rs, err := a.settings.Load(ctx)
	return err == nil && rs.HasValidConfig()
}

// settingsPath is the file to watch for external settings changes, empty
// for the in-memory backend.
func (a *app) settingsPath() string {
	switch a.cfg.SettingsBackend {
	case config.BackendSQLite:
		return settings.DBPath()
	case config.BackendMemory:
		return ""
	default:
		return settings.Path()
	}
}

// snapshot collects the current poller state for the dashboard.
func snapshot(h *poller.Hooks, configured bool) tui.SnapshotMsg {
	sessions := h.Sessions.Snapshot()
	avail := h.Availability.Snapshot()

	var updated time.Time
	for _, t := range []time.Time{h.Daily.Snapshot().UpdatedAt, h.Total.Snapshot().UpdatedAt, sessions.UpdatedAt} {
		if t.After(updated) {
			updated = t
		}
	}

	return tui.SnapshotMsg{
		Stats:               h.Stats(),
		Monthly:             h.Monthly.Snapshot().Data,
		Sessions:            sessions.Data,
		History:             h.History.Snapshot().Data,
		Window:              h.HistoryWindow(),
		Available:           avail.Data,
		AvailabilityLoading: avail.Seq == 0,
		Configured:          configured,
		UpdatedAt:           updated,
	}
}
