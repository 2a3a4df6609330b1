package ccusage

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/janekbaraniewski/ccmeter/internal/settings"
)

func newTestClient(t *testing.T, r Runner, rs settings.RuntimeSettings) *Client {
	t.Helper()
	store := settings.NewMemoryStore()
	if err := store.Save(context.Background(), rs); err != nil {
		t.Fatal(err)
	}
	c := NewClient(newTestInvoker(r), store)
	c.now = func() time.Time { return time.Date(2025, 1, 15, 9, 0, 0, 0, time.Local) }
	return c
}

// lockedRunner serializes a fakeRunner for the concurrent AllUsageData calls.
func lockedRunner(fr *fakeRunner) Runner {
	var mu sync.Mutex
	return func(ctx context.Context, cmd Command, stdout, stderr io.Writer) error {
		mu.Lock()
		defer mu.Unlock()
		return fr.run(ctx, cmd, stdout, stderr)
	}
}

func TestClientRequiresSetup(t *testing.T) {
	fr := &fakeRunner{}
	c := newTestClient(t, fr.run, settings.DefaultRuntimeSettings())

	if _, err := c.Daily(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Daily err = %v, want ErrNotConfigured", err)
	}
	if len(fr.calls) != 0 {
		t.Errorf("runner called %d times before setup", len(fr.calls))
	}
}

func TestClientReports(t *testing.T) {
	fr := &fakeRunner{outputs: map[string]string{
		"daily --json":   `{"daily":[{"date":"2025-01-15","inputTokens":10,"outputTokens":5,"totalTokens":15,"totalCost":0.2}]}`,
		"monthly --json": `{"monthly":[{"month":"2025-01","totalTokens":99,"totalCost":4}]}`,
		"session --json": `{"sessions":[{"sessionId":"s1","projectPath":"/p/app","lastActivity":"2025-01-15","totalTokens":7,"totalCost":0.1,"model":"claude-opus-4"}]}`,
		"--json":         `{"totals":{"inputTokens":100,"outputTokens":50,"totalTokens":150,"totalCost":2.5}}`,
	}}
	c := newTestClient(t, fr.run, configuredSettings(t))
	ctx := context.Background()

	daily, err := c.Daily(ctx)
	if err != nil || daily == nil || daily.Date != "2025-01-15" || daily.Cost != 0.2 {
		t.Errorf("Daily = %+v, %v", daily, err)
	}
	monthly, err := c.Monthly(ctx)
	if err != nil || monthly == nil || monthly.Cost != 4 {
		t.Errorf("Monthly = %+v, %v", monthly, err)
	}
	sessions, err := c.Sessions(ctx)
	if err != nil || len(sessions) != 1 || sessions[0].ProjectName != "app" {
		t.Errorf("Sessions = %+v, %v", sessions, err)
	}
	totals, err := c.Totals(ctx)
	if err != nil || totals == nil || totals.TotalTokens != 150 {
		t.Errorf("Totals = %+v, %v", totals, err)
	}
}

func TestClientPeriod(t *testing.T) {
	fr := &fakeRunner{outputs: map[string]string{
		"--since 20250101 --until 20250107 --json": `{"daily":[{"date":"2025-01-02","totalTokens":3}]}`,
	}}
	c := newTestClient(t, fr.run, configuredSettings(t))

	report, err := c.Period(context.Background(), "20250101", "20250107")
	if err != nil {
		t.Fatalf("Period: %v", err)
	}
	if len(report.Daily) != 1 {
		t.Errorf("Daily = %+v", report.Daily)
	}
	if _, err := c.Period(context.Background(), "2025-01-01", ""); err == nil {
		t.Error("Period accepted a dashed date")
	}
	if _, err := c.Period(context.Background(), "", ""); err == nil {
		t.Error("Period accepted an empty since")
	}
}

func TestAllUsageDataEmptyOutput(t *testing.T) {
	fr := &fakeRunner{}
	c := newTestClient(t, lockedRunner(fr), configuredSettings(t))

	data := c.AllUsageData(context.Background())
	if data.Daily != nil || data.Total != nil {
		t.Errorf("Daily/Total = %+v/%+v, want nil", data.Daily, data.Total)
	}
	if data.Sessions == nil || len(data.Sessions) != 0 {
		t.Errorf("Sessions = %v, want empty", data.Sessions)
	}
	if data.Models == nil || len(data.Models) != 0 {
		t.Errorf("Models = %v, want empty", data.Models)
	}
	if data.Error != "" {
		t.Errorf("Error = %q, want empty", data.Error)
	}
}

func TestAllUsageDataRecordsError(t *testing.T) {
	fr := &fakeRunner{
		outputs: map[string]string{
			"session --json": `{"sessions":[{"sessionId":"a","model":"m","totalTokens":1}]}`,
		},
		errs: map[string]error{"--json": errors.New("exit status 1")},
	}
	c := newTestClient(t, lockedRunner(fr), configuredSettings(t))

	data := c.AllUsageData(context.Background())
	if data.Error == "" {
		t.Fatal("Error is empty, want invocation failure")
	}
	if len(data.Sessions) != 1 || len(data.Models) != 1 || data.Models[0].SessionCount != 1 {
		t.Errorf("sessions/models = %+v / %+v", data.Sessions, data.Models)
	}
}

func TestAvailableAndVersion(t *testing.T) {
	fr := &fakeRunner{outputs: map[string]string{
		"--help":    "Usage: ccusage [command]",
		"--version": "ccusage v15.9.7\n",
	}}
	rs := configuredSettings(t)
	rs.Initialized = false
	c := newTestClient(t, fr.run, rs)

	ok, err := c.Available(context.Background())
	if !ok || err != nil {
		t.Errorf("Available = %v, %v", ok, err)
	}
	v, err := c.InstalledVersion(context.Background())
	if err != nil || v != "15.9.7" {
		t.Errorf("InstalledVersion = %q, %v", v, err)
	}

	failing := newTestClient(t, (&fakeRunner{errs: map[string]error{"--help": errors.New("exit status 1")}}).run, configuredSettings(t))
	if ok, err := failing.Available(context.Background()); ok || err == nil {
		t.Errorf("Available on failure = %v, %v", ok, err)
	}
}
