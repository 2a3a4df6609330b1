package ccusage

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/janekbaraniewski/ccmeter/internal/core"
	"github.com/janekbaraniewski/ccmeter/internal/parsers"
	"github.com/janekbaraniewski/ccmeter/internal/settings"
	"github.com/janekbaraniewski/ccmeter/internal/stats"
)

// Client issues ccusage reports. Runtime settings are read from the
// provider on every call.
type Client struct {
	inv      *Invoker
	settings settings.Provider
	now      func() time.Time
}

func NewClient(inv *Invoker, provider settings.Provider) *Client {
	return &Client{inv: inv, settings: provider, now: time.Now}
}

func (c *Client) runtime(ctx context.Context) (settings.RuntimeSettings, error) {
	rs, err := c.settings.Load(ctx)
	if err != nil {
		return rs, fmt.Errorf("loading runtime settings: %w", err)
	}
	if !rs.HasValidConfig() {
		return rs, ErrNotConfigured
	}
	return rs, nil
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	rs, err := c.runtime(ctx)
	if err != nil {
		return nil, err
	}
	res, err := c.inv.Run(ctx, rs, args...)
	if err != nil {
		return nil, err
	}
	return []byte(res.Stdout), nil
}

// Daily returns today's entry, or the most recent day when ccusage has no
// record for today yet. A nil result with nil error means no data.
func (c *Client) Daily(ctx context.Context) (*core.DailyUsage, error) {
	out, err := c.run(ctx, "daily", "--json")
	if err != nil {
		return nil, err
	}
	return parsers.ParseDaily(out, core.Today(c.now())), nil
}

func (c *Client) Monthly(ctx context.Context) (*core.MonthlyUsage, error) {
	out, err := c.run(ctx, "monthly", "--json")
	if err != nil {
		return nil, err
	}
	return parsers.ParseMonthly(out, core.CurrentMonth(c.now())), nil
}

func (c *Client) Sessions(ctx context.Context) ([]core.Session, error) {
	out, err := c.run(ctx, "session", "--json")
	if err != nil {
		return []core.Session{}, err
	}
	return parsers.ParseSessions(out), nil
}

// Totals returns all-time totals.
func (c *Client) Totals(ctx context.Context) (*core.TotalUsage, error) {
	out, err := c.run(ctx, "--json")
	if err != nil {
		return nil, err
	}
	return parsers.ParseTotals(out), nil
}

// Period runs a ranged report. since and until use YYYYMMDD; until may be
// empty. Unparseable output yields an empty report.
func (c *Client) Period(ctx context.Context, since, until string) (parsers.Report, error) {
	if strings.TrimSpace(since) == "" {
		return parsers.Report{}, fmt.Errorf("period: since is required")
	}
	for _, v := range []string{since, until} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(core.CompactDateLayout, v); err != nil {
			return parsers.Report{}, fmt.Errorf("period: invalid date %q (want YYYYMMDD)", v)
		}
	}
	args := []string{"--since", since}
	if until != "" {
		args = append(args, "--until", until)
	}
	args = append(args, "--json")

	out, err := c.run(ctx, args...)
	if err != nil {
		return parsers.Report{}, err
	}
	report, perr := parsers.Parse(out)
	if perr != nil {
		log.Printf("[ccusage] period %s..%s: %v", since, until, perr)
	}
	return report, nil
}

// Window runs Period for a lookback window ending today.
func (c *Client) Window(ctx context.Context, tw core.TimeWindow) (parsers.Report, error) {
	since, until := tw.Range(c.now())
	return c.Period(ctx, since, until)
}

// AllUsageData fetches daily, total and session data concurrently. It never
// fails: the first error is recorded in UsageData.Error and the remaining
// fields hold whatever succeeded.
func (c *Client) AllUsageData(ctx context.Context) core.UsageData {
	var (
		daily    *core.DailyUsage
		total    *core.TotalUsage
		sessions []core.Session
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		daily, err = c.Daily(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = c.Totals(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = c.Sessions(ctx)
		return err
	})
	err := g.Wait()

	if sessions == nil {
		sessions = []core.Session{}
	}
	data := core.UsageData{
		Daily:       daily,
		Total:       total,
		Sessions:    sessions,
		Models:      stats.ModelsFromSessions(sessions),
		LastUpdated: c.now(),
	}
	if err != nil {
		log.Printf("[ccusage] fetching usage data: %v", err)
		data.Error = err.Error()
	}
	return data
}

// Available reports whether ccusage can be launched with the configured
// runtime. It probes with --help and does not require setup to have
// completed.
func (c *Client) Available(ctx context.Context) (bool, error) {
	rs, err := c.settings.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("loading runtime settings: %w", err)
	}
	if _, err := c.inv.Run(ctx, rs, "--help"); err != nil {
		return false, err
	}
	return true, nil
}

// InstalledVersion returns the version ccusage reports for itself.
func (c *Client) InstalledVersion(ctx context.Context) (string, error) {
	rs, err := c.settings.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("loading runtime settings: %w", err)
	}
	res, err := c.inv.Run(ctx, rs, "--version")
	if err != nil {
		return "", err
	}
	fields := strings.Fields(res.Stdout)
	if len(fields) == 0 {
		return "", fmt.Errorf("ccusage --version printed nothing")
	}
	return strings.TrimPrefix(fields[len(fields)-1], "v"), nil
}
