package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/ccmeter/internal/ccusage"
	"github.com/janekbaraniewski/ccmeter/internal/config"
	"github.com/janekbaraniewski/ccmeter/internal/core"
	"github.com/janekbaraniewski/ccmeter/internal/format"
	"github.com/janekbaraniewski/ccmeter/internal/menubar"
	"github.com/janekbaraniewski/ccmeter/internal/parsers"
	"github.com/janekbaraniewski/ccmeter/internal/poller"
	"github.com/janekbaraniewski/ccmeter/internal/stats"
	"github.com/janekbaraniewski/ccmeter/internal/version"
)

// reportFunc fetches one report and writes it as a table or JSON.
type reportFunc func(ctx context.Context, c *ccusage.Client, w io.Writer, asJSON bool) error

func newReportCommands(cfg config.Config) []*cobra.Command {
	var limit int

	defs := []struct {
		use, short string
		run        reportFunc
	}{
		{"today", "Show today's usage", func(ctx context.Context, c *ccusage.Client, w io.Writer, asJSON bool) error {
			d, err := c.Daily(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(w, d)
			}
			return writeDaily(w, nilSlice(d), "No Claude usage today.")
		}},
		{"total", "Show all-time totals", func(ctx context.Context, c *ccusage.Client, w io.Writer, asJSON bool) error {
			t, err := c.Totals(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(w, t)
			}
			return writeTotal(w, t)
		}},
		{"monthly", "Show this month's usage", func(ctx context.Context, c *ccusage.Client, w io.Writer, asJSON bool) error {
			m, err := c.Monthly(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(w, m)
			}
			return writeMonthly(w, m, time.Now())
		}},
		{"sessions", "List sessions, most recent first", func(ctx context.Context, c *ccusage.Client, w io.Writer, asJSON bool) error {
			sessions, err := c.Sessions(ctx)
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = len(sessions)
			}
			recent := stats.RecentSessions(sessions, limit)
			if asJSON {
				return writeJSON(w, recent)
			}
			return writeSessions(w, recent, time.Now())
		}},
		{"models", "Show usage per model", func(ctx context.Context, c *ccusage.Client, w io.Writer, asJSON bool) error {
			sessions, err := c.Sessions(ctx)
			if err != nil {
				return err
			}
			models := stats.ModelsFromSessions(sessions)
			models = stats.TopModels(models, len(models))
			if asJSON {
				return writeJSON(w, models)
			}
			return writeModels(w, models)
		}},
	}

	cmds := make([]*cobra.Command, 0, len(defs))
	for _, def := range defs {
		var asJSON bool
		cmd := &cobra.Command{
			Use:   def.use,
			Short: def.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := newApp(cfg)
				if err != nil {
					return err
				}
				defer a.Close()
				return def.run(cmd.Context(), a.client, cmd.OutOrStdout(), asJSON)
			},
		}
		cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
		if def.use == "sessions" {
			cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n sessions (0 for all)")
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func newPeriodCommand(cfg config.Config) *cobra.Command {
	var since, until string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "period",
		Short: "Show daily usage between two dates (YYYYMMDD)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.client.Period(cmd.Context(), since, until)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			return writePeriod(cmd.OutOrStdout(), rep)
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "first day, YYYYMMDD")
	cmd.Flags().StringVar(&until, "until", "", "last day, YYYYMMDD (default today)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.MarkFlagRequired("since")
	return cmd
}

func newMenubarCommand(cfg config.Config) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "menubar",
		Short: "Print usage in xbar/SwiftBar plugin format",
		Long:  "Prints a status-bar title and dropdown menu. Link it into your xbar or SwiftBar plugin folder. With --watch the menu is reprinted as the pollers refresh.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			hooks := poller.NewHooks(a.client, cfg)
			out := cmd.OutOrStdout()

			if !watch {
				hooks.RefreshAll(ctx)
				return renderMenu(out, hooks, a.configured(ctx))
			}
			return watchMenu(ctx, out, hooks, a, cfg.Refresh.Stats())
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep polling and reprint the menu")
	return cmd
}

func renderMenu(w io.Writer, h *poller.Hooks, configured bool) error {
	avail := h.Availability.Snapshot()
	menu := menubar.Build(h.Stats(), menubar.Availability{
		Available: avail.Data,
		Loading:   avail.Seq == 0,
	}, configured, time.Now())
	return menubar.Render(w, menu)
}

// watchMenu runs the pollers and reprints the menu every interval until
// ctx is done.
func watchMenu(ctx context.Context, w io.Writer, h *poller.Hooks, a *app, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return <-done
		case err := <-done:
			return err
		case <-ticker.C:
			fmt.Fprintln(w, "~~~")
			if err := renderMenu(w, h, a.configured(ctx)); err != nil {
				return err
			}
		}
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ccmeter version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func nilSlice[T any](v *T) []T {
	if v == nil {
		return nil
	}
	return []T{*v}
}

func writeDaily(w io.Writer, days []core.DailyUsage, empty string) error {
	if len(days) == 0 {
		_, err := fmt.Fprintln(w, empty)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tINPUT\tOUTPUT\tCACHE\tTOTAL\tCOST")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			format.Date(d.Date),
			format.Tokens(d.InputTokens),
			format.Tokens(d.OutputTokens),
			format.Tokens(d.CacheCreationTokens+d.CacheReadTokens),
			format.Tokens(d.TotalTokens),
			format.Cost(d.Cost))
	}
	return tw.Flush()
}

func writeTotal(w io.Writer, t *core.TotalUsage) error {
	if t == nil {
		_, err := fmt.Fprintln(w, "No usage reported.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Input tokens\t%s\n", format.Tokens(t.InputTokens))
	fmt.Fprintf(tw, "Output tokens\t%s\n", format.Tokens(t.OutputTokens))
	fmt.Fprintf(tw, "Total tokens\t%s\n", format.Tokens(t.TotalTokens))
	fmt.Fprintf(tw, "Cost\t%s\n", format.Cost(t.Cost))
	fmt.Fprintf(tw, "Cost per token\t%s\n", format.CostPerToken(t.Cost, t.TotalTokens))
	return tw.Flush()
}

func writeMonthly(w io.Writer, m *core.MonthlyUsage, now time.Time) error {
	if m == nil {
		_, err := fmt.Fprintln(w, "No usage this month.")
		return err
	}
	proj := stats.ProjectMonthly(m.Cost, now)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Month\t%s\n", m.Month)
	fmt.Fprintf(tw, "Total tokens\t%s\n", format.Tokens(m.TotalTokens))
	fmt.Fprintf(tw, "Cost\t%s\n", format.Cost(m.Cost))
	if m.Month == core.CurrentMonth(now) {
		fmt.Fprintf(tw, "Daily average\t%s\n", format.Cost(proj.DailyAverage))
		fmt.Fprintf(tw, "Projected\t%s\n", format.Cost(proj.ProjectedMonthly))
	}
	return tw.Flush()
}

func writeSessions(w io.Writer, sessions []core.Session, now time.Time) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions reported.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROJECT\tMODEL\tTOKENS\tCOST\tLAST ACTIVE")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.ProjectName,
			format.ModelName(s.Model),
			format.Tokens(s.TotalTokens),
			format.Cost(s.Cost),
			format.RelativeTimeString(s.LastActivity, now))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nTotal: %d sessions\n", len(sessions))
	return err
}

func writeModels(w io.Writer, models []core.ModelUsage) error {
	if len(models) == 0 {
		_, err := fmt.Fprintln(w, "No model usage reported.")
		return err
	}
	share := stats.CostBreakdown(models)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tTIER\tSESSIONS\tTOKENS\tCOST\tSHARE")
	for i, m := range models {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			format.ModelName(m.Model),
			core.TierForModel(m.Model),
			m.SessionCount,
			format.Tokens(m.TotalTokens),
			format.Cost(m.Cost),
			share.PerModel[i].Percentage)
	}
	return tw.Flush()
}

func writePeriod(w io.Writer, rep parsers.Report) error {
	if err := writeDaily(w, rep.Daily, "No usage in this period."); err != nil {
		return err
	}
	if rep.Totals == nil {
		return nil
	}
	_, err := fmt.Fprintf(w, "\nTotal: %s tokens, %s\n", format.Tokens(rep.Totals.TotalTokens), format.Cost(rep.Totals.Cost))
	return err
}
