package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/ccmeter/internal/appupdate"
	"github.com/janekbaraniewski/ccmeter/internal/config"
	"github.com/janekbaraniewski/ccmeter/internal/detect"
	"github.com/janekbaraniewski/ccmeter/internal/settings"
)

var errNoRuntime = errors.New("no supported runtime found; install Node.js, Bun, pnpm or Deno, or pass --runtime")

func newSetupCommand(cfg config.Config) *cobra.Command {
	var runtimeFlag, pathFlag string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Choose the runtime used to launch ccusage",
		Long:  "Detects installed package runners and stores the one ccmeter launches ccusage with. Without --runtime the first detected runner (npx, bunx, pnpm, deno) is used.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			rs, err := a.settings.Load(ctx)
			if err != nil {
				return fmt.Errorf("loading runtime settings: %w", err)
			}

			rt, bin, err := chooseRuntime(runtimeFlag, detect.AutoDetect(ctx))
			if err != nil {
				return err
			}
			rs = applyRuntime(rs, rt, bin, pathFlag)

			if err := a.settings.Save(ctx, rs); err != nil {
				return fmt.Errorf("saving runtime settings: %w", err)
			}
			if err := settings.MarkInitialized(ctx, a.settings); err != nil {
				return fmt.Errorf("saving runtime settings: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Runtime: %s\n", rt)
			if p := rs.RuntimePath(); p != "" {
				fmt.Fprintf(out, "Path:    %s\n", p)
			}
			if ok, err := a.client.Available(ctx); !ok {
				fmt.Fprintf(out, "warning: ccusage could not be launched: %v\n", err)
				return nil
			}
			fmt.Fprintln(out, "ccusage is available.")
			return nil
		},
	}

	cmd.Flags().StringVar(&runtimeFlag, "runtime", "", "runtime to use: npx, bunx, pnpm or deno")
	cmd.Flags().StringVar(&pathFlag, "path", "", "explicit path to the runtime executable")
	return cmd
}

// chooseRuntime resolves the --runtime flag, falling back to the first
// detected runner. The detected binary path is returned when known.
func chooseRuntime(flag string, det detect.Result) (settings.RuntimeType, string, error) {
	if strings.TrimSpace(flag) != "" {
		rt, err := settings.ParseRuntimeType(flag)
		if err != nil {
			return "", "", err
		}
		for _, d := range det.Runtimes {
			if d.Type == rt {
				return rt, d.BinaryPath, nil
			}
		}
		return rt, "", nil
	}
	rec, ok := det.Recommended()
	if !ok {
		return "", "", errNoRuntime
	}
	return rec.Type, rec.BinaryPath, nil
}

func applyRuntime(rs settings.RuntimeSettings, rt settings.RuntimeType, bin, customPath string) settings.RuntimeSettings {
	rs.SelectedRuntime = rt
	rs.CustomPath = strings.TrimSpace(customPath)
	if rs.Runtimes == nil {
		rs.Runtimes = map[settings.RuntimeType]settings.RuntimeConfig{}
	}
	if bin != "" {
		rs.Runtimes[rt] = settings.RuntimeConfig{Type: rt, Path: bin}
	}
	return rs
}

func newResetCommand(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Erase stored runtime settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.settings.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("resetting runtime settings: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Runtime settings erased. Run `ccmeter setup` to configure again.")
			return nil
		},
	}
}

type statusReport struct {
	ConfigPath string
	Backend    string
	Package    string
	Settings   settings.RuntimeSettings
	Detected   detect.Result

	Available bool
	AvailErr  error
	Installed string

	Update    appupdate.Result
	UpdateErr error
}

func newStatusCommand(cfg config.Config) *cobra.Command {
	var checkUpdate bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, detected runtimes and ccusage availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := collectStatus(ctx, a, checkUpdate)
			if err != nil {
				return err
			}
			return writeStatus(cmd.OutOrStdout(), st)
		},
	}

	cmd.Flags().BoolVar(&checkUpdate, "check-update", false, "compare the installed ccusage with the npm registry")
	return cmd
}

func collectStatus(ctx context.Context, a *app, checkUpdate bool) (statusReport, error) {
	rs, err := a.settings.Load(ctx)
	if err != nil {
		return statusReport{}, fmt.Errorf("loading runtime settings: %w", err)
	}

	st := statusReport{
		ConfigPath: config.ConfigPath(),
		Backend:    a.cfg.SettingsBackend,
		Package:    a.cfg.Invoker.Package,
		Settings:   rs,
		Detected:   detect.AutoDetect(ctx),
	}

	st.Available, st.AvailErr = a.client.Available(ctx)
	if st.Available {
		st.Installed, _ = a.client.InstalledVersion(ctx)
	}

	if checkUpdate {
		checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		st.Update, st.UpdateErr = appupdate.Check(checkCtx, appupdate.CheckOptions{
			InstalledVersion: st.Installed,
			Package:          a.cfg.Invoker.Package,
			Runtime:          rs.SelectedRuntime,
		})
	}
	return st, nil
}

func writeStatus(w io.Writer, st statusReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "CONFIG\t")
	fmt.Fprintf(tw, "  config file\t%s\n", st.ConfigPath)
	fmt.Fprintf(tw, "  settings backend\t%s\n", st.Backend)
	fmt.Fprintf(tw, "  package\t%s\n", st.Package)
	fmt.Fprintf(tw, "  runtime\t%s\n", orDash(string(st.Settings.SelectedRuntime)))
	fmt.Fprintf(tw, "  runtime path\t%s\n", orDash(st.Settings.RuntimePath()))
	fmt.Fprintf(tw, "  setup complete\t%s\n", yesNo(st.Settings.HasValidConfig()))

	fmt.Fprintln(tw, "\nDETECTED\t")
	if len(st.Detected.Runtimes) == 0 {
		fmt.Fprintln(tw, "  runtimes\tnone")
	}
	for _, rt := range st.Detected.Runtimes {
		fmt.Fprintf(tw, "  %s\t%s %s\n", rt.Type, rt.BinaryPath, rt.Version)
	}
	if cc := st.Detected.ClaudeCode; cc != nil {
		fmt.Fprintf(tw, "  claude\t%s\n", cc.BinaryPath)
	}
	for _, dir := range st.Detected.ClaudeDataDirs {
		fmt.Fprintf(tw, "  data dir\t%s\n", dir)
	}

	fmt.Fprintln(tw, "\nCCUSAGE\t")
	if st.Available {
		fmt.Fprintln(tw, "  available\tyes")
	} else {
		reason := "no"
		if st.AvailErr != nil {
			reason = "no (" + st.AvailErr.Error() + ")"
		}
		fmt.Fprintf(tw, "  available\t%s\n", reason)
	}
	fmt.Fprintf(tw, "  installed\t%s\n", orDash(st.Installed))

	switch {
	case st.UpdateErr != nil:
		fmt.Fprintf(tw, "  latest\tunknown (%v)\n", st.UpdateErr)
	case st.Update.LatestVersion != "":
		fmt.Fprintf(tw, "  latest\t%s\n", st.Update.LatestVersion)
		if st.Update.UpdateAvailable {
			fmt.Fprintf(tw, "  update\tavailable, run: %s\n", st.Update.UpgradeHint)
		}
	}

	return tw.Flush()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
