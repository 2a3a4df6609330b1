package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/ccmeter/internal/config"
)

func main() {
	if os.Getenv("CCMETER_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Config path: %s\n", config.ConfigPath())
		os.Exit(1)
	}

	if err := newRootCommand(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "ccmeter",
		Short:        "ccmeter is a terminal dashboard for Claude Code usage and spend, powered by ccusage.",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDashboard(cfg)
		},
	}

	root.AddCommand(newSetupCommand(cfg))
	root.AddCommand(newResetCommand(cfg))
	root.AddCommand(newStatusCommand(cfg))
	root.AddCommand(newMenubarCommand(cfg))
	root.AddCommand(newReportCommands(cfg)...)
	root.AddCommand(newPeriodCommand(cfg))
	root.AddCommand(newVersionCommand())

	return root
}
