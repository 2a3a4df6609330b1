package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/janekbaraniewski/ccmeter/internal/config"
	"github.com/janekbaraniewski/ccmeter/internal/poller"
	"github.com/janekbaraniewski/ccmeter/internal/settings"
	"github.com/janekbaraniewski/ccmeter/internal/tui"
)

func runDashboard(cfg config.Config) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hooks := poller.NewHooks(a.client, cfg)

	model := tui.NewModel(cfg.MonthlyBudget, hooks.HistoryWindow())
	model.SetOnRefresh(hooks.RevalidateAll)
	model.SetOnWindowChange(hooks.SetHistoryWindow)

	program := tea.NewProgram(model, tea.WithAltScreen())

	hooks.OnChange(func() {
		program.Send(snapshot(hooks, a.configured(ctx)))
	})

	go func() {
		if err := hooks.Run(ctx); err != nil {
			log.Printf("[dashboard] pollers stopped: %v", err)
		}
	}()

	if path := a.settingsPath(); path != "" {
		go func() {
			if err := settings.Watch(ctx, path, hooks.RevalidateAll); err != nil {
				log.Printf("[dashboard] settings watcher: %v", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		log.SetOutput(os.Stderr)
		log.Printf("TUI error: %v", err)
		return err
	}
	return nil
}
