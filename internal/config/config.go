package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/janekbaraniewski/ccmeter/internal/core"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// RefreshConfig holds per-source polling intervals in seconds.
type RefreshConfig struct {
	DailySeconds        int `json:"daily_seconds"`
	TotalSeconds        int `json:"total_seconds"`
	SessionSeconds      int `json:"session_seconds"`
	MonthlySeconds      int `json:"monthly_seconds"`
	AvailabilitySeconds int `json:"availability_seconds"`
	StatsSeconds        int `json:"stats_seconds"`
}

type InvokerConfig struct {
	TimeoutSeconds int    `json:"timeout_seconds"`
	MaxOutputBytes int    `json:"max_output_bytes"`
	Package        string `json:"package"` // e.g. "ccusage@latest"
}

type Config struct {
	Refresh         RefreshConfig `json:"refresh"`
	Invoker         InvokerConfig `json:"invoker"`
	SettingsBackend string        `json:"settings_backend"`
	MonthlyBudget   float64       `json:"monthly_budget"`
	RecentSessions  int           `json:"recent_sessions"`
	TopModels       int           `json:"top_models"`
	// HistoryWindow is the lookback of the dashboard cost chart: 1d, 3d, 7d or 30d.
	HistoryWindow string `json:"history_window"`
}

func DefaultConfig() Config {
	return Config{
		Refresh: RefreshConfig{
			DailySeconds:        10,
			TotalSeconds:        30,
			SessionSeconds:      15,
			MonthlySeconds:      60,
			AvailabilitySeconds: 60,
			StatsSeconds:        5,
		},
		Invoker: InvokerConfig{
			TimeoutSeconds: 30,
			MaxOutputBytes: 10 * 1024 * 1024,
			Package:        "ccusage@latest",
		},
		SettingsBackend: BackendFile,
		MonthlyBudget:   100,
		RecentSessions:  5,
		TopModels:       5,
		HistoryWindow:   string(core.TimeWindow7d),
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "ccmeter")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ccmeter")
}

// ConfigPath honours CCMETER_CONFIG before the default location.
func ConfigPath() string {
	if p := strings.TrimSpace(os.Getenv("CCMETER_CONFIG")); p != "" {
		return p
	}
	return filepath.Join(ConfigDir(), "config.json")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	return normalize(cfg), nil
}

// normalize resets non-positive or unknown values to their defaults.
func normalize(cfg Config) Config {
	def := DefaultConfig()

	positive := func(v *int, fallback int) {
		if *v <= 0 {
			*v = fallback
		}
	}
	positive(&cfg.Refresh.DailySeconds, def.Refresh.DailySeconds)
	positive(&cfg.Refresh.TotalSeconds, def.Refresh.TotalSeconds)
	positive(&cfg.Refresh.SessionSeconds, def.Refresh.SessionSeconds)
	positive(&cfg.Refresh.MonthlySeconds, def.Refresh.MonthlySeconds)
	positive(&cfg.Refresh.AvailabilitySeconds, def.Refresh.AvailabilitySeconds)
	positive(&cfg.Refresh.StatsSeconds, def.Refresh.StatsSeconds)
	positive(&cfg.Invoker.TimeoutSeconds, def.Invoker.TimeoutSeconds)
	positive(&cfg.Invoker.MaxOutputBytes, def.Invoker.MaxOutputBytes)
	positive(&cfg.RecentSessions, def.RecentSessions)
	positive(&cfg.TopModels, def.TopModels)

	if strings.TrimSpace(cfg.Invoker.Package) == "" {
		cfg.Invoker.Package = def.Invoker.Package
	}
	if cfg.MonthlyBudget <= 0 {
		cfg.MonthlyBudget = def.MonthlyBudget
	}
	if strings.TrimSpace(cfg.HistoryWindow) == "" {
		cfg.HistoryWindow = def.HistoryWindow
	} else {
		cfg.HistoryWindow = string(core.ParseTimeWindow(cfg.HistoryWindow))
	}
	switch cfg.SettingsBackend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		cfg.SettingsBackend = BackendFile
	}
	return cfg
}

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func (r RefreshConfig) Daily() time.Duration        { return seconds(r.DailySeconds) }
func (r RefreshConfig) Total() time.Duration        { return seconds(r.TotalSeconds) }
func (r RefreshConfig) Session() time.Duration      { return seconds(r.SessionSeconds) }
func (r RefreshConfig) Monthly() time.Duration      { return seconds(r.MonthlySeconds) }
func (r RefreshConfig) Availability() time.Duration { return seconds(r.AvailabilitySeconds) }
func (r RefreshConfig) Stats() time.Duration        { return seconds(r.StatsSeconds) }

// Window returns the configured chart lookback.
func (c Config) Window() core.TimeWindow { return core.ParseTimeWindow(c.HistoryWindow) }

func (i InvokerConfig) Timeout() time.Duration { return seconds(i.TimeoutSeconds) }
