package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/janekbaraniewski/ccmeter/internal/core"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Refresh.DailySeconds != 10 {
		t.Errorf("default daily refresh = %d, want 10", cfg.Refresh.DailySeconds)
	}
	if cfg.Refresh.TotalSeconds != 30 {
		t.Errorf("default total refresh = %d, want 30", cfg.Refresh.TotalSeconds)
	}
	if cfg.Refresh.SessionSeconds != 15 {
		t.Errorf("default session refresh = %d, want 15", cfg.Refresh.SessionSeconds)
	}
	if cfg.Invoker.Timeout() != 30*time.Second {
		t.Errorf("default timeout = %v, want 30s", cfg.Invoker.Timeout())
	}
	if cfg.Invoker.Package != "ccusage@latest" {
		t.Errorf("default package = %q", cfg.Invoker.Package)
	}
	if cfg.SettingsBackend != BackendFile {
		t.Errorf("default backend = %q, want file", cfg.SettingsBackend)
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Refresh.DailySeconds != 10 {
		t.Error("should return defaults for missing file")
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := `{
  "refresh": {"daily_seconds": 3, "total_seconds": 0},
  "invoker": {"timeout_seconds": 12, "package": "ccusage@15"},
  "settings_backend": "sqlite",
  "monthly_budget": 250
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.Refresh.Daily() != 3*time.Second {
		t.Errorf("daily = %v, want 3s", cfg.Refresh.Daily())
	}
	if cfg.Refresh.TotalSeconds != 30 {
		t.Errorf("total = %d, want default 30", cfg.Refresh.TotalSeconds)
	}
	if cfg.Invoker.TimeoutSeconds != 12 {
		t.Errorf("timeout = %d, want 12", cfg.Invoker.TimeoutSeconds)
	}
	if cfg.Invoker.Package != "ccusage@15" {
		t.Errorf("package = %q", cfg.Invoker.Package)
	}
	if cfg.SettingsBackend != BackendSQLite {
		t.Errorf("backend = %q, want sqlite", cfg.SettingsBackend)
	}
	if cfg.MonthlyBudget != 250 {
		t.Errorf("budget = %v, want 250", cfg.MonthlyBudget)
	}
}

func TestLoadFrom_UnknownBackendFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"settings_backend":"redis"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SettingsBackend != BackendFile {
		t.Errorf("backend = %q, want file", cfg.SettingsBackend)
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg.Refresh.DailySeconds != 10 {
		t.Error("should return defaults on parse error")
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.MonthlyBudget = 42
	cfg.Refresh.StatsSeconds = 2

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if got.MonthlyBudget != 42 || got.Refresh.StatsSeconds != 2 {
		t.Errorf("round trip = %+v", got)
	}
}

func TestConfigPath_EnvOverride(t *testing.T) {
	t.Setenv("CCMETER_CONFIG", "/tmp/ccmeter-test.json")
	if got := ConfigPath(); got != "/tmp/ccmeter-test.json" {
		t.Errorf("ConfigPath() = %q", got)
	}
}

func TestLoadFrom_HistoryWindow(t *testing.T) {
	tests := []struct {
		raw  string
		want core.TimeWindow
	}{
		{raw: `{}`, want: core.TimeWindow7d},
		{raw: `{"history_window":"3d"}`, want: core.TimeWindow3d},
		{raw: `{"history_window":"weekly"}`, want: core.TimeWindow30d},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(path, []byte(tt.raw), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadFrom(path)
		if err != nil {
			t.Fatalf("LoadFrom(%s) error: %v", tt.raw, err)
		}
		if got := cfg.Window(); got != tt.want {
			t.Errorf("LoadFrom(%s).Window() = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
