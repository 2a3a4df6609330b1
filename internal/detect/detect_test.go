package detect

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/janekbaraniewski/ccmeter/internal/settings"
)

func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho 1.0.0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAutoDetect_Runs(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	_ = AutoDetect(context.Background())
}

func TestDetectRuntimesInPreferenceOrder(t *testing.T) {
	binDir := t.TempDir()
	writeExecutable(t, binDir, "deno")
	bunx := writeExecutable(t, binDir, "bunx")
	if err := os.WriteFile(filepath.Join(binDir, "pnpm"), []byte("not executable"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := detector{home: t.TempDir(), path: "/nonexistent" + string(os.PathListSeparator) + binDir}
	result := d.run(context.Background())

	if len(result.Runtimes) != 2 {
		t.Fatalf("runtimes = %+v, want bunx and deno", result.Runtimes)
	}
	if result.Runtimes[0].Type != settings.RuntimeBunx || result.Runtimes[0].BinaryPath != bunx {
		t.Errorf("first runtime = %+v, want bunx at %s", result.Runtimes[0], bunx)
	}
	if result.Runtimes[1].Type != settings.RuntimeDeno {
		t.Errorf("second runtime = %s, want deno", result.Runtimes[1].Type)
	}
	if result.Has(settings.RuntimePNPM) {
		t.Error("non-executable pnpm detected")
	}

	rec, ok := result.Recommended()
	if !ok || rec.Type != settings.RuntimeBunx {
		t.Errorf("Recommended = %+v, %v", rec, ok)
	}
}

func TestRecommendedEmpty(t *testing.T) {
	if _, ok := (Result{}).Recommended(); ok {
		t.Error("Recommended on empty result = ok")
	}
}

func TestDetectClaudeCode(t *testing.T) {
	home := t.TempDir()
	if err := os.MkdirAll(filepath.Join(home, ".claude", "projects"), 0o755); err != nil {
		t.Fatal(err)
	}
	binDir := t.TempDir()
	claude := writeExecutable(t, binDir, "claude")

	d := detector{home: home, path: binDir}
	result := d.run(context.Background())

	if result.ClaudeCode == nil || result.ClaudeCode.BinaryPath != claude {
		t.Fatalf("ClaudeCode = %+v", result.ClaudeCode)
	}
	if len(result.ClaudeDataDirs) != 1 || !strings.HasSuffix(result.ClaudeDataDirs[0], filepath.Join(".claude", "projects")) {
		t.Errorf("ClaudeDataDirs = %v", result.ClaudeDataDirs)
	}
}

func TestParseVersion(t *testing.T) {
	tests := map[string]string{
		"10.8.2\n":                          "10.8.2",
		"v20.11.0":                          "20.11.0",
		"deno 1.46.3 (stable, release)\nv8": "1.46.3",
		"":                                  "",
		"unknown":                           "",
	}
	for in, want := range tests {
		if got := parseVersion(in); got != want {
			t.Errorf("parseVersion(%q) = %q, want %q", in, got, want)
		}
	}
}
