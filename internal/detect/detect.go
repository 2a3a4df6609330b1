// Package detect finds the JavaScript package runners that can launch
// ccusage and the Claude Code data ccusage reads.
package detect

import (
	"bytes"
	"context"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/janekbaraniewski/ccmeter/internal/ccusage"
	"github.com/janekbaraniewski/ccmeter/internal/settings"
)

const versionProbeTimeout = 5 * time.Second

// DetectedTool represents a tool found on the workstation.
type DetectedTool struct {
	Name       string // e.g. "bunx", "Claude Code CLI"
	BinaryPath string // resolved path to binary, if applicable
	ConfigDir  string // path to the tool's data directory
	Version    string
}

type DetectedRuntime struct {
	Type settings.RuntimeType
	DetectedTool
}

// Result holds the full auto-detection result.
type Result struct {
	Runtimes   []DetectedRuntime
	ClaudeCode *DetectedTool
	// ClaudeDataDirs are the existing directories ccusage reads sessions from.
	ClaudeDataDirs []string
}

// Recommended returns the first detected runtime in settings.RuntimeTypes
// order.
func (r Result) Recommended() (DetectedRuntime, bool) {
	if len(r.Runtimes) == 0 {
		return DetectedRuntime{}, false
	}
	return r.Runtimes[0], true
}

// Has reports whether rt was found.
func (r Result) Has(rt settings.RuntimeType) bool {
	for _, d := range r.Runtimes {
		if d.Type == rt {
			return true
		}
	}
	return false
}

// runtimeBinaries maps runtimes to the executable that must exist.
var runtimeBinaries = map[settings.RuntimeType]string{
	settings.RuntimeNPX:  "npx",
	settings.RuntimeBunx: "bunx",
	settings.RuntimePNPM: "pnpm",
	settings.RuntimeDeno: "deno",
}

type detector struct {
	home     string
	path     string // PATH searched, usually ccusage.EnhancedPath
	versions bool
}

// AutoDetect scans the enhanced PATH for package runners and the home
// directory for Claude Code data. Runner versions are probed with a short
// timeout.
func AutoDetect(ctx context.Context) Result {
	home := homeDir()
	d := detector{
		home:     home,
		path:     ccusage.EnhancedPath(home, os.Getenv("PATH"), ccusage.IsAppleSilicon()),
		versions: true,
	}
	return d.run(ctx)
}

func (d detector) run(ctx context.Context) Result {
	var result Result
	for _, rt := range settings.RuntimeTypes {
		d.detectRuntime(ctx, &result, rt)
	}
	d.detectClaudeCode(&result)
	return result
}

func (d detector) detectRuntime(ctx context.Context, result *Result, rt settings.RuntimeType) {
	bin := d.findBinary(runtimeBinaries[rt])
	if bin == "" {
		return
	}
	tool := DetectedTool{Name: string(rt), BinaryPath: bin}
	if d.versions {
		tool.Version = probeVersion(ctx, bin)
	}
	log.Printf("[detect] Found %s at %s %s", rt, bin, tool.Version)
	result.Runtimes = append(result.Runtimes, DetectedRuntime{Type: rt, DetectedTool: tool})
}

// homeDir returns the user's home directory.
func homeDir() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return h
}

// findBinary checks the detector PATH for an executable named name.
func (d detector) findBinary(name string) string {
	for _, dir := range filepath.SplitList(d.path) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() && info.Mode()&0o111 != 0 {
			return candidate
		}
	}
	return ""
}

func probeVersion(ctx context.Context, bin string) string {
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "--version")
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		log.Printf("[detect] %s --version: %v", bin, err)
		return ""
	}
	return parseVersion(stdout.String())
}

// parseVersion takes the last token of the first line, e.g. "deno 1.46.3
// (stable, ...)" and "10.8.2" both yield the version number.
func parseVersion(out string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	fields := strings.Fields(first)
	for _, f := range fields {
		v := strings.TrimPrefix(f, "v")
		if v != "" && v[0] >= '0' && v[0] <= '9' {
			return v
		}
	}
	return ""
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
