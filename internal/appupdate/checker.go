// Package appupdate compares the ccusage version a runtime launches with the
// newest release published on the npm registry.
package appupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/janekbaraniewski/ccmeter/internal/settings"
	"github.com/janekbaraniewski/ccmeter/internal/version"
)

const (
	defaultRegistryURL    = "https://registry.npmjs.org/ccusage/latest"
	defaultRequestTimeout = 1500 * time.Millisecond
)

type CheckOptions struct {
	InstalledVersion string
	// Package is the configured package spec, e.g. "ccusage@latest" or
	// "ccusage@15.2.0".
	Package     string
	Runtime     settings.RuntimeType
	RegistryURL string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

type Result struct {
	UpdateAvailable  bool
	InstalledVersion string
	LatestVersion    string
	// PinnedVersion is set when Package names an exact version.
	PinnedVersion string
	UpgradeHint   string
}

func Check(ctx context.Context, opts CheckOptions) (Result, error) {
	installed := normalizeReleaseVersion(opts.InstalledVersion)
	pinned := pinnedVersion(opts.Package)

	result := Result{
		InstalledVersion: installed,
		PinnedVersion:    pinned,
		UpgradeHint:      upgradeHint(opts.Runtime, pinned != ""),
	}

	latest, err := fetchLatestVersion(ctx, opts)
	if err != nil {
		return result, err
	}
	result.LatestVersion = latest

	// Without a stable installed version there is nothing to compare.
	if installed == "" {
		return result, nil
	}
	result.UpdateAvailable = semver.Compare(latest, installed) > 0
	return result, nil
}

func fetchLatestVersion(ctx context.Context, opts CheckOptions) (string, error) {
	registryURL := strings.TrimSpace(opts.RegistryURL)
	if registryURL == "" {
		registryURL = defaultRegistryURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, registryURL, nil)
	if err != nil {
		return "", fmt.Errorf("build registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ccmeter/"+version.Version)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch latest ccusage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch latest ccusage: HTTP %d", resp.StatusCode)
	}

	var payload struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode registry payload: %w", err)
	}

	latest := normalizeReleaseVersion(payload.Version)
	if latest == "" {
		return "", fmt.Errorf("latest ccusage version is not a stable semver: %q", payload.Version)
	}
	return latest, nil
}

// pinnedVersion returns the canonical version in a package spec such as
// "ccusage@15.2.0", or "" for dist-tags like "latest".
func pinnedVersion(pkg string) string {
	i := strings.LastIndex(pkg, "@")
	if i <= 0 {
		return ""
	}
	return normalizeReleaseVersion(pkg[i+1:])
}

func upgradeHint(rt settings.RuntimeType, pinned bool) string {
	if pinned {
		return `set "invoker.package" to "ccusage@latest" in ` + "ccmeter's config.json"
	}
	switch rt {
	case settings.RuntimeBunx:
		return "bun pm cache rm"
	case settings.RuntimePNPM:
		return "pnpm store prune"
	case settings.RuntimeDeno:
		return "deno run --reload npm:ccusage@latest --version"
	default:
		return "npx --yes ccusage@latest --version"
	}
}

func normalizeReleaseVersion(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	if semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return ""
	}
	return semver.Canonical(v)
}
