package ccusage

import (
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"github.com/samber/lo"
)

// globFn expands version-manager install patterns; tests replace it.
var globFn = filepath.Glob

// IsAppleSilicon reports whether Homebrew lives under /opt/homebrew.
func IsAppleSilicon() bool {
	return goruntime.GOOS == "darwin" && goruntime.GOARCH == "arm64"
}

// EnhancedPath builds a PATH value that includes the usual Node.js package
// manager install locations in addition to the inherited PATH.
func EnhancedPath(home, inherited string, appleSilicon bool) string {
	platform := []string{"/usr/local/bin", "/usr/local/lib/node_modules/.bin"}
	if appleSilicon {
		platform = []string{"/opt/homebrew/bin", "/opt/homebrew/lib/node_modules/.bin"}
	}

	var versionManagers, system []string
	if home != "" {
		versionManagers = []string{
			filepath.Join(home, ".nvm", "versions", "node", "*", "bin"),
			filepath.Join(home, ".fnm", "node-versions", "*", "installation", "bin"),
			filepath.Join(home, ".n", "bin"),
			filepath.Join(home, ".volta", "bin"),
		}
		system = []string{"/usr/bin", "/bin", filepath.Join(home, ".npm", "bin"), filepath.Join(home, ".yarn", "bin")}
	} else {
		system = []string{"/usr/bin", "/bin"}
	}

	entries := filepath.SplitList(inherited)
	entries = append(entries, platform...)
	for _, p := range versionManagers {
		entries = append(entries, expandPattern(p)...)
	}
	entries = append(entries, system...)

	entries = lo.Map(entries, func(p string, _ int) string { return strings.TrimSpace(p) })
	return strings.Join(lo.Uniq(lo.Compact(entries)), string(os.PathListSeparator))
}

func expandPattern(p string) []string {
	if !strings.ContainsAny(p, "*?[") {
		return []string{p}
	}
	matches, err := globFn(p)
	if err != nil {
		return nil
	}
	return matches
}

// Environment returns base with PATH replaced by the enhanced value and the
// Node version manager variables defaulted when unset.
func Environment(base []string, home string, appleSilicon bool) []string {
	vars := make(map[string]string, len(base))
	order := make([]string, 0, len(base)+4)
	for _, kv := range base {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, seen := vars[k]; !seen {
			order = append(order, k)
		}
		vars[k] = v
	}

	set := func(k, v string) {
		if _, seen := vars[k]; !seen {
			order = append(order, k)
		}
		vars[k] = v
	}
	setDefault := func(k, v string) {
		if strings.TrimSpace(vars[k]) == "" {
			set(k, v)
		}
	}

	set("PATH", EnhancedPath(home, vars["PATH"], appleSilicon))
	if home != "" {
		setDefault("NVM_DIR", filepath.Join(home, ".nvm"))
		setDefault("FNM_DIR", filepath.Join(home, ".fnm"))
		setDefault("npm_config_prefix", filepath.Join(home, ".npm-global"))
	}

	return lo.Map(order, func(k string, _ int) string { return k + "=" + vars[k] })
}

// lookPathIn resolves name against the given PATH value rather than the
// process PATH, since the child gets the enhanced one.
func lookPathIn(name, pathValue string) (string, bool) {
	if strings.ContainsRune(name, os.PathSeparator) || strings.Contains(name, "/") {
		return name, isExecutable(name)
	}
	for _, dir := range filepath.SplitList(pathValue) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if goruntime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0o111 != 0
}

func envValue(env []string, key string) string {
	for i := len(env) - 1; i >= 0; i-- {
		if k, v, ok := strings.Cut(env[i], "="); ok && k == key {
			return v
		}
	}
	return ""
}
