// Package ccusage runs the ccusage CLI through a JavaScript package runner
// and turns its output into normalized usage records.
package ccusage

import (
	"strings"

	"github.com/janekbaraniewski/ccmeter/internal/settings"
)

const DefaultPackage = "ccusage@latest"

// runtimePrefixes are the argv prefixes placed before the package spec.
var runtimePrefixes = map[settings.RuntimeType][]string{
	settings.RuntimeNPX:  {"npx"},
	settings.RuntimeBunx: {"bunx"},
	settings.RuntimePNPM: {"pnpm", "dlx"},
	settings.RuntimeDeno: {"deno", "run"},
}

// RuntimeCommand returns the full command prefix for a runtime, e.g.
// ["pnpm", "dlx", "ccusage@latest"].
func RuntimeCommand(rt settings.RuntimeType, pkg string) []string {
	if strings.TrimSpace(pkg) == "" {
		pkg = DefaultPackage
	}
	prefix, ok := runtimePrefixes[rt]
	if !ok {
		prefix = runtimePrefixes[settings.RuntimeNPX]
		rt = settings.RuntimeNPX
	}
	if rt == settings.RuntimeDeno {
		pkg = "npm:" + pkg
	}
	out := make([]string, 0, len(prefix)+1)
	out = append(out, prefix...)
	return append(out, pkg)
}

// BuildCommand composes the argv for one ccusage invocation. A custom
// runtime path replaces the first token of the runtime prefix.
func BuildCommand(rs settings.RuntimeSettings, pkg string, args ...string) []string {
	argv := RuntimeCommand(rs.SelectedRuntime, pkg)
	if custom := rs.RuntimePath(); custom != "" {
		argv[0] = custom
	}
	for _, a := range args {
		if a == "" {
			continue
		}
		argv = append(argv, a)
	}
	return argv
}

// SplitArgs splits a raw argument string on whitespace.
func SplitArgs(raw string) []string {
	return strings.Fields(raw)
}
