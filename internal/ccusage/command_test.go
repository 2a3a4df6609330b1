package ccusage

import (
	"reflect"
	"testing"

	"github.com/janekbaraniewski/ccmeter/internal/settings"
)

func TestRuntimeCommand(t *testing.T) {
	tests := []struct {
		rt   settings.RuntimeType
		want []string
	}{
		{settings.RuntimeNPX, []string{"npx", "ccusage@latest"}},
		{settings.RuntimeBunx, []string{"bunx", "ccusage@latest"}},
		{settings.RuntimePNPM, []string{"pnpm", "dlx", "ccusage@latest"}},
		{settings.RuntimeDeno, []string{"deno", "run", "npm:ccusage@latest"}},
		{"yarn", []string{"npx", "ccusage@latest"}},
	}
	for _, tt := range tests {
		if got := RuntimeCommand(tt.rt, ""); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("RuntimeCommand(%q) = %v, want %v", tt.rt, got, tt.want)
		}
	}
}

func TestBuildCommand(t *testing.T) {
	rs := settings.RuntimeSettings{SelectedRuntime: settings.RuntimePNPM, Initialized: true}
	got := BuildCommand(rs, DefaultPackage, "daily", "", "--json")
	want := []string{"pnpm", "dlx", "ccusage@latest", "daily", "--json"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildCommand = %v, want %v", got, want)
	}

	rs.CustomPath = "/opt/tools/pnpm"
	got = BuildCommand(rs, "ccusage@15.0.0", "--help")
	want = []string{"/opt/tools/pnpm", "dlx", "ccusage@15.0.0", "--help"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildCommand(custom) = %v, want %v", got, want)
	}
}

func TestBuildCommandRuntimePath(t *testing.T) {
	rs := settings.RuntimeSettings{
		SelectedRuntime: settings.RuntimeBunx,
		Runtimes: map[settings.RuntimeType]settings.RuntimeConfig{
			settings.RuntimeBunx: {Type: settings.RuntimeBunx, Path: "/home/me/.bun/bin/bunx"},
		},
	}
	got := BuildCommand(rs, "")
	if got[0] != "/home/me/.bun/bin/bunx" {
		t.Errorf("argv[0] = %q, want per-runtime path", got[0])
	}
}

func TestSplitArgs(t *testing.T) {
	if got := SplitArgs("  daily   --json "); !reflect.DeepEqual(got, []string{"daily", "--json"}) {
		t.Errorf("SplitArgs = %v", got)
	}
}
