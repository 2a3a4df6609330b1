package version

import "testing"

func TestString(t *testing.T) {
	origVersion, origCommit, origDate := Version, CommitHash, BuildDate
	t.Cleanup(func() { Version, CommitHash, BuildDate = origVersion, origCommit, origDate })

	Version, CommitHash, BuildDate = "1.2.3", "abc123", "2025-01-15"
	if got, want := String(), "ccmeter 1.2.3 (abc123) built 2025-01-15"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
