package detect

import (
	"log"
	"path/filepath"
)

// claudeDataDirs are the locations ccusage reads Claude Code transcripts from.
func claudeDataDirs(home string) []string {
	return []string{
		filepath.Join(home, ".config", "claude", "projects"),
		filepath.Join(home, ".claude", "projects"),
	}
}

func (d detector) detectClaudeCode(result *Result) {
	if d.home == "" {
		return
	}
	for _, dir := range claudeDataDirs(d.home) {
		if dirExists(dir) {
			result.ClaudeDataDirs = append(result.ClaudeDataDirs, dir)
		}
	}

	bin := d.findBinary("claude")
	if bin == "" {
		if len(result.ClaudeDataDirs) == 0 {
			log.Printf("[detect] Claude Code not found and no usage data present")
		}
		return
	}

	result.ClaudeCode = &DetectedTool{
		Name:       "Claude Code CLI",
		BinaryPath: bin,
		ConfigDir:  filepath.Join(d.home, ".claude"),
	}
	log.Printf("[detect] Found Claude Code CLI at %s (data dirs: %d)", bin, len(result.ClaudeDataDirs))
}
