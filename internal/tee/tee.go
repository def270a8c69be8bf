package tee

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/edouard-claude/tilde/internal/callsite"
	"github.com/edouard-claude/tilde/internal/extract"
)

// Config for tee behavior.
type Config struct {
	Enabled  bool
	Mode     string // "failures", "always", "never"
	MaxFiles int
	Dir      string
}

// DefaultConfig returns tee defaults.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		Enabled:  true,
		Mode:     "failures",
		MaxFiles: 20,
		Dir:      filepath.Join(home, ".local", "share", "tilde", "tee"),
	}
}

// Report is the diagnostic written for one detection.
type Report struct {
	Time       string          `json:"time"`
	Inquiry    string          `json:"inquiry"`
	Declared   int             `json:"declared"`
	Verdict    string          `json:"verdict"`
	Error      string          `json:"error,omitempty"`
	Line       string          `json:"line,omitempty"`
	Frame      callsite.Frame  `json:"frame"`
	IsTilde    []bool          `json:"is_tilde,omitempty"`
	Components *extract.Result `json:"components,omitempty"`
}

// MaybeSave writes rep if the mode asks for it. Returns a hint string if saved.
func MaybeSave(rep Report, failed bool, cfg Config) string {
	if !cfg.Enabled || cfg.Mode == "never" {
		return ""
	}

	// Check TILDE_TEE env override
	if os.Getenv("TILDE_TEE") == "0" {
		return ""
	}

	shouldSave := cfg.Mode == "always" || (cfg.Mode == "failures" && failed)
	if !shouldSave {
		return ""
	}

	dir := cfg.Dir
	if envDir := os.Getenv("TILDE_TEE_DIR"); envDir != "" {
		dir = envDir
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "" // Silent failure
	}

	now := time.Now()
	if rep.Time == "" {
		rep.Time = now.Format(time.RFC3339)
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return ""
	}

	// Sanitize function name for filename
	safeName := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, rep.Inquiry)

	filename := fmt.Sprintf("%d-%s.json", now.UnixNano(), safeName)
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "" // Silent failure
	}

	// Rotate
	rotateFiles(dir, cfg.MaxFiles)

	return fmt.Sprintf("[diagnostic: %s]", path)
}

func rotateFiles(dir string, maxFiles int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	var reports []os.DirEntry
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			reports = append(reports, e)
		}
	}

	if len(reports) <= maxFiles {
		return
	}

	// Sort by name (timestamp prefix = chronological)
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Name() < reports[j].Name()
	})

	// Remove oldest
	toRemove := len(reports) - maxFiles
	for i := 0; i < toRemove; i++ {
		os.Remove(filepath.Join(dir, reports[i].Name()))
	}
}
