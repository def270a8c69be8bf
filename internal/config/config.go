package config

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/edouard-claude/tilde/internal/callsite"
	"github.com/edouard-claude/tilde/internal/extract"
)

type Config struct {
	Parse    ParseConfig    `toml:"parse"`
	History  HistoryConfig  `toml:"history"`
	Tracking TrackingConfig `toml:"tracking"`
	Display  DisplayConfig  `toml:"display"`
	Tee      TeeConfig      `toml:"tee"`
}

type ParseConfig struct {
	SuppressionToken string   `toml:"suppression_token"`
	EscapeMarker     string   `toml:"escape_marker"`
	SourceExtensions []string `toml:"source_extensions"`
}

type HistoryConfig struct {
	Path string `toml:"path"`
}

type TrackingConfig struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
}

type DisplayConfig struct {
	Color bool `toml:"color"`
}

type TeeConfig struct {
	Enabled  bool   `toml:"enabled"`
	Mode     string `toml:"mode"` // "failures", "always", "never"
	MaxFiles int    `toml:"max_files"`
	Dir      string `toml:"dir"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	share := dataDir()
	return &Config{
		Parse: ParseConfig{
			SuppressionToken: "~",
			EscapeMarker:     `\`,
			SourceExtensions: []string{".m"},
		},
		History: HistoryConfig{
			Path: filepath.Join(share, "history.txt"),
		},
		Tracking: TrackingConfig{
			Enabled: true,
			DBPath:  filepath.Join(share, "tracking.db"),
		},
		Display: DisplayConfig{
			Color: true,
		},
		Tee: TeeConfig{
			Enabled:  true,
			Mode:     "failures",
			MaxFiles: 20,
			Dir:      filepath.Join(share, "tee"),
		},
	}
}

// Load reads config from file, merging with defaults. Returns defaults if file missing.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path := Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.History.Path = expandHome(cfg.History.Path)
	cfg.Tracking.DBPath = expandHome(cfg.Tracking.DBPath)
	cfg.Tee.Dir = expandHome(cfg.Tee.Dir)

	return cfg, nil
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// DetectOptions converts the parse section into detector options.
// An empty token falls back to "~".
func (c *Config) DetectOptions() callsite.Options {
	opts := callsite.Options{
		Extract: extract.Options{
			Token:  c.Parse.SuppressionToken,
			Escape: c.Parse.EscapeMarker,
		},
		SourceExtensions: c.Parse.SourceExtensions,
	}
	if opts.Extract.Token == "" {
		opts.Extract.Token = "~"
	}
	return opts
}

// Path returns the config file location, honouring TILDE_CONFIG.
func Path() string {
	if p := os.Getenv("TILDE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(homeDir(), ".config", "tilde", "config.toml")
}

func dataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "tilde")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return home
}

func expandHome(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}
