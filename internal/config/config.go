package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for sheetview
type Config struct {
	Grid    GridConfig    `mapstructure:"grid"`
	Load    LoadConfig    `mapstructure:"load"`
	Sample  SampleConfig  `mapstructure:"sample"`
	Save    SaveConfig    `mapstructure:"save"`
	Engine  EngineConfig  `mapstructure:"engine"`
	TUI     TUIConfig     `mapstructure:"tui"`
	Logging LoggingConfig `mapstructure:"logging"`
	Paths   PathsConfig   `mapstructure:"paths"`
}

// GridConfig controls the extent policy of the grid view
type GridConfig struct {
	// DefaultRows and DefaultCols are the extent after New Sheet.
	DefaultRows int `mapstructure:"default_rows"`
	DefaultCols int `mapstructure:"default_cols"`
	// RowStep and ColStep are how far the extent grows per edge-proximity trigger.
	RowStep int `mapstructure:"row_step"`
	ColStep int `mapstructure:"col_step"`
	// EdgeRows and EdgeCols are how close (in cells) the viewport must get to
	// the extent boundary before growth is scheduled.
	EdgeRows int `mapstructure:"edge_rows"`
	EdgeCols int `mapstructure:"edge_cols"`
}

// LoadConfig controls the decode poll that waits for engine ingestion
type LoadConfig struct {
	// FrameIntervalMs is the length of one display frame.
	FrameIntervalMs int `mapstructure:"frame_interval_ms"`
	// MaxAttempts bounds the number of frames the poll waits for content.
	MaxAttempts int `mapstructure:"max_attempts"`
}

// SampleConfig controls the first-run sample document
type SampleConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Paths are probed in order; the first readable one wins. Entries may be
	// local paths, glob patterns, http(s) URLs or "builtin:<name>".
	Paths         []string `mapstructure:"paths"`
	HTTPTimeoutMs int      `mapstructure:"http_timeout_ms"`
}

// SaveConfig controls the download-style save fallback
type SaveConfig struct {
	DefaultFilename string `mapstructure:"default_filename"`
	// DownloadDir receives fallback saves. Empty means the working directory.
	DownloadDir string `mapstructure:"download_dir"`
}

// EngineConfig selects the computation engine
type EngineConfig struct {
	Name string `mapstructure:"name"`
	// AsyncLoad makes the bundled engine ingest documents in the background.
	AsyncLoad bool `mapstructure:"async_load"`
}

// TUIConfig controls terminal presentation
type TUIConfig struct {
	ColumnWidth int  `mapstructure:"column_width"`
	Mouse       bool `mapstructure:"mouse"`
	// WatchDocument reports on-disk changes to the opened file.
	WatchDocument bool `mapstructure:"watch_document"`
	// LiveReload applies config file edits while the view is running.
	LiveReload bool `mapstructure:"live_reload"`
	// Theme is a built-in theme name or a path to a YAML theme file.
	Theme string `mapstructure:"theme"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is active
	Enabled bool `mapstructure:"enabled"`
	// Level sets the minimum log level (debug, info, warn, error)
	Level string `mapstructure:"level"`
	// MaxSizeMB is the log file size that triggers rotation
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated log files to keep
	MaxBackups int `mapstructure:"max_backups"`
}

// PathsConfig controls where sheetview keeps its own files
type PathsConfig struct {
	// StateDir holds debug.log and per-session markers. Empty means the
	// XDG state directory.
	StateDir string `mapstructure:"state_dir"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			DefaultRows: 24,
			DefaultCols: 12,
			RowStep:     10,
			ColStep:     6,
			EdgeRows:    3,
			EdgeCols:    1,
		},
		Load: LoadConfig{
			FrameIntervalMs: 16,
			MaxAttempts:     12,
		},
		Sample: SampleConfig{
			Enabled: true,
			Paths: []string{
				"./data/sample.s2v",
				"data/sample.s2v",
				"./docs/data/sample.s2v",
				"builtin:sample.s2v",
			},
			HTTPTimeoutMs: 3000,
		},
		Save: SaveConfig{
			DefaultFilename: "spreadsheet.s2v",
			DownloadDir:     "",
		},
		Engine: EngineConfig{
			Name:      "workbook",
			AsyncLoad: true,
		},
		TUI: TUIConfig{
			ColumnWidth:   10,
			Mouse:         true,
			WatchDocument: true,
			LiveReload:    true,
			Theme:         "default",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 2,
		},
		Paths: PathsConfig{
			StateDir: "",
		},
	}
}

// FrameInterval returns the display frame length as a duration
func (c *LoadConfig) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMs) * time.Millisecond
}

// HTTPTimeout returns the sample fetch timeout as a duration
func (c *SampleConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMs) * time.Millisecond
}

// ResolveStateDir returns the configured state directory or the default one.
func (p *PathsConfig) ResolveStateDir() string {
	if p.StateDir != "" {
		return p.StateDir
	}
	return StateDir()
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("grid.default_rows", defaults.Grid.DefaultRows)
	viper.SetDefault("grid.default_cols", defaults.Grid.DefaultCols)
	viper.SetDefault("grid.row_step", defaults.Grid.RowStep)
	viper.SetDefault("grid.col_step", defaults.Grid.ColStep)
	viper.SetDefault("grid.edge_rows", defaults.Grid.EdgeRows)
	viper.SetDefault("grid.edge_cols", defaults.Grid.EdgeCols)

	viper.SetDefault("load.frame_interval_ms", defaults.Load.FrameIntervalMs)
	viper.SetDefault("load.max_attempts", defaults.Load.MaxAttempts)

	viper.SetDefault("sample.enabled", defaults.Sample.Enabled)
	viper.SetDefault("sample.paths", defaults.Sample.Paths)
	viper.SetDefault("sample.http_timeout_ms", defaults.Sample.HTTPTimeoutMs)

	viper.SetDefault("save.default_filename", defaults.Save.DefaultFilename)
	viper.SetDefault("save.download_dir", defaults.Save.DownloadDir)

	viper.SetDefault("engine.name", defaults.Engine.Name)
	viper.SetDefault("engine.async_load", defaults.Engine.AsyncLoad)

	viper.SetDefault("tui.column_width", defaults.TUI.ColumnWidth)
	viper.SetDefault("tui.mouse", defaults.TUI.Mouse)
	viper.SetDefault("tui.watch_document", defaults.TUI.WatchDocument)
	viper.SetDefault("tui.live_reload", defaults.TUI.LiveReload)
	viper.SetDefault("tui.theme", defaults.TUI.Theme)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	viper.SetDefault("paths.state_dir", defaults.Paths.StateDir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sheetview")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sheetview"
	}
	return filepath.Join(home, ".config", "sheetview")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StateDir returns the default directory for logs and session markers
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "sheetview")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "sheetview")
	}
	return filepath.Join(home, ".local", "state", "sheetview")
}
