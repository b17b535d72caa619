package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/sheetview/internal/config"
	"github.com/Iron-Ham/sheetview/internal/tui/styles"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify sheetview configuration",
	Long: `View or modify sheetview configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  sheetview config set grid.row_step 20
  sheetview config set tui.theme nord
  sheetview config set sample.paths "./data/*.s2v,builtin:sample.s2v"

Valid keys:
  grid.default_rows, grid.default_cols  - Extent after New Sheet
  grid.row_step, grid.col_step          - Growth per edge trigger
  grid.edge_rows, grid.edge_cols        - Edge distance that triggers growth
  load.frame_interval_ms                - Length of one display frame
  load.max_attempts                     - Frames the decode poll waits for content
  sample.enabled                        - Show the demo sample once per session
  sample.paths                          - Comma-separated sample candidates
  sample.http_timeout_ms                - Timeout for URL candidates
  save.default_filename                 - File name used by download-style saves
  save.download_dir                     - Directory receiving download-style saves
  engine.name                           - Computation engine
  engine.async_load                     - Ingest documents in the background
  tui.column_width                      - Cell width in characters
  tui.mouse                             - Enable mouse input
  tui.watch_document                    - Report on-disk changes to the open file
  tui.live_reload                       - Apply config file edits while running
  tui.theme                             - Theme name or YAML theme file
  logging.enabled, logging.level        - Debug log switch and level
  logging.max_size_mb                   - Log size that triggers rotation
  logging.max_backups                   - Rotated logs to keep
  paths.state_dir                       - Directory for logs and session markers`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/sheetview/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// keyType is how a config value given on the command line is parsed.
type keyType int

const (
	keyString keyType = iota
	keyBool
	keyInt
	keyList
	keyLevel
	keyTheme
)

var validKeys = map[string]keyType{
	"grid.default_rows":      keyInt,
	"grid.default_cols":      keyInt,
	"grid.row_step":          keyInt,
	"grid.col_step":          keyInt,
	"grid.edge_rows":         keyInt,
	"grid.edge_cols":         keyInt,
	"load.frame_interval_ms": keyInt,
	"load.max_attempts":      keyInt,
	"sample.enabled":         keyBool,
	"sample.paths":           keyList,
	"sample.http_timeout_ms": keyInt,
	"save.default_filename":  keyString,
	"save.download_dir":      keyString,
	"engine.name":            keyString,
	"engine.async_load":      keyBool,
	"tui.column_width":       keyInt,
	"tui.mouse":              keyBool,
	"tui.watch_document":     keyBool,
	"tui.live_reload":        keyBool,
	"tui.theme":              keyTheme,
	"logging.enabled":        keyBool,
	"logging.level":          keyLevel,
	"logging.max_size_mb":    keyInt,
	"logging.max_backups":    keyInt,
	"paths.state_dir":        keyString,
}

// parseConfigValue converts value to the type stored under key.
func parseConfigValue(key, value string) (any, error) {
	kt, ok := validKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'sheetview config set --help' to see valid keys", key)
	}

	switch kt {
	case keyBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return b, nil
	case keyInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if n < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		return n, nil
	case keyList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	case keyLevel:
		level := strings.ToLower(value)
		if !slices.Contains(config.ValidLogLevels(), level) {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(config.ValidLogLevels(), ", "))
		}
		return level, nil
	case keyTheme:
		if !isThemeFile(value) && !slices.Contains(themeNames(), value) {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s, or a .yaml theme file",
				key, value, strings.Join(themeNames(), ", "))
		}
		return value, nil
	default:
		return value, nil
	}
}

func themeNames() []string {
	return styles.BuiltinThemes()
}

func isThemeFile(value string) bool {
	ext := strings.ToLower(filepath.Ext(value))
	return ext == ".yaml" || ext == ".yml"
}

// currentSettings returns the effective settings without command-line
// only keys.
func currentSettings() map[string]any {
	settings := viper.AllSettings()
	delete(settings, "config")
	return settings
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintln(out)

	data, err := yaml.Marshal(currentSettings())
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}
	_, err = out.Write(data)
	if err != nil {
		return err
	}

	if _, err := config.Load(); err != nil {
		fmt.Fprintf(out, "\nWarning: %v\n", err)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	typedValue, err := parseConfigValue(key, args[1])
	if err != nil {
		return err
	}

	// Set the value in viper and make sure the result still validates
	viper.Set(key, typedValue)
	if _, err := config.Load(); err != nil {
		return err
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = config.ConfigFile()
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := writeSettings(configFile); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", configFile)
	return nil
}

// writeSettings writes the effective settings to path as YAML.
func writeSettings(path string) error {
	data, err := yaml.Marshal(currentSettings())
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// defaultConfigContent is written by "config init". It mirrors config.Default.
const defaultConfigContent = `# sheetview configuration

# Grid extent policy
grid:
  # Extent after New Sheet
  default_rows: 24
  default_cols: 12
  # How far the extent grows each time the viewport nears an edge
  row_step: 10
  col_step: 6
  # How close (in cells) the viewport must get to the edge to trigger growth
  edge_rows: 3
  edge_cols: 1

# Decode poll run after a document is handed to the engine
load:
  # Length of one display frame in milliseconds
  frame_interval_ms: 16
  # Frames to wait for content before showing an empty sheet
  max_attempts: 12

# Demo sample shown once per terminal session
sample:
  enabled: true
  # Probed in order; the first readable one wins. Local paths, glob
  # patterns, http(s) URLs and builtin:<name> are accepted.
  paths:
    - ./data/sample.s2v
    - data/sample.s2v
    - ./docs/data/sample.s2v
    - builtin:sample.s2v
  http_timeout_ms: 3000

# Fallback used when the document cannot be written in place
save:
  default_filename: spreadsheet.s2v
  # Empty means the working directory
  download_dir: ""

# Computation engine
engine:
  name: workbook
  # Ingest documents in the background while the view polls
  async_load: true

# Terminal presentation
tui:
  column_width: 10
  mouse: true
  # Report when the open document changes on disk
  watch_document: true
  # Apply edits to this file while sheetview runs
  live_reload: true
  # default, light, nord, or a path to a .yaml theme file
  theme: default

# Debug log written to <state_dir>/debug.log
logging:
  enabled: true
  # debug, info, warn, error
  level: info
  max_size_mb: 5
  max_backups: 2

paths:
  # Logs and session markers. Empty means $XDG_STATE_HOME/sheetview.
  state_dir: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'sheetview config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	fmt.Fprintln(cmd.OutOrStdout(), "Edit this file to customize sheetview's behavior.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", configFile)
	fmt.Fprintf(out, "  2. ./config.yaml (current directory)\n")
	fmt.Fprintln(out, "\nEnvironment variables: SHEETVIEW_* (e.g., SHEETVIEW_GRID_ROW_STEP)")
	fmt.Fprintf(out, "State directory: %s\n", config.Get().Paths.ResolveStateDir())
	return nil
}
