package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "grid.row_step")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateGrid()...)
	errors = append(errors, c.validateLoad()...)
	errors = append(errors, c.validateSample()...)
	errors = append(errors, c.validateSave()...)
	errors = append(errors, c.validateEngine()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func positive(field string, value int) []ValidationError {
	if value > 0 {
		return nil
	}
	return []ValidationError{{Field: field, Value: value, Message: "must be positive"}}
}

func nonNegative(field string, value int) []ValidationError {
	if value >= 0 {
		return nil
	}
	return []ValidationError{{Field: field, Value: value, Message: "must be non-negative"}}
}

// validateGrid validates the GridConfig
func (c *Config) validateGrid() []ValidationError {
	var errors []ValidationError

	errors = append(errors, positive("grid.default_rows", c.Grid.DefaultRows)...)
	errors = append(errors, positive("grid.default_cols", c.Grid.DefaultCols)...)
	errors = append(errors, positive("grid.row_step", c.Grid.RowStep)...)
	errors = append(errors, positive("grid.col_step", c.Grid.ColStep)...)
	errors = append(errors, nonNegative("grid.edge_rows", c.Grid.EdgeRows)...)
	errors = append(errors, nonNegative("grid.edge_cols", c.Grid.EdgeCols)...)

	// Column labels stay within three letters (XFD is the xlsx limit).
	const maxDefaultCols = 16384
	if c.Grid.DefaultCols > maxDefaultCols {
		errors = append(errors, ValidationError{
			Field:   "grid.default_cols",
			Value:   c.Grid.DefaultCols,
			Message: fmt.Sprintf("exceeds maximum of %d", maxDefaultCols),
		})
	}

	return errors
}

// validateLoad validates the LoadConfig
func (c *Config) validateLoad() []ValidationError {
	var errors []ValidationError

	errors = append(errors, positive("load.frame_interval_ms", c.Load.FrameIntervalMs)...)
	errors = append(errors, positive("load.max_attempts", c.Load.MaxAttempts)...)

	const maxFrameIntervalMs = 1000
	if c.Load.FrameIntervalMs > maxFrameIntervalMs {
		errors = append(errors, ValidationError{
			Field:   "load.frame_interval_ms",
			Value:   c.Load.FrameIntervalMs,
			Message: fmt.Sprintf("exceeds maximum of %dms", maxFrameIntervalMs),
		})
	}

	return errors
}

// validateSample validates the SampleConfig
func (c *Config) validateSample() []ValidationError {
	var errors []ValidationError

	if c.Sample.Enabled && len(c.Sample.Paths) == 0 {
		errors = append(errors, ValidationError{
			Field:   "sample.paths",
			Value:   c.Sample.Paths,
			Message: "must list at least one location when sample.enabled is true",
		})
	}
	for i, p := range c.Sample.Paths {
		if strings.TrimSpace(p) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("sample.paths[%d]", i),
				Value:   p,
				Message: "must not be empty",
			})
		}
	}
	errors = append(errors, positive("sample.http_timeout_ms", c.Sample.HTTPTimeoutMs)...)

	return errors
}

// validateSave validates the SaveConfig
func (c *Config) validateSave() []ValidationError {
	var errors []ValidationError

	name := c.Save.DefaultFilename
	if name == "" || filepath.Base(name) != name {
		errors = append(errors, ValidationError{
			Field:   "save.default_filename",
			Value:   name,
			Message: "must be a bare file name",
		})
	}

	return errors
}

// validateEngine validates the EngineConfig
func (c *Config) validateEngine() []ValidationError {
	if strings.TrimSpace(c.Engine.Name) == "" {
		return []ValidationError{{
			Field:   "engine.name",
			Value:   c.Engine.Name,
			Message: "must not be empty",
		}}
	}
	return nil
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	const minColumnWidth = 3
	const maxColumnWidth = 60
	if c.TUI.ColumnWidth < minColumnWidth {
		errors = append(errors, ValidationError{
			Field:   "tui.column_width",
			Value:   c.TUI.ColumnWidth,
			Message: fmt.Sprintf("must be at least %d", minColumnWidth),
		})
	}
	if c.TUI.ColumnWidth > maxColumnWidth {
		errors = append(errors, ValidationError{
			Field:   "tui.column_width",
			Value:   c.TUI.ColumnWidth,
			Message: fmt.Sprintf("exceeds maximum of %d", maxColumnWidth),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	errors = append(errors, positive("logging.max_size_mb", c.Logging.MaxSizeMB)...)

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	errors = append(errors, nonNegative("logging.max_backups", c.Logging.MaxBackups)...)

	return errors
}
