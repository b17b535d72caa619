package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Level names as they appear in the "level" field of each line.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// LogFileName is the name of the log file inside the state directory.
const LogFileName = "debug.log"

var levels = map[string]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// Logger writes JSON lines tagged with the attributes of the chain of
// With* calls that produced it. Children share the parent's file. A nil
// *Logger discards everything.
type Logger struct {
	sl  *slog.Logger
	out *RotatingWriter
}

// Options configures NewLogger.
type Options struct {
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Level is one of the Level constants, case-insensitive. Anything
	// else means INFO.
	Level    string
	Rotation RotationConfig
}

// NewLogger opens {dir}/debug.log for appending. There is no stderr
// fallback for an empty dir because the terminal belongs to the TUI.
func NewLogger(dir string, opts Options) (*Logger, error) {
	if dir == "" {
		return nil, fmt.Errorf("log directory is required")
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	out, err := NewRotatingWriter(fs, filepath.Join(dir, LogFileName), opts.Rotation)
	if err != nil {
		return nil, err
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: levels[ParseLevel(opts.Level)],
	})
	return &Logger{sl: slog.New(handler), out: out}, nil
}

// NopLogger returns a Logger that writes nowhere.
func NopLogger() *Logger {
	return &Logger{sl: slog.New(slog.NewJSONHandler(io.Discard, nil))}
}

// ParseLevel normalizes level to one of the Level constants.
func ParseLevel(level string) string {
	level = strings.ToUpper(strings.TrimSpace(level))
	if _, ok := levels[level]; ok {
		return level
	}
	return LevelInfo
}

// WithComponent tags entries with the emitting part of the program
// ("grid", "engine", "sample", "tui", ...).
func (l *Logger) WithComponent(component string) *Logger {
	return l.With("component", component)
}

// WithDocument tags entries with a document path or sample location.
func (l *Logger) WithDocument(path string) *Logger {
	return l.With("document", path)
}

// WithSession tags entries with the terminal session id.
func (l *Logger) WithSession(id string) *Logger {
	return l.With("session_id", id)
}

// With adds alternating key/value attributes. Pairs whose key is not a
// string are dropped.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	attrs := make([]any, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			attrs = append(attrs, slog.Any(key, args[i+1]))
		}
	}
	if len(attrs) == 0 {
		return l
	}
	return &Logger{sl: l.sl.With(attrs...), out: l.out}
}

func (l *Logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

func (l *Logger) log(level slog.Level, msg string, args []any) {
	if l == nil {
		return
	}
	l.sl.Log(context.Background(), level, msg, args...)
}

// Close closes the log file for this logger and every child sharing it.
func (l *Logger) Close() error {
	if l == nil || l.out == nil {
		return nil
	}
	return l.out.Close()
}

// Path returns the live log file, or "" when nothing is written.
func (l *Logger) Path() string {
	if l == nil || l.out == nil {
		return ""
	}
	return l.out.Path()
}
