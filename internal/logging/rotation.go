package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// RotationConfig bounds the size of the log on disk.
type RotationConfig struct {
	// MaxSizeMB is the size at which the live file rolls over. Zero
	// disables rotation.
	MaxSizeMB int
	// MaxBackups is how many rolled files (debug.log.1, .2, ...) are kept.
	MaxBackups int
}

// DefaultRotationConfig matches the logging defaults in the config package.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{MaxSizeMB: 5, MaxBackups: 2}
}

// RotatingWriter appends to a file and rolls it over to numbered backups
// once a write would take it past the limit. Safe for concurrent use.
type RotatingWriter struct {
	mu      sync.Mutex
	fs      afero.Fs
	path    string
	limit   int64
	backups int
	file    afero.File
	size    int64
}

// NewRotatingWriter opens path on fs, creating it and its directory if
// needed.
func NewRotatingWriter(fs afero.Fs, path string, cfg RotationConfig) (*RotatingWriter, error) {
	w := &RotatingWriter{
		fs:      fs,
		path:    path,
		limit:   int64(cfg.MaxSizeMB) << 20,
		backups: cfg.MaxBackups,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingWriter) open() error {
	if err := w.fs.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := w.fs.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	w.file, w.size = f, info.Size()
	return nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, fmt.Errorf("log file is closed")
	}
	if w.limit > 0 && w.size > 0 && w.size+int64(len(p)) > w.limit {
		// On failure the current file keeps growing.
		_ = w.rollover()
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// rollover closes the live file, shifts path.N to path.N+1 (dropping the
// oldest), moves the live file to path.1 and reopens. Caller holds mu.
func (w *RotatingWriter) rollover() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	w.file = nil

	if w.backups <= 0 {
		_ = w.fs.Remove(w.path)
		return w.open()
	}
	_ = w.fs.Remove(w.backup(w.backups))
	for n := w.backups - 1; n >= 1; n-- {
		_ = w.fs.Rename(w.backup(n), w.backup(n+1))
	}
	renameErr := w.fs.Rename(w.path, w.backup(1))
	if err := w.open(); err != nil {
		return err
	}
	if renameErr != nil {
		return fmt.Errorf("failed to rename log file: %w", renameErr)
	}
	return nil
}

func (w *RotatingWriter) backup(n int) string {
	return fmt.Sprintf("%s.%d", w.path, n)
}

// Close syncs and closes the file. Later writes fail; later Closes are
// no-ops.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	f := w.file
	w.file = nil
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	return f.Close()
}

// Size is the live file's size in bytes.
func (w *RotatingWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Path is the live file's path.
func (w *RotatingWriter) Path() string { return w.path }
