// Package fileio reads and writes S2V documents on an afero filesystem.
//
// Saving follows a two-step fallback: a DirectSaver writes to the path the
// user chose (or the path the document was opened from), and when that is
// unavailable or fails a DownloadSaver drops the document under a default
// name in the download directory.
package fileio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/sheetview/internal/errors"
)

// DefaultFilename is the suggested name for fallback saves.
const DefaultFilename = "spreadsheet.s2v"

// ReadDocument returns the full text of the file at path. Failures wrap
// ErrFileRead in a DocumentError so callers can show them as-is.
func ReadDocument(fs afero.Fs, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.NewDocumentError(errors.OpOpen, "no file given", errors.ErrFileRead)
	}
	info, err := fs.Stat(path)
	if err != nil {
		return "", errors.NewDocumentError(errors.OpOpen, "failed to read "+filepath.Base(path),
			fmt.Errorf("%w: %w", errors.ErrFileRead, err)).WithPath(path)
	}
	if info.IsDir() {
		return "", errors.NewDocumentError(errors.OpOpen, filepath.Base(path)+" is a directory",
			errors.ErrFileRead).WithPath(path)
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", errors.NewDocumentError(errors.OpOpen, "failed to read "+filepath.Base(path),
			fmt.Errorf("%w: %w", errors.ErrFileRead, err)).WithPath(path)
	}
	return string(data), nil
}

// WriteAtomic writes data to a temporary file next to path and renames it
// into place, so path never holds a partial document.
func WriteAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := afero.TempFile(fs, dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = fs.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := fs.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := fs.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Saver persists document text and returns the path it was written to.
type Saver interface {
	Save(ctx context.Context, text string) (string, error)
}

// DirectSaver writes to a chosen path. Without a path it reports
// ErrSaveUnavailable.
type DirectSaver struct {
	Fs   afero.Fs
	Path string
}

// Save writes text to s.Path.
func (s DirectSaver) Save(ctx context.Context, text string) (string, error) {
	if s.Path == "" {
		return "", errors.NewDocumentError(errors.OpSave, "no save target", errors.ErrSaveUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return "", errors.Join(errors.ErrCanceled, err)
	}
	if err := WriteAtomic(s.Fs, s.Path, []byte(text), 0o644); err != nil {
		return "", errors.NewDocumentError(errors.OpSave, "failed to save "+filepath.Base(s.Path),
			fmt.Errorf("%w: %w", errors.ErrSaveFailed, err)).WithPath(s.Path)
	}
	return s.Path, nil
}

// DownloadSaver writes Filename into Dir, the terminal stand-in for a
// browser download.
type DownloadSaver struct {
	Fs       afero.Fs
	Dir      string
	Filename string
}

// Target returns the path Save writes to.
func (s DownloadSaver) Target() string {
	name := s.Filename
	if name == "" {
		name = DefaultFilename
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name)
}

// Save writes text to Target().
func (s DownloadSaver) Save(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Join(errors.ErrCanceled, err)
	}
	path := s.Target()
	if err := WriteAtomic(s.Fs, path, []byte(text), 0o644); err != nil {
		return "", errors.NewDocumentError(errors.OpSave, "failed to save "+filepath.Base(path),
			fmt.Errorf("%w: %w", errors.ErrSaveFailed, err)).WithPath(path)
	}
	return path, nil
}

// SaveWithFallback tries primary and, when it is unavailable or fails,
// fallback. The error of the fallback is returned when both fail.
func SaveWithFallback(ctx context.Context, text string, primary, fallback Saver) (string, error) {
	if primary != nil {
		path, err := primary.Save(ctx, text)
		if err == nil {
			return path, nil
		}
		if errors.Is(err, errors.ErrCanceled) || fallback == nil {
			return "", err
		}
	}
	if fallback == nil {
		return "", errors.NewDocumentError(errors.OpSave, "no save mechanism", errors.ErrSaveUnavailable)
	}
	return fallback.Save(ctx, text)
}
