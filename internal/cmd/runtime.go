package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/term"

	"github.com/Iron-Ham/sheetview/internal/config"
	"github.com/Iron-Ham/sheetview/internal/engine"
	"github.com/Iron-Ham/sheetview/internal/engine/workbook"
	"github.com/Iron-Ham/sheetview/internal/fileio"
	"github.com/Iron-Ham/sheetview/internal/grid"
	"github.com/Iron-Ham/sheetview/internal/logging"
)

// appFs is the filesystem every command works on.
var appFs afero.Fs = afero.NewOsFs()

// stdinName reads the document from standard input.
const stdinName = "-"

// loadConfig returns the validated configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger opens the debug log in the state directory. Logging problems
// never stop a command; they fall back to a discarding logger.
func newLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}
	logger, err := logging.NewLogger(cfg.Paths.ResolveStateDir(), logging.Options{
		Fs:    appFs,
		Level: cfg.Logging.Level,
		Rotation: logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
		},
	})
	if err != nil {
		return logging.NopLogger()
	}
	return logger
}

// newRegistry returns the registry of engines this binary ships with.
func newRegistry(logger *logging.Logger, opts ...workbook.Option) *engine.Registry {
	reg := engine.NewRegistry()
	workbook.Register(reg, append([]workbook.Option{workbook.WithLogger(logger)}, opts...)...)
	return reg
}

// readInput returns the text of the named document, or of stdin for "-".
func readInput(name string, stdin io.Reader) (string, error) {
	if name == stdinName {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), nil
	}
	return fileio.ReadDocument(appFs, name)
}

// openHeadless loads text into a fresh engine and waits for the decode poll
// to settle. The caller closes the controller's bridge.
func openHeadless(ctx context.Context, cfg *config.Config, text string, logger *logging.Logger) (*grid.Controller, error) {
	bridge, err := newRegistry(logger, workbook.WithSyncLoad()).Resolve(cfg.Engine.Name)
	if err != nil {
		return nil, err
	}
	ctrl := grid.New(bridge, grid.NewBufferEditor(),
		grid.WithPolicy(grid.PolicyFromConfig(cfg.Grid)),
		grid.WithLoadPolicy(grid.LoadPolicyFromConfig(cfg.Load)),
		grid.WithLogger(logger),
	)
	ctrl.Reset()
	if _, err := ctrl.LoadBlocking(ctx, text); err != nil {
		_ = bridge.Close()
		return nil, err
	}
	return ctrl, nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
