package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/sheetview/internal/engine/workbook"
	"github.com/Iron-Ham/sheetview/internal/sample"
	"github.com/Iron-Ham/sheetview/internal/session"
	"github.com/Iron-Ham/sheetview/internal/tui"
)

func runView(cmd *cobra.Command, args []string) error {
	if !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
		return fmt.Errorf("sheetview needs an interactive terminal; use 'sheetview cat' to print a document")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noSample, _ := cmd.Flags().GetBool("no-sample"); noSample {
		cfg.Sample.Enabled = false
	}
	if noMouse, _ := cmd.Flags().GetBool("no-mouse"); noMouse {
		cfg.TUI.Mouse = false
	}

	stateDir := cfg.Paths.ResolveStateDir()
	sessionID := session.ID()
	logger := newLogger(cfg).WithSession(sessionID)
	defer func() { _ = logger.Close() }()

	bridge, err := newRegistry(logger, workbook.WithAsyncLoad(cfg.Engine.AsyncLoad)).ResolveOrUnavailable(cfg.Engine.Name)
	if err != nil {
		// The view starts anyway and reports the engine as not ready.
		logger.Error("engine unavailable", "engine", cfg.Engine.Name, "error", err)
	}
	defer func() { _ = bridge.Close() }()

	if removed, err := session.Prune(appFs, stateDir, session.IsProcessAlive); err != nil {
		logger.Warn("failed to prune sessions", "error", err)
	} else if removed > 0 {
		logger.Debug("pruned stale sessions", "count", removed)
	}
	marker := session.NewMarker(appFs, stateDir, sessionID, logger)

	loader := sample.NewLoader(appFs, cfg.Sample.Paths,
		sample.WithTimeout(cfg.Sample.HTTPTimeout()),
		sample.WithLogger(logger),
	)
	boot := sample.NewBootstrapper(loader, marker, cfg.Sample.Enabled, logger)

	var docPath string
	if len(args) == 1 {
		docPath = args[0]
	}
	logger.Info("view starting", "engine", bridge.Name(), "document", docPath)

	app := tui.New(bridge, tui.Options{
		Config:       cfg,
		Fs:           appFs,
		Bootstrapper: boot,
		DocumentPath: docPath,
		Logger:       logger,
	})
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
