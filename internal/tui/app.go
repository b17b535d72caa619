package tui

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/sheetview/internal/config"
	"github.com/Iron-Ham/sheetview/internal/engine"
)

// App wraps the Bubble Tea program.
type App struct {
	program *tea.Program
	model   Model
}

// New creates the application over bridge.
func New(bridge *engine.Bridge, opts Options) *App {
	return &App{model: NewModel(bridge, opts)}
}

// Model returns the initial model.
func (a *App) Model() Model {
	return a.model
}

// Run starts the program and blocks until it exits.
func (a *App) Run() error {
	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if a.model.cfg.TUI.Mouse {
		progOpts = append(progOpts, tea.WithMouseCellMotion())
	}
	a.program = tea.NewProgram(a.model, progOpts...)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		if _, ok := <-sigChan; ok && a.program != nil {
			a.program.Send(tea.Quit())
		}
	}()

	if a.model.cfg.TUI.LiveReload && viper.ConfigFileUsed() != "" {
		a.watchConfig()
	}

	final, err := a.program.Run()

	signal.Stop(sigChan)
	close(sigChan)
	if m, ok := final.(Model); ok {
		m.Shutdown()
	}
	return err
}

// watchConfig forwards config file edits to the program. Edits that fail
// validation are logged and ignored.
func (a *App) watchConfig() {
	logger := a.model.logger
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := config.Load()
		if err != nil {
			logger.Warn("config change rejected", "file", e.Name, "error", err)
			return
		}
		logger.Info("config reloaded", "file", e.Name)
		a.program.Send(configChangedMsg{cfg: cfg})
	})
	viper.WatchConfig()
}
