// Package tui is the terminal front end of the grid view. It owns nothing
// but presentation: every state transition goes through grid.Controller.
package tui

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/Iron-Ham/sheetview/internal/config"
	"github.com/Iron-Ham/sheetview/internal/engine"
	"github.com/Iron-Ham/sheetview/internal/fileio"
	"github.com/Iron-Ham/sheetview/internal/grid"
	"github.com/Iron-Ham/sheetview/internal/logging"
	"github.com/Iron-Ham/sheetview/internal/retry"
	"github.com/Iron-Ham/sheetview/internal/sample"
	"github.com/Iron-Ham/sheetview/internal/tui/command"
	"github.com/Iron-Ham/sheetview/internal/tui/keymap"
	"github.com/Iron-Ham/sheetview/internal/tui/styles"
	"github.com/Iron-Ham/sheetview/internal/util"
	"github.com/Iron-Ham/sheetview/internal/watch"
)

// saveIgnoreWindow hides our own writes from the document watcher.
const saveIgnoreWindow = time.Second

// Options configures a Model.
type Options struct {
	Config *config.Config
	Fs     afero.Fs
	// Bootstrapper runs the first-activation sequence. Nil only resets.
	Bootstrapper *sample.Bootstrapper
	// DocumentPath is opened instead of the sample when set.
	DocumentPath string
	Clipboard    Clipboard
	Logger       *logging.Logger
}

type loadPurpose int

const (
	loadNone loadPurpose = iota
	loadSample
	loadDocument
)

// pendingLoad remembers what the running decode poll is for.
type pendingLoad struct {
	purpose loadPurpose
	source  string
	reload  bool
}

// Model is the Bubble Tea model of the sheet view.
type Model struct {
	ctrl         *grid.Controller
	formula      *FormulaBar
	prompt       textinput.Model
	promptActive bool

	keymap  *keymap.Keymap
	handler *command.Handler
	styles  *styles.Styles

	cfg    *config.Config
	fs     afero.Fs
	logger *logging.Logger
	boot   *sample.Bootstrapper
	clip   Clipboard

	docPath string
	watcher *watch.Watcher
	load    pendingLoad

	frameScheduled bool
	showHelp       bool
	errorMessage   string
	quitting       bool

	width  int
	height int
	layout Layout
}

// NewModel builds the view over bridge. A nil or unavailable bridge gives
// an inert view that only reports the engine as not ready.
func NewModel(bridge *engine.Bridge, opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = systemClipboard{}
	}

	formula := NewFormulaBar()
	ctrl := grid.New(bridge, formula,
		grid.WithPolicy(grid.PolicyFromConfig(cfg.Grid)),
		grid.WithLoadPolicy(grid.LoadPolicyFromConfig(cfg.Load)),
		grid.WithLogger(logger),
	)

	palette, err := styles.Resolve(fs, cfg.TUI.Theme)
	if err != nil {
		logger.Warn("theme not applied", "theme", cfg.TUI.Theme, "error", err)
	}

	prompt := textinput.New()
	prompt.Prompt = ""

	return Model{
		ctrl:    ctrl,
		formula: formula,
		prompt:  prompt,
		keymap:  keymap.DefaultKeymap(),
		handler: command.New(),
		styles:  styles.New(palette),
		cfg:     cfg,
		fs:      fs,
		logger:  logger.WithComponent("tui"),
		boot:    opts.Bootstrapper,
		clip:    clip,
		docPath: opts.DocumentPath,
	}
}

// Controller returns the grid controller.
func (m Model) Controller() *grid.Controller { return m.ctrl }

// DocumentPath returns the path of the open document, if any.
func (m Model) DocumentPath() string { return m.docPath }

// GetLogger returns the model's logger.
func (m Model) GetLogger() *logging.Logger { return m.logger }

// Mode returns the current input mode.
func (m Model) Mode() keymap.Mode {
	switch {
	case m.promptActive:
		return keymap.ModeCommand
	case m.formula.Focused():
		return keymap.ModeEdit
	default:
		return keymap.ModeGrid
	}
}

// Init runs the activation sequence: open the requested document, or reset
// and fetch the sample when this session has not shown it yet.
func (m Model) Init() tea.Cmd {
	if m.docPath != "" {
		if m.ctrl.Available() {
			m.ctrl.Reset()
		}
		return readDocument(m.fs, m.docPath, false)
	}
	if m.boot == nil {
		if m.ctrl.Available() {
			m.ctrl.Reset()
		}
		return nil
	}
	if m.boot.Begin(m.ctrl) {
		return fetchSample(m.boot.Loader())
	}
	return nil
}

// Update handles a message and keeps one frame tick in flight while growth
// or a decode poll is waiting.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.relayout()
	if !m.quitting && !m.frameScheduled && m.ctrl.NeedsFrame() {
		m.frameScheduled = true
		cmd = tea.Batch(cmd, frame(m.cfg.Load.FrameInterval()))
	}
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeypress(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case frameMsg:
		m.frameScheduled = false
		m.ctrl.ApplyScheduledGrowth()
		if m.ctrl.Loading() {
			if outcome := m.ctrl.PollLoad(); outcome != retry.Pending {
				m.finishLoad(outcome)
			}
		}
		return m, nil

	case sampleFetchedMsg:
		if m.boot == nil {
			return m, nil
		}
		if msg.err != nil {
			m.boot.Fail(m.ctrl, msg.err)
			return m, nil
		}
		if err := m.ctrl.BeginLoad(msg.text); err != nil {
			m.boot.Fail(m.ctrl, err)
			return m, nil
		}
		m.load = pendingLoad{purpose: loadSample, source: msg.source}
		return m, nil

	case documentReadMsg:
		return m.handleDocumentRead(msg)

	case savedMsg:
		if msg.err != nil {
			m.ctrl.ReportError(msg.err, "Save failed")
			return m, nil
		}
		m.ctrl.SetNotice("Saved %s", msg.target)
		return m, nil

	case watchMsg:
		name := filepath.Base(msg.Path)
		if msg.Removed {
			m.ctrl.SetNotice("%s was removed from disk", name)
		} else {
			m.ctrl.SetNotice("%s changed on disk (ctrl+r to reload)", name)
		}
		return m, waitForChange(m.watcher)

	case configChangedMsg:
		m.applyConfig(msg.cfg)
		return m, nil

	case clipboardReadMsg:
		if msg.err != nil {
			m.ctrl.ReportError(msg.err, "Clipboard unavailable")
			return m, nil
		}
		text := util.SingleLine(strings.TrimRight(msg.text, "\r\n"))
		if m.ctrl.SetSelectedContent(text) {
			m.ctrl.SetNotice("Pasted into %s", m.ctrl.Meta())
		}
		return m, nil

	case clipboardWrittenMsg:
		if msg.err != nil {
			m.ctrl.ReportError(msg.err, "Clipboard unavailable")
			return m, nil
		}
		m.ctrl.SetNotice("Copied %s", m.ctrl.Meta())
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case m.promptActive:
		m.prompt, cmd = m.prompt.Update(msg)
	case m.formula.Focused():
		cmd = m.formula.Update(msg)
	}
	return m, cmd
}

func (m Model) handleDocumentRead(msg documentReadMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m.ctrl.ReportError(msg.err, "Failed to open document")
		return m, nil
	}
	if !msg.reload {
		m.ctrl.Reset()
	}
	if err := m.ctrl.BeginLoad(msg.text); err != nil {
		m.ctrl.ReportError(err, "Failed to load document")
		return m, nil
	}
	m.load = pendingLoad{purpose: loadDocument, source: msg.path, reload: msg.reload}
	if msg.reload && msg.path == m.docPath && m.watcher != nil {
		return m, nil
	}
	m.docPath = msg.path
	return m, m.watchDocument(msg.path)
}

// finishLoad runs once the decode poll settles.
func (m *Model) finishLoad(outcome retry.Outcome) {
	load := m.load
	m.load = pendingLoad{}
	switch load.purpose {
	case loadSample:
		if m.boot != nil {
			m.boot.Finish(m.ctrl, load.source)
		}
	case loadDocument:
		name := filepath.Base(load.source)
		switch {
		case outcome != retry.Succeeded:
			m.ctrl.SetNotice("%s has no content", name)
		case load.reload:
			m.ctrl.SetNotice("Reloaded %s", name)
		default:
			m.ctrl.SetNotice("Loaded %s", name)
		}
	}
	m.logger.Debug("load finished", "source", load.source, "outcome", outcome.String())
}

// watchDocument replaces the document watcher. It returns the command
// waiting for the first change, or nil when watching is off.
func (m *Model) watchDocument(path string) tea.Cmd {
	m.stopWatching()
	if !m.cfg.TUI.WatchDocument {
		return nil
	}
	w, err := watch.New(path, m.logger)
	if err != nil {
		m.logger.Debug("document not watched", "path", path, "error", err)
		return nil
	}
	m.watcher = w
	return waitForChange(w)
}

func (m *Model) stopWatching() {
	if m.watcher != nil {
		m.watcher.Stop()
		m.watcher = nil
	}
}

// Shutdown releases background resources.
func (m *Model) Shutdown() {
	m.stopWatching()
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	m.Shutdown()
	return m, tea.Quit
}

func (m Model) save(target string) (Model, tea.Cmd) {
	if !m.ctrl.Available() {
		m.ctrl.SetNotice("%s", grid.NotReadyStatus)
		return m, nil
	}
	path := target
	if path == "" {
		path = m.docPath
	}
	primary := fileio.DirectSaver{Fs: m.fs, Path: path}
	fallback := fileio.DownloadSaver{
		Fs:       m.fs,
		Dir:      m.cfg.Save.DownloadDir,
		Filename: m.cfg.Save.DefaultFilename,
	}
	if m.watcher != nil {
		m.watcher.IgnoreFor(saveIgnoreWindow)
	}
	m.ctrl.SetNotice("Saving...")
	return m, saveDocument(m.ctrl.Encode(), primary, fallback)
}

func (m Model) reload() (Model, tea.Cmd) {
	if m.docPath == "" {
		m.ctrl.SetNotice("No document to reload")
		return m, nil
	}
	return m, readDocument(m.fs, m.docPath, true)
}

// newSheet clears the sheet and detaches it from any open document.
func (m Model) newSheet() Model {
	if !m.ctrl.Available() {
		return m
	}
	m.ctrl.Reset()
	m.load = pendingLoad{}
	m.docPath = ""
	m.stopWatching()
	m.ctrl.SetNotice("New sheet")
	return m
}

func (m *Model) setTheme(name string) {
	palette, err := styles.Resolve(m.fs, name)
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.styles = styles.New(palette)
	m.ctrl.SetNotice("Theme: %s", name)
}

// applyConfig swaps in a reloaded configuration. The extent is kept; the
// new growth policy applies from the next growth step.
func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	m.cfg = cfg
	m.ctrl.SetPolicy(grid.PolicyFromConfig(cfg.Grid))
	m.ctrl.SetLoadPolicy(grid.LoadPolicyFromConfig(cfg.Load))
	if palette, err := styles.Resolve(m.fs, cfg.TUI.Theme); err == nil {
		m.styles = styles.New(palette)
	} else {
		m.logger.Warn("theme not applied", "theme", cfg.TUI.Theme, "error", err)
	}
	m.ctrl.SetNotice("Configuration reloaded")
}

// relayout recomputes the layout and resizes the viewport when it changed.
func (m *Model) relayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	l := ComputeLayout(m.width, m.height, m.cfg.TUI.ColumnWidth, m.ctrl.Extent().Rows)
	if l == m.layout {
		return
	}
	m.layout = l
	m.ctrl.SetViewportSize(l.Rows, l.Cols)
	m.formula.SetWidth(m.width - addressWidth - 4)
	m.prompt.Width = max(1, m.width-4)
}
