package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/Iron-Ham/sheetview/internal/config"
	"github.com/Iron-Ham/sheetview/internal/fileio"
	"github.com/Iron-Ham/sheetview/internal/sample"
	"github.com/Iron-Ham/sheetview/internal/watch"
)

// frameMsg marks a display frame boundary. Pending growth is applied and
// the decode poll advances on each one.
type frameMsg time.Time

// sampleFetchedMsg carries the fetched demo document.
type sampleFetchedMsg struct {
	text   string
	source string
	err    error
}

// documentReadMsg carries a document read from disk.
type documentReadMsg struct {
	path   string
	text   string
	reload bool
	err    error
}

// savedMsg reports where a save landed.
type savedMsg struct {
	target string
	err    error
}

// watchMsg reports an on-disk change to the open document.
type watchMsg watch.Change

// configChangedMsg carries a configuration reloaded from disk.
type configChangedMsg struct {
	cfg *config.Config
}

// clipboardReadMsg carries clipboard text for a paste.
type clipboardReadMsg struct {
	text string
	err  error
}

// clipboardWrittenMsg reports the result of a copy.
type clipboardWrittenMsg struct {
	err error
}

// Clipboard is the system clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Commands

// frame schedules the next frame boundary.
func frame(interval time.Duration) tea.Cmd {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func fetchSample(loader *sample.Loader) tea.Cmd {
	return func() tea.Msg {
		text, source, err := loader.Fetch(context.Background())
		return sampleFetchedMsg{text: text, source: source, err: err}
	}
}

func readDocument(fs afero.Fs, path string, reload bool) tea.Cmd {
	return func() tea.Msg {
		text, err := fileio.ReadDocument(fs, path)
		return documentReadMsg{path: path, text: text, reload: reload, err: err}
	}
}

func saveDocument(text string, primary, fallback fileio.Saver) tea.Cmd {
	return func() tea.Msg {
		target, err := fileio.SaveWithFallback(context.Background(), text, primary, fallback)
		return savedMsg{target: target, err: err}
	}
}

// waitForChange blocks until the watcher reports a change. It is re-armed
// after every change.
func waitForChange(w *watch.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case change := <-w.Changes():
			return watchMsg(change)
		case <-w.Done():
			return nil
		}
	}
}

func readClipboard(c Clipboard) tea.Cmd {
	return func() tea.Msg {
		text, err := c.ReadAll()
		return clipboardReadMsg{text: text, err: err}
	}
}

func writeClipboard(c Clipboard, text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardWrittenMsg{err: c.WriteAll(text)}
	}
}
