// Package watch reports on-disk changes to the open document.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/sheetview/internal/errors"
	"github.com/Iron-Ham/sheetview/internal/logging"
)

// DefaultDebounce collapses the burst of events editors emit for one save.
const DefaultDebounce = 50 * time.Millisecond

// Change is one debounced modification of the watched document.
type Change struct {
	Path    string
	Removed bool
	At      time.Time
}

// Watcher watches a single file. It watches the file's directory so that
// saves done by rename (as most editors and our own atomic writes do) are
// still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	logger   *logging.Logger

	changes chan Change

	mu          sync.Mutex
	ignoreUntil time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

// New starts watching path. Changes arrive on Changes() until Stop.
func New(path string, logger *logging.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve path")
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, errors.Wrap(err, "document does not exist")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create watcher")
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, errors.Wrap(err, "failed to watch directory")
	}
	if logger == nil {
		logger = logging.NopLogger()
	}

	w := &Watcher{
		watcher:  fw,
		path:     abs,
		debounce: DefaultDebounce,
		logger:   logger.WithComponent("watch").WithDocument(abs),
		changes:  make(chan Change, 1),
		stopCh:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Changes delivers debounced changes. Only the latest undelivered change
// is kept.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Done is closed by Stop.
func (w *Watcher) Done() <-chan struct{} {
	return w.stopCh
}

// IgnoreFor drops changes seen within d from now, used around our own saves.
func (w *Watcher) IgnoreFor(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ignoreUntil = time.Now().Add(d)
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
	})
}

func (w *Watcher) loop() {
	timer := time.NewTimer(0)
	<-timer.C

	var pending *Change
	for {
		select {
		case <-w.stopCh:
			timer.Stop()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			pending = &Change{
				Path:    w.path,
				Removed: event.Op&(fsnotify.Remove|fsnotify.Rename) != 0,
				At:      time.Now(),
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			if pending == nil {
				continue
			}
			change := *pending
			pending = nil
			if _, err := os.Stat(w.path); err == nil {
				// A rename-over leaves the document in place.
				change.Removed = false
			}
			w.emit(change)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watch error", "error", err)
		}
	}
}

func (w *Watcher) emit(c Change) {
	w.mu.Lock()
	ignored := c.At.Before(w.ignoreUntil)
	w.mu.Unlock()
	if ignored {
		w.logger.Debug("own write ignored")
		return
	}

	select {
	case <-w.changes:
	default:
	}
	select {
	case w.changes <- c:
	default:
	}
}
