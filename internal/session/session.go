package session

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/sheetview/internal/errors"
	"github.com/Iron-Ham/sheetview/internal/logging"
)

// EnvSession overrides the session id.
const EnvSession = "SHEETVIEW_SESSION"

// SessionsDir is the directory under the state directory holding one
// subdirectory per session.
const SessionsDir = "sessions"

// SampleMarker is the key recording that the sample was shown.
const SampleMarker = "sample-loaded"

// ID returns the current session id: SHEETVIEW_SESSION when set, else the
// parent process id.
func ID() string {
	if v := sanitize(os.Getenv(EnvSession)); v != "" {
		return v
	}
	return strconv.Itoa(os.Getppid())
}

// sanitize keeps ids usable as a single path element.
func sanitize(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || id == "." || id == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, id)
}

// GetSessionsDir returns the sessions directory under stateDir.
func GetSessionsDir(stateDir string) string {
	return filepath.Join(stateDir, SessionsDir)
}

// Marker records per-session flags. Storage failures never surface: a
// marker that cannot be read counts as unset and a failed write is logged.
type Marker struct {
	store  *Store
	id     string
	logger *logging.Logger
}

// NewMarker returns the marker of session id under stateDir.
func NewMarker(fs afero.Fs, stateDir, id string, logger *logging.Logger) *Marker {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Marker{
		store:  NewStore(fs, GetSessionsDir(stateDir)),
		id:     id,
		logger: logger.WithSession(id),
	}
}

// ID returns the session id.
func (m *Marker) ID() string {
	return m.id
}

// SampleLoaded reports whether the sample was already shown in this session.
func (m *Marker) SampleLoaded() bool {
	ok, err := m.store.Exists(m.key(SampleMarker))
	if err != nil {
		m.logger.Debug("sample marker unreadable", "error", err)
		return false
	}
	return ok
}

// MarkSampleLoaded records that the sample was shown.
func (m *Marker) MarkSampleLoaded() {
	if err := m.store.Save(m.key(SampleMarker), []byte("1")); err != nil {
		m.logger.Debug("sample marker not saved", "error", err)
	}
}

// Forget clears the sample marker so the next launch shows it again.
func (m *Marker) Forget() error {
	if err := m.store.Delete(m.key(SampleMarker)); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func (m *Marker) key(name string) string {
	return m.id + "/" + name
}

// Info describes one stored session.
type Info struct {
	ID           string
	SampleLoaded bool
	// PID is the process the session is named after, 0 for named sessions.
	PID int
}

// List returns the sessions stored under stateDir in id order.
func List(fs afero.Fs, stateDir string) ([]Info, error) {
	keys, err := NewStore(fs, GetSessionsDir(stateDir)).List("")
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Info)
	var ids []string
	for _, key := range keys {
		id, name, ok := strings.Cut(key, "/")
		if !ok {
			continue
		}
		info, seen := byID[id]
		if !seen {
			info = &Info{ID: id}
			if pid, err := strconv.Atoi(id); err == nil && pid > 0 {
				info.PID = pid
			}
			byID[id] = info
			ids = append(ids, id)
		}
		if name == SampleMarker {
			info.SampleLoaded = true
		}
	}

	sort.Strings(ids)
	out := make([]Info, 0, len(ids))
	for _, id := range ids {
		out = append(out, *byID[id])
	}
	return out, nil
}

// Prune removes session directories named after a process id that is no
// longer running. Other directories are left alone. It returns how many
// were removed.
func Prune(fs afero.Fs, stateDir string, alive func(pid int) bool) (int, error) {
	if alive == nil {
		alive = IsProcessAlive
	}
	dir := GetSessionsDir(stateDir)
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid <= 0 || alive(pid) {
			continue
		}
		if err := fs.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// IsProcessAlive reports whether pid names a running process.
func IsProcessAlive(pid int) bool {
	// Signal 0 checks for existence without affecting the process.
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
