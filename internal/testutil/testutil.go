// Package testutil provides testing utilities for sheetview tests.
package testutil

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/sheetview/internal/s2v"
)

type key struct{ row, col int }

// FakeEngine is an in-memory engine implementing every optional capability.
//
// Literal cells display their content. Formula cells display whatever was
// registered with SetDisplay, else "". When Async is set, LoadDocument
// stores the text and nothing changes until Settle is called.
type FakeEngine struct {
	mu sync.Mutex

	cells    map[key]string
	displays map[key]string
	errs     map[key]bool

	// MinRows and MinCols raise the reported extent past the populated cells.
	MinRows int
	MinCols int

	// MaxRowsLimit and MaxColsLimit are reported through MaxRows and
	// MaxColumns; zero means unlimited.
	MaxRowsLimit int
	MaxColsLimit int

	Async   bool
	pending *string

	// SetErr, when non-nil, is returned by SetCellContent without applying it.
	SetErr error

	SetCalls   int
	LoadCalls  int
	ResetCalls int
}

// NewFakeEngine creates an empty FakeEngine.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		cells:    make(map[key]string),
		displays: make(map[key]string),
		errs:     make(map[key]bool),
	}
}

// RowCount returns the highest populated row, or MinRows if larger.
func (f *FakeEngine) RowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.MinRows
	for k := range f.cells {
		n = max(n, k.row)
	}
	return n
}

// ColumnCount returns the highest populated column, or MinCols if larger.
func (f *FakeEngine) ColumnCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.MinCols
	for k := range f.cells {
		n = max(n, k.col)
	}
	return n
}

// MaxRows returns MaxRowsLimit.
func (f *FakeEngine) MaxRows() int { return f.MaxRowsLimit }

// MaxColumns returns MaxColsLimit.
func (f *FakeEngine) MaxColumns() int { return f.MaxColsLimit }

// CellDisplay returns the display text for a cell.
func (f *FakeEngine) CellDisplay(row, col int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key{row, col}
	if d, ok := f.displays[k]; ok {
		return d
	}
	content := f.cells[k]
	if s2v.IsFormula(content) {
		return ""
	}
	return content
}

// CellContent returns the raw content for a cell.
func (f *FakeEngine) CellContent(row, col int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cells[key{row, col}]
}

// SetCellContent stores content, deleting the cell when content is "".
func (f *FakeEngine) SetCellContent(row, col int, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SetCalls++
	if f.SetErr != nil {
		return f.SetErr
	}
	f.set(row, col, content)
	return nil
}

func (f *FakeEngine) set(row, col int, content string) {
	k := key{row, col}
	delete(f.displays, k)
	delete(f.errs, k)
	if content == "" {
		delete(f.cells, k)
		return
	}
	f.cells[k] = content
}

// SetDisplay overrides the display value of a cell.
func (f *FakeEngine) SetDisplay(row, col int, display string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.displays[key{row, col}] = display
}

// SetError sets the error flag of a cell.
func (f *FakeEngine) SetError(row, col int, isErr bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[key{row, col}] = isErr
}

// IsCellError reports the error flag set with SetError.
func (f *FakeEngine) IsCellError(row, col int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[key{row, col}]
}

// NonEmptyCellAddresses lists populated cells as A1 addresses, one per line.
func (f *FakeEngine) NonEmptyCellAddresses() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]key, 0, len(f.cells))
	for k := range f.cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].row != keys[j].row {
			return keys[i].row < keys[j].row
		}
		return keys[i].col < keys[j].col
	})
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = a1(k.row, k.col)
	}
	return strings.Join(lines, "\n")
}

// LoadDocument replaces all cells from S2V text, or defers that to Settle
// when Async is set.
func (f *FakeEngine) LoadDocument(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoadCalls++
	if f.Async {
		f.pending = &text
		f.clear()
		return nil
	}
	f.apply(text)
	return nil
}

// Settle applies a document deferred by an async LoadDocument.
func (f *FakeEngine) Settle() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending != nil {
		f.apply(*f.pending)
		f.pending = nil
	}
}

// Reset clears every cell.
func (f *FakeEngine) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ResetCalls++
	f.pending = nil
	f.clear()
}

func (f *FakeEngine) clear() {
	f.cells = make(map[key]string)
	f.displays = make(map[key]string)
	f.errs = make(map[key]bool)
}

func (f *FakeEngine) apply(text string) {
	f.clear()
	s2v.Walk(text, func(row, col int, content string) {
		f.set(row, col, content)
	})
}

func a1(row, col int) string {
	var label []byte
	for c := col; c > 0; c = (c - 1) / 26 {
		label = append([]byte{byte('A' + (c-1)%26)}, label...)
	}
	return fmt.Sprintf("%s%d", label, row)
}

// MandatoryEngine exposes only the mandatory engine methods of an engine,
// hiding every optional capability from type assertions.
type MandatoryEngine struct {
	inner interface {
		RowCount() int
		ColumnCount() int
		CellDisplay(row, col int) string
		CellContent(row, col int) string
		SetCellContent(row, col int, content string) error
	}
}

// Mandatory wraps f so only the mandatory methods are visible.
func Mandatory(f *FakeEngine) *MandatoryEngine {
	return &MandatoryEngine{inner: f}
}

func (m *MandatoryEngine) RowCount() int                   { return m.inner.RowCount() }
func (m *MandatoryEngine) ColumnCount() int                { return m.inner.ColumnCount() }
func (m *MandatoryEngine) CellDisplay(row, col int) string { return m.inner.CellDisplay(row, col) }
func (m *MandatoryEngine) CellContent(row, col int) string { return m.inner.CellContent(row, col) }
func (m *MandatoryEngine) SetCellContent(row, col int, content string) error {
	return m.inner.SetCellContent(row, col, content)
}

// LoaderOnlyEngine adds DocumentLoader to the mandatory methods, without Resetter.
type LoaderOnlyEngine struct {
	*MandatoryEngine
	f *FakeEngine
}

// LoaderOnly wraps f so only the mandatory methods and LoadDocument are visible.
func LoaderOnly(f *FakeEngine) *LoaderOnlyEngine {
	return &LoaderOnlyEngine{MandatoryEngine: Mandatory(f), f: f}
}

// LoadDocument forwards to the wrapped FakeEngine.
func (l *LoaderOnlyEngine) LoadDocument(text string) error {
	return l.f.LoadDocument(text)
}

// NewMemFs returns an in-memory filesystem seeded with files (path → content).
func NewMemFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to seed %s: %v", path, err)
		}
	}
	return fs
}
