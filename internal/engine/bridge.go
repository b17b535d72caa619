package engine

import (
	"io"
	"strings"

	"github.com/Iron-Ham/sheetview/internal/errors"
)

// Bridge wraps an Engine for the view. A Bridge built without an engine is
// "unavailable": every query returns a zero value and every mutation is a
// no-op, so the view stays inert instead of failing.
type Bridge struct {
	name string
	eng  Engine
	caps Capabilities

	errs   ErrorReporter
	lister CellLister
	loader DocumentLoader
	reset  Resetter
	bounds Bounded
}

// NewBridge adapts e. A nil engine yields an unavailable bridge.
func NewBridge(name string, e Engine) *Bridge {
	b := &Bridge{name: name, eng: e, caps: Probe(e)}
	if e == nil {
		return b
	}
	b.errs, _ = e.(ErrorReporter)
	b.lister, _ = e.(CellLister)
	b.loader, _ = e.(DocumentLoader)
	b.reset, _ = e.(Resetter)
	b.bounds, _ = e.(Bounded)
	return b
}

// Unavailable returns a bridge with no engine behind it.
func Unavailable() *Bridge {
	return NewBridge("", nil)
}

// Available reports whether an engine is attached.
func (b *Bridge) Available() bool {
	return b != nil && b.eng != nil
}

// Name returns the registry name the engine was resolved under.
func (b *Bridge) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// Engine returns the wrapped engine, nil when unavailable.
func (b *Bridge) Engine() Engine {
	if b == nil {
		return nil
	}
	return b.eng
}

// Close releases the engine if it holds resources.
func (b *Bridge) Close() error {
	if c, ok := b.Engine().(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Capabilities returns the optional capabilities found on the engine.
func (b *Bridge) Capabilities() Capabilities {
	if b == nil {
		return Capabilities{}
	}
	return b.caps
}

// RowCount returns the engine's row count, or 0 when unavailable.
func (b *Bridge) RowCount() int {
	if !b.Available() {
		return 0
	}
	return max(0, b.eng.RowCount())
}

// ColumnCount returns the engine's column count, or 0 when unavailable.
func (b *Bridge) ColumnCount() int {
	if !b.Available() {
		return 0
	}
	return max(0, b.eng.ColumnCount())
}

// MaxExtent returns the engine's addressable rows and columns. Zero on an
// axis means the engine reported no limit, or has no Bounded capability.
func (b *Bridge) MaxExtent() (rows, cols int) {
	if !b.Available() || b.bounds == nil {
		return 0, 0
	}
	return max(0, b.bounds.MaxRows()), max(0, b.bounds.MaxColumns())
}

// CellDisplay returns the display text for a cell.
func (b *Bridge) CellDisplay(row, col int) string {
	if !b.Available() {
		return ""
	}
	return b.eng.CellDisplay(row, col)
}

// CellContent returns the raw content for a cell.
func (b *Bridge) CellContent(row, col int) string {
	if !b.Available() {
		return ""
	}
	return b.eng.CellContent(row, col)
}

// SetCellContent forwards a mutation to the engine.
func (b *Bridge) SetCellContent(row, col int, content string) error {
	if !b.Available() {
		return errors.NewEngineError("engine not ready", errors.ErrEngineUnavailable)
	}
	if err := b.eng.SetCellContent(row, col, content); err != nil {
		return errors.NewEngineError("cell update failed", err).WithEngine(b.name)
	}
	return nil
}

// IsCellError reports the engine's error flag; false without the capability.
func (b *Bridge) IsCellError(row, col int) bool {
	if !b.Available() || b.errs == nil {
		return false
	}
	return b.errs.IsCellError(row, col)
}

// PopulatedCount is the number of non-blank lines in NonEmptyCellAddresses,
// or 0 when the engine cannot list cells.
func (b *Bridge) PopulatedCount() int {
	if !b.Available() || b.lister == nil {
		return 0
	}
	n := 0
	for _, line := range strings.Split(b.lister.NonEmptyCellAddresses(), "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// HasContent reports whether any cell is populated. Without CellLister a
// non-empty extent counts as populated.
func (b *Bridge) HasContent() bool {
	if !b.Available() {
		return false
	}
	if b.lister != nil {
		return b.PopulatedCount() > 0
	}
	return b.RowCount() > 0 && b.ColumnCount() > 0
}

// LoadDocument replaces the engine's document with s2v text.
func (b *Bridge) LoadDocument(s2v string) error {
	if !b.Available() {
		return errors.NewEngineError("engine not ready", errors.ErrEngineUnavailable)
	}
	if b.loader == nil {
		return errors.NewEngineError("cannot load documents", errors.ErrLoadUnsupported).WithEngine(b.name)
	}
	if err := b.loader.LoadDocument(s2v); err != nil {
		return errors.NewEngineError("document load failed", err).WithEngine(b.name)
	}
	return nil
}

// Reset clears the engine, through Resetter when present, else by loading
// an empty document. Engines with neither are left untouched.
func (b *Bridge) Reset() {
	if !b.Available() {
		return
	}
	switch {
	case b.reset != nil:
		b.reset.Reset()
	case b.loader != nil:
		_ = b.loader.LoadDocument("")
	}
}
