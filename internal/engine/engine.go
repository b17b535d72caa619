// Package engine defines the contract between the grid view and the
// spreadsheet computation engine, and the Bridge that adapts any
// implementation of it for the view.
//
// An engine must implement Engine. The remaining interfaces are optional
// capabilities; the Bridge discovers them once, at construction, and falls
// back to a reduced behavior when one is missing.
package engine

// Engine is the mandatory capability set. All coordinates are 1-based.
type Engine interface {
	// RowCount and ColumnCount report the engine's authoritative extent.
	RowCount() int
	ColumnCount() int
	// CellDisplay returns the formatted value, or "" for an empty cell.
	CellDisplay(row, col int) string
	// CellContent returns the raw editable text (literal or formula).
	CellContent(row, col int) string
	// SetCellContent replaces one cell. Recalculation may still be settling
	// when it returns; callers re-query display values afterward.
	SetCellContent(row, col int, content string) error
}

// ErrorReporter marks cells whose evaluation produced an error value.
type ErrorReporter interface {
	IsCellError(row, col int) bool
}

// CellLister lists populated cells, one A1 address per line.
type CellLister interface {
	NonEmptyCellAddresses() string
}

// DocumentLoader replaces the whole document from S2V text. Completion is
// not signaled; callers poll the extent and population afterward.
type DocumentLoader interface {
	LoadDocument(s2v string) error
}

// Resetter clears the engine to an empty document.
type Resetter interface {
	Reset()
}

// Bounded reports the largest sheet the engine can address. A
// non-positive value means that axis has no limit of its own.
type Bounded interface {
	MaxRows() int
	MaxColumns() int
}

// Capabilities records which optional interfaces an engine provides.
type Capabilities struct {
	Errors bool
	Lister bool
	Loader bool
	Reset  bool
	Bounds bool
}

// Probe reports the optional capabilities of e.
func Probe(e Engine) Capabilities {
	if e == nil {
		return Capabilities{}
	}
	_, errs := e.(ErrorReporter)
	_, lister := e.(CellLister)
	_, loader := e.(DocumentLoader)
	_, reset := e.(Resetter)
	_, bounds := e.(Bounded)
	return Capabilities{Errors: errs, Lister: lister, Loader: loader, Reset: reset, Bounds: bounds}
}
