// Package workbook is the bundled spreadsheet engine. It stores cells in an
// in-memory excelize workbook and delegates formula evaluation and display
// formatting to excelize's calculation engine.
package workbook

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/efp"
	"github.com/xuri/excelize/v2"

	"github.com/Iron-Ham/sheetview/internal/engine"
	"github.com/Iron-Ham/sheetview/internal/errors"
	"github.com/Iron-Ham/sheetview/internal/logging"
	"github.com/Iron-Ham/sheetview/internal/s2v"
)

// Name is the registry name of this engine.
const Name = "workbook"

// DefaultSheet is the worksheet every document lives on.
const DefaultSheet = "Sheet1"

// errorDisplay is shown for a failed evaluation that produced no error token.
const errorDisplay = "#ERR"

type cellKey struct{ row, col int }

// Engine implements engine.Engine and every optional capability.
// It is safe for concurrent use.
type Engine struct {
	mu     sync.RWMutex
	file   *excelize.File
	sheet  string
	raw    map[cellKey]string
	refs   map[cellKey][]cellKey
	async  bool
	gen    uint64
	logger *logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSyncLoad makes LoadDocument apply the document before returning.
func WithSyncLoad() Option {
	return func(e *Engine) { e.async = false }
}

// WithAsyncLoad makes LoadDocument ingest the document on a background goroutine.
func WithAsyncLoad(async bool) Option {
	return func(e *Engine) { e.async = async }
}

// WithLogger sets the logger used for ingestion diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l.WithComponent("engine")
		}
	}
}

// New creates an empty engine. Loads are asynchronous unless WithSyncLoad is given.
func New(opts ...Option) *Engine {
	e := &Engine{
		sheet:  DefaultSheet,
		async:  true,
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.file = excelize.NewFile()
	e.raw = make(map[cellKey]string)
	e.refs = make(map[cellKey][]cellKey)
	return e
}

// Register adds the workbook engine to reg under Name.
func Register(reg *engine.Registry, opts ...Option) {
	reg.Register(Name, func() (engine.Engine, error) {
		return New(opts...), nil
	})
}

// RowCount returns the largest row that is populated or referenced by a formula.
func (e *Engine) RowCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rows, _ := e.extent()
	return rows
}

// ColumnCount returns the largest column that is populated or referenced by a formula.
func (e *Engine) ColumnCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, cols := e.extent()
	return cols
}

// MaxRows is the worksheet row limit.
func (e *Engine) MaxRows() int { return excelize.TotalRows }

// MaxColumns is the worksheet column limit (XFD).
func (e *Engine) MaxColumns() int { return excelize.MaxColumns }

func (e *Engine) extent() (rows, cols int) {
	for k := range e.raw {
		rows, cols = max(rows, k.row), max(cols, k.col)
	}
	for _, refs := range e.refs {
		for _, k := range refs {
			rows, cols = max(rows, k.row), max(cols, k.col)
		}
	}
	return rows, cols
}

// CellDisplay returns the evaluated, formatted value of a cell.
func (e *Engine) CellDisplay(row, col int) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	display, _ := e.display(row, col)
	return display
}

// IsCellError reports whether a formula cell evaluated to an error.
func (e *Engine) IsCellError(row, col int) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, isErr := e.display(row, col)
	return isErr
}

func (e *Engine) display(row, col int) (string, bool) {
	content, ok := e.raw[cellKey{row, col}]
	if !ok {
		return "", false
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", false
	}
	if !s2v.IsFormula(content) {
		value, err := e.file.GetCellValue(e.sheet, cell)
		if err != nil {
			return content, false
		}
		return value, false
	}
	result, err := e.file.CalcCellValue(e.sheet, cell)
	if err != nil {
		if result == "" {
			result = errorDisplay
		}
		return result, true
	}
	return result, strings.HasPrefix(result, "#")
}

// CellContent returns the text last written to a cell.
func (e *Engine) CellContent(row, col int) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.raw[cellKey{row, col}]
}

// SetCellContent writes one cell. Numeric literals are stored as numbers so
// formulas can use them; "" clears the cell.
func (e *Engine) SetCellContent(row, col int, content string) error {
	if row < 1 || col < 1 {
		return errors.NewValidationError("cell address must be positive").WithValue([2]int{row, col})
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set(row, col, content)
}

// set writes one cell. The caller must hold the write lock.
func (e *Engine) set(row, col int, content string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return errors.NewValidationError("cell address out of range").WithCause(err)
	}
	k := cellKey{row, col}

	switch {
	case content == "":
		err = e.file.SetCellValue(e.sheet, cell, nil)
	case s2v.IsFormula(content):
		err = e.file.SetCellFormula(e.sheet, cell, strings.TrimPrefix(content, "="))
	default:
		if n, numErr := strconv.ParseFloat(strings.TrimSpace(content), 64); numErr == nil {
			err = e.file.SetCellValue(e.sheet, cell, n)
		} else {
			err = e.file.SetCellStr(e.sheet, cell, content)
		}
	}
	if err != nil {
		return errors.Wrapf(errors.ErrCellRejected, "%s: %v", cell, err)
	}

	delete(e.refs, k)
	if content == "" {
		delete(e.raw, k)
		return nil
	}
	e.raw[k] = content
	if s2v.IsFormula(content) {
		if refs := formulaRefs(content); len(refs) > 0 {
			e.refs[k] = refs
		}
	}
	return nil
}

// formulaRefs returns every single-cell coordinate named by the formula,
// including both corners of a range.
func formulaRefs(formula string) []cellKey {
	var refs []cellKey
	p := efp.ExcelParser()
	for _, tok := range p.Parse(formula) {
		if tok.TType != efp.TokenTypeOperand || tok.TSubType != efp.TokenSubTypeRange {
			continue
		}
		ref := tok.TValue
		if i := strings.LastIndex(ref, "!"); i >= 0 {
			ref = ref[i+1:]
		}
		for _, part := range strings.Split(ref, ":") {
			col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(part, "$", ""))
			if err != nil {
				continue
			}
			refs = append(refs, cellKey{row, col})
		}
	}
	return refs
}

// NonEmptyCellAddresses lists populated cells in row-major order, one A1
// address per line.
func (e *Engine) NonEmptyCellAddresses() string {
	e.mu.RLock()
	keys := make([]cellKey, 0, len(e.raw))
	for k := range e.raw {
		keys = append(keys, k)
	}
	e.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].row != keys[j].row {
			return keys[i].row < keys[j].row
		}
		return keys[i].col < keys[j].col
	})
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		if name, err := excelize.CoordinatesToCellName(k.col, k.row); err == nil {
			lines = append(lines, name)
		}
	}
	return strings.Join(lines, "\n")
}

// LoadDocument replaces the document with S2V text. The engine is cleared
// immediately; in async mode cells appear once the background ingestion
// finishes. A newer load or Reset supersedes an unfinished one.
func (e *Engine) LoadDocument(text string) error {
	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.clear()
	if !e.async {
		defer e.mu.Unlock()
		return e.ingest(text)
	}
	e.mu.Unlock()

	go func() {
		rows := s2v.Parse(text)
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.gen != gen {
			e.logger.Debug("discarding superseded load", "generation", gen)
			return
		}
		if err := e.ingestRows(rows); err != nil {
			e.logger.Warn("document ingestion incomplete", "error", err)
		}
	}()
	return nil
}

// ingest applies text. The caller must hold the write lock.
func (e *Engine) ingest(text string) error {
	return e.ingestRows(s2v.Parse(text))
}

func (e *Engine) ingestRows(rows [][]string) error {
	var errs []error
	for r, cells := range rows {
		for c, content := range cells {
			if content == "" {
				continue
			}
			if err := e.set(r+1, c+1, content); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Reset clears the document and cancels any unfinished load.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.clear()
}

// clear drops every cell. The caller must hold the write lock.
func (e *Engine) clear() {
	if e.file != nil {
		_ = e.file.Close()
	}
	e.file = excelize.NewFile()
	e.raw = make(map[cellKey]string)
	e.refs = make(map[cellKey][]cellKey)
}

// WriteXLSX writes the document as an .xlsx workbook.
func (e *Engine) WriteXLSX(w io.Writer) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.file.Write(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

// Close releases the underlying workbook.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.file.Close()
}
