package grid

import (
	"context"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Iron-Ham/sheetview/internal/config"
	"github.com/Iron-Ham/sheetview/internal/engine"
	"github.com/Iron-Ham/sheetview/internal/errors"
	"github.com/Iron-Ham/sheetview/internal/logging"
	"github.com/Iron-Ham/sheetview/internal/retry"
	"github.com/Iron-Ham/sheetview/internal/s2v"
)

// Status and metadata texts shown outside a loaded sheet.
const (
	NotReadyStatus  = "Spreadsheet engine not ready"
	NoSelectionMeta = "No cell selected"
)

// DefaultLoadPolicy is the decode poll budget: twelve frames of ~16ms.
var DefaultLoadPolicy = retry.Policy{MaxAttempts: 12, Interval: 16 * time.Millisecond}

// LoadPolicyFromConfig converts the load section of the configuration.
func LoadPolicyFromConfig(c config.LoadConfig) retry.Policy {
	return retry.Policy{MaxAttempts: c.MaxAttempts, Interval: c.FrameInterval()}
}

// Viewport is the visible window over the grid. Top and Left are 0-based
// offsets of the first visible row and column; Rows and Cols are how many
// fit on screen. A zero-sized viewport disables scrolling logic.
type Viewport struct {
	Top  int
	Left int
	Rows int
	Cols int
}

// Controller owns the view state of one sheet: extent, rendered surface,
// selection, formula bar and decode poll. It is not safe for concurrent
// use; all calls come from the UI loop.
type Controller struct {
	bridge  *engine.Bridge
	editor  EditSurface
	size    *SizeManager
	surface *Surface
	sel     Selection
	view    Viewport
	logger  *logging.Logger

	loadPolicy retry.Policy
	load       *retry.Tracker

	status string
	notice string
	meta   string
}

// Option configures a Controller.
type Option func(*Controller)

// WithPolicy sets the extent growth policy.
func WithPolicy(p Policy) Option {
	return func(c *Controller) { c.size = NewSizeManager(p) }
}

// WithLoadPolicy sets the decode poll budget.
func WithLoadPolicy(p retry.Policy) Option {
	return func(c *Controller) { c.loadPolicy = p }
}

// WithLogger sets the controller's logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l.WithComponent("grid")
		}
	}
}

// New creates a controller over bridge, using editor as the formula bar.
// A nil bridge is treated as an unavailable engine.
func New(bridge *engine.Bridge, editor EditSurface, opts ...Option) *Controller {
	if bridge == nil {
		bridge = engine.Unavailable()
	}
	if editor == nil {
		editor = NewBufferEditor()
	}
	c := &Controller{
		bridge:     bridge,
		editor:     editor,
		size:       NewSizeManager(DefaultPolicy()),
		surface:    NewSurface(),
		logger:     logging.NopLogger(),
		loadPolicy: DefaultLoadPolicy,
		meta:       NoSelectionMeta,
	}
	for _, opt := range opts {
		opt(c)
	}
	maxRows, maxCols := bridge.MaxExtent()
	c.size.SetLimit(Extent{Rows: maxRows, Cols: maxCols})
	c.surface.RebuildFull(c.size.Extent())
	c.updateStatus()
	return c
}

// Available reports whether an engine is attached. Without one every
// interaction is a no-op.
func (c *Controller) Available() bool { return c.bridge.Available() }

// Bridge returns the engine bridge.
func (c *Controller) Bridge() *engine.Bridge { return c.bridge }

// Extent returns the logical grid extent.
func (c *Controller) Extent() Extent { return c.size.Extent() }

// GrowthState returns whether edge growth is waiting for a frame.
func (c *Controller) GrowthState() GrowthState { return c.size.State() }

// Surface returns the rendered surface for drawing.
func (c *Controller) Surface() *Surface { return c.surface }

// Selected returns the active cell, if any.
func (c *Controller) Selected() (Address, bool) { return c.sel.Active() }

// EditState returns the formula bar sub-state.
func (c *Controller) EditState() EditState { return c.sel.Edit() }

// Viewport returns the visible window.
func (c *Controller) Viewport() Viewport { return c.view }

// Status returns the grid summary line.
func (c *Controller) Status() string { return c.status }

// Meta returns the selected cell's label, or NoSelectionMeta.
func (c *Controller) Meta() string { return c.meta }

// Notice returns the latest user-facing message.
func (c *Controller) Notice() string { return c.notice }

// SetNotice replaces the user-facing message.
func (c *Controller) SetNotice(format string, args ...any) {
	c.notice = fmt.Sprintf(format, args...)
}

// ReportError sets the notice from err, falling back to fallback for
// errors that are not meant for users.
func (c *Controller) ReportError(err error, fallback string) {
	if errors.IsUserFacing(err) {
		c.logger.Warn(fallback, "error", err)
	} else {
		c.logger.Error(fallback, "error", err)
	}
	c.notice = errors.StatusText(err, fallback)
}

// Limit returns the largest extent the view grows to.
func (c *Controller) Limit() Extent { return c.size.Limit() }

// SetPolicy swaps the growth policy without shrinking the extent.
func (c *Controller) SetPolicy(p Policy) { c.size.SetPolicy(p) }

// SetLoadPolicy swaps the decode poll budget for later loads.
func (c *Controller) SetLoadPolicy(p retry.Policy) { c.loadPolicy = p }

// Reset clears the engine and returns the view to its default extent
// with nothing selected.
func (c *Controller) Reset() {
	c.load = nil
	c.bridge.Reset()
	c.size.Reset()
	c.surface.RebuildFull(c.size.Extent())
	c.clearSelection()
	c.view.Top, c.view.Left = 0, 0
	c.refreshAll()
	c.updateStatus()
	c.logger.Debug("sheet reset", "rows", c.size.Extent().Rows, "cols", c.size.Extent().Cols)
}

// Click selects a rendered cell, committing any edit in progress first.
// Clicks outside the rendered surface are ignored.
func (c *Controller) Click(a Address) {
	if !c.Available() || c.surface.Cell(a) == nil {
		return
	}
	c.Blur()
	c.selectCell(a)
}

// JumpTo commits any edit in progress and selects a, growing the extent
// when a lies outside it. Addresses past the engine's limit select the
// nearest cell inside it.
func (c *Controller) JumpTo(a Address) {
	if !c.Available() {
		return
	}
	c.Blur()
	c.selectCell(a.Offset(0, 0))
}

// Move shifts the selection by (dRow, dCol), clamped at row 1 and column 1.
// With nothing selected, (1,1) is selected first and the move still applies.
func (c *Controller) Move(dRow, dCol int) {
	if !c.Available() {
		return
	}
	if c.editor.Focused() {
		c.Blur()
	}
	c.move(dRow, dCol)
}

func (c *Controller) move(dRow, dCol int) {
	cur, ok := c.sel.Active()
	if !ok {
		cur = Address{Row: 1, Col: 1}
		c.selectCell(cur)
	}
	c.selectCell(cur.Offset(dRow, dCol))
	c.checkEdges(dRow > 0, dCol > 0)
}

// TypeRune starts an edit seeded with r when a cell is selected and the
// formula bar is not focused. The cursor lands after r. It reports whether
// the rune was consumed.
func (c *Controller) TypeRune(r rune) bool {
	if !c.Available() || c.editor.Focused() || !unicode.IsPrint(r) {
		return false
	}
	if _, ok := c.sel.Active(); !ok {
		return false
	}
	seed := string(r)
	c.editor.Focus()
	c.editor.SetValue(seed)
	c.editor.SetCursor(utf8.RuneCountInString(seed))
	c.sel.setEdit(Editing)
	return true
}

// StartEdit focuses the formula bar on the selected cell's content with
// the cursor at the end.
func (c *Controller) StartEdit() bool {
	if !c.Available() {
		return false
	}
	if _, ok := c.sel.Active(); !ok {
		return false
	}
	c.editor.Focus()
	c.editor.SetCursor(utf8.RuneCountInString(c.editor.Value()))
	c.sel.setEdit(Editing)
	return true
}

// CancelEdit drops the formula bar input and restores the cell's content.
func (c *Controller) CancelEdit() {
	c.editor.Blur()
	c.sel.setEdit(EditIdle)
	if a, ok := c.sel.Active(); ok {
		c.editor.SetValue(c.bridge.CellContent(a.Row, a.Col))
	}
}

// Blur takes focus away from the formula bar, committing its content to
// the selected cell unless a commit-and-move already did.
func (c *Controller) Blur() {
	state := c.sel.Edit()
	focused := c.editor.Focused()
	c.editor.Blur()
	c.sel.setEdit(EditIdle)

	if state == CommitInFlight || (state != Editing && !focused) {
		return
	}
	if a, ok := c.sel.Active(); ok && c.Available() {
		c.commit(a, c.editor.Value())
	}
}

// CommitAndMove applies the formula bar to the selected cell, moves the
// selection and leaves the formula bar. This is Enter and Tab while editing.
func (c *Controller) CommitAndMove(dRow, dCol int) {
	a, ok := c.sel.Active()
	if !ok || !c.Available() {
		c.Blur()
		return
	}
	c.sel.setEdit(CommitInFlight)
	c.commit(a, c.editor.Value())
	c.move(dRow, dCol)
	c.Blur()
}

// ClearCell empties the selected cell through the commit path.
func (c *Controller) ClearCell() {
	c.SetSelectedContent("")
}

// SetSelectedContent commits content to the selected cell while the formula
// bar is not focused. It reports whether anything was committed.
func (c *Controller) SetSelectedContent(content string) bool {
	a, ok := c.sel.Active()
	if !ok || !c.Available() || c.editor.Focused() {
		return false
	}
	c.commit(a, content)
	return true
}

// SelectedContent returns the raw content of the selected cell.
func (c *Controller) SelectedContent() (string, bool) {
	a, ok := c.sel.Active()
	if !ok {
		return "", false
	}
	return c.bridge.CellContent(a.Row, a.Col), true
}

// commit writes one cell and brings extent, surface and status up to date.
// The engine may have grown from the edit, so the extent is reconciled
// before refreshing.
func (c *Controller) commit(a Address, content string) {
	if err := c.bridge.SetCellContent(a.Row, a.Col, content); err != nil {
		c.ReportError(err, "Cell update failed")
	}
	c.reconcile()
	c.refreshAll()
	c.updateStatus()
	if cur, ok := c.sel.Active(); ok && cur == a && !c.editor.Focused() {
		c.editor.SetValue(c.bridge.CellContent(a.Row, a.Col))
	}
}

func (c *Controller) selectCell(a Address) {
	a = c.size.Clamp(a)
	if c.size.EnsureCovers(a) {
		c.syncSurface()
		c.updateStatus()
	}
	c.sel.Set(a)
	c.surface.SetActive(&a)
	c.editor.SetValue(c.bridge.CellContent(a.Row, a.Col))
	c.meta = a.String()
	c.scrollIntoView(a)
}

func (c *Controller) clearSelection() {
	c.sel.Clear()
	c.surface.SetActive(nil)
	c.editor.Blur()
	c.editor.SetValue("")
	c.meta = NoSelectionMeta
}

func (c *Controller) reconcile() {
	if c.size.Reconcile(c.bridge.RowCount(), c.bridge.ColumnCount()) {
		c.syncSurface()
	}
}

// syncSurface catches the surface up with the extent and fills the new
// elements from the engine.
func (c *Controller) syncSurface() {
	for _, a := range c.surface.ExtendTo(c.size.Extent()) {
		c.surface.RefreshCell(a, c.bridge)
	}
	c.surface.SetActive(c.sel.Ptr())
}

func (c *Controller) refreshAll() {
	c.syncSurface()
	c.surface.RefreshAll(c.bridge)
	c.surface.SetActive(c.sel.Ptr())
}

func (c *Controller) updateStatus() {
	if !c.Available() {
		c.status = NotReadyStatus
		return
	}
	ext := c.size.Extent()
	if c.bridge.Capabilities().Lister {
		c.status = fmt.Sprintf("Rows: %d, Cols: %d, Cells: %d", ext.Rows, ext.Cols, c.bridge.PopulatedCount())
		return
	}
	c.status = fmt.Sprintf("Rows: %d, Cols: %d", ext.Rows, ext.Cols)
}

// RequestGrowth schedules edge growth for the next frame. It returns true
// when the caller must arrange for that frame; repeated requests before the
// frame merge into one growth step.
func (c *Controller) RequestGrowth(rows, cols bool) bool {
	if !c.Available() {
		return false
	}
	return c.size.Schedule(rows, cols)
}

// ApplyScheduledGrowth runs on a frame boundary and applies the pending
// growth step, if any.
func (c *Controller) ApplyScheduledGrowth() bool {
	if !c.size.ApplyScheduled() {
		return false
	}
	c.syncSurface()
	c.updateStatus()
	c.logger.Debug("extent grown", "rows", c.size.Extent().Rows, "cols", c.size.Extent().Cols)
	return true
}

// NeedsFrame reports whether growth or a decode poll is waiting on a frame.
func (c *Controller) NeedsFrame() bool {
	return c.size.State() == GrowthScheduled || c.Loading()
}

// SetViewportSize records how many rows and columns fit on screen.
func (c *Controller) SetViewportSize(rows, cols int) {
	c.view.Rows, c.view.Cols = max(0, rows), max(0, cols)
	c.clampViewport()
	if a, ok := c.sel.Active(); ok {
		c.scrollIntoView(a)
	}
}

// Scroll moves the viewport. Scrolling down or right near the extent edge
// schedules growth.
func (c *Controller) Scroll(dRows, dCols int) {
	c.view.Top += dRows
	c.view.Left += dCols
	c.clampViewport()
	c.checkEdges(dRows > 0, dCols > 0)
}

// PageRows is the number of rows a page move covers.
func (c *Controller) PageRows() int {
	return max(1, c.view.Rows)
}

func (c *Controller) clampViewport() {
	ext := c.size.Extent()
	c.view.Top = min(max(0, c.view.Top), max(0, ext.Rows-c.view.Rows))
	c.view.Left = min(max(0, c.view.Left), max(0, ext.Cols-c.view.Cols))
}

func (c *Controller) scrollIntoView(a Address) {
	if c.view.Rows > 0 {
		if a.Row-1 < c.view.Top {
			c.view.Top = a.Row - 1
		} else if a.Row > c.view.Top+c.view.Rows {
			c.view.Top = a.Row - c.view.Rows
		}
	}
	if c.view.Cols > 0 {
		if a.Col-1 < c.view.Left {
			c.view.Left = a.Col - 1
		} else if a.Col > c.view.Left+c.view.Cols {
			c.view.Left = a.Col - c.view.Cols
		}
	}
}

func (c *Controller) checkEdges(down, right bool) {
	if c.view.Rows == 0 || c.view.Cols == 0 || (!down && !right) {
		return
	}
	nearRows, nearCols := c.size.NearEdge(c.view.Top+c.view.Rows, c.view.Left+c.view.Cols)
	c.RequestGrowth(down && nearRows, right && nearCols)
}

// BeginLoad hands text to the engine and starts the decode poll. Any edit
// in progress is discarded. The extent is kept; it only grows from here.
func (c *Controller) BeginLoad(text string) error {
	if !c.Available() {
		return errors.NewEngineError("engine not ready", errors.ErrEngineUnavailable)
	}
	c.CancelEdit()
	if err := c.bridge.LoadDocument(text); err != nil {
		c.load = nil
		// The engine may have cleared or partly ingested the document.
		c.clearSelection()
		c.reconcile()
		c.refreshAll()
		c.updateStatus()
		c.ReportError(err, "Failed to load document")
		return err
	}
	c.load = retry.NewTracker(c.loadPolicy)
	c.logger.Debug("load started", "bytes", len(text), "max_attempts", c.loadPolicy.MaxAttempts)
	return nil
}

// Loading reports whether a decode poll is in progress.
func (c *Controller) Loading() bool { return c.load != nil }

// PollLoad runs one decode poll attempt: reconcile, refresh, and check for
// content. When the poll settles, (1,1) is selected if anything was loaded
// and the selection is cleared otherwise. Running out of attempts is not an
// error; the sheet just shows nothing.
func (c *Controller) PollLoad() retry.Outcome {
	if c.load == nil {
		return retry.Exhausted
	}
	// Checked before refreshing: a settled poll never leaves a stale surface.
	populated := c.bridge.HasContent()
	c.reconcile()
	c.refreshAll()
	c.updateStatus()

	outcome := c.load.Record(populated)
	if outcome == retry.Pending {
		return outcome
	}

	c.logger.Debug("load settled", "outcome", outcome.String(), "attempts", c.load.Attempts())
	c.load = nil
	if populated {
		c.selectCell(Address{Row: 1, Col: 1})
	} else {
		c.clearSelection()
	}
	return outcome
}

// LoadBlocking runs BeginLoad and polls once per load interval until the
// poll settles or ctx ends.
func (c *Controller) LoadBlocking(ctx context.Context, text string) (retry.Outcome, error) {
	if err := c.BeginLoad(text); err != nil {
		return retry.Pending, err
	}
	outcome := retry.Pending
	_, err := retry.Run(ctx, c.loadPolicy, func() bool {
		outcome = c.PollLoad()
		return outcome != retry.Pending
	})
	if err != nil {
		c.load = nil
	}
	return outcome, err
}

// Encode returns the sheet as S2V text.
func (c *Controller) Encode() string {
	return s2v.Encode(c.bridge)
}
