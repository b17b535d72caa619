package tui

import (
	"strconv"

	"github.com/Iron-Ham/sheetview/internal/grid"
)

// Screen rows used by everything but the grid body: formula bar, column
// headers, status bar and message line.
const (
	formulaLine  = 0
	headerLine   = 1
	gridTopLine  = 2
	chromeHeight = 4
)

// minRowHeaderWidth fits three-digit row numbers plus a gap.
const minRowHeaderWidth = 4

// Layout is the placement of the grid on screen.
type Layout struct {
	Width          int
	Height         int
	ColWidth       int
	RowHeaderWidth int
	// Rows and Cols are how many grid rows and columns fit.
	Rows int
	Cols int
}

// ComputeLayout places the grid in a width x height terminal. The row
// header widens with the extent so the largest row number fits.
func ComputeLayout(width, height, colWidth, extentRows int) Layout {
	colWidth = max(1, colWidth)
	header := max(minRowHeaderWidth, len(strconv.Itoa(max(1, extentRows)))+1)
	return Layout{
		Width:          width,
		Height:         height,
		ColWidth:       colWidth,
		RowHeaderWidth: header,
		Rows:           max(1, height-chromeHeight),
		Cols:           max(1, (width-header)/(colWidth+1)),
	}
}

// stride is the screen width of one column including its separator.
func (l Layout) stride() int {
	return l.ColWidth + 1
}

// HitTest maps a screen position to the cell drawn there.
func (l Layout) HitTest(x, y int, vp grid.Viewport) (grid.Address, bool) {
	row := y - gridTopLine
	if row < 0 || row >= l.Rows || x < l.RowHeaderWidth {
		return grid.Address{}, false
	}
	col := (x - l.RowHeaderWidth) / l.stride()
	if col >= l.Cols {
		return grid.Address{}, false
	}
	return grid.Address{Row: vp.Top + row + 1, Col: vp.Left + col + 1}, true
}

// InFormulaBar reports whether y is the formula bar line.
func (l Layout) InFormulaBar(y int) bool {
	return y == formulaLine
}
