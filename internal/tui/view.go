package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/sheetview/internal/grid"
	"github.com/Iron-Ham/sheetview/internal/tui/keymap"
	"github.com/Iron-Ham/sheetview/internal/util"
)

// addressWidth is the width reserved for the cell label in the formula bar.
const addressWidth = 8

const hintText = "F1 help · ctrl+g command · ctrl+q quit"

var helpColumn = lipgloss.NewStyle().PaddingRight(3)

// View renders the formula bar, the visible window of the grid, the status
// bar and the message line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	lines := make([]string, 0, m.height)
	lines = append(lines, m.renderFormulaBar())
	if m.showHelp {
		lines = append(lines, m.renderHelp(m.layout.Rows+1)...)
	} else {
		lines = append(lines, m.renderColumnHeaders())
		lines = append(lines, m.renderRows()...)
	}
	lines = append(lines, m.renderStatusBar(), m.renderMessage())
	return strings.Join(lines, "\n")
}

func (m Model) renderFormulaBar() string {
	s := m.styles
	label := m.ctrl.Meta()
	if _, ok := m.ctrl.Selected(); !ok {
		return s.Muted.Render(util.TruncateANSI(label, m.width))
	}
	addr := s.AddressBox.Render(util.FitCell(label, addressWidth-2))
	avail := m.width - lipgloss.Width(addr)
	if m.formula.Focused() {
		return addr + s.FormulaEdit.Render(m.formula.View())
	}
	value := util.TruncateANSI(util.SingleLine(m.formula.Value()), max(0, avail-2))
	return addr + s.FormulaBar.Render(value)
}

func (m Model) renderColumnHeaders() string {
	s := m.styles
	l := m.layout
	vp := m.ctrl.Viewport()
	last := min(m.ctrl.Extent().Cols, vp.Left+l.Cols)

	var b strings.Builder
	b.WriteString(s.ColumnHeader.Render(strings.Repeat(" ", l.RowHeaderWidth)))
	for col := vp.Left + 1; col <= last; col++ {
		b.WriteString(s.ColumnHeader.Render(util.Center(grid.ColumnLabel(col), l.ColWidth)))
		b.WriteString(s.ColumnHeader.Render(" "))
	}
	return b.String()
}

// renderRows returns exactly layout.Rows lines so screen rows map to grid
// rows for hit testing.
func (m Model) renderRows() []string {
	s := m.styles
	l := m.layout
	vp := m.ctrl.Viewport()
	ext := m.ctrl.Extent()
	surface := m.ctrl.Surface()
	lastCol := min(ext.Cols, vp.Left+l.Cols)

	lines := make([]string, 0, l.Rows)
	for i := 0; i < l.Rows; i++ {
		row := vp.Top + i + 1
		if row > ext.Rows {
			lines = append(lines, "")
			continue
		}
		var b strings.Builder
		b.WriteString(s.RowHeader.Render(fmt.Sprintf("%*d ", l.RowHeaderWidth-1, row)))
		for col := vp.Left + 1; col <= lastCol; col++ {
			b.WriteString(m.renderCell(surface.Cell(grid.Address{Row: row, Col: col})))
			b.WriteString(" ")
		}
		lines = append(lines, b.String())
	}
	return lines
}

func (m Model) renderCell(cell *grid.CellElement) string {
	s := m.styles
	width := m.layout.ColWidth
	if cell == nil {
		return strings.Repeat(" ", width)
	}
	text := util.FitCell(cell.Display, width)
	switch {
	case cell.Active:
		return s.ActiveCell.Render(text)
	case cell.Error:
		return s.ErrorCell.Render(text)
	case util.IsNumeric(cell.Display):
		return s.NumberCell.Render(text)
	default:
		return s.Cell.Render(text)
	}
}

func (m Model) renderStatusBar() string {
	s := m.styles
	left := m.ctrl.Status()

	var right []string
	if m.ctrl.Loading() {
		right = append(right, "loading")
	}
	right = append(right, string(m.Mode()))
	if m.docPath != "" {
		right = append(right, filepath.Base(m.docPath))
	}
	rightText := strings.Join(right, " · ")

	inner := max(0, m.width-2)
	gap := inner - lipgloss.Width(left) - lipgloss.Width(rightText)
	line := left
	if gap >= 1 {
		line += strings.Repeat(" ", gap) + rightText
	}
	return s.StatusBar.Render(util.TruncateANSI(line, inner))
}

func (m Model) renderMessage() string {
	s := m.styles
	switch {
	case m.promptActive:
		return s.Prompt.Render(":") + m.prompt.View()
	case m.errorMessage != "":
		return s.ErrorText.Render(util.TruncateANSI(m.errorMessage, m.width))
	case m.ctrl.Notice() != "":
		return s.Notice.Render(util.TruncateANSI(util.SingleLine(m.ctrl.Notice()), m.width))
	default:
		return s.Muted.Render(util.TruncateANSI(hintText, m.width))
	}
}

// renderHelp lists key bindings and prompt commands in height lines.
func (m Model) renderHelp(height int) []string {
	s := m.styles
	var body []string
	for _, mode := range []keymap.Mode{keymap.ModeGrid, keymap.ModeEdit} {
		for _, line := range m.keymap.HelpLines(mode) {
			if strings.HasPrefix(line, "  ") {
				body = append(body, s.HelpKey.Render(line))
			} else {
				body = append(body, s.HelpCategory.Render(line))
			}
		}
	}
	body = append(body, s.HelpCategory.Render("Commands (ctrl+g)"))
	for _, cat := range m.handler.Categories() {
		for _, c := range cat.Commands {
			body = append(body, "  "+s.HelpKey.Render(c.Usage)+"  "+c.Description)
		}
	}

	// Flow into columns that fit inside the box border.
	colHeight := max(1, height-2)
	var cols []string
	for start := 0; start < len(body); start += colHeight {
		end := min(len(body), start+colHeight)
		cols = append(cols, helpColumn.Render(strings.Join(body[start:end], "\n")))
	}
	box := s.HelpBox.Render(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	lines := strings.Split(box, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		lines[i] = util.TruncateANSI(line, m.width)
	}
	return lines
}
