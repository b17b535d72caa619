package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// FormulaBar is the text input holding the selected cell's raw content.
// It satisfies grid.EditSurface so the controller drives focus and value.
type FormulaBar struct {
	input textinput.Model
}

// NewFormulaBar returns an unfocused, empty formula bar.
func NewFormulaBar() *FormulaBar {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = ""
	ti.CharLimit = 0
	return &FormulaBar{input: ti}
}

// Value returns the current text.
func (f *FormulaBar) Value() string { return f.input.Value() }

// SetValue replaces the text.
func (f *FormulaBar) SetValue(s string) {
	f.input.SetValue(s)
	f.input.CursorEnd()
}

// Focus gives the input keyboard focus.
func (f *FormulaBar) Focus() { f.input.Focus() }

// Blur removes keyboard focus.
func (f *FormulaBar) Blur() { f.input.Blur() }

// Focused reports whether the input has focus.
func (f *FormulaBar) Focused() bool { return f.input.Focused() }

// SetCursor moves the cursor to pos runes.
func (f *FormulaBar) SetCursor(pos int) { f.input.SetCursor(pos) }

// Cursor returns the cursor position in runes.
func (f *FormulaBar) Cursor() int { return f.input.Position() }

// SetWidth sets the visible width of the input.
func (f *FormulaBar) SetWidth(w int) { f.input.Width = max(1, w) }

// Update forwards a message to the input while it has focus.
func (f *FormulaBar) Update(msg tea.Msg) tea.Cmd {
	if !f.input.Focused() {
		return nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

// View renders the input.
func (f *FormulaBar) View() string { return f.input.View() }
