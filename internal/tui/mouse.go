package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// wheelRows is how far one wheel notch scrolls.
const wheelRows = 3

// handleMouse scrolls on the wheel and selects on left click. Scrolling
// down or right near the extent edge schedules growth; scrolling back
// never does.
func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if !m.cfg.TUI.Mouse || m.promptActive || m.showHelp || msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		m.ctrl.Scroll(wheelRows, 0)
	case tea.MouseButtonWheelUp:
		m.ctrl.Scroll(-wheelRows, 0)
	case tea.MouseButtonWheelRight:
		m.ctrl.Scroll(0, 1)
	case tea.MouseButtonWheelLeft:
		m.ctrl.Scroll(0, -1)
	case tea.MouseButtonLeft:
		if m.layout.InFormulaBar(msg.Y) {
			if !m.formula.Focused() {
				m.ctrl.StartEdit()
			}
			return m, nil
		}
		if a, ok := m.layout.HitTest(msg.X, msg.Y, m.ctrl.Viewport()); ok {
			m.ctrl.Click(a)
		}
	}
	return m, nil
}
