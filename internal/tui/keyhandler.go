package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/sheetview/internal/grid"
	"github.com/Iron-Ham/sheetview/internal/tui/keymap"
)

// handleKeypress routes a key by input mode.
func (m Model) handleKeypress(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.Mode() {
	case keymap.ModeCommand:
		return m.handlePromptKey(msg)
	case keymap.ModeEdit:
		return m.handleEditKey(msg)
	default:
		return m.handleGridKey(msg)
	}
}

// handleGridKey runs bound commands. Any other printable key on a selected
// cell starts an edit seeded with that key.
func (m Model) handleGridKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if cmd, ok := m.keymap.GetBinding(msg, keymap.ModeGrid); ok {
		return m.runGridCommand(cmd)
	}

	var runes []rune
	switch msg.Type {
	case tea.KeyRunes:
		runes = msg.Runes
	case tea.KeySpace:
		runes = []rune{' '}
	}
	if len(runes) == 0 || m.showHelp {
		return m, nil
	}
	if m.ctrl.TypeRune(runes[0]) {
		m.errorMessage = ""
		if len(runes) > 1 {
			m.formula.SetValue(string(runes))
		}
	}
	return m, nil
}

func (m Model) runGridCommand(cmd keymap.Command) (Model, tea.Cmd) {
	switch cmd {
	case keymap.CmdMoveUp:
		m.ctrl.Move(-1, 0)
	case keymap.CmdMoveDown:
		m.ctrl.Move(1, 0)
	case keymap.CmdMoveLeft:
		m.ctrl.Move(0, -1)
	case keymap.CmdMoveRight:
		m.ctrl.Move(0, 1)
	case keymap.CmdPageUp:
		m.ctrl.Move(-m.ctrl.PageRows(), 0)
	case keymap.CmdPageDown:
		m.ctrl.Move(m.ctrl.PageRows(), 0)
	case keymap.CmdRowStart:
		row := 1
		if a, ok := m.ctrl.Selected(); ok {
			row = a.Row
		}
		m.ctrl.JumpTo(grid.Address{Row: row, Col: 1})
	case keymap.CmdSheetStart:
		m.ctrl.JumpTo(grid.Address{Row: 1, Col: 1})

	case keymap.CmdStartEdit:
		m.ctrl.StartEdit()
	case keymap.CmdClearCell:
		m.ctrl.ClearCell()
	case keymap.CmdCopyCell:
		if content, ok := m.ctrl.SelectedContent(); ok {
			return m, writeClipboard(m.clip, content)
		}
	case keymap.CmdPasteCell:
		if _, ok := m.ctrl.Selected(); ok {
			return m, readClipboard(m.clip)
		}

	case keymap.CmdNewSheet:
		return m.newSheet(), nil
	case keymap.CmdOpenPrompt:
		m.openPrompt("open ")
	case keymap.CmdCommandMode:
		m.openPrompt("")
	case keymap.CmdSave:
		return m.save("")
	case keymap.CmdReload:
		return m.reload()

	case keymap.CmdToggleHelp:
		m.showHelp = !m.showHelp
	case keymap.CmdDismiss:
		m.showHelp = false
		m.errorMessage = ""
		m.ctrl.SetNotice("")
	case keymap.CmdQuit:
		return m.quit()
	}
	return m, nil
}

// handleEditKey commits or cancels on the bound keys and feeds everything
// else to the formula bar.
func (m Model) handleEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	cmd, ok := m.keymap.GetBinding(msg, keymap.ModeEdit)
	if !ok {
		return m, m.formula.Update(msg)
	}
	switch cmd {
	case keymap.CmdCommitDown:
		m.ctrl.CommitAndMove(1, 0)
	case keymap.CmdCommitRight:
		m.ctrl.CommitAndMove(0, 1)
	case keymap.CmdCommitLeft:
		m.ctrl.CommitAndMove(0, -1)
	case keymap.CmdCancelEdit:
		m.ctrl.CancelEdit()
	case keymap.CmdQuit:
		return m.quit()
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	cmd, ok := m.keymap.GetBinding(msg, keymap.ModeCommand)
	if !ok {
		var teaCmd tea.Cmd
		m.prompt, teaCmd = m.prompt.Update(msg)
		return m, teaCmd
	}
	switch cmd {
	case keymap.CmdExecute:
		line := m.prompt.Value()
		m.closePrompt()
		return m.executeCommand(line)
	case keymap.CmdCancelCommand:
		m.closePrompt()
	case keymap.CmdQuit:
		return m.quit()
	}
	return m, nil
}

func (m *Model) openPrompt(seed string) {
	m.promptActive = true
	m.showHelp = false
	m.errorMessage = ""
	m.prompt.SetValue(seed)
	m.prompt.CursorEnd()
	m.prompt.Focus()
}

func (m *Model) closePrompt() {
	m.promptActive = false
	m.prompt.Blur()
	m.prompt.SetValue("")
}

// executeCommand runs a prompt line and applies its result.
func (m Model) executeCommand(line string) (Model, tea.Cmd) {
	result := m.handler.Execute(line, m)

	m.errorMessage = result.ErrorMessage
	if result.InfoMessage != "" {
		m.ctrl.SetNotice("%s", result.InfoMessage)
	}
	if result.ShowHelp != nil {
		m.showHelp = *result.ShowHelp
	}
	if result.Theme != "" {
		m.setTheme(result.Theme)
	}
	if result.NewSheet {
		m = m.newSheet()
	}

	var cmds []tea.Cmd
	if result.OpenPath != "" {
		cmds = append(cmds, readDocument(m.fs, result.OpenPath, false))
	}
	if result.Reload {
		var cmd tea.Cmd
		m, cmd = m.reload()
		cmds = append(cmds, cmd)
	}
	if result.SavePath != nil {
		var cmd tea.Cmd
		m, cmd = m.save(*result.SavePath)
		cmds = append(cmds, cmd)
	}
	if result.Quitting != nil && *result.Quitting {
		m.quitting = true
		m.Shutdown()
	}
	if result.TeaCmd != nil {
		cmds = append(cmds, result.TeaCmd)
	}
	return m, tea.Batch(cmds...)
}
