package keymap

import tea "github.com/charmbracelet/bubbletea"

// DefaultKeymap returns the built-in bindings. Printable runes are not
// bound in grid mode: typing on a selected cell starts an edit.
func DefaultKeymap() *Keymap {
	return &Keymap{
		Name: "default",
		Modes: map[Mode]*ModeBindings{
			ModeGrid:    defaultGridBindings(),
			ModeEdit:    defaultEditBindings(),
			ModeCommand: defaultCommandBindings(),
		},
	}
}

func defaultGridBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeGrid,
		Bindings: []KeyBinding{
			// Navigation
			{KeyType: tea.KeyUp, Command: CmdMoveUp, Description: "Move up", Category: "Navigation"},
			{KeyType: tea.KeyDown, Command: CmdMoveDown, Description: "Move down", Category: "Navigation"},
			{KeyType: tea.KeyEnter, Command: CmdMoveDown, Description: "Move down", Category: "Navigation"},
			{KeyType: tea.KeyLeft, Command: CmdMoveLeft, Description: "Move left", Category: "Navigation"},
			{KeyType: tea.KeyShiftTab, Command: CmdMoveLeft, Description: "Move left", Category: "Navigation"},
			{KeyType: tea.KeyRight, Command: CmdMoveRight, Description: "Move right", Category: "Navigation"},
			{KeyType: tea.KeyTab, Command: CmdMoveRight, Description: "Move right", Category: "Navigation"},
			{KeyType: tea.KeyPgUp, Command: CmdPageUp, Description: "Page up", Category: "Navigation"},
			{KeyType: tea.KeyPgDown, Command: CmdPageDown, Description: "Page down", Category: "Navigation"},
			{KeyType: tea.KeyHome, Command: CmdRowStart, Description: "First column", Category: "Navigation"},
			{KeyType: tea.KeyCtrlHome, Command: CmdSheetStart, Description: "Go to A1", Category: "Navigation"},

			// Editing
			{KeyType: tea.KeyF2, Command: CmdStartEdit, Description: "Edit cell", Category: "Editing"},
			{KeyType: tea.KeyDelete, Command: CmdClearCell, Description: "Clear cell", Category: "Editing"},
			{KeyType: tea.KeyBackspace, Command: CmdClearCell, Description: "Clear cell", Category: "Editing"},
			{KeyType: tea.KeyCtrlY, Command: CmdCopyCell, Description: "Copy cell", Category: "Editing"},
			{KeyType: tea.KeyCtrlP, Command: CmdPasteCell, Description: "Paste into cell", Category: "Editing"},

			// Document
			{KeyType: tea.KeyCtrlN, Command: CmdNewSheet, Description: "New sheet", Category: "Document"},
			{KeyType: tea.KeyCtrlO, Command: CmdOpenPrompt, Description: "Open file", Category: "Document"},
			{KeyType: tea.KeyCtrlS, Command: CmdSave, Description: "Save", Category: "Document"},
			{KeyType: tea.KeyCtrlR, Command: CmdReload, Description: "Reload file", Category: "Document"},
			{KeyType: tea.KeyCtrlG, Command: CmdCommandMode, Description: "Command prompt", Category: "Document"},

			// Application
			{KeyType: tea.KeyF1, Command: CmdToggleHelp, Description: "Toggle help", Category: "Application"},
			{KeyType: tea.KeyEsc, Command: CmdDismiss, Description: "Dismiss message", Category: "Application"},
			{KeyType: tea.KeyCtrlQ, Command: CmdQuit, Description: "Quit", Category: "Application"},
			{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "Quit", Category: "Application"},
		},
	}
}

func defaultEditBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeEdit,
		Bindings: []KeyBinding{
			{KeyType: tea.KeyEnter, Command: CmdCommitDown, Description: "Apply and move down", Category: "Formula bar"},
			{KeyType: tea.KeyTab, Command: CmdCommitRight, Description: "Apply and move right", Category: "Formula bar"},
			{KeyType: tea.KeyShiftTab, Command: CmdCommitLeft, Description: "Apply and move left", Category: "Formula bar"},
			{KeyType: tea.KeyEsc, Command: CmdCancelEdit, Description: "Discard edit", Category: "Formula bar"},
			{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "Quit", Category: "Application"},
		},
	}
}

func defaultCommandBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeCommand,
		Bindings: []KeyBinding{
			{KeyType: tea.KeyEnter, Command: CmdExecute, Description: "Run command", Category: "Prompt"},
			{KeyType: tea.KeyEsc, Command: CmdCancelCommand, Description: "Cancel", Category: "Prompt"},
			{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "Quit", Category: "Application"},
		},
	}
}
