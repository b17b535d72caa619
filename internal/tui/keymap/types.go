// Package keymap maps key presses to named commands per input mode, so the
// model's key handling is a table lookup instead of a switch over keys.
package keymap

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Mode is the current input mode of the view.
type Mode string

const (
	ModeGrid    Mode = "grid"    // Navigating cells
	ModeEdit    Mode = "edit"    // Typing into the formula bar
	ModeCommand Mode = "command" // Typing a prompt command
)

// Command is a named action triggered by a key binding.
type Command string

// Grid mode commands
const (
	CmdMoveUp      Command = "move_up"
	CmdMoveDown    Command = "move_down"
	CmdMoveLeft    Command = "move_left"
	CmdMoveRight   Command = "move_right"
	CmdPageUp      Command = "page_up"
	CmdPageDown    Command = "page_down"
	CmdRowStart    Command = "row_start"
	CmdSheetStart  Command = "sheet_start"
	CmdStartEdit   Command = "start_edit"
	CmdClearCell   Command = "clear_cell"
	CmdCopyCell    Command = "copy_cell"
	CmdPasteCell   Command = "paste_cell"
	CmdOpenPrompt  Command = "open_prompt"
	CmdCommandMode Command = "command_mode"
	CmdSave        Command = "save"
	CmdNewSheet    Command = "new_sheet"
	CmdReload      Command = "reload"
	CmdToggleHelp  Command = "toggle_help"
	CmdDismiss     Command = "dismiss"
	CmdQuit        Command = "quit"
)

// Edit mode commands
const (
	CmdCommitDown  Command = "commit_down"
	CmdCommitRight Command = "commit_right"
	CmdCommitLeft  Command = "commit_left"
	CmdCancelEdit  Command = "cancel_edit"
)

// Command mode commands
const (
	CmdExecute       Command = "execute"
	CmdCancelCommand Command = "cancel_command"
)

// Modifier represents keyboard modifiers.
type Modifier uint8

const (
	ModNone Modifier = 0
	ModAlt  Modifier = 1 << iota
)

// String returns a human-readable prefix for the modifiers.
func (m Modifier) String() string {
	if m&ModAlt != 0 {
		return "alt+"
	}
	return ""
}

// KeyBinding is a single key binding.
type KeyBinding struct {
	// KeyType is the key. For printable keys use tea.KeyRunes and set Rune.
	KeyType tea.KeyType

	// Rune is the character for tea.KeyRunes bindings.
	Rune rune

	// Modifiers must match exactly.
	Modifiers Modifier

	Command     Command
	Description string
	Category    string
}

// Matches reports whether msg triggers the binding.
func (kb KeyBinding) Matches(msg tea.KeyMsg) bool {
	wantAlt := kb.Modifiers&ModAlt != 0
	if msg.Alt != wantAlt {
		return false
	}
	if kb.KeyType != tea.KeyRunes {
		return msg.Type == kb.KeyType
	}
	if msg.Type != tea.KeyRunes || len(msg.Runes) == 0 {
		return false
	}
	return msg.Runes[0] == kb.Rune
}

// String returns the key as shown in help.
func (kb KeyBinding) String() string {
	prefix := kb.Modifiers.String()
	if kb.KeyType != tea.KeyRunes {
		return prefix + kb.KeyType.String()
	}
	if kb.Rune == ' ' {
		return prefix + "space"
	}
	return prefix + string(kb.Rune)
}

// ModeBindings holds the bindings of one mode.
type ModeBindings struct {
	Mode     Mode
	Bindings []KeyBinding
}

// GetBinding returns the command bound to msg in this mode.
func (mb *ModeBindings) GetBinding(msg tea.KeyMsg) (Command, bool) {
	for _, binding := range mb.Bindings {
		if binding.Matches(msg) {
			return binding.Command, true
		}
	}
	return "", false
}

// Keymap holds the bindings of every mode.
type Keymap struct {
	Name  string
	Modes map[Mode]*ModeBindings
}

// GetBinding returns the command bound to msg in mode.
func (km *Keymap) GetBinding(msg tea.KeyMsg, mode Mode) (Command, bool) {
	mb, ok := km.Modes[mode]
	if !ok {
		return "", false
	}
	return mb.GetBinding(msg)
}

// GetModeBindings returns the bindings of mode.
func (km *Keymap) GetModeBindings(mode Mode) []KeyBinding {
	mb, ok := km.Modes[mode]
	if !ok {
		return nil
	}
	return mb.Bindings
}

// GetBindingsForCommand returns every binding of cmd in mode.
func (km *Keymap) GetBindingsForCommand(cmd Command, mode Mode) []KeyBinding {
	var result []KeyBinding
	for _, binding := range km.GetModeBindings(mode) {
		if binding.Command == cmd {
			result = append(result, binding)
		}
	}
	return result
}

// GetCategories returns the categories of mode in first-seen order.
func (km *Keymap) GetCategories(mode Mode) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, binding := range km.GetModeBindings(mode) {
		if binding.Category != "" && !seen[binding.Category] {
			seen[binding.Category] = true
			categories = append(categories, binding.Category)
		}
	}
	return categories
}

// HelpLines returns one "key  description" line per command of mode,
// grouped by category. Commands bound to several keys list all of them.
func (km *Keymap) HelpLines(mode Mode) []string {
	var lines []string
	for _, cat := range km.GetCategories(mode) {
		lines = append(lines, cat)
		done := make(map[Command]bool)
		for _, binding := range km.GetModeBindings(mode) {
			if binding.Category != cat || done[binding.Command] {
				continue
			}
			done[binding.Command] = true
			keys := ""
			for i, b := range km.GetBindingsForCommand(binding.Command, mode) {
				if i > 0 {
					keys += "/"
				}
				keys += b.String()
			}
			lines = append(lines, "  "+keys+"  "+binding.Description)
		}
	}
	return lines
}
