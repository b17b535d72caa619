// Package command runs the prompt commands of the sheet view (ctrl+g).
// Commands that need I/O do not perform it; they describe it in the Result
// and the model schedules the work.
package command

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/sheetview/internal/grid"
	"github.com/Iron-Ham/sheetview/internal/logging"
)

// Dependencies is the view state commands act on.
type Dependencies interface {
	Controller() *grid.Controller
	DocumentPath() string
	GetLogger() *logging.Logger
}

// Result is the outcome of a command. Pointer fields distinguish "not set"
// from a zero value.
type Result struct {
	InfoMessage  string
	ErrorMessage string

	// TeaCmd is an optional command for the program, such as tea.Quit.
	TeaCmd tea.Cmd

	ShowHelp *bool
	Quitting *bool

	// OpenPath asks the model to read and load a document.
	OpenPath string
	// SavePath asks the model to save; an empty target means the current
	// document or the configured fallback.
	SavePath *string
	// NewSheet asks the model to reset the sheet.
	NewSheet bool
	// Reload asks the model to reread the current document.
	Reload bool
	// Theme asks the model to switch themes.
	Theme string
}

// CommandInfo describes one command for help output.
type CommandInfo struct {
	Usage       string
	Description string
}

// CommandCategory groups related commands.
type CommandCategory struct {
	Name     string
	Commands []CommandInfo
}

type commandFunc func(arg string, deps Dependencies) Result

// Handler maps command names to implementations.
type Handler struct {
	commands   map[string]commandFunc
	categories []CommandCategory
}

// New returns a Handler with every command registered.
func New() *Handler {
	h := &Handler{commands: make(map[string]commandFunc)}
	h.registerCommands()
	return h
}

// Categories returns the commands grouped for help output.
func (h *Handler) Categories() []CommandCategory {
	return h.categories
}

// Execute parses and runs a command line. A bare cell reference such as
// "C7" jumps to that cell.
func (h *Handler) Execute(line string, deps Dependencies) Result {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), ":"))
	if line == "" {
		return Result{}
	}
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	if fn, ok := h.commands[strings.ToLower(name)]; ok {
		return fn(arg, deps)
	}
	if _, err := grid.ParseA1(name); err == nil && arg == "" {
		return cmdGoto(name, deps)
	}
	return Result{ErrorMessage: fmt.Sprintf("Unknown command: %s (type help for a list)", name)}
}

func (h *Handler) registerCommands() {
	h.register("Document",
		[]string{"open", "e"}, "open <path>", "Load a document", cmdOpen)
	h.register("Document",
		[]string{"save", "w"}, "save [path]", "Save the sheet", cmdSave)
	h.register("Document",
		[]string{"new"}, "new", "Clear the sheet", cmdNew)
	h.register("Document",
		[]string{"reload"}, "reload", "Reread the open document", cmdReload)
	h.register("Navigation",
		[]string{"goto", "g"}, "goto <cell>", "Select a cell, e.g. goto C7", cmdGoto)
	h.register("View",
		[]string{"theme"}, "theme <name|file.yaml>", "Switch color theme", cmdTheme)
	h.register("View",
		[]string{"help", "h"}, "help", "Toggle key help", cmdHelp)
	h.register("View",
		[]string{"quit", "q"}, "quit", "Exit", cmdQuit)
}

func (h *Handler) register(category string, names []string, usage, description string, fn commandFunc) {
	for _, name := range names {
		h.commands[name] = fn
	}
	info := CommandInfo{Usage: usage, Description: description}
	for i := range h.categories {
		if h.categories[i].Name == category {
			h.categories[i].Commands = append(h.categories[i].Commands, info)
			return
		}
	}
	h.categories = append(h.categories, CommandCategory{Name: category, Commands: []CommandInfo{info}})
}

func cmdOpen(arg string, _ Dependencies) Result {
	if arg == "" {
		return Result{ErrorMessage: "Usage: open <path>"}
	}
	return Result{OpenPath: arg, InfoMessage: fmt.Sprintf("Opening %s...", arg)}
}

func cmdSave(arg string, _ Dependencies) Result {
	target := arg
	return Result{SavePath: &target}
}

func cmdNew(_ string, deps Dependencies) Result {
	if !deps.Controller().Available() {
		return Result{ErrorMessage: grid.NotReadyStatus}
	}
	return Result{NewSheet: true}
}

func cmdReload(_ string, deps Dependencies) Result {
	if deps.DocumentPath() == "" {
		return Result{InfoMessage: "No document to reload"}
	}
	return Result{Reload: true}
}

func cmdGoto(arg string, deps Dependencies) Result {
	if arg == "" {
		return Result{ErrorMessage: "Usage: goto <cell>"}
	}
	a, err := grid.ParseA1(arg)
	if err != nil {
		return Result{ErrorMessage: err.Error()}
	}
	c := deps.Controller()
	if !c.Available() {
		return Result{ErrorMessage: grid.NotReadyStatus}
	}
	c.JumpTo(a)
	if logger := deps.GetLogger(); logger != nil {
		logger.Debug("jumped to cell", "cell", a.String())
	}
	return Result{}
}

func cmdTheme(arg string, _ Dependencies) Result {
	if arg == "" {
		return Result{ErrorMessage: "Usage: theme <name|file.yaml>"}
	}
	return Result{Theme: arg}
}

func cmdHelp(_ string, _ Dependencies) Result {
	show := true
	return Result{ShowHelp: &show}
}

func cmdQuit(_ string, _ Dependencies) Result {
	quitting := true
	return Result{Quitting: &quitting, TeaCmd: tea.Quit}
}
