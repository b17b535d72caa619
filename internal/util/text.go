// Package util holds terminal text helpers shared by the grid renderer and
// the CLI.
package util

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// TruncateANSI truncates s to maxWidth visual columns, ending in an
// ellipsis when cut. Escape sequences are preserved.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, Ellipsis)
}

// SingleLine folds line breaks and tabs into spaces so a value fits one row.
func SingleLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
}

// IsNumeric reports whether s reads as a number.
func IsNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// FitCell renders s into exactly width terminal columns: truncated with an
// ellipsis when too wide, padded otherwise. Numbers are right-aligned.
func FitCell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = SingleLine(s)
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, Ellipsis)
	}
	if IsNumeric(s) {
		return runewidth.FillLeft(s, width)
	}
	return runewidth.FillRight(s, width)
}

// Center pads s on both sides to width columns.
func Center(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return runewidth.Truncate(s, width, "")
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}
