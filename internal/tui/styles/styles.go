// Package styles holds the colors and lipgloss styles of the sheet view.
package styles

import "github.com/charmbracelet/lipgloss"

// ThemeName is a built-in theme.
type ThemeName string

// Built-in themes.
const (
	ThemeDefault ThemeName = "default" // Violet accents on dark surfaces
	ThemeLight   ThemeName = "light"   // Dark text on light surfaces
	ThemeNord    ThemeName = "nord"    // Cool blue-gray
)

// BuiltinThemes returns the built-in theme names.
func BuiltinThemes() []string {
	return []string{string(ThemeDefault), string(ThemeLight), string(ThemeNord)}
}

// Palette is the set of colors the view draws with.
type Palette struct {
	Primary lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Surface lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color
	Border  lipgloss.Color
	Header  lipgloss.Color
	Active  lipgloss.Color
	Number  lipgloss.Color
	Formula lipgloss.Color
}

// DefaultPalette returns the default dark palette.
func DefaultPalette() Palette {
	return Palette{
		Primary: lipgloss.Color("#A78BFA"),
		Text:    lipgloss.Color("#F9FAFB"),
		Muted:   lipgloss.Color("#9CA3AF"),
		Surface: lipgloss.Color("#1F2937"),
		Error:   lipgloss.Color("#F87171"),
		Warning: lipgloss.Color("#F59E0B"),
		Border:  lipgloss.Color("#6B7280"),
		Header:  lipgloss.Color("#374151"),
		Active:  lipgloss.Color("#7C3AED"),
		Number:  lipgloss.Color("#60A5FA"),
		Formula: lipgloss.Color("#10B981"),
	}
}

// Builtin returns the palette of a built-in theme.
func Builtin(name ThemeName) (Palette, bool) {
	switch name {
	case ThemeDefault:
		return DefaultPalette(), true
	case ThemeLight:
		return Palette{
			Primary: lipgloss.Color("#6D28D9"),
			Text:    lipgloss.Color("#111827"),
			Muted:   lipgloss.Color("#4B5563"),
			Surface: lipgloss.Color("#F3F4F6"),
			Error:   lipgloss.Color("#B91C1C"),
			Warning: lipgloss.Color("#B45309"),
			Border:  lipgloss.Color("#9CA3AF"),
			Header:  lipgloss.Color("#E5E7EB"),
			Active:  lipgloss.Color("#C4B5FD"),
			Number:  lipgloss.Color("#1D4ED8"),
			Formula: lipgloss.Color("#047857"),
		}, true
	case ThemeNord:
		return Palette{
			Primary: lipgloss.Color("#88C0D0"),
			Text:    lipgloss.Color("#ECEFF4"),
			Muted:   lipgloss.Color("#D8DEE9"),
			Surface: lipgloss.Color("#3B4252"),
			Error:   lipgloss.Color("#BF616A"),
			Warning: lipgloss.Color("#EBCB8B"),
			Border:  lipgloss.Color("#4C566A"),
			Header:  lipgloss.Color("#434C5E"),
			Active:  lipgloss.Color("#5E81AC"),
			Number:  lipgloss.Color("#81A1C1"),
			Formula: lipgloss.Color("#A3BE8C"),
		}, true
	}
	return Palette{}, false
}

// Styles are the rendered styles of one palette.
type Styles struct {
	Palette Palette

	Title        lipgloss.Style
	ColumnHeader lipgloss.Style
	RowHeader    lipgloss.Style
	Cell         lipgloss.Style
	NumberCell   lipgloss.Style
	ErrorCell    lipgloss.Style
	ActiveCell   lipgloss.Style

	AddressBox  lipgloss.Style
	FormulaBar  lipgloss.Style
	FormulaEdit lipgloss.Style
	Prompt      lipgloss.Style

	StatusBar lipgloss.Style
	Meta      lipgloss.Style
	Notice    lipgloss.Style
	ErrorText lipgloss.Style

	HelpBox      lipgloss.Style
	HelpCategory lipgloss.Style
	HelpKey      lipgloss.Style
	Muted        lipgloss.Style
}

// New builds the styles of p.
func New(p Palette) *Styles {
	return &Styles{
		Palette: p,

		Title: lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		ColumnHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Muted).
			Background(p.Header),
		RowHeader: lipgloss.NewStyle().
			Foreground(p.Muted).
			Background(p.Header),
		Cell:       lipgloss.NewStyle().Foreground(p.Text),
		NumberCell: lipgloss.NewStyle().Foreground(p.Number),
		ErrorCell:  lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		ActiveCell: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text).
			Background(p.Active),

		AddressBox: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text).
			Background(p.Border).
			Padding(0, 1),
		FormulaBar:  lipgloss.NewStyle().Foreground(p.Formula).Padding(0, 1),
		FormulaEdit: lipgloss.NewStyle().Foreground(p.Text).Padding(0, 1),
		Prompt:      lipgloss.NewStyle().Bold(true).Foreground(p.Primary),

		StatusBar: lipgloss.NewStyle().
			Foreground(p.Muted).
			Background(p.Surface).
			Padding(0, 1),
		Meta:      lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		Notice:    lipgloss.NewStyle().Foreground(p.Warning),
		ErrorText: lipgloss.NewStyle().Foreground(p.Error),

		HelpBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 2),
		HelpCategory: lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		HelpKey:      lipgloss.NewStyle().Foreground(p.Warning),
		Muted:        lipgloss.NewStyle().Foreground(p.Muted),
	}
}

// Default returns the styles of the default palette.
func Default() *Styles {
	return New(DefaultPalette())
}
