package styles

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ThemeFile is a custom theme loaded from YAML.
type ThemeFile struct {
	Name    string      `yaml:"name"`
	Author  string      `yaml:"author,omitempty"`
	Version string      `yaml:"version"`
	Colors  ThemeColors `yaml:"colors"`
}

// ThemeColors holds hex colors (#RGB or #RRGGBB). Empty optional colors
// fall back to the default palette.
type ThemeColors struct {
	Primary string `yaml:"primary"`
	Text    string `yaml:"text"`
	Muted   string `yaml:"muted"`
	Surface string `yaml:"surface"`
	Error   string `yaml:"error"`
	Warning string `yaml:"warning"`
	Border  string `yaml:"border,omitempty"`
	Header  string `yaml:"header,omitempty"`
	Active  string `yaml:"active,omitempty"`
	Number  string `yaml:"number,omitempty"`
	Formula string `yaml:"formula,omitempty"`
}

var hexColorRegex = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// LoadThemeFile reads and validates a theme file.
func LoadThemeFile(fs afero.Fs, path string) (*ThemeFile, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading theme file: %w", err)
	}
	var theme ThemeFile
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return nil, fmt.Errorf("parsing theme file: %w", err)
	}
	if err := theme.Validate(); err != nil {
		return nil, fmt.Errorf("invalid theme: %w", err)
	}
	return &theme, nil
}

// Validate checks that the theme is well-formed.
func (t *ThemeFile) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("theme name is required")
	}
	if t.Version != "1" {
		return fmt.Errorf("unsupported theme version: %q (supported: 1)", t.Version)
	}
	required := map[string]string{
		"primary": t.Colors.Primary,
		"text":    t.Colors.Text,
		"muted":   t.Colors.Muted,
		"surface": t.Colors.Surface,
		"error":   t.Colors.Error,
		"warning": t.Colors.Warning,
	}
	names := make([]string, 0, len(required))
	for name := range required {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if required[name] == "" {
			return fmt.Errorf("color '%s' is required", name)
		}
	}
	optional := map[string]string{
		"border":  t.Colors.Border,
		"header":  t.Colors.Header,
		"active":  t.Colors.Active,
		"number":  t.Colors.Number,
		"formula": t.Colors.Formula,
	}
	for name, color := range required {
		optional[name] = color
	}
	for name, color := range optional {
		if color != "" && !hexColorRegex.MatchString(color) {
			return fmt.Errorf("color '%s' has invalid format: %s (expected #RGB or #RRGGBB)", name, color)
		}
	}
	return nil
}

// Palette converts the theme into a palette, filling optional colors from
// the default.
func (t *ThemeFile) Palette() Palette {
	p := DefaultPalette()
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&p.Primary, t.Colors.Primary)
	set(&p.Text, t.Colors.Text)
	set(&p.Muted, t.Colors.Muted)
	set(&p.Surface, t.Colors.Surface)
	set(&p.Error, t.Colors.Error)
	set(&p.Warning, t.Colors.Warning)
	set(&p.Border, t.Colors.Border)
	set(&p.Header, t.Colors.Header)
	set(&p.Active, t.Colors.Active)
	set(&p.Number, t.Colors.Number)
	set(&p.Formula, t.Colors.Formula)
	return p
}

// Resolve returns the palette for name: a built-in theme, or a path to a
// YAML theme file when name ends in .yaml or .yml.
func Resolve(fs afero.Fs, name string) (Palette, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultPalette(), nil
	}
	if p, ok := Builtin(ThemeName(name)); ok {
		return p, nil
	}
	if ext := strings.ToLower(filepath.Ext(name)); ext == ".yaml" || ext == ".yml" {
		theme, err := LoadThemeFile(fs, name)
		if err != nil {
			return DefaultPalette(), err
		}
		return theme.Palette(), nil
	}
	return DefaultPalette(), fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(BuiltinThemes(), ", "))
}
