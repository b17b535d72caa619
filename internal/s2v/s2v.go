// Package s2v encodes and parses the S2V sheet interchange format: rows
// separated by "\n", cells within a row separated by ";".
//
// A cell whose content starts with "=" is a formula. Encoding replaces every
// ";" inside a formula with ",". The replacement is not reversed by Parse,
// so a formula that relied on a literal ";" does not survive a round trip.
package s2v

import "strings"

const (
	// CellSeparator joins cells within a row.
	CellSeparator = ";"
	// RowSeparator joins rows.
	RowSeparator = "\n"
)

// ContentSource exposes raw cell content over a rectangular extent.
type ContentSource interface {
	RowCount() int
	ColumnCount() int
	CellContent(row, col int) string
}

// IsFormula reports whether content is formula text.
func IsFormula(content string) bool {
	return strings.HasPrefix(content, "=")
}

// FormatCell returns content as it is written into an S2V row.
func FormatCell(content string) string {
	if IsFormula(content) {
		return strings.ReplaceAll(content, CellSeparator, ",")
	}
	return content
}

// Encode writes every cell of src in row-major order. A source with no
// rows or no columns encodes to "".
func Encode(src ContentSource) string {
	rows, cols := src.RowCount(), src.ColumnCount()
	if rows <= 0 || cols <= 0 {
		return ""
	}

	var sb strings.Builder
	for r := 1; r <= rows; r++ {
		if r > 1 {
			sb.WriteString(RowSeparator)
		}
		for c := 1; c <= cols; c++ {
			if c > 1 {
				sb.WriteString(CellSeparator)
			}
			sb.WriteString(FormatCell(src.CellContent(r, c)))
		}
	}
	return sb.String()
}

// Parse splits S2V text into rows of cells. A trailing newline does not
// start an extra row and "\r\n" line endings are accepted. Separators
// inside parentheses belong to the cell, so "=SUM(A1;B1);x" is two cells.
func Parse(text string) [][]string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, RowSeparator)
	lines := strings.Split(text, RowSeparator)
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, splitRow(strings.TrimSuffix(line, "\r")))
	}
	return rows
}

func splitRow(line string) []string {
	var cells []string
	var current strings.Builder
	depth := 0
	for _, ch := range line {
		switch {
		case ch == '(':
			depth++
		case ch == ')' && depth > 0:
			depth--
		case ch == ';' && depth == 0:
			cells = append(cells, current.String())
			current.Reset()
			continue
		}
		current.WriteRune(ch)
	}
	return append(cells, current.String())
}

// Walk calls fn for every non-empty cell of text with its 1-based address.
func Walk(text string, fn func(row, col int, content string)) {
	for r, cells := range Parse(text) {
		for c, content := range cells {
			if content != "" {
				fn(r+1, c+1, content)
			}
		}
	}
}
