package grid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Iron-Ham/sheetview/internal/errors"
)

// Address is a 1-based (row, column) cell coordinate.
type Address struct {
	Row int
	Col int
}

// String returns the A1 form of the address, e.g. "B3".
func (a Address) String() string {
	return ColumnLabel(a.Col) + strconv.Itoa(a.Row)
}

// Valid reports whether both components are at least 1.
func (a Address) Valid() bool {
	return a.Row >= 1 && a.Col >= 1
}

// Offset returns the address moved by (dRow, dCol), clamped to row 1 and column 1.
func (a Address) Offset(dRow, dCol int) Address {
	return Address{Row: max(1, a.Row+dRow), Col: max(1, a.Col+dCol)}
}

// Largest addressable sheet, matching the xlsx worksheet limits. Engines
// may report a smaller one through engine.Bounded.
const (
	MaxRows = 1048576
	MaxCols = 16384
)

// ColumnLabel maps a 1-based column index to its bijective base-26 label:
// 1→"A", 26→"Z", 27→"AA", 702→"ZZ", 703→"AAA". Non-positive input yields "".
func ColumnLabel(col int) string {
	if col < 1 {
		return ""
	}
	// 14 letters cover math.MaxInt.
	var buf [14]byte
	i := len(buf)
	for col > 0 {
		col--
		i--
		buf[i] = byte('A' + col%26)
		col /= 26
	}
	return string(buf[i:])
}

// ParseColumnLabel is the inverse of ColumnLabel. Labels are case-insensitive.
func ParseColumnLabel(label string) (int, error) {
	if label == "" {
		return 0, errors.NewValidationError("empty column label").WithField("column")
	}
	col := 0
	for _, r := range strings.ToUpper(label) {
		if r < 'A' || r > 'Z' {
			return 0, errors.NewValidationError("column label must be letters").WithField("column").WithValue(label)
		}
		col = col*26 + int(r-'A'+1)
		if col > 1<<24 {
			return 0, errors.NewValidationError("column label out of range").WithField("column").WithValue(label)
		}
	}
	return col, nil
}

// ParseA1 parses an A1-style reference such as "b3" or "AA10".
func ParseA1(ref string) (Address, error) {
	ref = strings.TrimSpace(ref)
	split := strings.IndexFunc(ref, func(r rune) bool { return r >= '0' && r <= '9' })
	if split <= 0 {
		return Address{}, errors.NewValidationError(fmt.Sprintf("invalid cell reference %q", ref))
	}
	col, err := ParseColumnLabel(ref[:split])
	if err != nil {
		return Address{}, err
	}
	row, err := strconv.Atoi(ref[split:])
	if err != nil || row < 1 {
		return Address{}, errors.NewValidationError(fmt.Sprintf("invalid row in cell reference %q", ref))
	}
	if row > MaxRows || col > MaxCols {
		return Address{}, errors.NewValidationError(fmt.Sprintf("cell reference %q is outside the sheet", ref)).
			WithValue(ColumnLabel(MaxCols) + strconv.Itoa(MaxRows))
	}
	return Address{Row: row, Col: col}, nil
}
