package grid

// CellElement is one rendered cell.
type CellElement struct {
	Addr    Address
	Display string
	Error   bool
	Active  bool
}

// DisplaySource supplies display text and error flags for cells.
type DisplaySource interface {
	CellDisplay(row, col int) string
	IsCellError(row, col int) bool
}

// Surface is the materialized grid: a dense index of cell elements,
// addressed [row-1][col-1]. It never shrinks except through RebuildFull.
type Surface struct {
	cells  [][]*CellElement
	cols   int
	active *CellElement
}

// NewSurface returns an empty surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Extent returns the rendered size.
func (s *Surface) Extent() Extent {
	return Extent{Rows: len(s.cells), Cols: s.cols}
}

// Built reports whether the surface has been materialized.
func (s *Surface) Built() bool {
	return s.cells != nil
}

// Cell returns the element at a, or nil outside the rendered extent.
func (s *Surface) Cell(a Address) *CellElement {
	if a.Row < 1 || a.Col < 1 || a.Row > len(s.cells) || a.Col > s.cols {
		return nil
	}
	return s.cells[a.Row-1][a.Col-1]
}

// RebuildFull discards every element and creates blank ones for ext.
func (s *Surface) RebuildFull(ext Extent) {
	s.active = nil
	s.cols = max(0, ext.Cols)
	s.cells = make([][]*CellElement, max(0, ext.Rows))
	for r := range s.cells {
		s.cells[r] = newRow(r+1, 1, s.cols)
	}
}

// ExtendTo grows the surface to target, first widening existing rows and
// then appending rows at the new width. Existing elements are kept as is.
// It returns the addresses of the elements it created, in row-major order.
func (s *Surface) ExtendTo(target Extent) []Address {
	if s.cells == nil {
		s.RebuildFull(target)
		return s.addressesFrom(1, 1)
	}

	var created []Address
	if target.Cols > s.cols {
		for r := range s.cells {
			s.cells[r] = append(s.cells[r], newRow(r+1, s.cols+1, target.Cols)...)
			for c := s.cols + 1; c <= target.Cols; c++ {
				created = append(created, Address{Row: r + 1, Col: c})
			}
		}
		s.cols = target.Cols
	}
	for r := len(s.cells) + 1; r <= target.Rows; r++ {
		s.cells = append(s.cells, newRow(r, 1, s.cols))
		for c := 1; c <= s.cols; c++ {
			created = append(created, Address{Row: r, Col: c})
		}
	}
	return created
}

func (s *Surface) addressesFrom(row, col int) []Address {
	var out []Address
	for r := row; r <= len(s.cells); r++ {
		for c := col; c <= s.cols; c++ {
			out = append(out, Address{Row: r, Col: c})
		}
	}
	return out
}

func newRow(row, fromCol, toCol int) []*CellElement {
	if toCol < fromCol {
		return []*CellElement{}
	}
	cells := make([]*CellElement, 0, toCol-fromCol+1)
	for c := fromCol; c <= toCol; c++ {
		cells = append(cells, &CellElement{Addr: Address{Row: row, Col: c}})
	}
	return cells
}

// RefreshCell re-reads one element from src. A blank display clears the
// error marker.
func (s *Surface) RefreshCell(a Address, src DisplaySource) {
	el := s.Cell(a)
	if el == nil {
		return
	}
	el.Display = src.CellDisplay(a.Row, a.Col)
	el.Error = el.Display != "" && src.IsCellError(a.Row, a.Col)
}

// RefreshAll re-reads every rendered element from src.
func (s *Surface) RefreshAll(src DisplaySource) {
	for _, row := range s.cells {
		for _, el := range row {
			s.RefreshCell(el.Addr, src)
		}
	}
}

// SetActive moves the highlight to a, or removes it when a is nil.
func (s *Surface) SetActive(a *Address) {
	if s.active != nil {
		s.active.Active = false
		s.active = nil
	}
	if a == nil {
		return
	}
	if el := s.Cell(*a); el != nil {
		el.Active = true
		s.active = el
	}
}

// Active returns the highlighted element, if any.
func (s *Surface) Active() *CellElement {
	return s.active
}
