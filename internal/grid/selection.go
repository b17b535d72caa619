package grid

// EditState is the formula bar's sub-state while a cell is selected.
type EditState int

const (
	// EditIdle means the formula bar mirrors the selected cell.
	EditIdle EditState = iota
	// Editing means the formula bar holds input that commits on blur.
	Editing
	// CommitInFlight means a commit-and-move already applied the input and
	// the blur that follows must not apply it again.
	CommitInFlight
)

// String returns the state name.
func (s EditState) String() string {
	switch s {
	case Editing:
		return "editing"
	case CommitInFlight:
		return "commit-in-flight"
	default:
		return "idle"
	}
}

// EditSurface is the text input that holds a cell's raw content.
type EditSurface interface {
	Value() string
	SetValue(s string)
	Focus()
	Blur()
	Focused() bool
	SetCursor(pos int)
}

// Selection is the active-cell state: no selection, or one address.
type Selection struct {
	addr Address
	ok   bool
	edit EditState
}

// Active returns the selected address, if any.
func (s *Selection) Active() (Address, bool) {
	return s.addr, s.ok
}

// Ptr returns the selected address as a pointer, nil when nothing is selected.
func (s *Selection) Ptr() *Address {
	if !s.ok {
		return nil
	}
	a := s.addr
	return &a
}

// Set selects a. The edit sub-state is preserved so an in-flight commit
// survives the move it triggered.
func (s *Selection) Set(a Address) {
	s.addr, s.ok = a, true
}

// Clear drops the selection and any edit state.
func (s *Selection) Clear() {
	*s = Selection{}
}

// Edit returns the edit sub-state.
func (s *Selection) Edit() EditState {
	return s.edit
}

func (s *Selection) setEdit(e EditState) {
	s.edit = e
}
