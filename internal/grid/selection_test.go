package grid

import "testing"

func TestSelection(t *testing.T) {
	var s Selection
	if _, ok := s.Active(); ok || s.Ptr() != nil {
		t.Fatal("zero Selection should be empty")
	}

	s.setEdit(CommitInFlight)
	s.Set(Address{Row: 2, Col: 3})
	if a, ok := s.Active(); !ok || a != (Address{Row: 2, Col: 3}) {
		t.Errorf("Active() = %v, %v", a, ok)
	}
	if s.Edit() != CommitInFlight {
		t.Errorf("Set() should keep the edit state, got %v", s.Edit())
	}

	p := s.Ptr()
	p.Row = 99
	if a, _ := s.Active(); a.Row != 2 {
		t.Error("Ptr() should return a copy")
	}

	s.Clear()
	if _, ok := s.Active(); ok || s.Edit() != EditIdle {
		t.Error("Clear() should drop selection and edit state")
	}
}

func TestEditState_String(t *testing.T) {
	tests := map[EditState]string{
		EditIdle:       "idle",
		Editing:        "editing",
		CommitInFlight: "commit-in-flight",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestBufferEditor(t *testing.T) {
	e := NewBufferEditor()
	e.SetValue("héllo")
	if e.Cursor() != 5 {
		t.Errorf("Cursor() = %d, want 5 after SetValue", e.Cursor())
	}

	tests := []struct {
		pos  int
		want int
	}{
		{-1, 0},
		{2, 2},
		{50, 5},
	}
	for _, tt := range tests {
		e.SetCursor(tt.pos)
		if e.Cursor() != tt.want {
			t.Errorf("SetCursor(%d) -> Cursor() = %d, want %d", tt.pos, e.Cursor(), tt.want)
		}
	}

	e.Focus()
	if !e.Focused() {
		t.Error("Focus() should focus")
	}
	e.Blur()
	if e.Focused() {
		t.Error("Blur() should unfocus")
	}
}
