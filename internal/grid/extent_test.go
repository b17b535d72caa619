package grid

import "testing"

func testPolicy() Policy {
	return Policy{DefaultRows: 24, DefaultCols: 12, RowStep: 10, ColStep: 6, EdgeRows: 3, EdgeCols: 1}
}

func TestSizeManager_EnsureCovers(t *testing.T) {
	tests := []struct {
		name    string
		addr    Address
		want    Extent
		changed bool
	}{
		{"inside", Address{Row: 5, Col: 5}, Extent{Rows: 24, Cols: 12}, false},
		{"on boundary", Address{Row: 24, Col: 12}, Extent{Rows: 24, Cols: 12}, false},
		{"rows only", Address{Row: 30, Col: 2}, Extent{Rows: 30, Cols: 12}, true},
		{"cols only", Address{Row: 1, Col: 13}, Extent{Rows: 24, Cols: 13}, true},
		{"both axes", Address{Row: 100, Col: 40}, Extent{Rows: 100, Cols: 40}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSizeManager(testPolicy())
			if got := m.EnsureCovers(tt.addr); got != tt.changed {
				t.Errorf("EnsureCovers() = %v, want %v", got, tt.changed)
			}
			if got := m.Extent(); got != tt.want {
				t.Errorf("Extent() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSizeManager_Limit(t *testing.T) {
	m := NewSizeManager(testPolicy())
	if got, want := m.Limit(), (Extent{Rows: MaxRows, Cols: MaxCols}); got != want {
		t.Fatalf("Limit() = %+v, want %+v", got, want)
	}

	m.SetLimit(Extent{Rows: 100, Cols: 0})
	if got, want := m.Limit(), (Extent{Rows: 100, Cols: MaxCols}); got != want {
		t.Errorf("Limit() = %+v, want %+v", got, want)
	}
	m.EnsureCovers(Address{Row: 5000, Col: 40})
	if got, want := m.Extent(), (Extent{Rows: 100, Cols: 40}); got != want {
		t.Errorf("Extent() after EnsureCovers = %+v, want %+v", got, want)
	}
	m.Reconcile(1<<40, 1<<40)
	if got, want := m.Extent(), (Extent{Rows: 100, Cols: MaxCols}); got != want {
		t.Errorf("Extent() after Reconcile = %+v, want %+v", got, want)
	}
	if got, want := m.Clamp(Address{Row: 101, Col: -4}), (Address{Row: 100, Col: 1}); got != want {
		t.Errorf("Clamp() = %+v, want %+v", got, want)
	}

	m.SetLimit(Extent{Rows: 10, Cols: 5})
	if got, want := m.Extent(), (Extent{Rows: 10, Cols: 5}); got != want {
		t.Errorf("Extent() after tighter limit = %+v, want %+v", got, want)
	}
	m.Reset()
	if got, want := m.Extent(), (Extent{Rows: 10, Cols: 5}); got != want {
		t.Errorf("Extent() after Reset = %+v, want the default capped at the limit", got)
	}
}

func TestSizeManager_NeverShrinks(t *testing.T) {
	m := NewSizeManager(testPolicy())
	m.Reconcile(50, 20)
	m.Reconcile(3, 3)
	m.EnsureCovers(Address{Row: 1, Col: 1})
	m.GrowBy(-10, -10)

	if got, want := m.Extent(), (Extent{Rows: 50, Cols: 20}); got != want {
		t.Errorf("Extent() = %+v, want %+v", got, want)
	}

	m.Reset()
	if got, want := m.Extent(), (Extent{Rows: 24, Cols: 12}); got != want {
		t.Errorf("Extent() after Reset = %+v, want %+v", got, want)
	}
}

func TestSizeManager_ScheduleCoalesces(t *testing.T) {
	m := NewSizeManager(testPolicy())

	if !m.Schedule(true, false) {
		t.Fatal("first Schedule() should request a frame")
	}
	for range 5 {
		if m.Schedule(true, false) {
			t.Error("repeated Schedule() should not request another frame")
		}
	}
	m.Schedule(false, true)
	if m.State() != GrowthScheduled {
		t.Fatalf("State() = %v, want %v", m.State(), GrowthScheduled)
	}

	if !m.ApplyScheduled() {
		t.Fatal("ApplyScheduled() should grow the extent")
	}
	if got, want := m.Extent(), (Extent{Rows: 34, Cols: 18}); got != want {
		t.Errorf("Extent() = %+v, want %+v", got, want)
	}
	if m.State() != GrowthIdle {
		t.Errorf("State() = %v, want %v", m.State(), GrowthIdle)
	}
	if m.ApplyScheduled() {
		t.Error("ApplyScheduled() with nothing pending should be a no-op")
	}
}

func TestSizeManager_ScheduleNothing(t *testing.T) {
	m := NewSizeManager(testPolicy())
	if m.Schedule(false, false) {
		t.Error("Schedule(false, false) should not request a frame")
	}
	if m.State() != GrowthIdle {
		t.Errorf("State() = %v, want %v", m.State(), GrowthIdle)
	}
}

func TestSizeManager_ResetDropsScheduledGrowth(t *testing.T) {
	m := NewSizeManager(testPolicy())
	m.Schedule(true, true)
	m.Reset()
	if m.ApplyScheduled() {
		t.Error("growth scheduled before Reset should be dropped")
	}
}

func TestSizeManager_NearEdge(t *testing.T) {
	tests := []struct {
		name     string
		lastRow  int
		lastCol  int
		wantRows bool
		wantCols bool
	}{
		{"far", 10, 5, false, false},
		{"row edge", 21, 5, true, false},
		{"just outside row edge", 20, 5, false, false},
		{"col edge", 10, 11, false, true},
		{"both", 24, 12, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSizeManager(testPolicy())
			rows, cols := m.NearEdge(tt.lastRow, tt.lastCol)
			if rows != tt.wantRows || cols != tt.wantCols {
				t.Errorf("NearEdge(%d, %d) = (%v, %v), want (%v, %v)",
					tt.lastRow, tt.lastCol, rows, cols, tt.wantRows, tt.wantCols)
			}
		})
	}
}

func TestPolicyFromConfig_Defaults(t *testing.T) {
	if got, want := DefaultPolicy(), testPolicy(); got != want {
		t.Errorf("DefaultPolicy() = %+v, want %+v", got, want)
	}
}

func TestGrowthState_String(t *testing.T) {
	if GrowthIdle.String() != "idle" || GrowthScheduled.String() != "scheduled" {
		t.Errorf("unexpected names: %q, %q", GrowthIdle, GrowthScheduled)
	}
}
