package grid

import "github.com/Iron-Ham/sheetview/internal/config"

// Extent is a (rows, cols) size.
type Extent struct {
	Rows int
	Cols int
}

// Covers reports whether a lies inside the extent.
func (e Extent) Covers(a Address) bool {
	return a.Row >= 1 && a.Col >= 1 && a.Row <= e.Rows && a.Col <= e.Cols
}

// Policy holds the growth constants of the size manager.
type Policy struct {
	DefaultRows int
	DefaultCols int
	RowStep     int
	ColStep     int
	EdgeRows    int
	EdgeCols    int
}

// DefaultPolicy returns the policy used when no configuration is given.
func DefaultPolicy() Policy {
	return PolicyFromConfig(config.Default().Grid)
}

// PolicyFromConfig converts the grid section of the configuration.
func PolicyFromConfig(c config.GridConfig) Policy {
	return Policy{
		DefaultRows: c.DefaultRows,
		DefaultCols: c.DefaultCols,
		RowStep:     c.RowStep,
		ColStep:     c.ColStep,
		EdgeRows:    c.EdgeRows,
		EdgeCols:    c.EdgeCols,
	}
}

// GrowthState tracks whether edge-proximity growth is waiting for a frame.
type GrowthState int

const (
	// GrowthIdle means no growth is pending.
	GrowthIdle GrowthState = iota
	// GrowthScheduled means growth will be applied on the next frame.
	GrowthScheduled
)

// String returns the state name.
func (s GrowthState) String() string {
	if s == GrowthScheduled {
		return "scheduled"
	}
	return "idle"
}

// SizeManager owns the logical extent of the view. The extent only grows;
// Reset is the single way back to the default size.
type SizeManager struct {
	extent Extent
	limit  Extent
	policy Policy

	state    GrowthState
	wantRows bool
	wantCols bool
}

// NewSizeManager starts at the policy's default extent, limited to
// MaxRows x MaxCols.
func NewSizeManager(p Policy) *SizeManager {
	m := &SizeManager{policy: p, limit: Extent{Rows: MaxRows, Cols: MaxCols}}
	m.Reset()
	return m
}

// Limit returns the largest extent the manager will grow to.
func (m *SizeManager) Limit() Extent {
	return m.limit
}

// SetLimit tightens the growth limit. Axes that are non-positive or larger
// than MaxRows x MaxCols keep the sheet maximum. An extent already past the
// new limit is cut back to it.
func (m *SizeManager) SetLimit(l Extent) {
	m.limit = Extent{Rows: clampAxis(l.Rows, MaxRows), Cols: clampAxis(l.Cols, MaxCols)}
	m.extent = Extent{Rows: min(m.extent.Rows, m.limit.Rows), Cols: min(m.extent.Cols, m.limit.Cols)}
}

func clampAxis(v, ceiling int) int {
	if v <= 0 || v > ceiling {
		return ceiling
	}
	return v
}

// Clamp moves a inside the limit.
func (m *SizeManager) Clamp(a Address) Address {
	return Address{
		Row: min(max(1, a.Row), m.limit.Rows),
		Col: min(max(1, a.Col), m.limit.Cols),
	}
}

// Extent returns the current logical extent.
func (m *SizeManager) Extent() Extent {
	return m.extent
}

// Policy returns the active growth policy.
func (m *SizeManager) Policy() Policy {
	return m.policy
}

// SetPolicy replaces the growth policy. The current extent is kept.
func (m *SizeManager) SetPolicy(p Policy) {
	m.policy = p
}

// State returns the growth state.
func (m *SizeManager) State() GrowthState {
	return m.state
}

// EnsureCovers grows each axis independently so that a is inside the
// extent, never past the limit. It reports whether the extent changed.
func (m *SizeManager) EnsureCovers(a Address) bool {
	return m.Reconcile(a.Row, a.Col)
}

// GrowBy adds rows and columns unconditionally. Negative deltas are ignored.
func (m *SizeManager) GrowBy(dRows, dCols int) bool {
	return m.Reconcile(m.extent.Rows+max(0, dRows), m.extent.Cols+max(0, dCols))
}

// Reconcile raises each axis to at least the given size, capped at the
// limit.
func (m *SizeManager) Reconcile(rows, cols int) bool {
	next := Extent{
		Rows: max(m.extent.Rows, min(rows, m.limit.Rows)),
		Cols: max(m.extent.Cols, min(cols, m.limit.Cols)),
	}
	changed := next != m.extent
	m.extent = next
	return changed
}

// Reset returns to the default extent and drops any scheduled growth.
func (m *SizeManager) Reset() {
	m.extent = Extent{
		Rows: min(max(1, m.policy.DefaultRows), m.limit.Rows),
		Cols: min(max(1, m.policy.DefaultCols), m.limit.Cols),
	}
	m.state = GrowthIdle
	m.wantRows, m.wantCols = false, false
}

// Schedule requests growth along the given axes on the next frame. It
// returns true only for the request that moved the manager out of
// GrowthIdle; later requests in the same frame merge their axes.
func (m *SizeManager) Schedule(rows, cols bool) bool {
	if !rows && !cols {
		return false
	}
	m.wantRows = m.wantRows || rows
	m.wantCols = m.wantCols || cols
	if m.state == GrowthScheduled {
		return false
	}
	m.state = GrowthScheduled
	return true
}

// ApplyScheduled performs the pending growth, one step per requested axis,
// and returns to GrowthIdle. It reports whether the extent changed.
func (m *SizeManager) ApplyScheduled() bool {
	if m.state != GrowthScheduled {
		return false
	}
	dRows, dCols := 0, 0
	if m.wantRows {
		dRows = m.policy.RowStep
	}
	if m.wantCols {
		dCols = m.policy.ColStep
	}
	m.state = GrowthIdle
	m.wantRows, m.wantCols = false, false
	return m.GrowBy(dRows, dCols)
}

// NearEdge reports, per axis, whether the last visible row or column is
// within the policy's edge distance of the extent boundary.
func (m *SizeManager) NearEdge(lastRow, lastCol int) (rows, cols bool) {
	return lastRow >= m.extent.Rows-m.policy.EdgeRows, lastCol >= m.extent.Cols-m.policy.EdgeCols
}
