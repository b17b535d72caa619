package engine_test

import (
	"testing"

	"github.com/Iron-Ham/sheetview/internal/engine"
	"github.com/Iron-Ham/sheetview/internal/errors"
	"github.com/Iron-Ham/sheetview/internal/testutil"
)

func TestProbe(t *testing.T) {
	fake := testutil.NewFakeEngine()

	tests := []struct {
		name string
		eng  engine.Engine
		want engine.Capabilities
	}{
		{"nil", nil, engine.Capabilities{}},
		{"full", fake, engine.Capabilities{Errors: true, Lister: true, Loader: true, Reset: true, Bounds: true}},
		{"mandatory only", testutil.Mandatory(fake), engine.Capabilities{}},
		{"loader only", testutil.LoaderOnly(fake), engine.Capabilities{Loader: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.Probe(tt.eng); got != tt.want {
				t.Errorf("Probe() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBridge_Unavailable(t *testing.T) {
	b := engine.Unavailable()

	if b.Available() {
		t.Fatal("Available() = true for unavailable bridge")
	}
	if b.RowCount() != 0 || b.ColumnCount() != 0 || b.PopulatedCount() != 0 {
		t.Error("unavailable bridge reported non-zero extent")
	}
	if b.CellDisplay(1, 1) != "" || b.CellContent(1, 1) != "" || b.IsCellError(1, 1) {
		t.Error("unavailable bridge returned cell data")
	}
	if err := b.SetCellContent(1, 1, "x"); !errors.Is(err, errors.ErrEngineUnavailable) {
		t.Errorf("SetCellContent() error = %v, want ErrEngineUnavailable", err)
	}
	if err := b.LoadDocument("x"); !errors.Is(err, errors.ErrEngineUnavailable) {
		t.Errorf("LoadDocument() error = %v, want ErrEngineUnavailable", err)
	}
	b.Reset()
	if b.Engine() != nil || b.Close() != nil {
		t.Error("unavailable bridge should have nothing to close")
	}

	var nilBridge *engine.Bridge
	if nilBridge.Available() || nilBridge.Name() != "" || nilBridge.Close() != nil {
		t.Error("nil bridge should be unavailable")
	}
}

func TestBridge_Forwarding(t *testing.T) {
	fake := testutil.NewFakeEngine()
	b := engine.NewBridge("fake", fake)

	if err := b.SetCellContent(2, 3, "hello"); err != nil {
		t.Fatalf("SetCellContent() error = %v", err)
	}
	fake.SetError(2, 3, true)

	if b.RowCount() != 2 || b.ColumnCount() != 3 {
		t.Errorf("extent = %dx%d, want 2x3", b.RowCount(), b.ColumnCount())
	}
	if b.CellContent(2, 3) != "hello" || b.CellDisplay(2, 3) != "hello" {
		t.Error("cell content not forwarded")
	}
	if !b.IsCellError(2, 3) {
		t.Error("IsCellError() = false, want true")
	}
	if b.Name() != "fake" {
		t.Errorf("Name() = %q", b.Name())
	}
}

func TestBridge_SetCellContentError(t *testing.T) {
	fake := testutil.NewFakeEngine()
	fake.SetErr = errors.ErrCellRejected
	b := engine.NewBridge("fake", fake)

	err := b.SetCellContent(1, 1, "x")
	var engErr *errors.EngineError
	if !errors.As(err, &engErr) || engErr.Engine != "fake" {
		t.Fatalf("SetCellContent() error = %v, want EngineError from fake", err)
	}
	if !errors.Is(err, errors.ErrCellRejected) {
		t.Error("cause not preserved")
	}
}

func TestBridge_PopulatedCount(t *testing.T) {
	fake := testutil.NewFakeEngine()
	_ = fake.LoadDocument("1;2\n;3")

	if got := engine.NewBridge("fake", fake).PopulatedCount(); got != 3 {
		t.Errorf("PopulatedCount() = %d, want 3", got)
	}
	if got := engine.NewBridge("min", testutil.Mandatory(fake)).PopulatedCount(); got != 0 {
		t.Errorf("PopulatedCount() without lister = %d, want 0", got)
	}
}

func TestBridge_LoadDocument(t *testing.T) {
	fake := testutil.NewFakeEngine()

	if err := engine.NewBridge("fake", fake).LoadDocument("a;b"); err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if fake.CellContent(1, 2) != "b" {
		t.Error("document not loaded")
	}

	err := engine.NewBridge("min", testutil.Mandatory(fake)).LoadDocument("a")
	if !errors.Is(err, errors.ErrLoadUnsupported) {
		t.Errorf("LoadDocument() without capability error = %v, want ErrLoadUnsupported", err)
	}
}

func TestBridge_ResetFallbacks(t *testing.T) {
	t.Run("uses Resetter", func(t *testing.T) {
		fake := testutil.NewFakeEngine()
		_ = fake.LoadDocument("a")
		engine.NewBridge("fake", fake).Reset()
		if fake.ResetCalls != 1 || fake.RowCount() != 0 {
			t.Errorf("ResetCalls = %d, rows = %d", fake.ResetCalls, fake.RowCount())
		}
	})

	t.Run("falls back to empty load", func(t *testing.T) {
		fake := testutil.NewFakeEngine()
		_ = fake.LoadDocument("a")
		engine.NewBridge("loader", testutil.LoaderOnly(fake)).Reset()
		if fake.ResetCalls != 0 || fake.LoadCalls != 2 || fake.RowCount() != 0 {
			t.Errorf("ResetCalls = %d, LoadCalls = %d, rows = %d", fake.ResetCalls, fake.LoadCalls, fake.RowCount())
		}
	})

	t.Run("no capability leaves engine alone", func(t *testing.T) {
		fake := testutil.NewFakeEngine()
		_ = fake.LoadDocument("a")
		engine.NewBridge("min", testutil.Mandatory(fake)).Reset()
		if fake.RowCount() != 1 {
			t.Error("engine cleared without a reset capability")
		}
	})
}

func TestRegistry(t *testing.T) {
	reg := engine.NewRegistry()
	reg.Register("fake", func() (engine.Engine, error) { return testutil.NewFakeEngine(), nil })
	reg.Register("broken", func() (engine.Engine, error) { return nil, errors.New("boom") })
	reg.Register("empty", func() (engine.Engine, error) { return nil, nil })

	if got := reg.Names(); len(got) != 3 || got[0] != "broken" || got[2] != "fake" {
		t.Errorf("Names() = %v", got)
	}

	b, err := reg.Resolve("fake")
	if err != nil || !b.Available() || b.Name() != "fake" {
		t.Fatalf("Resolve(fake) = %v, %v", b, err)
	}

	tests := []struct {
		name string
	}{
		{"missing"},
		{"broken"},
		{"empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := reg.Resolve(tt.name); !errors.Is(err, errors.ErrEngineUnavailable) {
				t.Errorf("Resolve(%s) error = %v, want ErrEngineUnavailable", tt.name, err)
			}
			b, err := reg.ResolveOrUnavailable(tt.name)
			if err == nil || b == nil || b.Available() {
				t.Errorf("ResolveOrUnavailable(%s) = %v, %v", tt.name, b, err)
			}
		})
	}
}
