package workbook

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Iron-Ham/sheetview/internal/engine"
	"github.com/Iron-Ham/sheetview/internal/errors"
)

func TestEngine_SetAndDisplay(t *testing.T) {
	e := New(WithSyncLoad())
	defer e.Close()

	tests := []struct {
		row, col int
		content  string
	}{
		{1, 1, "1"},
		{1, 2, "2"},
		{1, 3, "label"},
		{2, 1, "=A1+B1"},
	}
	for _, tt := range tests {
		if err := e.SetCellContent(tt.row, tt.col, tt.content); err != nil {
			t.Fatalf("SetCellContent(%d,%d,%q) error = %v", tt.row, tt.col, tt.content, err)
		}
	}

	if got := e.CellDisplay(2, 1); got != "3" {
		t.Errorf("CellDisplay(A2) = %q, want 3", got)
	}
	if got := e.CellContent(2, 1); got != "=A1+B1" {
		t.Errorf("CellContent(A2) = %q, want formula text", got)
	}
	if got := e.CellDisplay(1, 3); got != "label" {
		t.Errorf("CellDisplay(C1) = %q", got)
	}
	if got := e.CellDisplay(5, 5); got != "" {
		t.Errorf("CellDisplay(empty) = %q, want empty", got)
	}
	if e.RowCount() != 2 || e.ColumnCount() != 3 {
		t.Errorf("extent = %dx%d, want 2x3", e.RowCount(), e.ColumnCount())
	}
}

func TestEngine_ClearCell(t *testing.T) {
	e := New(WithSyncLoad())
	defer e.Close()

	_ = e.SetCellContent(3, 3, "x")
	if err := e.SetCellContent(3, 3, ""); err != nil {
		t.Fatalf("clear error = %v", err)
	}
	if e.CellContent(3, 3) != "" || e.RowCount() != 0 {
		t.Error("cell not cleared")
	}
}

func TestEngine_InvalidAddress(t *testing.T) {
	e := New()
	defer e.Close()
	if err := e.SetCellContent(0, 1, "x"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestEngine_ErrorCells(t *testing.T) {
	e := New(WithSyncLoad())
	defer e.Close()

	_ = e.SetCellContent(1, 1, "=1/0")
	_ = e.SetCellContent(1, 2, "=1+1")

	if !e.IsCellError(1, 1) {
		t.Error("IsCellError(=1/0) = false, want true")
	}
	if got := e.CellDisplay(1, 1); got == "" || got[0] != '#' {
		t.Errorf("CellDisplay(=1/0) = %q, want an error token", got)
	}
	if e.IsCellError(1, 2) {
		t.Error("IsCellError(=1+1) = true, want false")
	}
	if e.IsCellError(9, 9) {
		t.Error("IsCellError(empty) = true")
	}
}

func TestEngine_ExtentIncludesFormulaReferences(t *testing.T) {
	e := New(WithSyncLoad())
	defer e.Close()

	_ = e.SetCellContent(1, 1, "=Z100*2")
	if e.RowCount() != 100 || e.ColumnCount() != 26 {
		t.Errorf("extent = %dx%d, want 100x26", e.RowCount(), e.ColumnCount())
	}

	_ = e.SetCellContent(1, 1, "=SUM($B$2:C40)")
	if e.RowCount() != 40 || e.ColumnCount() != 3 {
		t.Errorf("extent after edit = %dx%d, want 40x3", e.RowCount(), e.ColumnCount())
	}
}

func TestFormulaRefs(t *testing.T) {
	tests := []struct {
		formula string
		want    []cellKey
	}{
		{"=A1+B2", []cellKey{{1, 1}, {2, 2}}},
		{"=SUM(A1:C3)", []cellKey{{1, 1}, {3, 3}}},
		{"=Sheet1!$D$4", []cellKey{{4, 4}}},
		{"=1+2", nil},
		{`="A1"`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			got := formulaRefs(tt.formula)
			if len(got) != len(tt.want) {
				t.Fatalf("formulaRefs(%q) = %v, want %v", tt.formula, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("formulaRefs(%q)[%d] = %v, want %v", tt.formula, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEngine_LoadDocumentSync(t *testing.T) {
	e := New(WithSyncLoad())
	defer e.Close()

	_ = e.SetCellContent(10, 10, "stale")
	if err := e.LoadDocument("1;2\n=A1+B1;"); err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}

	if e.CellContent(10, 10) != "" {
		t.Error("previous document survived load")
	}
	if got := e.CellDisplay(2, 1); got != "3" {
		t.Errorf("CellDisplay(A2) = %q, want 3", got)
	}
	if got := e.NonEmptyCellAddresses(); got != "A1\nB1\nA2" {
		t.Errorf("NonEmptyCellAddresses() = %q", got)
	}
}

func TestEngine_LoadDocumentAsync(t *testing.T) {
	e := New(WithAsyncLoad(true))
	defer e.Close()

	if err := e.LoadDocument("a;b\nc"); err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for e.NonEmptyCellAddresses() == "" {
		if time.Now().After(deadline) {
			t.Fatal("async load never populated the engine")
		}
		time.Sleep(time.Millisecond)
	}
	if e.CellContent(2, 1) != "c" {
		t.Errorf("CellContent(A2) = %q", e.CellContent(2, 1))
	}
}

func TestEngine_ResetSupersedesPendingLoad(t *testing.T) {
	e := New(WithAsyncLoad(true))
	defer e.Close()

	_ = e.LoadDocument("x")
	e.Reset()
	time.Sleep(20 * time.Millisecond)
	if e.NonEmptyCellAddresses() != "" {
		t.Error("load finished after Reset")
	}
}

func TestEngine_WriteXLSX(t *testing.T) {
	e := New(WithSyncLoad())
	defer e.Close()
	_ = e.LoadDocument("name;qty\nwidget;4")

	var buf bytes.Buffer
	if err := e.WriteXLSX(&buf); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	if got, _ := f.GetCellValue(DefaultSheet, "A2"); got != "widget" {
		t.Errorf("A2 = %q, want widget", got)
	}
}

func TestRegister(t *testing.T) {
	reg := engine.NewRegistry()
	Register(reg, WithSyncLoad())

	b, err := reg.Resolve(Name)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	caps := b.Capabilities()
	if !caps.Errors || !caps.Lister || !caps.Loader || !caps.Reset || !caps.Bounds {
		t.Errorf("Capabilities() = %+v, want all", caps)
	}
	if rows, cols := b.MaxExtent(); rows != 1048576 || cols != 16384 {
		t.Errorf("MaxExtent() = %d, %d; want 1048576, 16384", rows, cols)
	}
}
