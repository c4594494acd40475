package pvmodel

import (
	"testing"

	"bat6/core"
	"bat6/q16"
)

func TestChainSeriesSum(t *testing.T) {
	ch := Chain{testCell, testCell}
	if ch.Voc() != 2*testCell.Voc {
		t.Errorf("Expected Voc %s, got %s", 2*testCell.Voc, ch.Voc())
	}
	i := q16.FromInt(2)
	if got, want := ch.Voltage(i), 2*SolveVoltage(testCell, i); got != want {
		t.Errorf("Expected %s V, got %s V", want, got)
	}
	if back := ch.Current(ch.Voltage(i)); !near(back, i, 0.01) {
		t.Errorf("Expected round trip to %s A, got %s A", i, back)
	}
}

func TestChainLimitedByWeakestCell(t *testing.T) {
	shaded := testCell
	shaded.G = q16.FromPercent(40)
	ch := Chain{testCell, shaded}
	if !near(ch.PhotoCurrent(), q16.FromFloat(1.2), 0.001) {
		t.Errorf("Expected 1.2 A limit, got %s", ch.PhotoCurrent())
	}
	if got := ch.Current(0); got != ch.PhotoCurrent() {
		t.Errorf("Expected short circuit current %s, got %s", ch.PhotoCurrent(), got)
	}
	if got := ch.Current(ch.Voc()); got != 0 {
		t.Errorf("Expected 0 A at Voc, got %s", got)
	}
	if (Chain{}).PhotoCurrent() != 0 {
		t.Error("Expected empty chain to carry no current")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(DefaultCells)

	c, err := r.Cell(1)
	if err != nil || c.Voc != q16.FromInt(12) {
		t.Fatalf("Expected default panel 2, got %+v (%v)", c, err)
	}
	if c, _ := r.Cell(MaxModels - 1); c != DefaultCells[0] {
		t.Errorf("Expected unused slots to copy slot 0, got %+v", c)
	}

	rev := r.Revision()
	if err := r.Set(2, ParamVoc, q16.FromMilli(36000)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if r.Revision() == rev {
		t.Error("Expected revision to change after Set")
	}
	if c, _ := r.Cell(2); c.Voc != q16.FromInt(36) {
		t.Errorf("Expected 36 V, got %s", c.Voc)
	}

	if err := r.Set(3, ParamG, q16.FromInt(2)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if c, _ := r.Cell(3); c.G != q16.One {
		t.Errorf("Expected irradiance clamped to 1, got %s", c.G)
	}

	if err := r.Set(MaxModels, ParamVoc, 0); err != core.ErrModelIndex {
		t.Errorf("Expected ErrModelIndex, got %v", err)
	}
	if err := r.Set(0, Param(9), 0); err != core.ErrUnknownParam {
		t.Errorf("Expected ErrUnknownParam, got %v", err)
	}

	if err := r.Select(2); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if idx, c := r.Active(); idx != 2 || c.Voc != q16.FromInt(36) {
		t.Errorf("Expected model 2 active with 36 V, got %d with %s", idx, c.Voc)
	}
	if err := r.Select(-1); err != core.ErrModelIndex {
		t.Errorf("Expected ErrModelIndex, got %v", err)
	}
}

func TestNewCellUnits(t *testing.T) {
	c := NewCell(24000, 3000, 1500, 100)
	if c != testCell {
		t.Errorf("Expected %+v, got %+v", testCell, c)
	}
	if !c.Valid() {
		t.Error("Expected cell to be valid")
	}
	if (Cell{}).Valid() {
		t.Error("Expected zero cell to be invalid")
	}
}
