package mathx

import "testing"

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want int
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{11, 10, 0, 10}, // swapped bounds
		{0, 0, 0, 0},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%d, %d, %d): expected %d, got %d", tt.v, tt.lo, tt.hi, tt.want, got)
		}
	}
}

func TestBetween(t *testing.T) {
	if !Between(3, 5, 1) {
		t.Error("Expected 3 to be between 5 and 1")
	}
	if Between(6, 1, 5) {
		t.Error("Expected 6 to be outside [1, 5]")
	}
}

func TestSat32(t *testing.T) {
	if got := Sat32(1 << 40); got != 1<<31-1 {
		t.Errorf("Expected max int32, got %d", got)
	}
	if got := Sat32(-(1 << 40)); got != -1<<31 {
		t.Errorf("Expected min int32, got %d", got)
	}
	if got := Sat32(-7); got != -7 {
		t.Errorf("Expected -7, got %d", got)
	}
	if got := Abs(int32(-9)); got != 9 {
		t.Errorf("Expected 9, got %d", got)
	}
}
