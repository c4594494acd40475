package q16

import (
	"math"
	"testing"
)

func TestConversions(t *testing.T) {
	if FromInt(3) != 3*One {
		t.Errorf("Expected 3*One, got %d", FromInt(3))
	}
	if got := FromMilli(1500); got != One+Half {
		t.Errorf("Expected 1.5, got %s", got)
	}
	if got := FromPercent(50); got != Half {
		t.Errorf("Expected 0.5, got %s", got)
	}
	if got := FromFloat(-2.25); got != -(2*One + One/4) {
		t.Errorf("Expected -2.25, got %s", got)
	}
	if got := FromMilli(24000).Milli(); got != 24000 {
		t.Errorf("Expected 24000 mV round trip, got %d", got)
	}
	if got := FromInt(40000); got != Max {
		t.Errorf("Expected saturation at Max, got %d", got)
	}
	if got := (FromFloat(-0.5)).Int(); got != -1 {
		t.Errorf("Expected floor(-0.5) = -1, got %d", got)
	}
}

func TestMulDiv(t *testing.T) {
	tests := []struct {
		a, b     float64
		mul, div float64
	}{
		{3, 0.5, 1.5, 6},
		{-2, 4, -8, -0.5},
		{1.25, 1.25, 1.5625, 1},
		{100, -0.01, -1, -10000},
	}
	for _, tt := range tests {
		a, b := FromFloat(tt.a), FromFloat(tt.b)
		if got := Mul(a, b).Float64(); math.Abs(got-tt.mul) > 0.001 {
			t.Errorf("Mul(%v, %v): expected %v, got %v", tt.a, tt.b, tt.mul, got)
		}
		if got := Div(a, b).Float64(); math.Abs(got-tt.div) > math.Abs(tt.div)*0.001+0.01 {
			t.Errorf("Div(%v, %v): expected %v, got %v", tt.a, tt.b, tt.div, got)
		}
	}
}

func TestSaturation(t *testing.T) {
	if got := Mul(FromInt(30000), FromInt(30000)); got != Max {
		t.Errorf("Expected Mul overflow to saturate at Max, got %d", got)
	}
	if got := Mul(FromInt(-30000), FromInt(30000)); got != Min {
		t.Errorf("Expected Mul underflow to saturate at Min, got %d", got)
	}
	if got := Div(One, 0); got != Max {
		t.Errorf("Expected Div by zero to saturate at Max, got %d", got)
	}
	if got := Div(-One, 0); got != Min {
		t.Errorf("Expected negative Div by zero to saturate at Min, got %d", got)
	}
	if got := Add(Max, One); got != Max {
		t.Errorf("Expected Add to saturate, got %d", got)
	}
	if got := Neg(Min); got != Max {
		t.Errorf("Expected Neg(Min) to saturate at Max, got %d", got)
	}
}

func TestExpAccuracy(t *testing.T) {
	if got := Exp(0); got != One {
		t.Errorf("Expected Exp(0) == One, got %d", got)
	}
	for _, x := range []float64{-12, -5, -1.5, -0.25, 0.1, 0.6931, 1, 2.5, 5, 9.5} {
		got := Exp(FromFloat(x)).Float64()
		want := math.Exp(x)
		tol := want*0.001 + 4.0/float64(One)
		if math.Abs(got-want) > tol {
			t.Errorf("Exp(%v): expected %v, got %v", x, want, got)
		}
	}
}

func TestExpClampsArgument(t *testing.T) {
	if Exp(FromInt(20)) != Exp(ExpMax) {
		t.Error("Expected arguments above ExpMax to clamp")
	}
	if Exp(FromInt(-100)) != Exp(ExpMin) {
		t.Error("Expected arguments below ExpMin to clamp")
	}
	if Exp(Max) <= 0 {
		t.Error("Expected Exp(Max) to stay positive")
	}
}

func TestExpMonotonic(t *testing.T) {
	prev := Exp(ExpMin)
	for x := ExpMin; x <= ExpMax; x += One / 64 {
		got := Exp(x)
		if got < prev {
			t.Fatalf("Exp not monotonic at %s: %d < %d", x, got, prev)
		}
		prev = got
	}
}
