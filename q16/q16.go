// Package q16 implements signed 16.16 fixed-point arithmetic for the
// control path and the PV cell solver. All operations saturate instead of
// wrapping.
package q16

import (
	"math"
	"strconv"

	"bat6/x/mathx"
)

// Q16 is a signed fixed-point value with 16 integer and 16 fractional bits.
type Q16 int32

const (
	FracBits = 16

	One  Q16 = 1 << FracBits
	Half Q16 = One / 2

	Max Q16 = 1<<31 - 1
	Min Q16 = -1 << 31
)

// FromInt converts an integer, saturating outside [-32768, 32767].
func FromInt(i int32) Q16 {
	return Q16(mathx.Sat32(int64(i) << FracBits))
}

// FromRatio returns num/den rounded to nearest. A zero denominator saturates
// towards the sign of num.
func FromRatio(num, den int32) Q16 {
	if den == 0 {
		return saturate(num >= 0)
	}
	n := int64(num) << FracBits
	d := int64(den)
	if (n < 0) != (d < 0) {
		n -= d / 2
	} else {
		n += d / 2
	}
	return Q16(mathx.Sat32(n / d))
}

// FromMilli converts a value given in thousandths (mV, mA).
func FromMilli(m int32) Q16 {
	return FromRatio(m, 1000)
}

// FromPercent converts a percentage to a fraction of One.
func FromPercent(p int32) Q16 {
	return FromRatio(p, 100)
}

// FromFloat is meant for constants and tests; the firmware hot path never
// touches floating point.
func FromFloat(f float64) Q16 {
	v := math.Round(f * float64(One))
	if v >= float64(Max) {
		return Max
	}
	if v <= float64(Min) {
		return Min
	}
	return Q16(v)
}

func (q Q16) Float64() float64 {
	return float64(q) / float64(One)
}

// Int truncates towards negative infinity.
func (q Q16) Int() int32 {
	return int32(q) >> FracBits
}

// Milli returns the value in thousandths, rounded to nearest.
func (q Q16) Milli() int32 {
	return mathx.Sat32((int64(q)*1000 + int64(Half)) >> FracBits)
}

// Percent returns the value in hundredths, rounded to nearest.
func (q Q16) Percent() int32 {
	return mathx.Sat32((int64(q)*100 + int64(Half)) >> FracBits)
}

func (q Q16) String() string {
	return strconv.FormatFloat(q.Float64(), 'f', 4, 64)
}

func Mul(a, b Q16) Q16 {
	return Q16(mathx.Sat32((int64(a) * int64(b)) >> FracBits))
}

// Div returns a/b. Division by zero saturates towards the sign of a.
func Div(a, b Q16) Q16 {
	if b == 0 {
		return saturate(a >= 0)
	}
	return Q16(mathx.Sat32((int64(a) << FracBits) / int64(b)))
}

func Add(a, b Q16) Q16 {
	return Q16(mathx.Sat32(int64(a) + int64(b)))
}

func Sub(a, b Q16) Q16 {
	return Q16(mathx.Sat32(int64(a) - int64(b)))
}

func Neg(a Q16) Q16 {
	return Q16(mathx.Sat32(-int64(a)))
}

func Clamp(v, lo, hi Q16) Q16 {
	return mathx.Clamp(v, lo, hi)
}

func saturate(positive bool) Q16 {
	if positive {
		return Max
	}
	return Min
}
