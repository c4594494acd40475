package q16

import "bat6/x/mathx"

// Exp argument bounds. e^10 still fits the integer part; below -16 the
// result is under one LSB.
const (
	ExpMax Q16 = 10 << FracBits
	ExpMin Q16 = -16 << FracBits

	ln2 = 45426 // ln(2) in Q16

	expTerms = 7
)

// Exp returns e^x. The argument is clamped to [ExpMin, ExpMax] and reduced
// to e^x = 2^k * e^r with r in [0, ln2), then e^r is summed from a fixed
// number of Taylor terms so the cost never depends on x.
func Exp(x Q16) Q16 {
	x = Clamp(x, ExpMin, ExpMax)

	k := int32(x) / ln2
	r := int32(x) - k*ln2
	if r < 0 {
		k--
		r += ln2
	}

	sum := int64(One)
	term := int64(One)
	for n := int64(1); n <= expTerms; n++ {
		term = ((term * int64(r)) >> FracBits) / n
		sum += term
	}

	if k >= 0 {
		return Q16(mathx.Sat32(sum << uint(k)))
	}
	shift := uint(-k)
	return Q16((sum + int64(1)<<(shift-1)) >> shift)
}
