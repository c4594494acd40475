package pvmodel

import "bat6/q16"

// Iterations is the fixed iteration count of every solver. Execution time
// never depends on the inputs.
const Iterations = 32

// CalcVoltage returns the operating voltage v* where the cell's diode current
// meets the load line v/rl, with rl = vHint/iOperating taken from the last
// measured operating point. It bisects over [0, voc].
//
// iOperating must be non-zero: callers handle the open-circuit case (return
// Voc) before calling.
func CalcVoltage(c Cell, vHint, iOperating q16.Q16) q16.Q16 {
	rl := q16.Div(vHint, iOperating)
	lo, hi := q16.Q16(0), c.Voc
	for i := 0; i < Iterations; i++ {
		mid := lo + (hi-lo)/2
		if loadMismatch(c, rl, mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return q16.Clamp(lo, 0, c.Voc)
}

// CalcVoltageNewton solves the same load-line problem as CalcVoltage with
// Newton-Raphson seeded at vHint. Each step is clamped to [0, voc] because
// the iteration can overshoot on the steep part of the exponential.
func CalcVoltageNewton(c Cell, vHint, iOperating q16.Q16) q16.Q16 {
	rl := q16.Div(vHint, iOperating)
	invRl := q16.Div(q16.One, rl)
	v := q16.Clamp(vHint, 0, c.Voc)
	for i := 0; i < Iterations; i++ {
		f := loadMismatch(c, rl, v)
		// f'(v) = -(isc/vt) * exp((v-voc)/vt) - 1/rl
		e := q16.Exp(q16.Div(q16.Sub(v, c.Voc), c.Vt))
		df := q16.Sub(q16.Neg(q16.Mul(q16.Div(c.Isc, c.Vt), e)), invRl)
		if df == 0 {
			continue
		}
		v = q16.Clamp(q16.Sub(v, q16.Div(f, df)), 0, c.Voc)
	}
	return v
}

// loadMismatch is Id(v) - v/rl. It is non-increasing in v.
func loadMismatch(c Cell, rl, v q16.Q16) q16.Q16 {
	return q16.Sub(DiodeCurrent(c, v), q16.Div(v, rl))
}

// SolveVoltage returns the terminal voltage at which the cell delivers the
// given current: Voc for current <= 0, zero at or above the photo current,
// and the bisected root of Id(v) = current in between. The result is
// non-increasing in current.
func SolveVoltage(c Cell, current q16.Q16) q16.Q16 {
	if current <= 0 {
		return c.Voc
	}
	if current >= c.PhotoCurrent() {
		return 0
	}
	lo, hi := q16.Q16(0), c.Voc
	for i := 0; i < Iterations; i++ {
		mid := lo + (hi-lo)/2
		if DiodeCurrent(c, mid) > current {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// SolveCurrent returns the current delivered at the given terminal voltage,
// clamped to [0, isc].
func SolveCurrent(c Cell, voltage q16.Q16) q16.Q16 {
	v := q16.Clamp(voltage, 0, c.Voc)
	return q16.Clamp(DiodeCurrent(c, v), 0, c.Isc)
}

// Power returns v*i.
func Power(v, i q16.Q16) q16.Q16 {
	return q16.Mul(v, i)
}

// MaxPowerPoint scans the curve in Iterations steps and returns the voltage
// and current of the highest power sample.
func MaxPowerPoint(c Cell) (v, i q16.Q16) {
	step := c.Voc / Iterations
	if step == 0 {
		return 0, 0
	}
	var best q16.Q16
	for s := q16.Q16(0); s <= c.Voc; s += step {
		cur := SolveCurrent(c, s)
		if p := Power(s, cur); p > best {
			best, v, i = p, s, cur
		}
	}
	return v, i
}
