package pvmodel

import "bat6/q16"

// Chain is a string of cells in series: one current flows through every
// cell and the terminal voltage is the sum of the cell voltages.
type Chain []Cell

// Voc returns the open-circuit voltage of the chain.
func (ch Chain) Voc() q16.Q16 {
	var v q16.Q16
	for _, c := range ch {
		v = q16.Add(v, c.Voc)
	}
	return v
}

// PhotoCurrent returns the largest current the chain can carry, limited by
// its weakest cell.
func (ch Chain) PhotoCurrent() q16.Q16 {
	if len(ch) == 0 {
		return 0
	}
	limit := ch[0].PhotoCurrent()
	for _, c := range ch[1:] {
		if p := c.PhotoCurrent(); p < limit {
			limit = p
		}
	}
	return limit
}

// Voltage returns the terminal voltage at the given current.
func (ch Chain) Voltage(current q16.Q16) q16.Q16 {
	var v q16.Q16
	for _, c := range ch {
		v = q16.Add(v, SolveVoltage(c, current))
	}
	return v
}

// Current returns the current the chain delivers at the given terminal
// voltage, by bisection over [0, PhotoCurrent].
func (ch Chain) Current(voltage q16.Q16) q16.Q16 {
	limit := ch.PhotoCurrent()
	if voltage <= 0 {
		return limit
	}
	if voltage >= ch.Voc() {
		return 0
	}
	lo, hi := q16.Q16(0), limit
	for i := 0; i < Iterations; i++ {
		mid := lo + (hi-lo)/2
		if ch.Voltage(mid) > voltage {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}
