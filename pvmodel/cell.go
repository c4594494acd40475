// Package pvmodel implements the single-diode photovoltaic cell model in Q16
// fixed point. Every function is pure and safe to call from any context.
package pvmodel

import "bat6/q16"

// Cell holds the parameters of one single-diode cell or panel.
type Cell struct {
	Voc q16.Q16 // open-circuit voltage, V
	Isc q16.Q16 // short-circuit current, A
	Vt  q16.Q16 // thermal voltage coefficient, V
	G   q16.Q16 // relative irradiance, 0..1
}

// NewCell builds a cell from millivolts, milliamps, millivolts and percent.
func NewCell(vocMV, iscMA, vtMV, irradiancePct int32) Cell {
	return Cell{
		Voc: q16.FromMilli(vocMV),
		Isc: q16.FromMilli(iscMA),
		Vt:  q16.FromMilli(vtMV),
		G:   q16.FromPercent(irradiancePct),
	}
}

// Valid reports whether the parameters describe a usable cell.
func (c Cell) Valid() bool {
	return c.Voc > 0 && c.Isc > 0 && c.Vt > 0 && c.G >= 0 && c.G <= q16.One
}

// PhotoCurrent is the light-generated current isc*g, the largest current the
// cell can deliver.
func (c Cell) PhotoCurrent() q16.Q16 {
	return q16.Mul(c.Isc, c.G)
}

// DiodeCurrent returns Id(v) = isc * (g - exp((v - voc) / vt)).
func DiodeCurrent(c Cell, v q16.Q16) q16.Q16 {
	e := q16.Exp(q16.Div(q16.Sub(v, c.Voc), c.Vt))
	return q16.Mul(c.Isc, q16.Sub(c.G, e))
}

// Param names one configurable cell parameter.
type Param uint8

const (
	ParamVoc Param = iota
	ParamIsc
	ParamVt
	ParamG
)

func (p Param) String() string {
	switch p {
	case ParamVoc:
		return "voc"
	case ParamIsc:
		return "isc"
	case ParamVt:
		return "vt"
	case ParamG:
		return "g"
	default:
		return "unknown"
	}
}

// With returns a copy of c with parameter p replaced.
func (c Cell) With(p Param, v q16.Q16) (Cell, bool) {
	switch p {
	case ParamVoc:
		c.Voc = v
	case ParamIsc:
		c.Isc = v
	case ParamVt:
		c.Vt = v
	case ParamG:
		c.G = q16.Clamp(v, 0, q16.One)
	default:
		return c, false
	}
	return c, true
}
