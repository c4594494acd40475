package buck

import (
	"bat6/core"
	"bat6/q16"
	"bat6/x/mathx"
)

// Scale converts a raw ADC code to engineering units:
// value = (raw - Offset) * Gain.
type Scale struct {
	Offset int32   // raw code at zero
	Gain   q16.Q16 // units per code
}

func (s Scale) Apply(raw uint16) q16.Q16 {
	return q16.Mul(q16.FromInt(int32(raw)-s.Offset), s.Gain)
}

// Affine converts a setpoint in engineering units to a DAC code:
// code = target * Gain + Offset, clamped to [0, core.DACMax].
type Affine struct {
	Gain   q16.Q16 // codes per unit
	Offset q16.Q16 // codes
}

func (a Affine) Code(target q16.Q16) uint16 {
	c := q16.Add(q16.Mul(target, a.Gain), a.Offset)
	return uint16(mathx.Clamp(c.Int(), 0, core.DACMax))
}

// FullScale returns the Scale mapping codes [0, maxCode] onto [0, full].
func FullScale(full q16.Q16, maxCode int32) Scale {
	return Scale{Gain: q16.Div(full, q16.FromInt(maxCode))}
}

// FullScaleDAC returns the Affine mapping [0, full] onto [0, core.DACMax].
func FullScaleDAC(full q16.Q16) Affine {
	return Affine{Gain: q16.Div(q16.FromInt(core.DACMax), full)}
}
