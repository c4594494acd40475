//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/encoders"
)

// newKnob wires the front-panel encoder and push button. The encoder counts
// edges from its own pin interrupts; the manager polls both on UPDATE.
func newKnob(a, b, button machine.Pin) (position func() int, pressed func() bool) {
	enc := encoders.NewQuadratureViaInterrupt(a, b)
	enc.Configure(encoders.QuadratureConfig{Precision: 1})

	button.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	return enc.Position, func() bool { return !button.Get() }
}
