package standalone

import (
	"io"

	"bat6/buck"
	"bat6/core"
	"bat6/pvmodel"
)

// Hardware is the set of drivers a target hands to the manager.
type Hardware struct {
	GPIO    core.GPIODriver
	DAC     core.DACDriver
	Sampler core.SampleTimer

	// Port carries protocol output to the host (UART TX)
	Port io.Writer

	// Button reports true while the knob is pressed
	Button func() bool
	// Position returns the knob's encoder count (optional)
	Position func() int
}

// Status is a snapshot of the emulator for diagnostics.
type Status struct {
	State   buck.State
	Latched bool // UVLO tripped, waiting for a long press
	Trips   uint32

	Model int
	Cell  pvmodel.Cell

	VoltageCode uint16
	CurrentCode uint16

	Ticks        uint32
	PeriodUS     uint32
	Regulations  uint32
	Dropped      uint32
	ParserResets uint32
	TxPending    int
}
