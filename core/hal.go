package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin GPIOPin) error

	// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
	ConfigureInputPullUp(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// ReadPin reads the current pin state
	ReadPin(pin GPIOPin) bool
}

// ADCChannel identifies a monitored converter output.
type ADCChannel uint8

const (
	ADCVoltage ADCChannel = iota
	ADCCurrent

	ADCChannels
)

// SampleTimer paces ADC conversions of the monitored channels. Completed
// conversions are delivered by the target's interrupt handler, not through
// this interface.
type SampleTimer interface {
	// Start begins periodic triggering
	Start() error

	// Stop halts triggering; idempotent
	Stop()

	// Ready reports whether the converter has a conversion result pending
	Ready() bool
}

// DACChannel identifies a comparator reference output.
type DACChannel uint8

const (
	DACVoltage DACChannel = iota // USET
	DACCurrent                   // ISET
)

// DACMax is the largest code of the 12-bit reference DAC.
const DACMax = 0x0FFF

// DACDriver writes a reference code to one channel.
type DACDriver interface {
	WriteCode(ch DACChannel, code uint16) error
}
