//go:build rp2040

package main

import (
	"machine"

	"bat6/core"
)

// RPGPIODriver implements core.GPIODriver on the RP2040
type RPGPIODriver struct {
	// Track configured pins to prevent conflicts
	configuredPins map[core.GPIOPin]machine.Pin
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
}

// ConfigureOutput configures a pin as a digital output
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	if _, exists := d.configuredPins[pin]; exists {
		return nil
	}
	mp := machine.Pin(pin)
	mp.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.configuredPins[pin] = mp
	return nil
}

func (d *RPGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	if _, exists := d.configuredPins[pin]; exists {
		return nil
	}
	mp := machine.Pin(pin)
	mp.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	d.configuredPins[pin] = mp
	return nil
}

// SetPin drives an output. Called from the UVLO interrupt, so it must not
// configure: pins are configured once during init.
func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	mp, exists := d.configuredPins[pin]
	if !exists {
		return core.ErrUnknownPin
	}
	mp.Set(value)
	return nil
}

// ReadPin reads the current pin level; unconfigured pins read low
func (d *RPGPIODriver) ReadPin(pin core.GPIOPin) bool {
	mp, exists := d.configuredPins[pin]
	if !exists {
		return false
	}
	return mp.Get()
}
