package serial

import (
	"fmt"
	"io"
)

// Port is the host end of the emulator's UART link
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate, must match the firmware build
	Baud int

	// Parity: "none", "even" or "odd". Data is 8 bits, 1 stop bit.
	Parity string

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the firmware's default link settings
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		Parity:      "none",
		ReadTimeout: 100,
	}
}

// Validate checks the settings before opening a port
func (c *Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("no device given")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	switch c.Parity {
	case "", "none", "even", "odd":
	default:
		return fmt.Errorf("unknown parity %q", c.Parity)
	}
	return nil
}
