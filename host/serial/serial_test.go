package serial

import (
	"testing"

	"github.com/tarm/serial"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")
	if cfg.Baud != 115200 {
		t.Errorf("Expected baud 115200, got %d", cfg.Baud)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no device", Config{Baud: 9600}},
		{"zero baud", Config{Device: "/dev/ttyUSB0"}},
		{"parity", Config{Device: "/dev/ttyUSB0", Baud: 9600, Parity: "mark"}},
	}
	for _, tt := range tests {
		if err := tt.cfg.Validate(); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestParity(t *testing.T) {
	tests := map[string]serial.Parity{
		"":     serial.ParityNone,
		"none": serial.ParityNone,
		"even": serial.ParityEven,
		"odd":  serial.ParityOdd,
	}
	for name, want := range tests {
		if got := parity(name); got != want {
			t.Errorf("parity(%q): expected %c, got %c", name, want, got)
		}
	}
}

func TestOpenNilConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Errorf("Expected error for nil config")
	}
}
