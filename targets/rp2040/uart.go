//go:build rp2040

package main

import (
	"context"
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"bat6/core"
	"bat6/standalone/config"
)

// HostUART is the protocol link: received bytes become DATA_RECEIVED
// events, and the transmit queue drains into Write.
type HostUART struct {
	u   *uartx.UART
	bus *core.Bus
}

// NewHostUART configures UART0 for 8 data bits, 1 stop bit and the
// configured parity.
func NewHostUART(cfg config.UARTConfig, tx, rx machine.Pin) (*HostUART, error) {
	u := uartx.UART0
	if err := u.Configure(uartx.UARTConfig{
		BaudRate: cfg.Baud,
		TX:       tx,
		RX:       rx,
	}); err != nil {
		return nil, err
	}

	var par uartx.UARTParity
	switch cfg.Parity {
	case "even":
		par = uartx.ParityEven
	case "odd":
		par = uartx.ParityOdd
	default:
		par = uartx.ParityNone
	}
	if err := u.SetFormat(8, 1, par); err != nil {
		return nil, err
	}
	return &HostUART{u: u}, nil
}

// Write implements io.Writer for the transmit queue
func (h *HostUART) Write(b []byte) (int, error) {
	return h.u.Write(b)
}

// Run posts one event per received byte until ctx is done. It runs in its
// own goroutine; Post is safe against the main loop.
func (h *HostUART) Run(ctx context.Context, bus *core.Bus) {
	buf := make([]byte, 16)
	for {
		n, err := h.u.RecvSomeContext(ctx, buf)
		for _, b := range buf[:n] {
			bus.Post(core.DataEvent(b))
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			core.DebugAsync("[UART] receive error: " + err.Error())
		}
	}
}
