package protocol

import (
	"io"

	"bat6/core"
)

// DefaultSendSpins bounds how long Send waits for queue space.
const DefaultSendSpins = 10000

// Transmitter queues outgoing bytes for the UART. The main loop drains it
// with Pump; Send only waits when the queue is full, and then only for a
// bounded number of pump attempts.
type Transmitter struct {
	fifo     *FifoBuffer
	port     io.Writer
	maxSpins uint32

	sent   uint32
	errors uint32
}

// NewTransmitter returns a transmitter writing to port. A zero maxSpins
// selects DefaultSendSpins.
func NewTransmitter(port io.Writer, capacity int, maxSpins uint32) *Transmitter {
	if maxSpins == 0 {
		maxSpins = DefaultSendSpins
	}
	return &Transmitter{
		fifo:     NewFifoBuffer(capacity),
		port:     port,
		maxSpins: maxSpins,
	}
}

// Send queues data. It returns core.ErrQueueFull if the port does not make
// room in time; bytes queued before that stay queued.
func (t *Transmitter) Send(data []byte) error {
	for {
		n := t.fifo.Write(data)
		data = data[n:]
		if len(data) == 0 {
			return nil
		}
		err := core.SpinUntil(func() bool {
			t.Pump()
			return t.fifo.Free() > 0
		}, t.maxSpins)
		if err != nil {
			return core.ErrQueueFull
		}
	}
}

// SendString queues s.
func (t *Transmitter) SendString(s string) error {
	return t.Send([]byte(s))
}

// Pump writes queued bytes to the port and returns how many were accepted.
func (t *Transmitter) Pump() int {
	total := 0
	for !t.fifo.IsEmpty() {
		chunk := t.fifo.Peek()
		n, err := t.port.Write(chunk)
		if n > 0 {
			t.fifo.Pop(n)
			total += n
		}
		if err != nil {
			t.errors++
			break
		}
		if n < len(chunk) {
			break
		}
	}
	t.sent += uint32(total)
	return total
}

// Pending returns the number of queued bytes.
func (t *Transmitter) Pending() int { return t.fifo.Available() }

// Sent returns the number of bytes handed to the port.
func (t *Transmitter) Sent() uint32 { return t.sent }

// Errors returns the number of failed port writes.
func (t *Transmitter) Errors() uint32 { return t.errors }
