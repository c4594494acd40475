// Package link is the host side of the emulator's UART: it writes model
// configuration commands and collects the status lines the firmware sends
// back.
package link

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"bat6/host/serial"
	"bat6/protocol"
	"bat6/pvmodel"
	"bat6/q16"
)

// Link is a connection to one emulator
type Link struct {
	port io.ReadWriteCloser

	mu      sync.Mutex
	written int

	lines chan string
	done  chan struct{}
	wg    sync.WaitGroup

	// Verbose echoes every command to Log
	Verbose bool
	Log     func(format string, args ...any)
}

// Connect opens the serial port and starts the reader
func Connect(cfg *serial.Config) (*Link, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	return New(port), nil
}

// New wraps an open port and starts the reader
func New(port io.ReadWriteCloser) *Link {
	l := &Link{
		port:  port,
		lines: make(chan string, 32),
		done:  make(chan struct{}),
		Log:   func(string, ...any) {},
	}
	l.wg.Add(1)
	go l.readLoop()
	return l
}

// idlePause spaces reads while the port reports an idle line.
const idlePause = 10 * time.Millisecond

// maxLine bounds a status line; longer input is discarded.
const maxLine = 1024

func (l *Link) readLoop() {
	defer l.wg.Done()
	defer close(l.lines)

	buf := make([]byte, 256)
	var pending []byte
	for {
		n, err := l.port.Read(buf)
		pending = append(pending, buf[:n]...)
		for {
			i := bytes.IndexByte(pending, '\n')
			if i < 0 {
				break
			}
			line := strings.TrimSpace(string(pending[:i]))
			pending = pending[i+1:]
			if line == "" {
				continue
			}
			select {
			case l.lines <- line:
			case <-l.done:
				return
			}
		}
		if len(pending) > maxLine {
			pending = pending[:0]
		}

		if err != nil && !errors.Is(err, io.EOF) {
			return
		}
		if n == 0 {
			// tarm/serial returns (0, io.EOF) when ReadTimeout expires on an
			// idle line. The port stays usable until Close.
			select {
			case <-l.done:
				return
			case <-time.After(idlePause):
			}
		}
	}
}

// Lines delivers status lines from the emulator. It is closed by Close or
// when the port fails. An idle port does not close it.
func (l *Link) Lines() <-chan string {
	return l.lines
}

// WaitLine returns the next status line or an error after timeout
func (l *Link) WaitLine(timeout time.Duration) (string, error) {
	select {
	case line, ok := <-l.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-time.After(timeout):
		return "", fmt.Errorf("no status within %v", timeout)
	}
}

func (l *Link) send(cmd []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Verbose {
		l.Log("> %s", strings.TrimRight(string(cmd), "\n"))
	}
	n, err := l.port.Write(cmd)
	l.written += n
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// SendModel configures every parameter of one model slot
func (l *Link) SendModel(model int, c pvmodel.Cell) error {
	if model < 0 || model >= pvmodel.MaxModels {
		return fmt.Errorf("model %d out of range 0..%d", model, pvmodel.MaxModels-1)
	}
	return l.send(protocol.EncodeModel(model, c))
}

// SendSetting changes one parameter of one model slot
func (l *Link) SendSetting(model int, p pvmodel.Param, v q16.Q16) error {
	if model < 0 || model >= pvmodel.MaxModels {
		return fmt.Errorf("model %d out of range 0..%d", model, pvmodel.MaxModels-1)
	}
	return l.send(protocol.EncodeSetting(model, p, v))
}

// Written returns the number of bytes sent so far
func (l *Link) Written() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written
}

// Close closes the port and waits for the reader to stop
func (l *Link) Close() error {
	close(l.done)
	err := l.port.Close()
	l.wg.Wait()
	return err
}
