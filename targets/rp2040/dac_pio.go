//go:build rp2040

package main

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"bat6/core"
)

// MCP4922 control bits
const (
	dacSelectB = 1 << 15 // channel B
	dacBuffer  = 1 << 14 // buffered VREF
	dacGain1x  = 1 << 13
	dacActive  = 1 << 12 // not shutdown
)

// mcp4922Frame builds the 16-bit word for one channel.
func mcp4922Frame(ch core.DACChannel, code uint16) uint16 {
	frame := uint16(dacBuffer|dacGain1x|dacActive) | code&core.DACMax
	if ch == core.DACCurrent {
		frame |= dacSelectB
	}
	return frame
}

// buildDACProgram shifts one 16-bit frame MSB first with chip select
// framing. SET pins: bit 0 = SCK, bit 1 = CS.
func buildDACProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),                   // 0: pull block
		asm.Set(rp2pio.SetDestPins, 0).Encode(),          // 1: set pins, 0 (CS low)
		asm.Out(rp2pio.OutDestPins, 1).Encode(),          // 2: out pins, 1
		asm.Set(rp2pio.SetDestPins, 1).Delay(1).Encode(), // 3: set pins, 1 [1] (SCK high)
		asm.Set(rp2pio.SetDestPins, 0).Encode(),          // 4: set pins, 0
		asm.Jmp(2, rp2pio.JmpOSRNotEmpty).Encode(),       // 5: jmp !osre, 2
		asm.Set(rp2pio.SetDestPins, 2).Delay(3).Encode(), // 6: set pins, 2 [3] (CS high, latch)
		// .wrap
	}
}

const dacPIOOrigin = 0

// PIODAC drives the USET/ISET reference DAC from a PIO state machine.
type PIODAC struct {
	pio      *rp2pio.PIO
	sm       rp2pio.StateMachine
	maxSpins uint32
}

// NewPIODAC loads the program on PIO0. sck and sck+1 (CS) are SET pins.
func NewPIODAC(sck, mosi machine.Pin, maxSpins uint32) (*PIODAC, error) {
	d := &PIODAC{
		pio:      rp2pio.PIO0,
		maxSpins: maxSpins,
	}
	d.sm = d.pio.StateMachine(0)
	d.sm.TryClaim()

	program := buildDACProgram()
	offset, err := d.pio.AddProgram(program, dacPIOOrigin)
	if err != nil {
		return nil, err
	}

	cs := sck + 1
	for _, p := range []machine.Pin{sck, cs, mosi} {
		p.Configure(machine.PinConfig{Mode: d.pio.PinMode()})
	}

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(sck, 2)
	cfg.SetOutPins(mosi, 1)
	// Shift left (MSB first), explicit pull, 16-bit frames.
	cfg.SetOutShift(false, false, 16)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	// 125 MHz / 16: roughly 2 MHz SCK.
	cfg.SetClkDivIntFrac(16, 0)

	d.sm.Init(offset, cfg)
	d.sm.SetPindirsConsecutive(sck, 2, true)
	d.sm.SetPindirsConsecutive(mosi, 1, true)
	d.sm.SetPinsConsecutive(sck, 1, false)
	d.sm.SetPinsConsecutive(cs, 1, true)
	d.sm.SetEnabled(true)
	return d, nil
}

// WriteCode implements core.DACDriver
func (d *PIODAC) WriteCode(ch core.DACChannel, code uint16) error {
	if err := core.SpinUntil(func() bool { return !d.sm.IsTxFIFOFull() }, d.maxSpins); err != nil {
		return err
	}
	d.sm.TxPut(uint32(mcp4922Frame(ch, code)) << 16)
	return nil
}
