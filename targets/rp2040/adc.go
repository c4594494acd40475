//go:build rp2040

package main

import (
	"device/rp"
	"machine"
	"runtime/interrupt"
	"sync/atomic"

	"bat6/core"
)

// adcClock is the fixed ADC clock of the RP2040.
const adcClock = 48000000

// RPSampler free-runs the ADC over the voltage and current inputs in
// round-robin and delivers each pair from the FIFO interrupt.
type RPSampler struct {
	deliver func(ch core.ADCChannel, raw uint16)
	voltage uint8 // ADC input numbers
	current uint8
	rateHz  uint32
	count   atomic.Uint32
	seen    uint32
	running bool
}

// activeSampler is read by the interrupt handler, which cannot capture.
var activeSampler *RPSampler

// NewRPSampler configures the ADC pins. deliver is called from interrupt
// context for every completed conversion.
func NewRPSampler(voltagePin, currentPin machine.Pin, rateHz uint32, deliver func(core.ADCChannel, uint16)) *RPSampler {
	machine.InitADC()
	for _, pin := range []machine.Pin{voltagePin, currentPin} {
		adc := machine.ADC{Pin: pin}
		adc.Configure(machine.ADCConfig{})
	}

	s := &RPSampler{
		deliver: deliver,
		voltage: adcInput(voltagePin),
		current: adcInput(currentPin),
		rateHz:  rateHz,
	}
	activeSampler = s

	irq := interrupt.New(rp.IRQ_ADC_IRQ_FIFO, adcIRQ)
	irq.SetPriority(0x40)
	irq.Enable()
	return s
}

// adcInput maps GPIO26..29 to ADC inputs 0..3
func adcInput(pin machine.Pin) uint8 {
	return uint8(pin - machine.ADC0)
}

// Start begins free-running conversions
func (s *RPSampler) Start() error {
	if s.running {
		return nil
	}
	div := uint32(adcClock/(s.rateHz*2)) - 1
	rp.ADC.DIV.Set(div << rp.ADC_DIV_INT_Pos)

	// FIFO holds one voltage/current pair before interrupting.
	rp.ADC.FCS.Set(rp.ADC_FCS_EN | 2<<rp.ADC_FCS_THRESH_Pos)
	rp.ADC.INTE.Set(rp.ADC_INTE_FIFO)

	mask := uint32(1)<<s.voltage | uint32(1)<<s.current
	rp.ADC.CS.Set(rp.ADC_CS_EN |
		mask<<rp.ADC_CS_RROBIN_Pos |
		uint32(s.voltage)<<rp.ADC_CS_AINSEL_Pos |
		rp.ADC_CS_START_MANY)
	s.running = true
	return nil
}

// Stop halts conversions and drains the FIFO. Safe from interrupt context.
func (s *RPSampler) Stop() {
	rp.ADC.CS.ClearBits(rp.ADC_CS_START_MANY)
	rp.ADC.INTE.Set(0)
	for rp.ADC.FCS.Get()&rp.ADC_FCS_LEVEL_Msk != 0 {
		rp.ADC.FIFO.Get()
	}
	s.running = false
}

// Ready reports whether a new pair has been delivered since the last call
func (s *RPSampler) Ready() bool {
	n := s.count.Load()
	if n == s.seen {
		return false
	}
	s.seen = n
	return true
}

func adcIRQ(interrupt.Interrupt) {
	s := activeSampler
	for rp.ADC.FCS.Get()&rp.ADC_FCS_LEVEL_Msk>>rp.ADC_FCS_LEVEL_Pos >= 2 {
		v := uint16(rp.ADC.FIFO.Get() & 0x0FFF)
		i := uint16(rp.ADC.FIFO.Get() & 0x0FFF)
		if s.voltage > s.current {
			v, i = i, v
		}
		s.deliver(core.ADCVoltage, v)
		s.deliver(core.ADCCurrent, i)
		s.count.Add(1)
	}
}
