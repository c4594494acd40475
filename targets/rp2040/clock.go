//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"bat6/core"
)

// RP2040 timer peripheral
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x28 // raw low word, no latching
)

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

// GetHardwareTime returns the low 32 bits of the 1 MHz microsecond counter,
// which matches core.TimerFreq.
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// UpdateSystemTime copies the hardware counter into the core clock
func UpdateSystemTime() {
	core.SetTime(GetHardwareTime())
}
