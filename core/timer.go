package core

import "sync/atomic"

// TimerFreq is the tick rate of the system timer. The RP2040 timer counts
// microseconds.
const (
	TimerFreq = 1000000
)

// systemTicks is written by the target's clock update and read from any
// context, including interrupts.
var systemTicks atomic.Uint32

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	return systemTicks.Load()
}

// SetTime sets the current system time (targets copy the hardware counter
// here; tests drive it directly)
func SetTime(ticks uint32) {
	systemTicks.Store(ticks)
}

// TimerFromUS converts microseconds to timer ticks
func TimerFromUS(us uint32) uint32 {
	return uint32(uint64(us) * TimerFreq / 1000000)
}

// TimerToUS converts timer ticks to microseconds
func TimerToUS(ticks uint32) uint32 {
	return uint32(uint64(ticks) * 1000000 / TimerFreq)
}

// timeBefore reports whether a is earlier than b, tolerating wraparound.
func timeBefore(a, b uint32) bool {
	return int32(a-b) < 0
}
