package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// DiagEvent is one entry of the post-mortem diagnostic ring.
type DiagEvent struct {
	Kind  uint8  // Diag* code
	Code  uint8  // Context: event id, channel, ...
	Clock uint32 // System clock when recorded
	Value uint32 // Context-dependent value
}

// Diagnostic kinds
const (
	DiagEventDropped     = 1 // ring full, event lost (code=event id, value=drop count)
	DiagListenerRejected = 2 // listener table full (code=event id)
	DiagUVLO             = 3 // converter tripped (value=trip count)
	DiagSpinTimeout      = 4 // bounded wait expired (value=bound)
	DiagAssert           = 5 // invariant violated in a release build
	DiagParserReset      = 6 // malformed protocol input (code=offending byte)
)

const (
	DiagRingSize = 32
)

var (
	// debugPrintln is the global debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled gates DebugPrintln. Off by default.
	debugEnabled bool = false

	diagRing     [DiagRingSize]DiagEvent
	diagRingHead uint8

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter redirects debug output to UART, USB, a test buffer, ...
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Blocks while the writer runs; listeners should prefer DebugAsync.
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking).
// The message is dropped when the channel is full.
func DebugAsync(msg string) {
	if !debugEnabled {
		return
	}
	if debugChan == nil {
		DebugPrintln(msg)
		return
	}
	select {
	case debugChan <- msg:
	default:
	}
}

// RecordDiag stores an entry in the diagnostic ring, overwriting the oldest.
func RecordDiag(kind, code uint8, value uint32) {
	state := disableInterrupts()
	idx := diagRingHead
	diagRing[idx] = DiagEvent{
		Kind:  kind,
		Code:  code,
		Clock: GetTime(),
		Value: value,
	}
	diagRingHead = (idx + 1) % DiagRingSize
	restoreInterrupts(state)
}

// DiagCount returns how many entries of the given kind are in the ring.
func DiagCount(kind uint8) int {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	n := 0
	for i := range diagRing {
		if diagRing[i].Kind == kind {
			n++
		}
	}
	return n
}

func diagName(kind uint8) string {
	switch kind {
	case DiagEventDropped:
		return "EVENT_DROPPED"
	case DiagListenerRejected:
		return "LISTENER_REJECTED"
	case DiagUVLO:
		return "UVLO"
	case DiagSpinTimeout:
		return "SPIN_TIMEOUT!"
	case DiagAssert:
		return "ASSERT!"
	case DiagParserReset:
		return "PARSER_RESET"
	default:
		return "UNKNOWN"
	}
}

// DumpDiagRing writes the ring oldest-first through the debug writer,
// regardless of the debug enable flag.
func DumpDiagRing() {
	if debugPrintln == nil {
		return
	}

	state := disableInterrupts()
	snapshot := diagRing
	start := diagRingHead
	restoreInterrupts(state)

	debugPrintln("[DIAG] === Diagnostic Ring Dump ===")
	for i := uint8(0); i < DiagRingSize; i++ {
		evt := &snapshot[(start+i)%DiagRingSize]
		if evt.Kind == 0 {
			continue
		}
		debugPrintln("[DIAG] " + diagName(evt.Kind) +
			" code=" + Itoa(int(evt.Code)) +
			" clock=" + Utoa(evt.Clock) +
			" v=" + Utoa(evt.Value))
	}
	debugPrintln("[DIAG] === End Dump ===")
}

// ClearDiagRing clears the diagnostic ring
func ClearDiagRing() {
	state := disableInterrupts()
	for i := range diagRing {
		diagRing[i] = DiagEvent{}
	}
	diagRingHead = 0
	restoreInterrupts(state)
}
