// Package protocol implements the emulator's ASCII configuration protocol:
// the byte-at-a-time receive parser, the transmit queue, and the encoder the
// host tool uses to produce commands.
//
// Grammar:
//
//	command  = "m" number any { setting } end
//	setting  = selector number sep
//	selector = "U" | "I" | "T" | "E"
//	sep      = " " | "," | ";" | ":" | selector | "m" | end
//	end      = "\r" | "\n"
//	any      = any byte but a digit
//
// A selector or "m" that ends a number also starts the next setting or
// command. Any other byte ending the model number is consumed with it, an
// end of line included, so settings may follow on the next line. There are
// no acknowledgements; malformed input returns the parser to Idle.
package protocol

// Version is the protocol revision reported by the host tool.
const Version = "1"

const (
	// TxQueueSize is the UART transmit queue capacity in bytes.
	TxQueueSize = 64

	// MaxDigits bounds every decimal field so accumulation cannot overflow.
	MaxDigits = 9

	maxDecimal = 1000000000 // 10^MaxDigits
)

// isSeparator reports bytes that end a number and are otherwise ignored.
func isSeparator(b byte) bool {
	return b == ' ' || b == ',' || b == ';' || b == ':'
}

func isEnd(b byte) bool {
	return b == '\r' || b == '\n'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
