package core

// Itoa converts an integer to a string without the fmt package.
func Itoa(n int) string {
	if n < 0 {
		// Widen before negating so the minimum value survives.
		return "-" + u64toa(uint64(-int64(n)))
	}
	return u64toa(uint64(n))
}

// Utoa converts an unsigned integer to a string.
func Utoa(n uint32) string {
	return u64toa(uint64(n))
}

func u64toa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}
