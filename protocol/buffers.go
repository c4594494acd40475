package protocol

// FifoBuffer is a fixed-capacity byte ring. One slot stays free, so it holds
// capacity-1 bytes and is full when advancing write would reach read.
type FifoBuffer struct {
	buf   []byte
	read  int
	write int
}

// NewFifoBuffer allocates the ring once; nothing allocates afterwards.
func NewFifoBuffer(capacity int) *FifoBuffer {
	if capacity < 2 {
		capacity = 2
	}
	return &FifoBuffer{buf: make([]byte, capacity)}
}

func (f *FifoBuffer) next(i int) int {
	i++
	if i == len(f.buf) {
		return 0
	}
	return i
}

// Write appends as much of data as fits and returns the count written.
func (f *FifoBuffer) Write(data []byte) int {
	written := 0
	for _, b := range data {
		nextWrite := f.next(f.write)
		if nextWrite == f.read {
			break
		}
		f.buf[f.write] = b
		f.write = nextWrite
		written++
	}
	return written
}

// Read moves up to len(data) bytes out of the ring.
func (f *FifoBuffer) Read(data []byte) int {
	n := 0
	for n < len(data) && f.read != f.write {
		data[n] = f.buf[f.read]
		f.read = f.next(f.read)
		n++
	}
	return n
}

// Available returns the number of queued bytes.
func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return len(f.buf) - f.read + f.write
}

// Free returns the number of bytes that can still be written.
func (f *FifoBuffer) Free() int {
	return len(f.buf) - f.Available() - 1
}

// Peek returns the contiguous run of queued bytes starting at the read
// cursor without copying. When the data wraps, the remainder is returned by
// the next Peek after Pop.
func (f *FifoBuffer) Peek() []byte {
	if f.read <= f.write {
		return f.buf[f.read:f.write]
	}
	return f.buf[f.read:]
}

// Pop discards n queued bytes.
func (f *FifoBuffer) Pop(n int) {
	for i := 0; i < n && f.read != f.write; i++ {
		f.read = f.next(f.read)
	}
}

func (f *FifoBuffer) IsEmpty() bool {
	return f.read == f.write
}

func (f *FifoBuffer) Reset() {
	f.read = 0
	f.write = 0
}
