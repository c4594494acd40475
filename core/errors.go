package core

// Error is a constant firmware error value. Comparable with ==, so it can be
// returned from interrupt-adjacent code without allocating.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrTimeout        Error = "timeout waiting for hardware ready"
	ErrQueueFull      Error = "queue full"
	ErrNoListenerSlot Error = "no free listener slot"
	ErrUVLOActive     Error = "undervoltage lockout active"
	ErrModelIndex     Error = "model index out of range"
	ErrUnknownParam   Error = "unknown cell parameter"
	ErrUnknownPin     Error = "pin not configured"
)
