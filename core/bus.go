package core

import "sync/atomic"

const (
	// QueueSize is the number of ring slots. One slot stays empty to tell
	// full from empty, so QueueSize-1 events fit between two drains.
	QueueSize = 64

	// MaxListeners is the number of listener slots per event id.
	MaxListeners = 8
)

// Listener handles one event. It runs on the main loop with t proving it.
type Listener func(t Task, ev Event)

// ListenerID identifies a registration. Zero means the registration was
// rejected.
type ListenerID uint16

type listenerSlot struct {
	id ListenerID
	fn Listener
}

// Bus bridges interrupt handlers and the main loop. Producers (any context)
// call Post; a single consumer (the main loop) calls ProcessAll.
type Bus struct {
	listeners [EventCount][MaxListeners]listenerSlot
	counts    [EventCount]uint8
	nextID    ListenerID
	rejected  uint32

	queue [QueueSize]Event
	read  atomic.Uint32 // consumer only
	write atomic.Uint32 // producers, under the critical section

	dropped  atomic.Uint32
	draining bool
}

// NewBus returns an initialized bus.
func NewBus() *Bus {
	b := &Bus{}
	b.Init()
	return b
}

// Init clears every listener table and empties the queue. Safe to call
// repeatedly; must run before drivers register or post.
func (b *Bus) Init() {
	for id := range b.listeners {
		for i := range b.listeners[id] {
			b.listeners[id][i] = listenerSlot{}
		}
		b.counts[id] = 0
	}
	b.nextID = 0
	b.rejected = 0

	state := disableInterrupts()
	b.read.Store(0)
	b.write.Store(0)
	restoreInterrupts(state)

	b.dropped.Store(0)
	b.draining = false
}

// Register appends fn to the listeners of id. Listeners run in registration
// order. A full table or an unknown id rejects the registration and
// returns zero.
func (b *Bus) Register(id EventID, fn Listener) ListenerID {
	if id >= EventCount || fn == nil {
		b.reject(id)
		return 0
	}
	n := b.counts[id]
	if int(n) >= MaxListeners {
		b.reject(id)
		return 0
	}
	b.nextID++
	if b.nextID == 0 {
		b.nextID = 1
	}
	b.listeners[id][n] = listenerSlot{id: b.nextID, fn: fn}
	b.counts[id] = n + 1
	return b.nextID
}

func (b *Bus) reject(id EventID) {
	b.rejected++
	RecordDiag(DiagListenerRejected, uint8(id), b.rejected)
	Assert(false, "[EVENT] listener rejected for "+id.String())
}

// Unregister removes the listener registered under lid for id. The order of
// the remaining listeners is preserved. Returns false if lid is not found.
func (b *Bus) Unregister(id EventID, lid ListenerID) bool {
	if id >= EventCount || lid == 0 {
		return false
	}
	n := int(b.counts[id])
	slots := &b.listeners[id]
	for i := 0; i < n; i++ {
		if slots[i].id != lid {
			continue
		}
		copy(slots[i:n-1], slots[i+1:n])
		slots[n-1] = listenerSlot{}
		b.counts[id]--
		return true
	}
	return false
}

// Listeners returns the number of listeners registered for id.
func (b *Bus) Listeners(id EventID) int {
	if id >= EventCount {
		return 0
	}
	return int(b.counts[id])
}

// Post queues ev. It may be called from interrupt context. When the queue is
// full the event is dropped and counted; the queued events are untouched.
func (b *Bus) Post(ev Event) {
	if ev.ID >= EventCount {
		Assert(false, "[EVENT] post with unknown id")
		return
	}

	state := disableInterrupts()
	w := b.write.Load()
	next := (w + 1) % QueueSize
	if next == b.read.Load() {
		restoreInterrupts(state)
		n := b.dropped.Add(1)
		RecordDiag(DiagEventDropped, uint8(ev.ID), n)
		return
	}
	b.queue[w] = ev
	b.write.Store(next)
	restoreInterrupts(state)
}

// ProcessAll dispatches every event queued before the call, oldest first.
// Events posted while it runs, including those posted by listeners, wait for
// the next call. Main loop only. Returns the number of events dispatched.
func (b *Bus) ProcessAll() int {
	if b.draining {
		Assert(false, "[EVENT] ProcessAll re-entered from a listener")
		return 0
	}
	b.draining = true
	defer func() { b.draining = false }()

	end := b.write.Load()
	r := b.read.Load()
	Assert(end < QueueSize && r < QueueSize, "[EVENT] ring cursor out of range")

	t := Task{bus: b}
	n := 0
	for r != end {
		ev := b.queue[r]
		r = (r + 1) % QueueSize
		b.read.Store(r)
		b.dispatch(t, ev)
		n++
	}
	return n
}

func (b *Bus) dispatch(t Task, ev Event) {
	slots := &b.listeners[ev.ID]
	for i := 0; i < int(b.counts[ev.ID]); i++ {
		slots[i].fn(t, ev)
	}
}

// Within runs fn on the main loop with a valid Task, for work that is not
// triggered by an event.
func (b *Bus) Within(fn func(t Task)) {
	Assert(!inInterrupt(), "[EVENT] Within called from interrupt context")
	fn(Task{bus: b})
}

// Pending returns the number of queued events.
func (b *Bus) Pending() int {
	w := b.write.Load()
	r := b.read.Load()
	return int((w + QueueSize - r) % QueueSize)
}

// Dropped returns how many events were lost to a full queue since Init.
func (b *Bus) Dropped() uint32 {
	return b.dropped.Load()
}

// Rejected returns how many listener registrations were refused since Init.
func (b *Bus) Rejected() uint32 {
	return b.rejected
}
