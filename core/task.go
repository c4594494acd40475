package core

// Task is proof that the holder runs on the main loop. Only the Bus hands
// out valid tokens (from ProcessAll and Within), so functions that read
// interrupt-owned state take a Task instead of trusting a convention.
type Task struct {
	bus *Bus
}

// Valid reports whether the token came from a Bus.
func (t Task) Valid() bool { return t.bus != nil }

// Post queues a follow-up event. It is delivered on the next ProcessAll pass.
func (t Task) Post(ev Event) {
	t.bus.Post(ev)
}

// MustTask asserts that t is a main-loop token.
func MustTask(t Task, who string) {
	Assert(t.Valid(), who+" called outside the main loop")
}
