package core

// Timer represents a scheduled callback
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	Next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// maxDispatch bounds the handlers run by one Dispatch call so a timer that
// keeps rescheduling itself into the past cannot starve the event loop.
const maxDispatch = 16

// Scheduler keeps timers sorted by WakeTime. Schedule may be called from
// interrupt context; Dispatch runs on the main loop and calls handlers
// outside the critical section.
type Scheduler struct {
	list *Timer
}

// Schedule adds t to the schedule
func (s *Scheduler) Schedule(t *Timer) {
	state := disableInterrupts()
	s.insert(t)
	restoreInterrupts(state)
}

// Cancel removes t if it is scheduled
func (s *Scheduler) Cancel(t *Timer) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	link := &s.list
	for *link != nil {
		if *link == t {
			*link = t.Next
			t.Next = nil
			return
		}
		link = &(*link).Next
	}
}

// insert places t in sorted order by WakeTime, after timers with the same
// wake time
func (s *Scheduler) insert(t *Timer) {
	if s.list == nil || timeBefore(t.WakeTime, s.list.WakeTime) {
		t.Next = s.list
		s.list = t
		return
	}

	current := s.list
	for current.Next != nil && !timeBefore(t.WakeTime, current.Next.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// Dispatch runs timers due at now and returns how many ran
func (s *Scheduler) Dispatch(now uint32) int {
	ran := 0
	for ran < maxDispatch {
		state := disableInterrupts()
		timer := s.list
		if timer == nil || timeBefore(now, timer.WakeTime) {
			restoreInterrupts(state)
			break
		}
		s.list = timer.Next
		timer.Next = nil
		restoreInterrupts(state)

		ran++
		if timer.Handler(timer) == SF_RESCHEDULE {
			s.Schedule(timer)
		}
	}
	return ran
}

// Empty reports whether no timer is scheduled
func (s *Scheduler) Empty() bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return s.list == nil
}
