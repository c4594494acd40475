package core

// UpdatePeriodUS is the period of EventUpdate.
const UpdatePeriodUS = 10000

// Ticker posts EventUpdate at a fixed period from a scheduler timer.
type Ticker struct {
	bus    *Bus
	period uint32
	timer  Timer
	ticks  uint32
	missed uint32
}

// NewTicker returns a ticker posting to bus every periodUS microseconds.
func NewTicker(bus *Bus, periodUS uint32) *Ticker {
	t := &Ticker{
		bus:    bus,
		period: TimerFromUS(periodUS),
	}
	t.timer.Handler = t.fire
	return t
}

// Start schedules the first tick one period after the current time.
func (t *Ticker) Start(s *Scheduler) {
	t.timer.WakeTime = GetTime() + t.period
	s.Schedule(&t.timer)
}

// Stop cancels further ticks.
func (t *Ticker) Stop(s *Scheduler) {
	s.Cancel(&t.timer)
}

func (t *Ticker) fire(tm *Timer) uint8 {
	t.ticks++
	t.bus.Post(UpdateEvent())

	tm.WakeTime += t.period
	if now := GetTime(); !timeBefore(now, tm.WakeTime) {
		// Fell behind by more than a period: skip the missed ticks.
		t.missed++
		tm.WakeTime = now + t.period
	}
	return SF_RESCHEDULE
}

// Ticks returns the number of UPDATE events posted.
func (t *Ticker) Ticks() uint32 { return t.ticks }

// PeriodUS returns the tick period in microseconds.
func (t *Ticker) PeriodUS() uint32 { return TimerToUS(t.period) }

// Missed returns how many times the ticker resynchronized after falling behind.
func (t *Ticker) Missed() uint32 { return t.missed }
