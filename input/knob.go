// Package input turns the front-panel knob (a push button on a rotary
// encoder) into bus events. Both inputs are sampled on EventUpdate, so the
// 10 ms tick also debounces them.
package input

import "bat6/core"

const (
	// DefaultLongPressTicks is 600 ms at the 10 ms UPDATE period.
	DefaultLongPressTicks = 60

	// DefaultStepsPerDetent matches a quadrature encoder with 4 edges per click.
	DefaultStepsPerDetent = 4

	// maxTwistsPerTick bounds the events one fast spin can generate.
	maxTwistsPerTick = 4
)

// Config wires the knob to its sources.
type Config struct {
	// Button reports true while the button is held down.
	Button func() bool
	// Position returns the encoder count. Nil disables twist events.
	Position func() int

	StepsPerDetent int
	LongPressTicks uint16
}

// Knob posts EventButtonPressed and EventButtonTwisted.
type Knob struct {
	cfg Config

	pressed  bool
	held     uint16
	longSent bool

	lastPos int
	accum   int
}

func New(cfg Config) *Knob {
	if cfg.StepsPerDetent <= 0 {
		cfg.StepsPerDetent = DefaultStepsPerDetent
	}
	if cfg.LongPressTicks == 0 {
		cfg.LongPressTicks = DefaultLongPressTicks
	}
	k := &Knob{cfg: cfg}
	if cfg.Position != nil {
		k.lastPos = cfg.Position()
	}
	return k
}

// Attach registers the knob's UPDATE listener.
func (k *Knob) Attach(bus *core.Bus) core.ListenerID {
	return bus.Register(core.EventUpdate, k.onUpdate)
}

func (k *Knob) onUpdate(t core.Task, ev core.Event) {
	if k.cfg.Button != nil {
		k.pollButton(t)
	}
	if k.cfg.Position != nil {
		k.pollEncoder(t)
	}
}

func (k *Knob) pollButton(t core.Task) {
	down := k.cfg.Button()
	switch {
	case down && !k.pressed:
		k.pressed = true
		k.held = 0
		k.longSent = false
		t.Post(core.ButtonEvent(core.ButtonPressed))
	case down && k.pressed:
		if k.held < k.cfg.LongPressTicks {
			k.held++
		}
		if k.held >= k.cfg.LongPressTicks && !k.longSent {
			k.longSent = true
			t.Post(core.ButtonEvent(core.ButtonPressedLonger))
		}
	case !down && k.pressed:
		k.pressed = false
		t.Post(core.ButtonEvent(core.ButtonReleased))
	}
}

func (k *Knob) pollEncoder(t core.Task) {
	pos := k.cfg.Position()
	k.accum += pos - k.lastPos
	k.lastPos = pos

	spd := k.cfg.StepsPerDetent
	for i := 0; i < maxTwistsPerTick; i++ {
		switch {
		case k.accum >= spd:
			k.accum -= spd
			t.Post(core.TwistEvent(core.TwistRight))
		case k.accum <= -spd:
			k.accum += spd
			t.Post(core.TwistEvent(core.TwistLeft))
		default:
			return
		}
	}
	// Spun faster than we report: drop the excess rather than replay it later.
	k.accum %= spd
}
