package core

// EventID identifies an event kind. The set is closed at build time.
type EventID uint8

const (
	// EventUpdate is the periodic 10 ms tick.
	EventUpdate EventID = iota
	// EventButtonPressed carries a ButtonAction.
	EventButtonPressed
	// EventButtonTwisted carries a Direction.
	EventButtonTwisted
	// EventUVLO is posted after the converter was disabled by undervoltage lockout.
	EventUVLO
	// EventDataReceived carries one received UART byte.
	EventDataReceived

	EventCount
)

func (id EventID) String() string {
	switch id {
	case EventUpdate:
		return "UPDATE"
	case EventButtonPressed:
		return "BUTTON_PRESSED"
	case EventButtonTwisted:
		return "BUTTON_TWISTED"
	case EventUVLO:
		return "UVLO"
	case EventDataReceived:
		return "DATA_RECEIVED"
	default:
		return "UNKNOWN"
	}
}

// ButtonAction is the payload of EventButtonPressed.
type ButtonAction uint8

const (
	ButtonPressed ButtonAction = iota + 1
	ButtonPressedLonger
	ButtonReleased
)

// Direction is the payload of EventButtonTwisted.
type Direction uint8

const (
	TwistLeft Direction = iota + 1
	TwistRight
)

// Event is a queued notification. The payload is private and only reachable
// through the typed constructors and accessors below, so every payload fits
// in a single half-word slot.
type Event struct {
	ID  EventID
	arg uint16
}

func UpdateEvent() Event { return Event{ID: EventUpdate} }

func UVLOEvent() Event { return Event{ID: EventUVLO} }

func ButtonEvent(a ButtonAction) Event {
	return Event{ID: EventButtonPressed, arg: uint16(a)}
}

func TwistEvent(d Direction) Event {
	return Event{ID: EventButtonTwisted, arg: uint16(d)}
}

func DataEvent(b byte) Event {
	return Event{ID: EventDataReceived, arg: uint16(b)}
}

// Action is valid for EventButtonPressed only.
func (e Event) Action() ButtonAction { return ButtonAction(e.arg) }

// Direction is valid for EventButtonTwisted only.
func (e Event) Direction() Direction { return Direction(e.arg) }

// Byte is valid for EventDataReceived only.
func (e Event) Byte() byte { return byte(e.arg) }
