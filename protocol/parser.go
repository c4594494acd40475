package protocol

import (
	"bat6/core"
	"bat6/pvmodel"
	"bat6/q16"
)

// State is the receive parser state.
type State uint8

const (
	StateIdle State = iota
	StateSelectModel
	StateAwaitModelConfig
	StateConfigVoc
	StateConfigIsc
	StateConfigVt
	StateConfigG
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSelectModel:
		return "SelectModel"
	case StateAwaitModelConfig:
		return "AwaitModelConfig"
	case StateConfigVoc:
		return "ConfigVoc"
	case StateConfigIsc:
		return "ConfigIsc"
	case StateConfigVt:
		return "ConfigVt"
	case StateConfigG:
		return "ConfigG"
	default:
		return "Unknown"
	}
}

// ConfigSink receives committed parameters. *pvmodel.Registry implements it.
type ConfigSink interface {
	Set(model int, p pvmodel.Param, v q16.Q16) error
}

// Parser is the UART receive state machine. It is fed from the
// DATA_RECEIVED listener on the main loop and does constant work per byte.
type Parser struct {
	state State

	// decimal is 1 until the first digit of a field, then grows by 10 per
	// digit; it doubles as the digit counter.
	decimal uint32
	model   uint32
	param   uint32

	sink ConfigSink

	commits uint32
	resets  uint32
}

// NewParser returns a parser in Idle committing to sink.
func NewParser(sink ConfigSink) *Parser {
	return &Parser{sink: sink}
}

// Attach registers the parser for DATA_RECEIVED on bus.
func (p *Parser) Attach(bus *core.Bus) core.ListenerID {
	return bus.Register(core.EventDataReceived, func(t core.Task, ev core.Event) {
		p.Feed(ev.Byte())
	})
}

// State returns the current state.
func (p *Parser) State() State { return p.state }

// SelectedModel returns the model index accumulated by the last "m" command.
func (p *Parser) SelectedModel() int { return int(p.model) }

// Commits returns how many parameters were committed.
func (p *Parser) Commits() uint32 { return p.commits }

// Resets returns how many times malformed input reset the parser.
func (p *Parser) Resets() uint32 { return p.resets }

// Reset returns the parser to Idle without counting an error.
func (p *Parser) Reset() {
	p.state = StateIdle
	p.decimal = 1
	p.param = 0
}

// Feed advances the state machine by one byte.
func (p *Parser) Feed(b byte) {
	switch p.state {
	case StateIdle:
		if b == 'm' {
			p.beginModel()
		}

	case StateSelectModel:
		if isDigit(b) {
			p.accumulate(&p.model, b)
			return
		}
		if p.decimal == 1 {
			p.fail(b)
			return
		}
		// The terminator is consumed unless it already starts the next
		// sub-command.
		p.state = StateAwaitModelConfig
		if _, ok := SelectorFor(b); ok || b == 'm' {
			p.await(b)
		}

	case StateAwaitModelConfig:
		p.await(b)

	default:
		if isDigit(b) {
			p.accumulate(&p.param, b)
			return
		}
		if p.decimal == 1 {
			p.fail(b)
			return
		}
		if !p.commit() {
			p.fail(b)
			return
		}
		p.state = StateAwaitModelConfig
		if !isSeparator(b) {
			p.await(b)
		}
	}
}

func (p *Parser) beginModel() {
	p.state = StateSelectModel
	p.decimal = 1
	p.model = 0
}

// await handles a byte in AwaitModelConfig.
func (p *Parser) await(b byte) {
	switch {
	case b == 'm':
		p.beginModel()
	case isEnd(b):
		p.Reset()
	case isSeparator(b):
	default:
		sel, ok := SelectorFor(b)
		if !ok {
			p.fail(b)
			return
		}
		p.state = sel.State
		p.decimal = 1
		p.param = 0
	}
}

func (p *Parser) accumulate(field *uint32, b byte) {
	if p.decimal >= maxDecimal {
		p.fail(b)
		return
	}
	*field = *field*10 + uint32(b-'0')
	p.decimal *= 10
}

func (p *Parser) commit() bool {
	sel, ok := SelectorForState(p.state)
	if !ok || p.sink == nil {
		return false
	}
	if err := p.sink.Set(int(p.model), sel.Param, sel.Convert(int32(p.param))); err != nil {
		return false
	}
	p.commits++
	return true
}

func (p *Parser) fail(b byte) {
	p.resets++
	core.RecordDiag(core.DiagParserReset, b, uint32(p.state))
	core.DebugAsync("[UART] malformed input in " + p.state.String() + ", byte " + core.Itoa(int(b)))
	p.Reset()
}
