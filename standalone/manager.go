// Package standalone runs the emulator: it owns the event bus and every
// driver, registers the listeners, and performs one main-loop pass per Step.
package standalone

import (
	"errors"

	"bat6/buck"
	"bat6/core"
	"bat6/input"
	"bat6/protocol"
	"bat6/pvmodel"
	"bat6/q16"
	"bat6/standalone/config"
)

// Manager coordinates all emulator components
type Manager struct {
	config *config.Config

	bus    *core.Bus
	sched  core.Scheduler
	ticker *core.Ticker

	ctrl   *buck.Controller
	models *pvmodel.Registry
	parser *protocol.Parser
	tx     *protocol.Transmitter
	knob   *input.Knob

	// Main loop state
	latched     bool
	longPress   bool
	regulations uint32

	initialized bool
	running     bool
}

// NewManager creates a manager from a JSON configuration
func NewManager(configData []byte) (*Manager, error) {
	cfg, err := config.LoadConfig(configData)
	if err != nil {
		return nil, err
	}

	return NewManagerWithConfig(cfg)
}

// NewManagerWithConfig creates a manager with an existing config
func NewManagerWithConfig(cfg *config.Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	models := pvmodel.NewRegistry(cfg.Cells())
	if err := models.Select(cfg.ActiveModel); err != nil {
		return nil, err
	}

	bus := core.NewBus()
	mgr := &Manager{
		config: cfg,
		bus:    bus,
		ticker: core.NewTicker(bus, cfg.UpdatePeriodUS),
		models: models,
		parser: protocol.NewParser(models),
	}
	return mgr, nil
}

// Initialize wires the drivers and registers every listener. The bus must
// not be running yet: interrupts may post, but nothing is dispatched until
// the first Step.
func (m *Manager) Initialize(hw Hardware) error {
	if m.initialized {
		return errors.New("already initialized")
	}
	if hw.GPIO == nil || hw.DAC == nil || hw.Sampler == nil || hw.Port == nil {
		return errors.New("incomplete hardware")
	}

	m.ctrl = buck.New(m.config.Controller(), m.bus, hw.GPIO, hw.DAC, hw.Sampler)
	if err := m.ctrl.Init(); err != nil {
		return err
	}

	m.tx = protocol.NewTransmitter(hw.Port, protocol.TxQueueSize, protocol.DefaultSendSpins)
	m.knob = input.New(input.Config{
		Button:         hw.Button,
		Position:       hw.Position,
		StepsPerDetent: m.config.Knob.StepsPerDetent,
		LongPressTicks: m.config.Knob.LongPressTicks,
	})

	ids := []core.ListenerID{
		m.bus.Register(core.EventUpdate, m.onUpdate),
		m.knob.Attach(m.bus),
		m.parser.Attach(m.bus),
		m.bus.Register(core.EventUVLO, m.onUVLO),
		m.bus.Register(core.EventButtonPressed, m.onButton),
		m.bus.Register(core.EventButtonTwisted, m.onTwist),
	}
	for _, id := range ids {
		if id == 0 {
			return core.ErrNoListenerSlot
		}
	}

	// A failed calibration keeps the configured offset.
	m.bus.Within(func(t core.Task) {
		if err := m.ctrl.Calibrate(t); err != nil {
			core.DebugPrintln("[BUCK] calibration failed: " + err.Error())
		}
	})

	m.initialized = true
	return nil
}

// Start begins periodic updates. The converter stays off until the button
// or Enable turns it on.
func (m *Manager) Start() error {
	if !m.initialized {
		return errors.New("manager not initialized")
	}
	if m.running {
		return nil
	}
	m.ticker.Start(&m.sched)
	m.running = true
	core.DebugPrintln("[EVENT] emulator started, model " + core.Itoa(m.Model()))
	return nil
}

// Stop halts updates and turns the converter off
func (m *Manager) Stop() {
	if m.running {
		m.ticker.Stop(&m.sched)
	}
	m.running = false
	if m.ctrl != nil {
		m.ctrl.Disable()
	}
}

// IsRunning returns whether the manager is running
func (m *Manager) IsRunning() bool {
	return m.running
}

// Step performs one main-loop pass at time now: due timers, then the event
// queue, then the transmit queue. Returns the number of events dispatched.
func (m *Manager) Step(now uint32) int {
	core.SetTime(now)
	m.sched.Dispatch(now)
	n := m.bus.ProcessAll()
	m.tx.Pump()
	return n
}

// Enable turns the converter on unless a UVLO trip is latched.
func (m *Manager) Enable() error {
	if m.latched {
		return core.ErrUVLOActive
	}
	return m.ctrl.Enable()
}

// Bus returns the event bus. Interrupt handlers post to it.
func (m *Manager) Bus() *core.Bus { return m.bus }

// Controller returns the buck controller for wiring its interrupt trampolines.
func (m *Manager) Controller() *buck.Controller { return m.ctrl }

// Models returns the cell registry
func (m *Manager) Models() *pvmodel.Registry { return m.models }

// Parser returns the protocol parser
func (m *Manager) Parser() *protocol.Parser { return m.parser }

// Transmitter returns the host output queue
func (m *Manager) Transmitter() *protocol.Transmitter { return m.tx }

// Model returns the index of the emulated model
func (m *Manager) Model() int {
	idx, _ := m.models.Active()
	return idx
}

// GetStatus returns a snapshot of the emulator state
func (m *Manager) GetStatus() Status {
	idx, cell := m.models.Active()
	s := Status{
		Latched:      m.latched,
		Model:        idx,
		Cell:         cell,
		Ticks:        m.ticker.Ticks(),
		PeriodUS:     m.ticker.PeriodUS(),
		Regulations:  m.regulations,
		Dropped:      m.bus.Dropped(),
		ParserResets: m.parser.Resets(),
	}
	if m.ctrl != nil {
		s.State = m.ctrl.State()
		s.Trips = m.ctrl.Trips()
		s.VoltageCode, s.CurrentCode = m.ctrl.Codes()
	}
	if m.tx != nil {
		s.TxPending = m.tx.Pending()
	}
	return s
}

// onUpdate follows the active cell's I-V curve: the voltage reference is
// moved to where the cell would sit for the load seen at the last sample,
// and the current limit to the cell's photo current.
func (m *Manager) onUpdate(t core.Task, ev core.Event) {
	if m.ctrl.State() != buck.Enabled {
		return
	}
	_, cell := m.models.Active()

	v := m.ctrl.Voltage(t)
	i := m.ctrl.Current(t)

	target := cell.Voc
	if i > 0 {
		target = pvmodel.CalcVoltage(cell, v, i)
	}

	if _, err := m.ctrl.SetVoltage(target); err != nil {
		core.DebugAsync("[BUCK] USET write failed: " + err.Error())
		return
	}
	if _, err := m.ctrl.SetCurrent(cell.PhotoCurrent()); err != nil {
		core.DebugAsync("[BUCK] ISET write failed: " + err.Error())
		return
	}
	m.regulations++
}

// onUVLO runs after the controller has already switched off.
func (m *Manager) onUVLO(t core.Task, ev core.Event) {
	m.latched = true
	if core.IsDebugEnabled() {
		core.DebugAsync("[BUCK] UVLO, converter disabled (trip " + core.Utoa(m.ctrl.Trips()) + ")")
	}
	if err := m.tx.SendString("uvlo\n"); err != nil {
		core.DebugAsync("[UART] uvlo report dropped")
	}
}

// onButton: a short press toggles the converter, a long press clears a UVLO
// latch and turns it on.
func (m *Manager) onButton(t core.Task, ev core.Event) {
	switch ev.Action() {
	case core.ButtonPressedLonger:
		m.longPress = true
		m.latched = false
		if m.ctrl.State() != buck.Enabled {
			m.enable("long press")
		}
	case core.ButtonReleased:
		if m.longPress {
			m.longPress = false
			return
		}
		if m.ctrl.State() == buck.Enabled {
			m.ctrl.Disable()
			core.DebugAsync("[KNOB] converter off")
			return
		}
		m.enable("short press")
	}
}

func (m *Manager) enable(why string) {
	if err := m.Enable(); err != nil {
		core.DebugAsync("[KNOB] " + why + ": " + err.Error())
		return
	}
	core.DebugAsync("[KNOB] converter on")
}

// onTwist trims the active model's irradiance.
func (m *Manager) onTwist(t core.Task, ev core.Event) {
	idx, cell := m.models.Active()
	step := q16.FromPercent(m.config.Knob.StepPct)
	if ev.Direction() == core.TwistLeft {
		step = q16.Neg(step)
	}
	g := q16.Clamp(q16.Add(cell.G, step), 0, q16.One)
	if err := m.models.Set(idx, pvmodel.ParamG, g); err != nil {
		core.DebugAsync("[KNOB] " + err.Error())
		return
	}
	core.DebugAsync("[KNOB] irradiance " + core.Itoa(int(g.Percent())) + "%")
}
