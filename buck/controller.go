// Package buck drives the buck converter: the enable line, the sampling
// timer, the two comparator reference DACs (USET, ISET) and the
// undervoltage lockout.
//
// Methods named On* are interrupt trampolines. They only latch data,
// disable the converter, or post an event; everything else runs on the main
// loop.
package buck

import (
	"sync/atomic"

	"bat6/core"
	"bat6/q16"
)

// State of the converter.
type State uint32

const (
	Disabled State = iota
	Enabled
)

func (s State) String() string {
	if s == Enabled {
		return "enabled"
	}
	return "disabled"
}

// Config describes the board wiring and calibration of one converter.
type Config struct {
	EnablePin     core.GPIOPin
	UVLOPin       core.GPIOPin
	UVLOActiveLow bool

	VoltageScale Scale
	CurrentScale Scale
	VoltageDAC   Affine
	CurrentDAC   Affine

	// CalibrationSpins bounds each wait for a conversion during Calibrate.
	CalibrationSpins uint32
	// CalibrationSamples is the number of conversions averaged by Calibrate.
	CalibrationSamples int
}

// Controller owns one buck converter.
type Controller struct {
	cfg     Config
	bus     *core.Bus
	gpio    core.GPIODriver
	dac     core.DACDriver
	sampler core.SampleTimer

	state   atomic.Uint32
	raw     [core.ADCChannels]atomic.Uint32
	samples atomic.Uint32
	trips   atomic.Uint32

	codes [2]uint16 // last USET, ISET codes; main loop only
}

// New returns a disabled controller. Call Init before use.
func New(cfg Config, bus *core.Bus, gpio core.GPIODriver, dac core.DACDriver, sampler core.SampleTimer) *Controller {
	return &Controller{
		cfg:     cfg,
		bus:     bus,
		gpio:    gpio,
		dac:     dac,
		sampler: sampler,
	}
}

// Init configures the pins and parks both references at zero.
func (c *Controller) Init() error {
	if err := c.gpio.ConfigureOutput(c.cfg.EnablePin); err != nil {
		return err
	}
	if err := c.gpio.ConfigureInputPullUp(c.cfg.UVLOPin); err != nil {
		return err
	}
	c.Disable()
	if err := c.writeCode(core.DACVoltage, 0); err != nil {
		return err
	}
	return c.writeCode(core.DACCurrent, 0)
}

// Enable starts the converter. It refuses while the UVLO input is asserted,
// so a latched lockout only clears once the supply has recovered.
//
// The state goes to Enabled before the hardware is switched on, so a UVLO
// edge that lands while switching on always ends in Disabled. Enable then
// reports ErrUVLOActive instead of leaving a stale Enabled behind.
func (c *Controller) Enable() error {
	if c.UVLOAsserted() {
		return core.ErrUVLOActive
	}
	trips := c.trips.Load()
	c.state.Store(uint32(Enabled))
	if err := c.gpio.SetPin(c.cfg.EnablePin, true); err != nil {
		c.Disable()
		return err
	}
	if err := c.sampler.Start(); err != nil {
		c.Disable()
		return err
	}
	if c.trips.Load() != trips || c.State() != Enabled || c.UVLOAsserted() {
		c.Disable()
		return core.ErrUVLOActive
	}
	core.DebugAsync("[BUCK] enabled")
	return nil
}

// Disable stops the converter. Idempotent and safe from interrupt context.
func (c *Controller) Disable() {
	_ = c.gpio.SetPin(c.cfg.EnablePin, false)
	c.sampler.Stop()
	c.state.Store(uint32(Disabled))
}

// State returns the current state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// UVLOAsserted reads the lockout input.
func (c *Controller) UVLOAsserted() bool {
	level := c.gpio.ReadPin(c.cfg.UVLOPin)
	if c.cfg.UVLOActiveLow {
		return !level
	}
	return level
}

// Trips returns how many times UVLO disabled the converter.
func (c *Controller) Trips() uint32 {
	return c.trips.Load()
}

// OnSample latches a completed conversion. Interrupt context.
func (c *Controller) OnSample(ch core.ADCChannel, raw uint16) {
	if ch >= core.ADCChannels {
		return
	}
	c.raw[ch].Store(uint32(raw))
	c.samples.Add(1)
}

// OnUVLO handles the lockout edge. Interrupt context: the converter is off
// before this returns, and the main loop learns about it from EventUVLO.
func (c *Controller) OnUVLO() {
	c.Disable()
	n := c.trips.Add(1)
	c.bus.Post(core.UVLOEvent())
	core.RecordDiag(core.DiagUVLO, 0, n)
}

// Raw returns the latched sample of ch.
func (c *Controller) Raw(t core.Task, ch core.ADCChannel) uint16 {
	core.MustTask(t, "buck.Raw")
	if ch >= core.ADCChannels {
		return 0
	}
	return uint16(c.raw[ch].Load())
}

// Voltage returns the latest output voltage in volts.
func (c *Controller) Voltage(t core.Task) q16.Q16 {
	return c.cfg.VoltageScale.Apply(c.Raw(t, core.ADCVoltage))
}

// Current returns the latest output current in amps.
func (c *Controller) Current(t core.Task) q16.Q16 {
	return c.cfg.CurrentScale.Apply(c.Raw(t, core.ADCCurrent))
}

// SetVoltage programs the voltage reference. Out-of-range targets are
// clamped to the DAC range. Returns the code written.
func (c *Controller) SetVoltage(target q16.Q16) (uint16, error) {
	code := c.cfg.VoltageDAC.Code(target)
	return code, c.writeCode(core.DACVoltage, code)
}

// SetCurrent programs the current limit reference, clamped like SetVoltage.
func (c *Controller) SetCurrent(target q16.Q16) (uint16, error) {
	code := c.cfg.CurrentDAC.Code(target)
	return code, c.writeCode(core.DACCurrent, code)
}

// Codes returns the last USET and ISET codes written.
func (c *Controller) Codes() (uset, iset uint16) {
	return c.codes[core.DACVoltage], c.codes[core.DACCurrent]
}

func (c *Controller) writeCode(ch core.DACChannel, code uint16) error {
	c.codes[ch] = code
	return c.dac.WriteCode(ch, code)
}

// Calibrate measures the current channel's zero offset with the converter
// off and stores it in the current scale. Each conversion wait is bounded by
// CalibrationSpins; on timeout the previous offset is kept.
func (c *Controller) Calibrate(t core.Task) error {
	core.MustTask(t, "buck.Calibrate")
	if c.State() == Enabled {
		c.Disable()
	}
	n := c.cfg.CalibrationSamples
	if n <= 0 {
		n = 1
	}

	if err := c.sampler.Start(); err != nil {
		return err
	}
	defer c.sampler.Stop()

	var sum int32
	for i := 0; i < n; i++ {
		if err := core.SpinUntil(c.sampler.Ready, c.cfg.CalibrationSpins); err != nil {
			core.DebugAsync("[BUCK] calibration timed out after " + core.Itoa(i) + " samples")
			return err
		}
		sum += int32(c.raw[core.ADCCurrent].Load())
	}
	c.cfg.CurrentScale.Offset = (sum + int32(n)/2) / int32(n)
	core.DebugAsync("[BUCK] current offset " + core.Itoa(int(c.cfg.CurrentScale.Offset)))
	return nil
}

// CurrentOffset returns the calibrated zero offset of the current channel.
func (c *Controller) CurrentOffset() int32 {
	return c.cfg.CurrentScale.Offset
}
