package standalone

import (
	"bytes"
	"testing"

	"bat6/buck"
	"bat6/core"
	"bat6/pvmodel"
	"bat6/q16"
	"bat6/standalone/config"
)

type fakeGPIO struct {
	levels map[core.GPIOPin]bool
}

func (g *fakeGPIO) ConfigureOutput(pin core.GPIOPin) error { return nil }
func (g *fakeGPIO) ConfigureInputPullUp(pin core.GPIOPin) error {
	g.levels[pin] = true
	return nil
}
func (g *fakeGPIO) SetPin(pin core.GPIOPin, v bool) error {
	g.levels[pin] = v
	return nil
}
func (g *fakeGPIO) ReadPin(pin core.GPIOPin) bool { return g.levels[pin] }

type fakeDAC struct {
	codes [2]uint16
}

func (d *fakeDAC) WriteCode(ch core.DACChannel, code uint16) error {
	d.codes[ch] = code
	return nil
}

type fakeSampler struct {
	running bool
}

func (s *fakeSampler) Start() error { s.running = true; return nil }
func (s *fakeSampler) Stop()        { s.running = false }
func (s *fakeSampler) Ready() bool  { return s.running }

type rig struct {
	m    *Manager
	cfg  *config.Config
	gpio *fakeGPIO
	dac  *fakeDAC
	port *bytes.Buffer
	down bool
	pos  int
	now  uint32
}

func newRig(t *testing.T) *rig {
	t.Helper()
	core.SetTime(0)

	r := &rig{
		cfg:  config.Default(),
		gpio: &fakeGPIO{levels: map[core.GPIOPin]bool{}},
		dac:  &fakeDAC{},
		port: &bytes.Buffer{},
	}
	m, err := NewManagerWithConfig(r.cfg)
	if err != nil {
		t.Fatalf("NewManagerWithConfig failed: %v", err)
	}
	err = m.Initialize(Hardware{
		GPIO:     r.gpio,
		DAC:      r.dac,
		Sampler:  &fakeSampler{},
		Port:     r.port,
		Button:   func() bool { return r.down },
		Position: func() int { return r.pos },
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	r.m = m
	return r
}

// run advances n update periods.
func (r *rig) run(n int) {
	for i := 0; i < n; i++ {
		r.now += core.UpdatePeriodUS
		r.m.Step(r.now)
	}
}

func (r *rig) press(ticks int) {
	r.down = true
	r.run(ticks)
	r.down = false
	r.run(2)
}

func TestManagerStartsDisabled(t *testing.T) {
	r := newRig(t)
	r.run(5)

	st := r.m.GetStatus()
	if st.State != buck.Disabled {
		t.Errorf("Expected converter disabled, got %s", st.State)
	}
	if st.Ticks != 5 {
		t.Errorf("Expected 5 ticks, got %d", st.Ticks)
	}
	if st.PeriodUS != r.cfg.UpdatePeriodUS {
		t.Errorf("Expected period %d us, got %d", r.cfg.UpdatePeriodUS, st.PeriodUS)
	}
	if st.Regulations != 0 {
		t.Errorf("Expected no regulation while disabled, got %d", st.Regulations)
	}
}

func TestManagerOpenCircuit(t *testing.T) {
	r := newRig(t)
	if err := r.m.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	ctrl := r.m.Controller()
	ctrl.OnSample(core.ADCVoltage, 3000)
	ctrl.OnSample(core.ADCCurrent, 0)
	r.run(1)

	bc := r.cfg.Controller()
	_, cell := r.m.Models().Active()
	if want := bc.VoltageDAC.Code(cell.Voc); r.dac.codes[core.DACVoltage] != want {
		t.Errorf("Expected USET %d at open circuit, got %d", want, r.dac.codes[core.DACVoltage])
	}
	if want := bc.CurrentDAC.Code(cell.PhotoCurrent()); r.dac.codes[core.DACCurrent] != want {
		t.Errorf("Expected ISET %d, got %d", want, r.dac.codes[core.DACCurrent])
	}
}

func TestManagerFollowsLoad(t *testing.T) {
	r := newRig(t)
	if err := r.m.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	ctrl := r.m.Controller()
	ctrl.OnSample(core.ADCVoltage, 2500)
	ctrl.OnSample(core.ADCCurrent, 1500)
	r.run(1)

	bc := r.cfg.Controller()
	_, cell := r.m.Models().Active()
	v := bc.VoltageScale.Apply(2500)
	i := bc.CurrentScale.Apply(1500)
	want := bc.VoltageDAC.Code(pvmodel.CalcVoltage(cell, v, i))

	if got := r.dac.codes[core.DACVoltage]; got != want {
		t.Errorf("Expected USET %d, got %d", want, got)
	}
	if r.m.GetStatus().Regulations != 1 {
		t.Errorf("Expected 1 regulation, got %d", r.m.GetStatus().Regulations)
	}
}

func TestManagerUVLOLatch(t *testing.T) {
	r := newRig(t)
	if err := r.m.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}

	uvlo := r.cfg.Controller().UVLOPin
	r.gpio.levels[uvlo] = false // active low: asserted
	r.m.Controller().OnUVLO()
	r.run(1)

	if got := r.port.String(); got != "uvlo\n" {
		t.Errorf("Expected uvlo report, got %q", got)
	}
	st := r.m.GetStatus()
	if st.State != buck.Disabled || !st.Latched {
		t.Fatalf("Expected disabled and latched, got %s latched=%v", st.State, st.Latched)
	}

	// Supply back, but a short press does not clear the latch.
	r.gpio.levels[uvlo] = true
	r.press(3)
	if r.m.GetStatus().State != buck.Disabled {
		t.Errorf("Expected short press to leave converter off after UVLO")
	}

	r.press(int(r.cfg.Knob.LongPressTicks) + 5)
	st = r.m.GetStatus()
	if st.State != buck.Enabled || st.Latched {
		t.Errorf("Expected long press to re-enable, got %s latched=%v", st.State, st.Latched)
	}
}

func TestManagerShortPressToggles(t *testing.T) {
	r := newRig(t)

	r.press(3)
	if r.m.GetStatus().State != buck.Enabled {
		t.Fatalf("Expected first press to enable")
	}
	r.press(3)
	if r.m.GetStatus().State != buck.Disabled {
		t.Errorf("Expected second press to disable")
	}
}

func TestManagerProtocol(t *testing.T) {
	r := newRig(t)
	for _, b := range []byte("m1;U18000;E50\n") {
		r.m.Bus().Post(core.DataEvent(b))
	}
	r.run(1)

	cell, err := r.m.Models().Cell(1)
	if err != nil {
		t.Fatalf("Cell failed: %v", err)
	}
	if cell.Voc.Milli() != 18000 {
		t.Errorf("Expected Voc 18000 mV, got %d", cell.Voc.Milli())
	}
	if cell.G.Percent() != 50 {
		t.Errorf("Expected irradiance 50%%, got %d", cell.G.Percent())
	}
	if r.port.Len() != 0 {
		t.Errorf("Expected no reply to a configuration command, got %q", r.port.String())
	}
}

func TestManagerTwist(t *testing.T) {
	r := newRig(t)

	r.pos = -r.cfg.Knob.StepsPerDetent
	r.run(2)
	_, cell := r.m.Models().Active()
	if cell.G.Percent() != 99 {
		t.Errorf("Expected irradiance 99%%, got %d", cell.G.Percent())
	}

	// Already at full sun: clamped.
	r.pos = 2 * r.cfg.Knob.StepsPerDetent
	r.run(2)
	_, cell = r.m.Models().Active()
	if cell.G != q16.One {
		t.Errorf("Expected irradiance clamped to 100%%, got %s", cell.G)
	}
}

func TestManagerInitializeTwice(t *testing.T) {
	r := newRig(t)
	if err := r.m.Initialize(Hardware{}); err == nil {
		t.Errorf("Expected error on second Initialize")
	}
}
