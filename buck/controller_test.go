package buck

import (
	"errors"
	"testing"

	"bat6/core"
	"bat6/q16"
)

type fakeGPIO struct {
	levels map[core.GPIOPin]bool
	inputs map[core.GPIOPin]bool
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{levels: map[core.GPIOPin]bool{}, inputs: map[core.GPIOPin]bool{}}
}

func (g *fakeGPIO) ConfigureOutput(pin core.GPIOPin) error { return nil }
func (g *fakeGPIO) ConfigureInputPullUp(pin core.GPIOPin) error {
	g.inputs[pin] = true
	return nil
}
func (g *fakeGPIO) SetPin(pin core.GPIOPin, v bool) error {
	g.levels[pin] = v
	return nil
}
func (g *fakeGPIO) ReadPin(pin core.GPIOPin) bool { return g.levels[pin] }

type fakeDAC struct {
	codes [2]uint16
	fail  bool
}

func (d *fakeDAC) WriteCode(ch core.DACChannel, code uint16) error {
	if d.fail {
		return errors.New("dac offline")
	}
	d.codes[ch] = code
	return nil
}

// fakeSampler produces a current sample every third Ready poll while
// running, unless dead.
type fakeSampler struct {
	ctrl    *Controller
	running bool
	dead    bool
	polls   int
	raw     uint16
	onStart func()
}

func (s *fakeSampler) Start() error {
	s.running = true
	if s.onStart != nil {
		s.onStart()
	}
	return nil
}

func (s *fakeSampler) Stop() { s.running = false }
func (s *fakeSampler) Ready() bool {
	if !s.running || s.dead {
		return false
	}
	s.polls++
	if s.polls%3 != 0 {
		return false
	}
	s.ctrl.OnSample(core.ADCCurrent, s.raw)
	return true
}

const (
	enablePin core.GPIOPin = 5
	uvloPin   core.GPIOPin = 6
)

func testConfig() Config {
	return Config{
		EnablePin:          enablePin,
		UVLOPin:            uvloPin,
		UVLOActiveLow:      true,
		VoltageScale:       FullScale(q16.FromInt(30), 4096),
		CurrentScale:       FullScale(q16.FromInt(4), 4096),
		VoltageDAC:         FullScaleDAC(q16.FromInt(30)),
		CurrentDAC:         FullScaleDAC(q16.FromInt(4)),
		CalibrationSpins:   100,
		CalibrationSamples: 4,
	}
}

type rig struct {
	bus     *core.Bus
	gpio    *fakeGPIO
	dac     *fakeDAC
	sampler *fakeSampler
	ctrl    *Controller
}

func newRig(t *testing.T) *rig {
	r := &rig{
		bus:     core.NewBus(),
		gpio:    newFakeGPIO(),
		dac:     &fakeDAC{},
		sampler: &fakeSampler{raw: 2048},
	}
	r.ctrl = New(testConfig(), r.bus, r.gpio, r.dac, r.sampler)
	r.sampler.ctrl = r.ctrl
	r.gpio.levels[uvloPin] = true // supply healthy
	if err := r.ctrl.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return r
}

func TestEnableDisable(t *testing.T) {
	r := newRig(t)
	if r.ctrl.State() != Disabled {
		t.Fatal("Expected controller to start disabled")
	}

	if err := r.ctrl.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}
	if r.ctrl.State() != Enabled || !r.gpio.levels[enablePin] || !r.sampler.running {
		t.Error("Expected enable pin high and sampler running")
	}

	r.ctrl.Disable()
	r.ctrl.Disable()
	if r.ctrl.State() != Disabled || r.gpio.levels[enablePin] || r.sampler.running {
		t.Error("Expected enable pin low and sampler stopped")
	}
}

func TestUVLOLatchesDisabled(t *testing.T) {
	r := newRig(t)
	if err := r.ctrl.Enable(); err != nil {
		t.Fatalf("Enable failed: %v", err)
	}

	r.gpio.levels[uvloPin] = false // supply collapsed
	r.ctrl.OnUVLO()

	if r.ctrl.State() != Disabled {
		t.Fatal("Expected converter disabled before the event is processed")
	}
	if r.gpio.levels[enablePin] {
		t.Error("Expected enable pin low")
	}
	if r.bus.Pending() != 1 {
		t.Errorf("Expected exactly one queued event, got %d", r.bus.Pending())
	}

	uvlos := 0
	r.bus.Register(core.EventUVLO, func(t core.Task, ev core.Event) { uvlos++ })
	r.bus.ProcessAll()
	if uvlos != 1 {
		t.Errorf("Expected one UVLO event, got %d", uvlos)
	}

	if err := r.ctrl.Enable(); err != core.ErrUVLOActive {
		t.Errorf("Expected ErrUVLOActive while asserted, got %v", err)
	}
	if r.ctrl.State() != Disabled {
		t.Error("Expected lockout to stay latched")
	}

	r.gpio.levels[uvloPin] = true
	if err := r.ctrl.Enable(); err != nil {
		t.Errorf("Expected explicit re-enable to succeed, got %v", err)
	}
	if r.ctrl.Trips() != 1 {
		t.Errorf("Expected 1 trip, got %d", r.ctrl.Trips())
	}
}

func TestUVLODuringEnableStaysDisabled(t *testing.T) {
	r := newRig(t)
	r.sampler.onStart = func() {
		r.gpio.levels[uvloPin] = false
		r.ctrl.OnUVLO()
	}

	if err := r.ctrl.Enable(); err != core.ErrUVLOActive {
		t.Errorf("Expected ErrUVLOActive, got %v", err)
	}
	if r.ctrl.State() != Disabled {
		t.Errorf("Expected disabled, got %s", r.ctrl.State())
	}
	if r.gpio.levels[enablePin] {
		t.Error("Expected enable pin low")
	}
	if r.sampler.running {
		t.Error("Expected sampler stopped")
	}
	if r.ctrl.Trips() != 1 {
		t.Errorf("Expected 1 trip, got %d", r.ctrl.Trips())
	}
	if r.bus.Pending() != 1 {
		t.Errorf("Expected 1 pending UVLO event, got %d", r.bus.Pending())
	}
}

func TestUVLOEdgeDuringEnableWithRecoveredSupply(t *testing.T) {
	r := newRig(t)
	// The edge fires but the input reads healthy again by the time Enable
	// checks it. The trip still wins.
	r.sampler.onStart = func() { r.ctrl.OnUVLO() }

	if err := r.ctrl.Enable(); err != core.ErrUVLOActive {
		t.Errorf("Expected ErrUVLOActive, got %v", err)
	}
	if r.ctrl.State() != Disabled || r.gpio.levels[enablePin] || r.sampler.running {
		t.Error("Expected converter fully off after a trip during Enable")
	}

	r.sampler.onStart = nil
	if err := r.ctrl.Enable(); err != nil {
		t.Fatalf("Expected a later Enable to succeed, got %v", err)
	}
	if r.ctrl.State() != Enabled {
		t.Errorf("Expected enabled, got %s", r.ctrl.State())
	}
}

func TestRawOutOfRangeChannel(t *testing.T) {
	r := newRig(t)
	r.bus.Within(func(tk core.Task) {
		if got := r.ctrl.Raw(tk, core.ADCChannels); got != 0 {
			t.Errorf("Expected 0 for unknown channel, got %d", got)
		}
	})
}

func TestSetpointClamping(t *testing.T) {
	r := newRig(t)
	tests := []struct {
		name   string
		set    func(q16.Q16) (uint16, error)
		target q16.Q16
		want   uint16
	}{
		{"voltage above range", r.ctrl.SetVoltage, q16.FromInt(100), core.DACMax},
		{"voltage below range", r.ctrl.SetVoltage, q16.FromInt(-5), 0},
		{"voltage saturating", r.ctrl.SetVoltage, q16.Max, core.DACMax},
		{"current above range", r.ctrl.SetCurrent, q16.FromInt(10), core.DACMax},
		{"current below range", r.ctrl.SetCurrent, q16.Min, 0},
		{"voltage half scale", r.ctrl.SetVoltage, q16.FromInt(15), 2047},
	}
	for _, tt := range tests {
		code, err := tt.set(tt.target)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if code != tt.want {
			t.Errorf("%s: expected code %d, got %d", tt.name, tt.want, code)
		}
		if code > core.DACMax {
			t.Errorf("%s: code %d out of DAC range", tt.name, code)
		}
	}
	if uset, iset := r.ctrl.Codes(); r.dac.codes[core.DACVoltage] != uset || r.dac.codes[core.DACCurrent] != iset {
		t.Error("Expected DAC to hold the last codes")
	}
}

func TestSetpointReportsDACError(t *testing.T) {
	r := newRig(t)
	r.dac.fail = true
	if _, err := r.ctrl.SetVoltage(q16.One); err == nil {
		t.Error("Expected DAC error to propagate")
	}
}

func TestAccessorsScaleLatchedSamples(t *testing.T) {
	r := newRig(t)
	r.ctrl.OnSample(core.ADCVoltage, 2048)
	r.ctrl.OnSample(core.ADCCurrent, 1024)

	r.bus.Within(func(tk core.Task) {
		if v := r.ctrl.Voltage(tk).Float64(); v < 14.99 || v > 15.01 {
			t.Errorf("Expected 15 V, got %v", v)
		}
		if i := r.ctrl.Current(tk).Float64(); i < 0.99 || i > 1.01 {
			t.Errorf("Expected 1 A, got %v", i)
		}
	})
}

func TestCalibrate(t *testing.T) {
	r := newRig(t)
	r.sampler.raw = 37

	var err error
	r.bus.Within(func(tk core.Task) { err = r.ctrl.Calibrate(tk) })
	if err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}
	if r.ctrl.CurrentOffset() != 37 {
		t.Errorf("Expected offset 37, got %d", r.ctrl.CurrentOffset())
	}
	if r.sampler.running {
		t.Error("Expected sampler stopped after calibration")
	}

	r.ctrl.OnSample(core.ADCCurrent, 37)
	r.bus.Within(func(tk core.Task) {
		if i := r.ctrl.Current(tk); i != 0 {
			t.Errorf("Expected 0 A at the offset, got %s", i)
		}
	})
}

func TestCalibrateTimesOut(t *testing.T) {
	r := newRig(t)
	r.sampler.dead = true

	var err error
	r.bus.Within(func(tk core.Task) { err = r.ctrl.Calibrate(tk) })
	if err != core.ErrTimeout {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
	if r.ctrl.CurrentOffset() != 0 {
		t.Errorf("Expected offset unchanged, got %d", r.ctrl.CurrentOffset())
	}
}
