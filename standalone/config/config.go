// Package config holds the firmware configuration of the emulator board.
package config

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"bat6/buck"
	"bat6/core"
	"bat6/pvmodel"
	"bat6/q16"
)

// Config is the complete board configuration.
type Config struct {
	Pins           PinConfig     `json:"pins"`
	Buck           BuckConfig    `json:"buck"`
	UART           UARTConfig    `json:"uart"`
	Knob           KnobConfig    `json:"knob"`
	Models         []ModelConfig `json:"models"`
	ActiveModel    int           `json:"active_model"`
	UpdatePeriodUS uint32        `json:"update_period_us"`
	Debug          bool          `json:"debug"`
}

// PinConfig maps board functions to GPIO names ("gpio12" or "12").
type PinConfig struct {
	Enable     string `json:"enable"`
	UVLO       string `json:"uvlo"`
	Button     string `json:"button"`
	KnobA      string `json:"knob_a"`
	KnobB      string `json:"knob_b"`
	DACClock   string `json:"dac_sck"` // DAC chip select is the next pin
	DACData    string `json:"dac_mosi"`
	UARTTx     string `json:"uart_tx"`
	UARTRx     string `json:"uart_rx"`
	ADCVoltage string `json:"adc_voltage"`
	ADCCurrent string `json:"adc_current"`
}

// BuckConfig holds the converter's scaling and calibration.
type BuckConfig struct {
	UVLOActiveLow bool `json:"uvlo_active_low"`

	ADCBits            int   `json:"adc_bits"`
	VoltageFullScaleMV int32 `json:"voltage_full_scale_mv"`
	CurrentFullScaleMA int32 `json:"current_full_scale_ma"`
	CurrentOffset      int32 `json:"current_offset"`

	// Setpoints that produce the DAC's top code.
	VoltageDACFullScaleMV int32 `json:"voltage_dac_full_scale_mv"`
	CurrentDACFullScaleMA int32 `json:"current_dac_full_scale_ma"`

	SampleRateHz       uint32 `json:"sample_rate_hz"`
	CalibrationSpins   uint32 `json:"calibration_spins"`
	CalibrationSamples int    `json:"calibration_samples"`
}

// UARTConfig is the host link format. Data is always 8 bits, 1 stop bit.
type UARTConfig struct {
	Baud   uint32 `json:"baud"`
	Parity string `json:"parity"` // none, even, odd
}

// KnobConfig tunes the front-panel knob.
type KnobConfig struct {
	LongPressTicks uint16 `json:"long_press_ticks"`
	StepsPerDetent int    `json:"steps_per_detent"`
	StepPct        int32  `json:"step_pct"` // irradiance change per detent
}

// ModelConfig is one default cell model.
type ModelConfig struct {
	VocMV         int32 `json:"voc_mv"`
	IscMA         int32 `json:"isc_ma"`
	VtMV          int32 `json:"vt_mv"`
	IrradiancePct int32 `json:"irradiance_pct"` // 0 reads as full sun
}

// LoadConfig parses a JSON configuration and fills in defaults
func LoadConfig(jsonData []byte) (*Config, error) {
	var config Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyDefaults fills in missing values from Default
func applyDefaults(config *Config) {
	def := Default()

	p, dp := &config.Pins, def.Pins
	defaultString(&p.Enable, dp.Enable)
	defaultString(&p.UVLO, dp.UVLO)
	defaultString(&p.Button, dp.Button)
	defaultString(&p.KnobA, dp.KnobA)
	defaultString(&p.KnobB, dp.KnobB)
	defaultString(&p.DACClock, dp.DACClock)
	defaultString(&p.DACData, dp.DACData)
	defaultString(&p.UARTTx, dp.UARTTx)
	defaultString(&p.UARTRx, dp.UARTRx)
	defaultString(&p.ADCVoltage, dp.ADCVoltage)
	defaultString(&p.ADCCurrent, dp.ADCCurrent)

	b := &config.Buck
	if b.ADCBits == 0 {
		b.ADCBits = def.Buck.ADCBits
	}
	if b.VoltageFullScaleMV == 0 {
		b.VoltageFullScaleMV = def.Buck.VoltageFullScaleMV
	}
	if b.CurrentFullScaleMA == 0 {
		b.CurrentFullScaleMA = def.Buck.CurrentFullScaleMA
	}
	if b.VoltageDACFullScaleMV == 0 {
		b.VoltageDACFullScaleMV = def.Buck.VoltageDACFullScaleMV
	}
	if b.CurrentDACFullScaleMA == 0 {
		b.CurrentDACFullScaleMA = def.Buck.CurrentDACFullScaleMA
	}
	if b.SampleRateHz == 0 {
		b.SampleRateHz = def.Buck.SampleRateHz
	}
	if b.CalibrationSpins == 0 {
		b.CalibrationSpins = def.Buck.CalibrationSpins
	}
	if b.CalibrationSamples == 0 {
		b.CalibrationSamples = def.Buck.CalibrationSamples
	}

	if config.UART.Baud == 0 {
		config.UART.Baud = def.UART.Baud
	}
	defaultString(&config.UART.Parity, def.UART.Parity)

	if config.Knob.LongPressTicks == 0 {
		config.Knob.LongPressTicks = def.Knob.LongPressTicks
	}
	if config.Knob.StepsPerDetent == 0 {
		config.Knob.StepsPerDetent = def.Knob.StepsPerDetent
	}
	if config.Knob.StepPct == 0 {
		config.Knob.StepPct = def.Knob.StepPct
	}

	if len(config.Models) == 0 {
		config.Models = def.Models
	}
	for i := range config.Models {
		if config.Models[i].IrradiancePct == 0 {
			config.Models[i].IrradiancePct = 100
		}
	}

	if config.UpdatePeriodUS == 0 {
		config.UpdatePeriodUS = core.UpdatePeriodUS
	}
}

func defaultString(v *string, d string) {
	if *v == "" {
		*v = d
	}
}

// Default returns the configuration of the reference board
func Default() *Config {
	return &Config{
		Pins: PinConfig{
			Enable:     "gpio2",
			UVLO:       "gpio3",
			Button:     "gpio6",
			KnobA:      "gpio7",
			KnobB:      "gpio8",
			DACClock:   "gpio10",
			DACData:    "gpio12",
			UARTTx:     "gpio0",
			UARTRx:     "gpio1",
			ADCVoltage: "gpio26",
			ADCCurrent: "gpio27",
		},
		Buck: BuckConfig{
			UVLOActiveLow:         true,
			ADCBits:               12,
			VoltageFullScaleMV:    33000,
			CurrentFullScaleMA:    5000,
			CurrentOffset:         0,
			VoltageDACFullScaleMV: 33000,
			CurrentDACFullScaleMA: 5000,
			SampleRateHz:          10000,
			CalibrationSpins:      100000,
			CalibrationSamples:    16,
		},
		UART: UARTConfig{
			Baud:   115200,
			Parity: "none",
		},
		Knob: KnobConfig{
			LongPressTicks: 60,
			StepsPerDetent: 4,
			StepPct:        1,
		},
		Models: []ModelConfig{
			{VocMV: 24000, IscMA: 3000, VtMV: 1500, IrradiancePct: 100},
			{VocMV: 12000, IscMA: 1000, VtMV: 1500, IrradiancePct: 100},
			{VocMV: 24000, IscMA: 2000, VtMV: 1200, IrradiancePct: 100},
		},
		UpdatePeriodUS: core.UpdatePeriodUS,
	}
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	for _, name := range []string{
		c.Pins.Enable, c.Pins.UVLO, c.Pins.Button, c.Pins.KnobA, c.Pins.KnobB,
		c.Pins.DACClock, c.Pins.DACData, c.Pins.UARTTx, c.Pins.UARTRx,
		c.Pins.ADCVoltage, c.Pins.ADCCurrent,
	} {
		if _, err := ParsePin(name); err != nil {
			return err
		}
	}
	switch c.UART.Parity {
	case "none", "even", "odd":
	default:
		return errors.New("unknown parity: " + c.UART.Parity)
	}
	if c.Buck.ADCBits < 1 || c.Buck.ADCBits > 16 {
		return errors.New("adc_bits out of range")
	}
	if len(c.Models) > pvmodel.MaxModels {
		return errors.New("too many models")
	}
	for i, m := range c.Models {
		if !m.Cell().Valid() {
			return errors.New("model " + strconv.Itoa(i) + ": invalid parameters")
		}
	}
	if c.ActiveModel < 0 || c.ActiveModel >= pvmodel.MaxModels {
		return core.ErrModelIndex
	}
	return nil
}

// ParsePin converts "gpio12" or "12" to a pin number
func ParsePin(name string) (core.GPIOPin, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(name), "gpio"), 10, 8)
	if err != nil {
		return 0, errors.New("invalid pin: " + name)
	}
	return core.GPIOPin(n), nil
}

// Cell converts the model to solver units.
func (m ModelConfig) Cell() pvmodel.Cell {
	return pvmodel.NewCell(m.VocMV, m.IscMA, m.VtMV, m.IrradiancePct)
}

// Cells returns the default cell table.
func (c *Config) Cells() []pvmodel.Cell {
	cells := make([]pvmodel.Cell, len(c.Models))
	for i, m := range c.Models {
		cells[i] = m.Cell()
	}
	return cells
}

// Controller returns the buck controller configuration. Pins must have
// passed Validate.
func (c *Config) Controller() buck.Config {
	enable, _ := ParsePin(c.Pins.Enable)
	uvlo, _ := ParsePin(c.Pins.UVLO)
	maxCode := int32(1)<<c.Buck.ADCBits - 1

	cur := buck.FullScale(q16.FromMilli(c.Buck.CurrentFullScaleMA), maxCode)
	cur.Offset = c.Buck.CurrentOffset

	return buck.Config{
		EnablePin:          enable,
		UVLOPin:            uvlo,
		UVLOActiveLow:      c.Buck.UVLOActiveLow,
		VoltageScale:       buck.FullScale(q16.FromMilli(c.Buck.VoltageFullScaleMV), maxCode),
		CurrentScale:       cur,
		VoltageDAC:         buck.FullScaleDAC(q16.FromMilli(c.Buck.VoltageDACFullScaleMV)),
		CurrentDAC:         buck.FullScaleDAC(q16.FromMilli(c.Buck.CurrentDACFullScaleMA)),
		CalibrationSpins:   c.Buck.CalibrationSpins,
		CalibrationSamples: c.Buck.CalibrationSamples,
	}
}
