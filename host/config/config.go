// Package config loads the host tool's panel file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bat6/pvmodel"
)

// Config is the panel file: the link settings and the models to load.
type Config struct {
	Device string        `yaml:"device"`
	Baud   int           `yaml:"baud"`
	Parity string        `yaml:"parity"`
	Models []ModelConfig `yaml:"models"`
}

// ModelConfig is one panel, in the units of the wire protocol.
type ModelConfig struct {
	Name          string `yaml:"name"`
	Slot          *int   `yaml:"slot"` // defaults to the list position
	VocMV         int32  `yaml:"voc_mv"`
	IscMA         int32  `yaml:"isc_ma"`
	VtMV          int32  `yaml:"vt_mv"`
	IrradiancePct *int32 `yaml:"irradiance_pct"` // defaults to 100
}

// Load reads and validates a panel file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates panel file contents.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the file. It does not modify it.
func (c *Config) Validate() error {
	used := make(map[int]string)
	for i, m := range c.Models {
		name := m.Label(i)
		slot := m.SlotOr(i)
		if slot < 0 || slot >= pvmodel.MaxModels {
			return fmt.Errorf("model %q: slot %d out of range 0..%d", name, slot, pvmodel.MaxModels-1)
		}
		if other, ok := used[slot]; ok {
			return fmt.Errorf("model %q: slot %d already used by %q", name, slot, other)
		}
		used[slot] = name

		if m.VocMV <= 0 || m.IscMA <= 0 || m.VtMV <= 0 {
			return fmt.Errorf("model %q: voc_mv, isc_ma and vt_mv must be positive", name)
		}
		if g := m.Irradiance(); g < 0 || g > 100 {
			return fmt.Errorf("model %q: irradiance_pct %d out of range 0..100", name, g)
		}
	}
	switch c.Parity {
	case "", "none", "even", "odd":
	default:
		return fmt.Errorf("unknown parity %q", c.Parity)
	}
	return nil
}

// Label returns the model's name, or its position when unnamed.
func (m ModelConfig) Label(i int) string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("#%d", i)
}

// SlotOr returns the configured slot or pos.
func (m ModelConfig) SlotOr(pos int) int {
	if m.Slot != nil {
		return *m.Slot
	}
	return pos
}

// Irradiance returns the irradiance in percent.
func (m ModelConfig) Irradiance() int32 {
	if m.IrradiancePct != nil {
		return *m.IrradiancePct
	}
	return 100
}

// Cell converts the model to solver units.
func (m ModelConfig) Cell() pvmodel.Cell {
	return pvmodel.NewCell(m.VocMV, m.IscMA, m.VtMV, m.Irradiance())
}

// Series returns every model of the file wired as one series string, in file
// order.
func (c *Config) Series() pvmodel.Chain {
	ch := make(pvmodel.Chain, 0, len(c.Models))
	for _, m := range c.Models {
		ch = append(ch, m.Cell())
	}
	return ch
}
