package pvmodel

import (
	"bat6/core"
	"bat6/q16"
)

// MaxModels is the number of model slots addressable over the wire.
const MaxModels = 16

// DefaultCells is the built-in panel table loaded into the first slots.
var DefaultCells = []Cell{
	{Voc: q16.FromInt(24), Isc: q16.FromInt(3), Vt: q16.FromFloat(1.5), G: q16.One},
	{Voc: q16.FromInt(12), Isc: q16.FromInt(1), Vt: q16.FromFloat(1.5), G: q16.One},
	{Voc: q16.FromInt(24), Isc: q16.FromInt(2), Vt: q16.FromFloat(1.2), G: q16.One},
}

// Registry holds the configurable cell models and which one the emulator
// follows. It is owned by the main loop.
type Registry struct {
	cells    [MaxModels]Cell
	active   int
	revision uint32
}

// NewRegistry fills the first slots from defaults; the rest copy slot 0.
func NewRegistry(defaults []Cell) *Registry {
	r := &Registry{}
	for i := range r.cells {
		switch {
		case i < len(defaults):
			r.cells[i] = defaults[i]
		case len(defaults) > 0:
			r.cells[i] = defaults[0]
		}
	}
	return r
}

// Set replaces one parameter of a model.
func (r *Registry) Set(model int, p Param, v q16.Q16) error {
	if model < 0 || model >= MaxModels {
		return core.ErrModelIndex
	}
	c, ok := r.cells[model].With(p, v)
	if !ok {
		return core.ErrUnknownParam
	}
	r.cells[model] = c
	r.revision++
	return nil
}

// Cell returns the parameters of a model.
func (r *Registry) Cell(model int) (Cell, error) {
	if model < 0 || model >= MaxModels {
		return Cell{}, core.ErrModelIndex
	}
	return r.cells[model], nil
}

// Select makes model the one the emulator follows.
func (r *Registry) Select(model int) error {
	if model < 0 || model >= MaxModels {
		return core.ErrModelIndex
	}
	if r.active != model {
		r.active = model
		r.revision++
	}
	return nil
}

// Active returns the followed model and its parameters.
func (r *Registry) Active() (int, Cell) {
	return r.active, r.cells[r.active]
}

// Revision increases on every change.
func (r *Registry) Revision() uint32 {
	return r.revision
}
