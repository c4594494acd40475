package protocol

import (
	"bat6/pvmodel"
	"bat6/q16"
)

// Selector maps one sub-command character to the cell parameter it sets.
type Selector struct {
	Char    byte
	State   State
	Param   pvmodel.Param
	Unit    string
	Convert func(v int32) q16.Q16 // wire value to model units
	Encode  func(v q16.Q16) int32 // model units to wire value
}

// Selectors is the build-time sub-command table.
var Selectors = [...]Selector{
	{Char: 'U', State: StateConfigVoc, Param: pvmodel.ParamVoc, Unit: "mV",
		Convert: q16.FromMilli, Encode: q16.Q16.Milli},
	{Char: 'I', State: StateConfigIsc, Param: pvmodel.ParamIsc, Unit: "mA",
		Convert: q16.FromMilli, Encode: q16.Q16.Milli},
	{Char: 'T', State: StateConfigVt, Param: pvmodel.ParamVt, Unit: "mV",
		Convert: q16.FromMilli, Encode: q16.Q16.Milli},
	{Char: 'E', State: StateConfigG, Param: pvmodel.ParamG, Unit: "%",
		Convert: q16.FromPercent, Encode: q16.Q16.Percent},
}

// SelectorFor returns the selector for a sub-command character.
func SelectorFor(c byte) (*Selector, bool) {
	for i := range Selectors {
		if Selectors[i].Char == c {
			return &Selectors[i], true
		}
	}
	return nil, false
}

// SelectorForParam returns the selector that sets p.
func SelectorForParam(p pvmodel.Param) (*Selector, bool) {
	for i := range Selectors {
		if Selectors[i].Param == p {
			return &Selectors[i], true
		}
	}
	return nil, false
}

// SelectorForState returns the selector whose value is being accumulated in s.
func SelectorForState(s State) (*Selector, bool) {
	for i := range Selectors {
		if Selectors[i].State == s {
			return &Selectors[i], true
		}
	}
	return nil, false
}
