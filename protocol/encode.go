package protocol

import (
	"strconv"

	"bat6/pvmodel"
	"bat6/q16"
)

// AppendSelect appends the command selecting model.
func AppendSelect(dst []byte, model int) []byte {
	dst = append(dst, 'm')
	return strconv.AppendInt(dst, int64(model), 10)
}

// AppendParam appends one parameter setting, converting v to wire units.
func AppendParam(dst []byte, p pvmodel.Param, v q16.Q16) []byte {
	sel, ok := SelectorForParam(p)
	if !ok {
		return dst
	}
	dst = append(dst, ';', sel.Char)
	return strconv.AppendInt(dst, int64(sel.Encode(v)), 10)
}

// EncodeModel returns a complete command line configuring every parameter
// of one model.
func EncodeModel(model int, c pvmodel.Cell) []byte {
	dst := make([]byte, 0, 48)
	dst = AppendSelect(dst, model)
	dst = AppendParam(dst, pvmodel.ParamVoc, c.Voc)
	dst = AppendParam(dst, pvmodel.ParamIsc, c.Isc)
	dst = AppendParam(dst, pvmodel.ParamVt, c.Vt)
	dst = AppendParam(dst, pvmodel.ParamG, c.G)
	return append(dst, '\n')
}

// EncodeSetting returns a command line changing one parameter of one model.
func EncodeSetting(model int, p pvmodel.Param, v q16.Q16) []byte {
	dst := AppendSelect(make([]byte, 0, 24), model)
	dst = AppendParam(dst, p, v)
	return append(dst, '\n')
}
