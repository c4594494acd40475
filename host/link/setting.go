package link

import (
	"fmt"
	"strconv"
	"strings"

	"bat6/protocol"
	"bat6/pvmodel"
	"bat6/q16"
)

// ParseSetting converts a CLI parameter name and a value in wire units
// ("voc 42000", "g 65") to a parameter and its model value.
func ParseSetting(name, value string) (pvmodel.Param, q16.Q16, error) {
	var p pvmodel.Param
	switch strings.ToLower(name) {
	case "voc", "u":
		p = pvmodel.ParamVoc
	case "isc", "i":
		p = pvmodel.ParamIsc
	case "vt", "t":
		p = pvmodel.ParamVt
	case "g", "e", "irradiance":
		p = pvmodel.ParamG
	default:
		return 0, 0, fmt.Errorf("unknown parameter %q", name)
	}

	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil || n < 0 {
		return 0, 0, fmt.Errorf("invalid value %q", value)
	}
	sel, _ := protocol.SelectorForParam(p)
	return p, sel.Convert(int32(n)), nil
}
