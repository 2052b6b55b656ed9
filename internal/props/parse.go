package props

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tobsdb/tabq/pkg"
)

func ParseBoolPropSafe(prop FieldProp, value string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("Invalid syntax: %s(%s); expected true or false", prop, value)
	}
	return b, nil
}

func ParseOptionsPropSafe(value string) ([]string, error) {
	options := pkg.SplitTrim(value, ",")
	if len(options) == 0 {
		return nil, fmt.Errorf("Invalid syntax: options(%s)", value)
	}
	seen := make(map[string]bool, len(options))
	for i, o := range options {
		o = pkg.Unquote(o)
		if seen[o] {
			return nil, fmt.Errorf("options(%s) is not a valid prop; duplicate option %s", value, o)
		}
		seen[o] = true
		options[i] = o
	}
	return options, nil
}

func ParseLabelProp(value string) string {
	return pkg.Unquote(strings.TrimSpace(value))
}
