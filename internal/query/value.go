package query

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
)

// fold applies Unicode case folding for case-insensitive comparison.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Text renders a value in its default textual form. nil renders as "".
// Values without a textual form (maps, slices, structs) return an error.
func Text(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	case *time.Time:
		if v == nil {
			return "", nil
		}
		return v.Format(time.RFC3339), nil
	}
	return cast.ToStringE(v)
}

func toNumber(v any) (float64, bool) {
	switch v := v.(type) {
	case nil, bool, time.Time:
		return 0, false
	case string:
		s := strings.TrimSpace(v)
		if len(s) == 0 {
			return 0, false
		}
		v_float, err := cast.ToFloat64E(s)
		if err != nil || math.IsNaN(v_float) {
			return 0, false
		}
		return v_float, true
	}
	v_float, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(v_float) {
		return 0, false
	}
	return v_float, true
}

// toTime parses v as an instant. Numbers are unix milliseconds.
func toTime(v any) (time.Time, bool) {
	switch v := v.(type) {
	case nil, bool:
		return time.Time{}, false
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		s := strings.TrimSpace(v)
		if len(s) == 0 {
			return time.Time{}, false
		}
		if t, err := cast.ToTimeE(s); err == nil {
			return t, true
		}
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(ms), true
	case json.Number:
		ms, err := v.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(ms), true
	}
	if ms, ok := toNumber(v); ok {
		return time.UnixMilli(int64(ms)), true
	}
	return time.Time{}, false
}

// toBool only accepts real booleans and the literal strings "true" and "false".
func toBool(v any) (bool, bool) {
	switch v := v.(type) {
	case bool:
		return v, true
	case string:
		switch v {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}
