package forms

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

var errNotWholeNumber = errors.New("not a whole number")

// toInt reads a numeric form value. Blank text counts as unset. Fractions,
// NaN, infinities and values outside the int range are rejected.
func toInt(value any) (n int, unset bool, err error) {
	switch v := value.(type) {
	case nil:
		return 0, true, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, true, nil
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n, false, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, err
		}
		n, err = wholeNumber(f)
		return n, false, err
	case float64:
		n, err = wholeNumber(v)
		return n, false, err
	case float32:
		n, err = wholeNumber(float64(v))
		return n, false, err
	case json.Number:
		return toInt(v.String())
	}
	n, err = cast.ToIntE(value)
	return n, false, err
}

func wholeNumber(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errNotWholeNumber
	}
	if f < math.MinInt || f >= math.MaxInt {
		return 0, errNotWholeNumber
	}
	return int(f), nil
}

func toBool(value any) (bool, error) {
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return false, nil
	}
	return cast.ToBoolE(value)
}

func toText(value any) (string, error) {
	s, err := cast.ToStringE(value)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func toCode(value any) (string, error) {
	s, err := toText(value)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(s), nil
}
