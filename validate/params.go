package validate

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/tabcheck/tabcheck/sheet"
)

// Params holds the parameters of one rule, as written in the rule set.
type Params map[string]any

// lookup returns the first of names holding a non-nil value.
func (p Params) lookup(names ...string) (string, any, bool) {
	for _, n := range names {
		if v, ok := p[n]; ok && v != nil {
			return n, v, true
		}
	}
	return "", nil, false
}

// Int returns an integer parameter, or def if it is not set.
func (p Params) Int(def int, names ...string) (int, error) {
	name, v, ok := p.lookup(names...)
	if !ok {
		return def, nil
	}
	switch v := v.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v == math.Trunc(v) {
			return int(v), nil
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i, nil
		}
	}
	return 0, errors.Newf("%s must be an integer, got %v", name, v)
}

// String returns a string parameter. Non-string values are stringified.
func (p Params) String(names ...string) (string, bool) {
	_, v, ok := p.lookup(names...)
	if !ok {
		return "", false
	}
	return sheet.Stringify(v), true
}

// List returns a list parameter. A scalar is treated as a list of one.
func (p Params) List(names ...string) []any {
	_, v, ok := p.lookup(names...)
	if !ok {
		return nil
	}
	if l, ok := v.([]any); ok {
		return l
	}
	return []any{v}
}

const paramDateLayout = "2006-01-02"

// Date returns a date parameter written as YYYY-MM-DD.
func (p Params) Date(names ...string) (time.Time, bool, error) {
	name, v, ok := p.lookup(names...)
	if !ok {
		return time.Time{}, false, nil
	}
	switch v := v.(type) {
	case time.Time:
		return v, true, nil
	case string:
		t, err := time.Parse(paramDateLayout, strings.TrimSpace(v))
		if err != nil {
			return time.Time{}, false, errors.Newf("%s must be a date in YYYY-MM-DD form, got %q", name, v)
		}
		return t, true, nil
	}
	return time.Time{}, false, errors.Newf("%s must be a date in YYYY-MM-DD form, got %v", name, v)
}

// Decimal returns a numeric parameter along with its text as written.
func (p Params) Decimal(names ...string) (*apd.Decimal, string, bool, error) {
	name, v, ok := p.lookup(names...)
	if !ok {
		return nil, "", false, nil
	}
	d, ok := toDecimal(v)
	if !ok {
		return nil, "", false, errors.Newf("%s must be a number, got %v", name, v)
	}
	return d, sheet.Stringify(v), true, nil
}

// toDecimal converts a numeric value, or a string holding a number, into a
// decimal.
func toDecimal(v any) (*apd.Decimal, bool) {
	switch v := v.(type) {
	case *apd.Decimal:
		return v, v != nil
	case int:
		return apd.New(int64(v), 0), true
	case int64:
		return apd.New(v, 0), true
	case int32:
		return apd.New(int64(v), 0), true
	case uint64:
		if v > math.MaxInt64 {
			d, _, err := apd.NewFromString(strconv.FormatUint(v, 10))
			return d, err == nil
		}
		return apd.New(int64(v), 0), true
	case float32:
		return floatDecimal(float64(v))
	case float64:
		return floatDecimal(v)
	case string:
		d, _, err := apd.NewFromString(strings.TrimSpace(v))
		if err != nil || d.Form == apd.NaN || d.Form == apd.NaNSignaling {
			return nil, false
		}
		return d, true
	}
	return nil, false
}

func floatDecimal(f float64) (*apd.Decimal, bool) {
	if math.IsNaN(f) {
		return nil, false
	}
	if math.IsInf(f, 0) {
		return &apd.Decimal{Form: apd.Infinite, Negative: f < 0}, true
	}
	d, _, err := apd.NewFromString(strconv.FormatFloat(f, 'g', -1, 64))
	return d, err == nil
}
