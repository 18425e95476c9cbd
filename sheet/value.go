package sheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Value is a scalar cell value: string, int64, float64, bool, time.Time,
// *apd.Decimal or nil.
type Value = any

// TimeLayout is the layout used when stringifying time values.
const TimeLayout = "2006-01-02 15:04:05"

// IsAbsent reports whether a value is missing. NaN floats count as missing.
func IsAbsent(v Value) bool {
	switch v := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(v)
	case float32:
		return math.IsNaN(float64(v))
	case *apd.Decimal:
		return v == nil || v.Form == apd.NaN || v.Form == apd.NaNSignaling
	}
	return false
}

// IsBlank reports whether a value is absent or only whitespace.
func IsBlank(v Value) bool {
	return IsAbsent(v) || strings.TrimSpace(Stringify(v)) == ""
}

// Stringify returns the canonical string form of a value. Keys, change
// detection and rules all compare values through this form.
func Stringify(v Value) string {
	if IsAbsent(v) {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int:
		return strconv.Itoa(v)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(TimeLayout)
	case *apd.Decimal:
		return v.String()
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}

// formatFloat renders floats the way the tool's stored baselines do:
// shortest round-trip digits, integral values keep a trailing ".0", and very
// large or small magnitudes use exponent form.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs >= 1e16 || (abs != 0 && abs < 1e-4) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
