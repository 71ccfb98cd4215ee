package exporter

import (
	"math"
	"strconv"
)

// formatValue renders a sample value the way the text exposition format
// expects: integral floats without a decimal point, fractional floats
// in their natural decimal form, and the special values spelled +Inf,
// -Inf and NaN.
func formatValue(v float64) string {
	switch {
	case math.IsInf(v, +1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	}
	// Large magnitudes lose integer precision in a float64; past that
	// point the exponent form is the honest representation.
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
