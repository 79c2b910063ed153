package core

import (
	"math"
	"strconv"
	"strings"
)

// ClampProgressValue constrains a raw percent-complete to an integer in
// [0, 100]. Fractional input is rounded to the nearest integer first, so a
// value derived from a click position on a bar behaves the same as a typed
// one. NaN coerces to 0. Out-of-range input is clamped, not rejected;
// forgiving data entry is the contract for this one field.
func ClampProgressValue(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// ClampProgress parses a textual progress value and clamps it. Anything that
// does not parse as a number coerces to 0.
func ClampProgress(raw string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return ClampProgressValue(v)
}
