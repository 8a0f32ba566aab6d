// Package fraction converts between decimal ingredient quantities and
// cooking-style mixed fraction strings ("1 1/2" <-> 1.5).
package fraction

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const tolerance = 1.0e-6

// Fractions cooks actually write: halves, thirds, quarters, eighths, sixths.
var commonFractions = [][2]int{
	{1, 2}, {1, 3}, {2, 3}, {1, 4}, {3, 4},
	{1, 8}, {3, 8}, {5, 8}, {7, 8},
	{1, 6}, {5, 6},
}

var (
	decimalRe  = regexp.MustCompile(`^[0-9.]+$`)
	mixedRe    = regexp.MustCompile(`^([0-9]+)\s+([0-9]+)/([0-9]+)$`)
	barePairRe = regexp.MustCompile(`^([0-9]+)/([0-9]+)$`)
)

// Format renders a decimal quantity as a mixed fraction string.
// Examples: 1.5 -> "1 1/2", 0.25 -> "1/4", 2.75 -> "2 3/4".
// Zero renders as "". Negative quantities keep their sign: -1.5 -> "-1 1/2".
func Format(decimal float64) string {
	if decimal == 0 {
		return ""
	}

	abs := math.Abs(decimal)
	whole := int(math.Floor(abs))
	frac := abs - float64(whole)

	numerator, denominator := 1, 1

	found := false
	for _, f := range commonFractions {
		if math.Abs(frac-float64(f[0])/float64(f[1])) < tolerance {
			numerator, denominator = f[0], f[1]
			found = true
			break
		}
	}

	// Not a common fraction: approximate with continued-fraction
	// convergents, stopping once the convergent is close enough or the
	// denominator would get uglier than sixteenths.
	if !found && frac > tolerance {
		a := frac
		h1, h2 := 1, 0
		k1, k2 := 0, 1

		for i := 0; i < 20; i++ {
			b := int(math.Floor(a))
			h := b*h1 + h2
			k := b*k1 + k2

			if math.Abs(frac-float64(h)/float64(k)) < tolerance || k > 16 {
				numerator, denominator = h, k
				break
			}

			h2, h1 = h1, h
			k2, k1 = k1, k
			a = 1 / (a - float64(b))
		}
	}

	var s string
	switch {
	case frac < tolerance:
		s = strconv.Itoa(whole)
	case whole == 0:
		s = fmt.Sprintf("%d/%d", numerator, denominator)
	default:
		s = fmt.Sprintf("%d %d/%d", whole, numerator, denominator)
	}

	if decimal < 0 {
		s = "-" + s
	}
	return s
}

// FormatPtr is Format for nullable amounts; nil renders as "".
func FormatPtr(decimal *float64) string {
	if decimal == nil {
		return ""
	}
	return Format(*decimal)
}

// Parse reads a quantity entered as "0.5", "2", "3/4" or "1 1/2".
// Malformed input, including a zero denominator, reports ok=false.
func Parse(input string) (float64, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, false
	}

	if decimalRe.MatchString(trimmed) {
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(n) {
			return 0, false
		}
		return n, true
	}

	if m := mixedRe.FindStringSubmatch(trimmed); m != nil {
		whole, _ := strconv.Atoi(m[1])
		numerator, _ := strconv.Atoi(m[2])
		denominator, _ := strconv.Atoi(m[3])
		if denominator == 0 {
			return 0, false
		}
		return float64(whole) + float64(numerator)/float64(denominator), true
	}

	if m := barePairRe.FindStringSubmatch(trimmed); m != nil {
		numerator, _ := strconv.Atoi(m[1])
		denominator, _ := strconv.Atoi(m[2])
		if denominator == 0 {
			return 0, false
		}
		return float64(numerator) / float64(denominator), true
	}

	return 0, false
}
