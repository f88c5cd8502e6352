package exporter

import (
	"math"
	"strconv"

	"trackstats/pkg/contracts/domain"
)

// FormatFloat formats f with prec decimals; NaN and infinities render as NaN
func FormatFloat(f float64, prec int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', prec, 64)
}

// FormatCoefficient renders a coefficient with two decimals
func FormatCoefficient(c domain.Coefficient) string {
	return FormatFloat(float64(c), 2)
}

// formatShare renders a percentage with two decimals
func formatShare(f float64) string {
	return FormatFloat(f, 2)
}

// formatExact renders a float with the fewest digits that round-trip
func formatExact(f float64) string {
	return FormatFloat(f, -1)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
