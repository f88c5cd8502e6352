package exporter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"trackstats/pkg/contracts/domain"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		prec     int
		expected string
	}{
		{name: "zero value", input: 0, prec: 2, expected: "0.00"},
		{name: "rounds", input: 0.126, prec: 2, expected: "0.13"},
		{name: "negative", input: -0.456, prec: 2, expected: "-0.46"},
		{name: "no decimals", input: 1234567.8, prec: 0, expected: "1234568"},
		{name: "shortest", input: 13.4, prec: -1, expected: "13.4"},
		{name: "NaN", input: math.NaN(), prec: 2, expected: "NaN"},
		{name: "infinity", input: math.Inf(1), prec: 2, expected: "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatFloat(tt.input, tt.prec))
		})
	}
}

func TestFormatCoefficient(t *testing.T) {
	assert.Equal(t, "0.80", FormatCoefficient(0.8))
	assert.Equal(t, "-1.00", FormatCoefficient(-1))
	assert.Equal(t, "NaN", FormatCoefficient(domain.NaN()))
}

func TestFormatBool(t *testing.T) {
	assert.Equal(t, "true", formatBool(true))
	assert.Equal(t, "false", formatBool(false))
}
