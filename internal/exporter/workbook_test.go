package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, sampleRun()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	var names []string
	for _, s := range ReportSeries(sampleRun()) {
		names = append(names, s.Name)
	}
	assert.Equal(t, names, f.GetSheetList())

	rows, err := f.GetRows("correlations")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"x", "y", "scope", "n", "r"}, rows[0])
	assert.Equal(t, "NaN", rows[2][4])

	buckets, err := f.GetRows("artist_buckets")
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	assert.Equal(t, []string{"solo", "1", "1", "50", "100", "25", "100"}, buckets[1])
}

func TestSheetCell(t *testing.T) {
	tests := []struct {
		in       string
		expected interface{}
	}{
		{"12", int64(12)},
		{"-0.5", -0.5},
		{"NaN", "NaN"},
		{"Inf", "Inf"},
		{"C#", "C#"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, sheetCell(tt.in))
		})
	}
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "correlations", sheetName("correlations"))
	assert.Len(t, sheetName("a_very_long_series_name_that_overflows"), sheetNameLimit)
}
