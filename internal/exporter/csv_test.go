package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackstats/internal/shared/testutil"
	"trackstats/pkg/contracts/domain"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(content, utf8BOM), "missing BOM in %s", path)

	records, err := csv.NewReader(bytes.NewReader(content[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		options  []WriteOptions
		expected string
	}{
		{
			name:     "headers and records",
			options:  []WriteOptions{{Headers: []string{"a", "b"}, Records: [][]string{{"1", "2"}}}},
			expected: "a,b\n1,2\n",
		},
		{
			name: "append skips headers",
			options: []WriteOptions{
				{Headers: []string{"a"}, Records: [][]string{{"1"}}},
				{Headers: []string{"a"}, Records: [][]string{{"2"}}, Append: true},
			},
			expected: "a\n1\n2\n",
		},
		{
			name:     "quoted fields",
			options:  []WriteOptions{{Headers: []string{"name"}, Records: [][]string{{"Hello, World"}}}},
			expected: "name\n\"Hello, World\"\n",
		},
		{
			name:     "overwrite truncates",
			options:  []WriteOptions{{Records: [][]string{{"long line"}}}, {Records: [][]string{{"x"}}}},
			expected: "x\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writer := NewCSVWriter(dir, nil)
			for _, opts := range tt.options {
				require.NoError(t, writer.WriteCSV("out.csv", opts))
			}
			content, err := os.ReadFile(filepath.Join(dir, "out.csv"))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(content))
		})
	}
}

func TestCSVWriter_BOMPrefix(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir, nil)
	require.NoError(t, writer.WriteCSV("nested/out.csv", WriteOptions{
		Headers:   []string{"a"},
		BOMPrefix: true,
	}))

	content, err := os.ReadFile(filepath.Join(dir, "nested", "out.csv"))
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{}, utf8BOM...), "a\n"...), content)
}

func TestCSVWriter_ExportReport(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir, nil)

	paths, err := writer.ExportReport(sampleRun())
	require.NoError(t, err)
	require.Len(t, paths, len(ReportSeries(sampleRun())))
	for _, p := range paths {
		assert.FileExists(t, p)
	}

	correlations := readCSV(t, filepath.Join(dir, "correlations.csv"))
	assert.Equal(t, [][]string{
		{"x", "y", "scope", "n", "r"},
		{"streams", "bpm", "", "2", "-1"},
		{"streams", "bpm", "released_year >= 2015", "1", "NaN"},
	}, correlations)

	buckets := readCSV(t, filepath.Join(dir, "artist_buckets.csv"))
	require.Len(t, buckets, 3)
	assert.Equal(t, []string{"solo", "1", "1", "50", "100", "25", "100"}, buckets[1])

	matrix := readCSV(t, filepath.Join(dir, "correlation_matrix.csv"))
	assert.Equal(t, [][]string{
		{"", "streams", "bpm"},
		{"streams", "1", "-1"},
		{"bpm", "-1", "1"},
	}, matrix)

	histograms := readCSV(t, filepath.Join(dir, "histograms.csv"))
	assert.Equal(t, []string{"bpm", "119.5", "120.5", "2"}, histograms[1])
}

func TestCSVWriter_WriteTable(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir, nil)

	table := testutil.TableFromRows(
		[]string{"track_name", "streams", "in_shazam_charts"},
		[]any{"Alpha, Beta", int64(10), nil},
		[]any{"Gamma", int64(20), 1.5},
	)
	require.NoError(t, writer.WriteTable("cleaned.csv", table))

	records := readCSV(t, filepath.Join(dir, "cleaned.csv"))
	assert.Equal(t, [][]string{
		{"track_name", "streams", "in_shazam_charts"},
		{"Alpha, Beta", "10", ""},
		{"Gamma", "20", "1.5"},
	}, records)
}

func TestCSVWriter_StreamWriter(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir, nil)

	stream, err := writer.CreateStreamWriter("stream.csv", nil)
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"1", "2"}))
	require.NoError(t, stream.Close())

	assert.Equal(t, [][]string{{"1", "2"}}, readCSV(t, filepath.Join(dir, "stream.csv")))
}

func TestCSVWriter_AbsolutePath(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter("unused", nil)

	abs := filepath.Join(dir, "abs.csv")
	require.NoError(t, writer.WriteCSV(abs, WriteOptions{Records: [][]string{{"x"}}}))
	assert.FileExists(t, abs)
}

func TestTableSeries(t *testing.T) {
	table := testutil.TrackTable(testutil.Track{Name: "One", Streams: 10})
	s := TableSeries("tracks", table)

	assert.Equal(t, "tracks", s.Name)
	assert.Equal(t, table.Names(), s.Headers)
	require.Len(t, s.Records, 1)
	assert.Equal(t, "One", s.Records[0][0])
	assert.Equal(t, domain.ColTrackName, s.Headers[0])
}
