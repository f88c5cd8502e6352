package dataprocessing

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackstats/internal/errors"
	"trackstats/internal/shared/testutil"
	"trackstats/pkg/contracts/domain"
)

func newTestCleaner(t *testing.T) (*Cleaner, *testutil.BufferedSlogHandler) {
	logger, handler := testutil.NewTestLogger(t)
	return NewCleaner(domain.DefaultSchema(), logger), handler
}

func assertSameTable(t *testing.T, want, got *domain.Table) {
	t.Helper()
	require.Equal(t, want.Names(), got.Names())
	require.Equal(t, want.NumRows(), got.NumRows())
	for _, name := range want.Names() {
		assert.Equal(t, testutil.Column(want, name), testutil.Column(got, name), "column %s", name)
	}
}

func TestCleanStreamsScenario(t *testing.T) {
	raw := testutil.TableFromRows(
		[]string{"track_name", "streams", "bpm"},
		[]any{"a", "1,234", nil},
		[]any{"b", "bad", 120},
		[]any{"c", "5000", 130},
	)
	cleaner, _ := newTestCleaner(t)

	cleaned, report, err := cleaner.Clean(context.Background(), raw)
	require.NoError(t, err)

	require.Equal(t, 1, cleaned.NumRows())
	assert.Equal(t, []any{int64(5000)}, testutil.Column(cleaned, "streams"))
	assert.Equal(t, []any{"c"}, testutil.Column(cleaned, "track_name"))

	assert.Equal(t, 3, report.RowsBefore)
	assert.Equal(t, 1, report.NullRowsRemoved)
	assert.Equal(t, 1, report.StreamsRowsRemoved)
	assert.Equal(t, 1, report.RowsAfter)
	assert.Equal(t, 2, report.RowsRemoved())
	assert.Equal(t, 1, report.NumericColumnsCleaned)
	assert.Equal(t, []domain.NoisyColumnReport{
		{Name: domain.ColDeezerPlaylists},
		{Name: domain.ColShazamCharts},
	}, report.NoisyColumns)
}

func TestCleanNoisyColumnKeepsNulls(t *testing.T) {
	raw := testutil.TableFromRows(
		[]string{"track_name", "streams", "in_shazam_charts"},
		[]any{"a", 1, "1 200"},
		[]any{"b", 2, "xx"},
		[]any{"c", 3, "300"},
	)
	cleaner, _ := newTestCleaner(t)

	cleaned, report, err := cleaner.Clean(context.Background(), raw)
	require.NoError(t, err)

	require.Equal(t, 3, cleaned.NumRows(), "noisy column failures must not drop rows")
	assert.Equal(t, []any{int64(1200), nil, int64(300)}, testutil.Column(cleaned, "in_shazam_charts"))

	shazam := report.NoisyColumns[1]
	assert.Equal(t, domain.NoisyColumnReport{
		Name:       domain.ColShazamCharts,
		Present:    true,
		Normalized: 3,
		Nulls:      1,
	}, shazam)
	assert.False(t, report.NoisyColumns[0].Present)
	assert.Equal(t, 2, report.NumericColumnsCleaned)

	assert.Equal(t, []domain.NullCount{{Column: domain.ColShazamCharts, Count: 1}}, report.Final.NullCounts)
}

func TestNormalizeNoisy(t *testing.T) {
	text := func(cells ...string) series.Series { return domain.Strings("c", cells, nil) }

	tests := []struct {
		name     string
		input    series.Series
		want     []any
		wantType series.Type
		changed  int
	}{
		{"thousands separator", text("1,234"), []any{int64(1234)}, series.Int, 1},
		{"embedded space", text("1 200"), []any{int64(1200)}, series.Int, 1},
		{"decimal with suffix", text("1,234.5abc"), []any{1234.5}, series.Float, 1},
		{"first run wins", text("x12y34"), []any{int64(12)}, series.Int, 1},
		{"trailing point", text("12."), []any{12.0}, series.Float, 1},
		{"no digits", text("n.a."), []any{nil}, series.Int, 1},
		{"negative sign dropped", text("-5"), []any{int64(5)}, series.Int, 1},
		{"one decimal makes the column float", text("1,234", "2.5"), []any{1234.0, 2.5}, series.Float, 2},
		{"int unchanged", domain.Ints("c", []int64{42}, nil), []any{int64(42)}, series.Int, 0},
		{"float stays float", domain.Floats("c", []float64{12}), []any{12.0}, series.Float, 0},
		{"missing unchanged", domain.Ints("c", []int64{0}, []bool{false}), []any{nil}, series.Int, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := normalizeNoisy(tt.input)
			assert.Equal(t, tt.wantType, got.Type())
			assert.Equal(t, tt.changed, changed)

			table, err := domain.NewTable(got)
			require.NoError(t, err)
			assert.Equal(t, tt.want, testutil.Column(table, "c"))
		})
	}
}

func TestCleanStreamsCoercion(t *testing.T) {
	tests := []struct {
		name    string
		streams []any
		want    []any
	}{
		{"numeric column passes through", []any{10, 20}, []any{int64(10), int64(20)}},
		{"text numbers parse", []any{" 10 ", "2.5"}, []any{10.0, 2.5}},
		{"integer text stays int", []any{" 10 ", "7"}, []any{int64(10), int64(7)}},
		{"separators fail", []any{"1,000", "7"}, []any{int64(7)}},
		{"null spelling fails", []any{"n/a", "7"}, []any{int64(7)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([][]any, len(tt.streams))
			for i, s := range tt.streams {
				rows[i] = []any{s}
			}
			raw := testutil.TableFromRows([]string{"streams"}, rows...)
			cleaner, _ := newTestCleaner(t)

			cleaned, report, err := cleaner.Clean(context.Background(), raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, testutil.Column(cleaned, "streams"))
			assert.Equal(t, len(tt.streams)-len(tt.want), report.StreamsRowsRemoved)
		})
	}
}

func TestCleanTrimsOnlyTextColumns(t *testing.T) {
	raw := testutil.TableFromRows(
		[]string{"track_name", "artist(s)_name", "key", "notes", "streams"},
		[]any{"  Flowers ", "Miley Cyrus", " C# ", "x ", 1},
		[]any{"Kill Bill", " SZA", "A", "y", 2},
	)
	cleaner, _ := newTestCleaner(t)

	cleaned, report, err := cleaner.Clean(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, []any{"Flowers", "Kill Bill"}, testutil.Column(cleaned, "track_name"))
	assert.Equal(t, []any{"Miley Cyrus", "SZA"}, testutil.Column(cleaned, "artist(s)_name"))
	assert.Equal(t, []any{"x", "y"}, testutil.Column(cleaned, "notes"))
	assert.Equal(t, []any{" C# ", "A"}, testutil.Column(cleaned, "key"), "categorical columns are not trimmed")

	assert.Equal(t, 3, report.TextColumnsTrimmed)
	assert.Equal(t, 3, report.CellsTrimmed)

	for _, name := range []string{"track_name", "artist(s)_name", "notes"} {
		for _, v := range testutil.Column(cleaned, name) {
			s := v.(string)
			assert.Equal(t, strings.TrimSpace(s), s)
		}
	}
}

func TestCleanMissingStreams(t *testing.T) {
	raw := testutil.TableFromRows([]string{"track_name"}, []any{"a"})
	cleaner, _ := newTestCleaner(t)

	cleaned, _, err := cleaner.Clean(context.Background(), raw)
	require.Error(t, err)
	assert.Nil(t, cleaned)
	assert.ErrorIs(t, err, domain.ErrMissingColumn)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
}

func TestCleanDoesNotModifyInput(t *testing.T) {
	raw := testutil.TrackTable(
		testutil.Track{Name: " padded ", Streams: 10, Set: map[string]any{domain.ColShazamCharts: "1,000"}},
		testutil.Track{Streams: 20, Set: map[string]any{domain.ColKey: nil}},
		testutil.Track{Set: map[string]any{domain.ColStreams: "bad"}},
	)
	before := raw.Clone()
	cleaner, _ := newTestCleaner(t)

	cleaned, _, err := cleaner.Clean(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, before, raw)
	assert.Equal(t, 1, cleaned.NumRows())
}

func TestCleanInvariants(t *testing.T) {
	raw := testutil.TrackTable(
		testutil.Track{Name: " a ", Streams: 10, ArtistCount: 2},
		testutil.Track{Name: "b", Set: map[string]any{domain.ColStreams: "2,000"}},
		testutil.Track{Name: "c", Set: map[string]any{domain.ColStreams: "300"}},
		testutil.Track{Name: "d", Set: map[string]any{domain.ColMode: nil}},
		testutil.Track{Name: "e", Set: map[string]any{domain.ColDeezerPlaylists: "1,500"}},
	)
	cleaner, _ := newTestCleaner(t)

	cleaned, report, err := cleaner.Clean(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, 3, cleaned.NumRows())
	assert.Equal(t, 1, report.NullRowsRemoved)
	assert.Equal(t, 1, report.StreamsRowsRemoved)

	streams, err := cleaned.Series(domain.ColStreams)
	require.NoError(t, err)
	assert.Contains(t, []series.Type{series.Int, series.Float}, streams.Type())
	for _, name := range domain.RequiredColumns() {
		col, err := cleaned.Series(name)
		require.NoError(t, err)
		assert.False(t, col.HasNaN(), "column %s", name)
	}
	assert.Equal(t, []any{int64(0), int64(0), int64(1500)}, testutil.Column(cleaned, domain.ColDeezerPlaylists))
}

func TestCleanIsIdempotent(t *testing.T) {
	raw := testutil.TrackTable(
		testutil.Track{Name: " a ", Streams: 10},
		testutil.Track{Name: "b", Set: map[string]any{domain.ColStreams: "bad"}},
		testutil.Track{Name: "c", Set: map[string]any{domain.ColShazamCharts: "1 200", domain.ColStreams: "7.5"}},
		testutil.Track{Name: "d", Set: map[string]any{domain.ColKey: nil}},
	)
	cleaner, _ := newTestCleaner(t)

	first, _, err := cleaner.Clean(context.Background(), raw)
	require.NoError(t, err)

	second, report, err := cleaner.Clean(context.Background(), first)
	require.NoError(t, err)

	assertSameTable(t, first, second)
	assert.Zero(t, report.NullRowsRemoved)
	assert.Zero(t, report.StreamsRowsRemoved)
	assert.Zero(t, report.CellsTrimmed)
	for _, noisy := range report.NoisyColumns {
		assert.Zero(t, noisy.Normalized, "column %s", noisy.Name)
	}
}

func TestCleanSecondPassDropsResidualNoisyNulls(t *testing.T) {
	raw := testutil.TrackTable(
		testutil.Track{Name: "a", Streams: 1, Set: map[string]any{domain.ColShazamCharts: "xx"}},
		testutil.Track{Name: "b", Streams: 2, Set: map[string]any{domain.ColShazamCharts: "40"}},
	)
	cleaner, _ := newTestCleaner(t)

	first, _, err := cleaner.Clean(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, 2, first.NumRows())

	second, report, err := cleaner.Clean(context.Background(), first)
	require.NoError(t, err)

	assert.Equal(t, 1, report.NullRowsRemoved)
	assert.Equal(t, []any{"b"}, testutil.Column(second, domain.ColTrackName))
}

func TestCleanLogsEachStep(t *testing.T) {
	raw := testutil.TrackTable(testutil.Track{Streams: 1}, testutil.Track{Set: map[string]any{domain.ColBPM: nil}})
	cleaner, handler := newTestCleaner(t)

	_, _, err := cleaner.Clean(context.Background(), raw)
	require.NoError(t, err)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Removed rows with missing values")
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Normalized noisy numeric column")
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Coerced streams to numeric")
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Cleaning completed")
	testutil.AssertLogAttr(t, handler, "rows_after", 1)
	testutil.AssertLogAttr(t, handler, "component", "cleaner")
	testutil.AssertNoErrors(t, handler)
}
