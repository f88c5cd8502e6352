package exporter

import (
	"trackstats/pkg/contracts/domain"
)

// Series is one tabular part of a run, written as a CSV file or a sheet
type Series struct {
	Name    string
	Headers []string
	Records [][]string
}

// ReportSeries flattens a run into the series every file exporter writes
func ReportSeries(res *domain.RunResult) []Series {
	return []Series{
		diagnosticsSeries(res.Diagnostics),
		cleaningSeries(res.Cleaning),
		noisySeries(res.Cleaning),
		correlationSeries(res.Analysis),
		bucketSeries(res.Analysis),
		keyShareSeries(res.Analysis),
		bpmSeries(res.Analysis),
		distributionSeries(res.Analysis),
		histogramSeries(res.Analysis),
		matrixSeries(res.Analysis),
	}
}

func diagnosticsSeries(diag domain.DiagnosticReport) Series {
	nulls := make(map[string]int, len(diag.NullCounts))
	for _, nc := range diag.NullCounts {
		nulls[nc.Column] = nc.Count
	}
	s := Series{Name: "diagnostics", Headers: []string{"column", "storage", "semantic", "non_null", "nulls"}}
	for _, info := range diag.ColumnTypes {
		s.Records = append(s.Records, []string{
			info.Name, string(info.Storage), string(info.Semantic),
			formatInt(info.NonNull), formatInt(nulls[info.Name]),
		})
	}
	return s
}

func cleaningSeries(rep domain.CleaningReport) Series {
	return Series{
		Name:    "cleaning",
		Headers: []string{"step", "count"},
		Records: [][]string{
			{"rows_before", formatInt(rep.RowsBefore)},
			{"null_rows_removed", formatInt(rep.NullRowsRemoved)},
			{"text_columns_trimmed", formatInt(rep.TextColumnsTrimmed)},
			{"cells_trimmed", formatInt(rep.CellsTrimmed)},
			{"streams_rows_removed", formatInt(rep.StreamsRowsRemoved)},
			{"numeric_columns_cleaned", formatInt(rep.NumericColumnsCleaned)},
			{"rows_after", formatInt(rep.RowsAfter)},
			{"residual_nulls", formatInt(rep.Final.TotalNulls())},
		},
	}
}

func noisySeries(rep domain.CleaningReport) Series {
	s := Series{Name: "noisy_columns", Headers: []string{"column", "present", "normalized", "nulls"}}
	for _, n := range rep.NoisyColumns {
		s.Records = append(s.Records, []string{n.Name, formatBool(n.Present), formatInt(n.Normalized), formatInt(n.Nulls)})
	}
	return s
}

func correlationSeries(rep domain.AnalysisReport) Series {
	s := Series{Name: "correlations", Headers: []string{"x", "y", "scope", "n", "r"}}
	for _, c := range rep.Correlations {
		s.Records = append(s.Records, []string{c.X, c.Y, c.Scope, formatInt(c.N), formatExact(float64(c.Value))})
	}
	return s
}

func bucketSeries(rep domain.AnalysisReport) Series {
	s := Series{
		Name:    "artist_buckets",
		Headers: []string{"bucket", "artist_count", "tracks", "track_share", "streams", "stream_share", "mean_streams"},
	}
	for _, b := range rep.ArtistBuckets.Buckets {
		s.Records = append(s.Records, []string{
			b.Bucket, formatInt(b.ArtistCount), formatInt(b.Tracks), formatExact(b.TrackShare),
			formatExact(b.Streams), formatExact(b.StreamShare), formatExact(b.MeanStreams),
		})
	}
	return s
}

func keyShareSeries(rep domain.AnalysisReport) Series {
	s := Series{
		Name:    "key_shares",
		Headers: []string{"key", "tracks", "track_share", "streams_share", "playlists_share", "charts_share"},
	}
	for _, k := range rep.KeyShares {
		s.Records = append(s.Records, []string{
			k.Category, formatInt(k.Tracks), formatExact(k.TrackShare),
			formatExact(k.StreamsShare), formatExact(k.PlaylistsShare), formatExact(k.ChartsShare),
		})
	}
	return s
}

func bpmSeries(rep domain.AnalysisReport) Series {
	s := Series{Name: "bpm_stream_means", Headers: []string{"bpm", "tracks", "mean_streams"}}
	for _, g := range rep.BPMStreamMeans {
		s.Records = append(s.Records, []string{formatExact(g.BPM), formatInt(g.Tracks), formatExact(g.MeanStreams)})
	}
	return s
}

func distributionSeries(rep domain.AnalysisReport) Series {
	s := Series{Name: "distributions", Headers: []string{"column", "category", "count"}}
	for _, d := range rep.Distributions {
		for _, c := range d.Counts {
			s.Records = append(s.Records, []string{d.Column, c.Category, formatInt(c.Count)})
		}
	}
	return s
}

func histogramSeries(rep domain.AnalysisReport) Series {
	s := Series{Name: "histograms", Headers: []string{"column", "lower", "upper", "count"}}
	for _, h := range rep.Histograms {
		for _, b := range h.Bins {
			s.Records = append(s.Records, []string{h.Column, formatExact(b.Lower), formatExact(b.Upper), formatInt(b.Count)})
		}
	}
	return s
}

func matrixSeries(rep domain.AnalysisReport) Series {
	s := Series{Name: "correlation_matrix", Headers: append([]string{""}, rep.Matrix.Columns...)}
	for i, name := range rep.Matrix.Columns {
		record := []string{name}
		for _, v := range rep.Matrix.Values[i] {
			record = append(record, formatExact(float64(v)))
		}
		s.Records = append(s.Records, record)
	}
	return s
}

// TableSeries renders every cell of a table the way a delimited file holds it
func TableSeries(name string, t *domain.Table) Series {
	s := Series{Name: name, Headers: t.Names()}
	for i := 0; i < t.NumRows(); i++ {
		s.Records = append(s.Records, t.Row(i))
	}
	return s
}
