package exporter

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"trackstats/internal/analytics"
	"trackstats/pkg/contracts/domain"
)

// newTable returns a bordered table whose layout does not depend on the terminal
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func section(buf *bytes.Buffer, title string) {
	if buf.Len() > 0 {
		buf.WriteString("\n")
	}
	fmt.Fprintf(buf, "## %s\n", title)
}

// WriteText renders every part of a run as terminal tables
func WriteText(w io.Writer, res *domain.RunResult) error {
	var buf bytes.Buffer
	if res.ID != "" {
		fmt.Fprintf(&buf, "run %s (%s)\n", res.ID, res.Source)
	}
	renderDiagnostics(&buf, res.Diagnostics)
	renderCleaning(&buf, res.Cleaning)
	renderAnalysis(&buf, res.Analysis)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteDiagnostics renders a diagnostic report alone
func WriteDiagnostics(w io.Writer, diag domain.DiagnosticReport) error {
	var buf bytes.Buffer
	renderDiagnostics(&buf, diag)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteCleaning renders a cleaning report alone
func WriteCleaning(w io.Writer, rep domain.CleaningReport) error {
	var buf bytes.Buffer
	renderCleaning(&buf, rep)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteRuns lists stored run summaries, newest first as given
func WriteRuns(w io.Writer, runs []domain.RunSummary) error {
	var buf bytes.Buffer
	if len(runs) == 0 {
		buf.WriteString("no runs stored\n")
	} else {
		table := newTable(&buf, "id", "source", "created", "rows before", "rows after")
		for _, run := range runs {
			table.Append([]string{
				run.ID,
				run.Source,
				run.CreatedAt.UTC().Format(time.RFC3339),
				formatInt(run.RowsBefore),
				formatInt(run.RowsAfter),
			})
		}
		table.Render()
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func renderDiagnostics(buf *bytes.Buffer, diag domain.DiagnosticReport) {
	section(buf, "Diagnostics")
	fmt.Fprintf(buf, "rows: %d, columns: %d, duplicate rows: %d, missing values: %d\n",
		diag.Rows, diag.Columns, diag.Duplicates, diag.TotalNulls())

	nulls := make(map[string]int, len(diag.NullCounts))
	for _, nc := range diag.NullCounts {
		nulls[nc.Column] = nc.Count
	}

	table := newTable(buf, "column", "storage", "semantic", "non-null", "nulls")
	for _, info := range diag.ColumnTypes {
		table.Append([]string{
			info.Name,
			string(info.Storage),
			string(info.Semantic),
			formatInt(info.NonNull),
			formatInt(nulls[info.Name]),
		})
	}
	table.Render()
}

func renderCleaning(buf *bytes.Buffer, rep domain.CleaningReport) {
	section(buf, "Cleaning")

	steps := newTable(buf, "step", "count")
	steps.AppendBulk([][]string{
		{"rows before", formatInt(rep.RowsBefore)},
		{"rows with missing values removed", formatInt(rep.NullRowsRemoved)},
		{"text columns trimmed", formatInt(rep.TextColumnsTrimmed)},
		{"text cells changed", formatInt(rep.CellsTrimmed)},
		{"rows with unparseable streams removed", formatInt(rep.StreamsRowsRemoved)},
		{"numeric columns cleaned", formatInt(rep.NumericColumnsCleaned)},
		{"rows after", formatInt(rep.RowsAfter)},
	})
	steps.Render()

	noisy := newTable(buf, "noisy column", "present", "cells changed", "nulls")
	for _, n := range rep.NoisyColumns {
		noisy.Append([]string{n.Name, formatBool(n.Present), formatInt(n.Normalized), formatInt(n.Nulls)})
	}
	noisy.Render()

	fmt.Fprintf(buf, "missing values after cleaning: %d\n", rep.Final.TotalNulls())
}

func renderAnalysis(buf *bytes.Buffer, rep domain.AnalysisReport) {
	section(buf, "Correlations")
	if rep.InvalidReleaseDates > 0 {
		fmt.Fprintf(buf, "rows with invalid release dates: %d\n", rep.InvalidReleaseDates)
	}
	corr := newTable(buf, "pair", "n", "r")
	for _, c := range rep.Correlations {
		corr.Append([]string{c.Label(), formatInt(c.N), FormatCoefficient(c.Value)})
	}
	corr.Render()

	section(buf, "Artist count buckets")
	buckets := newTable(buf, "bucket", "tracks", "track share %", "streams", "stream share %", "mean streams")
	for _, b := range rep.ArtistBuckets.Buckets {
		buckets.Append([]string{
			b.Bucket,
			formatInt(b.Tracks),
			formatShare(b.TrackShare),
			FormatFloat(b.Streams, 0),
			formatShare(b.StreamShare),
			FormatFloat(b.MeanStreams, 0),
		})
	}
	buckets.Render()
	fmt.Fprintf(buf, "tracks outside the buckets: %d\n", rep.ArtistBuckets.UnbucketedTracks)

	section(buf, "Key shares")
	keys := newTable(buf, "key", "tracks", "track share %", "streams %", "playlists %", "charts %")
	for _, k := range rep.KeyShares {
		keys.Append([]string{
			k.Category,
			formatInt(k.Tracks),
			formatShare(k.TrackShare),
			formatShare(k.StreamsShare),
			formatShare(k.PlaylistsShare),
			formatShare(k.ChartsShare),
		})
	}
	keys.Render()

	section(buf, fmt.Sprintf("Mean streams by bpm (more than %d tracks)", analytics.BPMMinTracks))
	if len(rep.BPMStreamMeans) == 0 {
		buf.WriteString("no tempo is shared by enough tracks\n")
	} else {
		bpm := newTable(buf, "bpm", "tracks", "mean streams")
		for _, g := range rep.BPMStreamMeans {
			bpm.Append([]string{formatExact(g.BPM), formatInt(g.Tracks), FormatFloat(g.MeanStreams, 0)})
		}
		bpm.Render()
	}

	for _, d := range rep.Distributions {
		section(buf, "Distribution of "+d.Column)
		dist := newTable(buf, d.Column, "count")
		for _, c := range d.Counts {
			dist.Append([]string{c.Category, formatInt(c.Count)})
		}
		dist.Render()
	}

	section(buf, "Correlation matrix")
	header := append([]string{""}, rep.Matrix.Columns...)
	matrix := newTable(buf, header...)
	for i, name := range rep.Matrix.Columns {
		row := []string{name}
		for _, v := range rep.Matrix.Values[i] {
			row = append(row, FormatCoefficient(v))
		}
		matrix.Append(row)
	}
	matrix.Render()
}
