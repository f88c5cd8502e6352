package dataprocessing

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"

	"trackstats/internal/errors"
	"trackstats/pkg/contracts/domain"
)

var (
	// numberRun matches the first run of digits with an optional decimal part
	numberRun = regexp.MustCompile(`\d+\.?\d*`)

	separatorStripper = strings.NewReplacer(",", "", " ", "")
)

// Cleaner turns a raw catalog table into an analysis-ready one
type Cleaner struct {
	schema *domain.Schema
	logger *slog.Logger
}

// NewCleaner creates a cleaner for the given schema
func NewCleaner(schema *domain.Schema, logger *slog.Logger) *Cleaner {
	if schema == nil {
		schema = domain.DefaultSchema()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		schema: schema,
		logger: logger.With(slog.String("component", "cleaner")),
	}
}

// Clean runs the cleaning steps in order and returns a new table. The raw
// table is never modified. Residual nulls left by noisy column
// normalization are kept; rows whose streams cannot be parsed are dropped.
func (c *Cleaner) Clean(ctx context.Context, raw *domain.Table) (*domain.Table, domain.CleaningReport, error) {
	report := domain.CleaningReport{
		RowsBefore:   raw.NumRows(),
		NoisyColumns: []domain.NoisyColumnReport{},
	}

	if !raw.HasColumn(domain.ColStreams) {
		return nil, report, errors.NewSchemaError("streams column is required", domain.ErrMissingColumn).
			WithContext("column", domain.ColStreams)
	}

	// Step 1: drop every row holding a null anywhere
	table, err := dropNullRows(raw)
	if err != nil {
		return nil, report, errors.NewSchemaError("failed to drop rows with missing values", err)
	}
	report.NullRowsRemoved = raw.NumRows() - table.NumRows()
	c.logger.InfoContext(ctx, "Removed rows with missing values",
		slog.Int("rows_removed", report.NullRowsRemoved),
		slog.Int("rows_remaining", table.NumRows()))

	// Step 2: trim free-form text
	for _, name := range table.Names() {
		col, _ := table.Series(name)
		if c.schema.TypeOf(name) != domain.SemanticText || col.Type() != series.String {
			continue
		}
		trimmed, changed := trimCells(col)
		if err := table.Set(trimmed); err != nil {
			return nil, report, errors.NewSchemaError("failed to trim text column", err).WithContext("column", name)
		}
		report.TextColumnsTrimmed++
		report.CellsTrimmed += changed
	}
	c.logger.InfoContext(ctx, "Trimmed text columns",
		slog.Int("columns", report.TextColumnsTrimmed),
		slog.Int("cells_changed", report.CellsTrimmed))

	// Step 3: normalize the columns known to arrive as noisy text
	for _, name := range domain.NoisyNumericColumns {
		col, err := table.Series(name)
		if err != nil {
			report.NoisyColumns = append(report.NoisyColumns, domain.NoisyColumnReport{Name: name})
			c.logger.WarnContext(ctx, "Noisy numeric column absent, skipping",
				slog.String("column", name))
			continue
		}

		normalized, changed := normalizeNoisy(col)
		if err := table.Set(normalized); err != nil {
			return nil, report, errors.NewSchemaError("failed to normalize column", err).WithContext("column", name)
		}
		entry := domain.NoisyColumnReport{
			Name:       name,
			Present:    true,
			Normalized: changed,
			Nulls:      countNaN(normalized),
		}
		report.NoisyColumns = append(report.NoisyColumns, entry)
		report.NumericColumnsCleaned++

		c.logger.InfoContext(ctx, "Normalized noisy numeric column",
			slog.String("column", name),
			slog.Int("cells_changed", entry.Normalized),
			slog.Int("nulls", entry.Nulls))
	}

	// Step 4: coerce streams and drop the rows that do not parse
	streams, _ := table.Series(domain.ColStreams)
	if err := table.Set(coerceNumeric(streams)); err != nil {
		return nil, report, errors.NewSchemaError("failed to coerce streams", err)
	}
	report.NumericColumnsCleaned++

	before := table.NumRows()
	table, err = table.Filter(domain.ColStreams, func(e series.Element) bool { return !e.IsNA() })
	if err != nil {
		return nil, report, errors.NewSchemaError("failed to drop unparsed streams", err)
	}
	report.StreamsRowsRemoved = before - table.NumRows()
	report.RowsAfter = table.NumRows()
	c.logger.InfoContext(ctx, "Coerced streams to numeric",
		slog.Int("rows_removed", report.StreamsRowsRemoved),
		slog.Int("rows_remaining", report.RowsAfter))

	// Step 5: final inspection of the cleaned table
	report.Final = Diagnose(table, c.schema)

	c.logger.InfoContext(ctx, "Cleaning completed",
		slog.Int("rows_before", report.RowsBefore),
		slog.Int("rows_after", report.RowsAfter),
		slog.Int("residual_nulls", report.Final.TotalNulls()))

	return table, report, nil
}

// dropNullRows keeps the rows with no missing cell in any column
func dropNullRows(t *domain.Table) (*domain.Table, error) {
	keep := make([]bool, t.NumRows())
	for i := range keep {
		keep[i] = true
	}
	for _, name := range t.Names() {
		col, _ := t.Series(name)
		for i, missing := range col.IsNaN() {
			if missing {
				keep[i] = false
			}
		}
	}
	return t.Subset(keep)
}

func countNaN(s series.Series) int {
	n := 0
	for _, missing := range s.IsNaN() {
		if missing {
			n++
		}
	}
	return n
}

// trimCells strips surrounding whitespace from a text series
func trimCells(s series.Series) (series.Series, int) {
	values := make([]string, s.Len())
	valid := make([]bool, s.Len())
	changed := 0
	for i := range values {
		text, ok := domain.TextOf(s.Elem(i))
		if !ok {
			continue
		}
		values[i] = strings.TrimSpace(text)
		valid[i] = true
		if values[i] != text {
			changed++
		}
	}
	return domain.Strings(s.Name, values, valid), changed
}

// normalizeNoisy removes commas and spaces, keeps the first number found and
// turns cells without one into nulls. The result holds floats when the
// input does or when any kept run has a decimal point, and ints otherwise.
func normalizeNoisy(s series.Series) (series.Series, int) {
	runs := make([]string, s.Len())
	float := s.Type() == series.Float
	for i := range runs {
		runs[i] = "NaN"
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		run := numberRun.FindString(separatorStripper.Replace(domain.Render(e)))
		if run == "" {
			continue
		}
		if strings.Contains(run, ".") {
			float = true
		}
		runs[i] = run
	}
	if !float {
		for _, run := range runs {
			if run == "NaN" {
				continue
			}
			if _, err := strconv.ParseInt(run, 10, 64); err != nil {
				float = true
				break
			}
		}
	}

	typ := series.Int
	if float {
		typ = series.Float
	}
	out := series.New(runs, typ, s.Name)

	changed := 0
	for i := 0; i < s.Len(); i++ {
		before, after := s.Elem(i), out.Elem(i)
		if before.IsNA() {
			continue
		}
		if after.IsNA() || before.Type() != after.Type() || domain.Render(before) != domain.Render(after) {
			changed++
		}
	}
	return out, changed
}

// coerceNumeric keeps numeric series and parses text ones; cells that do
// not parse become missing
func coerceNumeric(s series.Series) series.Series {
	switch s.Type() {
	case series.Int, series.Float:
		return s
	}
	return numericColumn(s.Name, s.Records())
}
