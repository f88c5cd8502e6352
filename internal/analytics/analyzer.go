package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"trackstats/internal/errors"
	"trackstats/pkg/contracts/domain"
)

// Analyzer runs every statistic over a cleaned table
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger.With(slog.String("component", "analyzer"))}
}

// Analyze materializes the derived columns on t and computes the full report.
// t is modified in place.
func (a *Analyzer) Analyze(ctx context.Context, t *domain.Table) (domain.AnalysisReport, error) {
	var missing []string
	for _, name := range domain.RequiredColumns() {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return domain.AnalysisReport{}, errors.NewSchemaError(
			"missing required columns: "+strings.Join(missing, ", "), domain.ErrMissingColumn).
			WithContext("columns", missing)
	}

	invalid, err := Materialize(t)
	if err != nil {
		return domain.AnalysisReport{}, err
	}
	if invalid > 0 {
		a.logger.WarnContext(ctx, "Rows with invalid release dates excluded from date statistics",
			slog.Int("rows", invalid))
	}

	report := domain.AnalysisReport{
		Rows:                t.NumRows(),
		InvalidReleaseDates: invalid,
	}

	if report.Correlations, err = Correlations(t); err != nil {
		return report, fmt.Errorf("correlations: %w", err)
	}
	if report.Distributions, err = Distributions(t); err != nil {
		return report, fmt.Errorf("distributions: %w", err)
	}
	if report.ArtistBuckets, err = ArtistBuckets(t); err != nil {
		return report, fmt.Errorf("artist buckets: %w", err)
	}
	if report.KeyShares, err = KeyShares(t); err != nil {
		return report, fmt.Errorf("key shares: %w", err)
	}
	if report.BPMStreamMeans, err = BPMStreamMeans(t); err != nil {
		return report, fmt.Errorf("bpm stream means: %w", err)
	}
	if report.Histograms, err = FeatureHistograms(t); err != nil {
		return report, fmt.Errorf("feature histograms: %w", err)
	}
	if report.Matrix, err = CorrelationMatrix(t); err != nil {
		return report, fmt.Errorf("correlation matrix: %w", err)
	}

	undefined := 0
	for _, c := range report.Correlations {
		if !c.Value.Defined() {
			undefined++
		}
	}

	a.logger.InfoContext(ctx, "Analysis completed",
		slog.Int("rows", report.Rows),
		slog.Int("correlations", len(report.Correlations)),
		slog.Int("undefined_correlations", undefined),
		slog.Int("bpm_groups", len(report.BPMStreamMeans)),
		slog.Int("unbucketed_tracks", report.ArtistBuckets.UnbucketedTracks))

	return report, nil
}
