package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"trackstats/internal/analytics"
	"trackstats/internal/dataprocessing"
	"trackstats/internal/errors"
	"trackstats/internal/infrastructure"
	"trackstats/internal/store"
	"trackstats/pkg/contracts/domain"
)

// Pipeline stage names used for spans and metrics
const (
	StageDiagnose = "diagnose"
	StageClean    = "clean"
	StageAnalyze  = "analyze"
	StagePersist  = "persist"
)

// Cleaning steps reported by the rows removed metric
const (
	StepMissingValues = "missing_values"
	StepStreams       = "streams"
)

// AnalysisService runs the full pipeline over raw catalog tables
type AnalysisService struct {
	schema   *domain.Schema
	cleaner  *dataprocessing.Cleaner
	analyzer *analytics.Analyzer
	store    store.RunStore
	metrics  *infrastructure.Metrics
	tracer   trace.Tracer
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// Option configures an AnalysisService
type Option func(*AnalysisService)

// WithStore persists every successful run
func WithStore(s store.RunStore) Option {
	return func(a *AnalysisService) { a.store = s }
}

// WithMetrics records run, stage and row metrics
func WithMetrics(m *infrastructure.Metrics) Option {
	return func(a *AnalysisService) { a.metrics = m }
}

// WithTracer replaces the global tracer
func WithTracer(t trace.Tracer) Option {
	return func(a *AnalysisService) { a.tracer = t }
}

// WithClock replaces time.Now for run timestamps
func WithClock(now func() time.Time) Option {
	return func(a *AnalysisService) { a.now = now }
}

// WithIDGenerator replaces the random run id generator
func WithIDGenerator(newID func() string) Option {
	return func(a *AnalysisService) { a.newID = newID }
}

// WithSchema replaces the default catalog schema
func WithSchema(schema *domain.Schema) Option {
	return func(a *AnalysisService) { a.schema = schema }
}

// NewAnalysisService creates the pipeline service
func NewAnalysisService(logger *slog.Logger, opts ...Option) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &AnalysisService{
		schema: domain.DefaultSchema(),
		tracer: otel.Tracer(infrastructure.TracerName),
		logger: logger.With(slog.String("component", "analysis_service")),
		now:    time.Now,
		newID:  infrastructure.GenerateTraceID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cleaner = dataprocessing.NewCleaner(s.schema, logger)
	s.analyzer = analytics.NewAnalyzer(logger)
	return s
}

// Run executes diagnose, clean and analyze over raw and persists the result
// when a store is configured. raw is not modified.
func (s *AnalysisService) Run(ctx context.Context, source string, raw *domain.Table) (result *domain.RunResult, err error) {
	id := s.newID()
	if infrastructure.GetTraceID(ctx) == "" {
		ctx = infrastructure.WithTraceID(ctx, id)
	}

	ctx, span := s.tracer.Start(ctx, "analysis.run", trace.WithAttributes(
		attribute.String("run.id", id),
		attribute.String("run.source", source),
		attribute.Int("run.rows", raw.NumRows()),
	))
	defer span.End()

	start := s.now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveRun(err)
		}
		if err != nil {
			infrastructure.RecordError(ctx, err)
			s.logger.ErrorContext(ctx, "Analysis run failed",
				slog.String("run_id", id),
				slog.String("error", err.Error()))
		}
	}()

	s.logger.InfoContext(ctx, "Analysis run started",
		slog.String("run_id", id),
		slog.String("source", source),
		slog.Int("rows", raw.NumRows()),
		slog.Int("columns", raw.NumCols()))

	result = &domain.RunResult{
		ID:        id,
		Source:    source,
		CreatedAt: start.UTC(),
	}

	result.Diagnostics = s.Diagnose(ctx, raw)

	cleaned, cleaning, err := s.Clean(ctx, raw)
	if err != nil {
		return nil, err
	}
	result.Cleaning = cleaning

	err = s.stage(ctx, StageAnalyze, func(ctx context.Context) error {
		var err error
		result.Analysis, err = s.analyzer.Analyze(ctx, cleaned)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		err = s.stage(ctx, StagePersist, func(ctx context.Context) error {
			return s.store.SaveRun(ctx, result)
		})
		if err != nil {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "Analysis run completed",
		slog.String("run_id", id),
		slog.Int("rows_before", cleaning.RowsBefore),
		slog.Int("rows_after", cleaning.RowsAfter),
		slog.Duration("duration", s.now().Sub(start)))
	return result, nil
}

// Diagnose inspects raw without cleaning it
func (s *AnalysisService) Diagnose(ctx context.Context, raw *domain.Table) domain.DiagnosticReport {
	var report domain.DiagnosticReport
	s.stage(ctx, StageDiagnose, func(ctx context.Context) error {
		report = dataprocessing.Diagnose(raw, s.schema)
		s.logger.InfoContext(ctx, "Diagnostics completed",
			slog.Int("rows", report.Rows),
			slog.Int("missing_values", report.TotalNulls()),
			slog.Int("duplicates", report.Duplicates))
		return nil
	})
	return report
}

// Clean runs the cleaner and records how many rows each step dropped
func (s *AnalysisService) Clean(ctx context.Context, raw *domain.Table) (*domain.Table, domain.CleaningReport, error) {
	var (
		cleaned *domain.Table
		report  domain.CleaningReport
	)
	err := s.stage(ctx, StageClean, func(ctx context.Context) error {
		var err error
		cleaned, report, err = s.cleaner.Clean(ctx, raw)
		return err
	})
	if err != nil {
		return nil, report, err
	}
	if s.metrics != nil {
		s.metrics.AddRowsRemoved(StepMissingValues, report.NullRowsRemoved)
		s.metrics.AddRowsRemoved(StepStreams, report.StreamsRowsRemoved)
	}
	return cleaned, report, nil
}

// GetRun loads a stored run
func (s *AnalysisService) GetRun(ctx context.Context, id string) (*domain.RunResult, error) {
	if s.store == nil {
		return nil, errors.NewNotFoundError("run").WithContext("run_id", id)
	}
	return s.store.GetRun(ctx, id)
}

// ListRuns returns the most recent stored runs
func (s *AnalysisService) ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if s.store == nil {
		return []domain.RunSummary{}, nil
	}
	return s.store.ListRuns(ctx, limit)
}

// stage runs fn inside a span and records its duration
func (s *AnalysisService) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "analysis."+name)
	defer span.End()

	start := s.now()
	err := fn(ctx)
	if s.metrics != nil {
		s.metrics.ObserveStage(name, s.now().Sub(start))
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
	}
	return err
}
