package http

import (
	"context"

	"trackstats/pkg/contracts/domain"
)

// AnalysisServiceInterface defines the pipeline operations the handlers call
type AnalysisServiceInterface interface {
	Run(ctx context.Context, source string, raw *domain.Table) (*domain.RunResult, error)
	Diagnose(ctx context.Context, raw *domain.Table) domain.DiagnosticReport
	GetRun(ctx context.Context, id string) (*domain.RunResult, error)
	ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error)
}
