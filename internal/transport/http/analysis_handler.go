package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"trackstats/internal/dataprocessing"
	apierrors "trackstats/internal/errors"
	custommw "trackstats/internal/middleware"
	"trackstats/internal/validation"
	api "trackstats/pkg/contracts/api/v1"
	"trackstats/pkg/contracts/domain"
)

const (
	// multipartMemory is kept in memory before the form spills to disk
	multipartMemory = 8 << 20
)

// AnalysisHandler serves pipeline runs and the run history
type AnalysisHandler struct {
	service        AnalysisServiceInterface
	loadOptions    dataprocessing.LoadOptions
	maxUploadBytes int64
	queryValidator *custommw.QueryParamValidator
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewAnalysisHandler creates an analysis handler. Uploads larger than
// maxUploadBytes are rejected with 413.
func NewAnalysisHandler(service AnalysisServiceInterface, opts dataprocessing.LoadOptions, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{
		service:        service,
		loadOptions:    opts,
		maxUploadBytes: maxUploadBytes,
		queryValidator: custommw.NewQueryParamValidator(logger, errorHandler),
		logger:         logger.With(slog.String("component", "analysis_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/analyses", h.CreateAnalysis)
	r.Get("/analyses", h.ListAnalyses)
	r.Get("/analyses/{id}", h.GetAnalysis)
	r.Post("/diagnostics", h.CreateDiagnostics)

	return r
}

// CreateAnalysis handles POST /api/v1/analyses
func (h *AnalysisHandler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	source, table, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	result, err := h.service.Run(r.Context(), source, table)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "analysis created",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("run_id", result.ID),
		slog.String("source", source),
	)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// CreateDiagnostics handles POST /api/v1/diagnostics
func (h *AnalysisHandler) CreateDiagnostics(w http.ResponseWriter, r *http.Request) {
	_, table, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	render.JSON(w, r, h.service.Diagnose(r.Context(), table))
}

// ListAnalyses handles GET /api/v1/analyses
func (h *AnalysisHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.queryValidator.ValidateInt(w, r, "limit", 1, api.MaxListLimit, api.DefaultListLimit)
	if !ok {
		return
	}

	runs, err := h.service.ListRuns(r.Context(), limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.NewListRunsResponse(runs))
}

// GetAnalysis handles GET /api/v1/analyses/{id}
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.service.GetRun(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// readUpload decodes the uploaded catalog. The third result is false when
// an error response has already been written.
func (h *AnalysisHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, *domain.Table, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
				"Upload exceeds the maximum allowed size",
				map[string]interface{}{"max_bytes": h.maxUploadBytes},
			))
			return "", nil, false
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return "", nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(api.UploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			h.errorHandler.HandleError(w, r, apierrors.ErrMissingFile)
			return "", nil, false
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return "", nil, false
	}
	defer file.Close()

	if !validation.IsSupportedInput(header.Filename) {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnsupportedInput)
		return "", nil, false
	}

	table, err := dataprocessing.Read(header.Filename, file, h.loadOptions)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return "", nil, false
	}

	h.logger.DebugContext(r.Context(), "upload decoded",
		slog.String("filename", header.Filename),
		slog.Int64("bytes", header.Size),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumCols()),
	)

	return header.Filename, table, true
}
