package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"trackstats/internal/config"
	"trackstats/internal/dataprocessing"
	apierrors "trackstats/internal/errors"
	"trackstats/internal/infrastructure"
	custommw "trackstats/internal/middleware"
	"trackstats/internal/services"
	"trackstats/internal/store"
	handlers "trackstats/internal/transport/http"
	"trackstats/pkg/contracts"
)

const AppName = "trackstats"

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Router          *chi.Mux
	Server          *http.Server
	Logger          *slog.Logger
	Metrics         *infrastructure.Metrics
	Tracing         *infrastructure.Tracing
	Store           *store.SQLiteStore
	AnalysisService *services.AnalysisService
	HealthService   *services.HealthService

	listener net.Listener
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	tracing, err := infrastructure.InitTracing(cfg.Tracing, contracts.Version, os.Stderr, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	app := &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: infrastructure.NewMetrics(),
		Tracing: tracing,
	}

	if err := app.initializeServices(); err != nil {
		tracing.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	logger.Info("Application initialized",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.Bool("storage", app.Store != nil),
		slog.Bool("tracing", cfg.Tracing.Enabled))

	return app, nil
}

// initializeServices opens the run store and creates the services
func (a *Application) initializeServices() error {
	opts := []services.Option{
		services.WithMetrics(a.Metrics),
		services.WithTracer(a.Tracing.Tracer),
	}

	// A nil *SQLiteStore must not reach the Pinger interface
	var pinger services.Pinger
	if a.Config.Storage.Enabled {
		st, err := store.NewSQLiteStore(a.Config.Storage.DatabasePath, a.Logger)
		if err != nil {
			return err
		}
		a.Store = st
		pinger = st
		opts = append(opts, services.WithStore(st))
	}

	a.AnalysisService = services.NewAnalysisService(a.Logger, opts...)
	a.HealthService = services.NewHealthService(contracts.Version, pinger, a.Logger)
	return nil
}

// setupRouter builds the middleware chain and mounts every route
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	// RequestID → RealIP → Tracing → Metrics → logging/recovery → headers
	r.Use(custommw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommw.Tracing(a.Tracing.Tracer))
	r.Use(custommw.Metrics(a.Metrics))
	r.Use(apierrors.NewErrorMiddleware(errorHandler, a.Logger).Handler)
	r.Use(custommw.SecurityHeaders)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	r.Get("/healthz", healthHandler.LivenessCheck)
	r.Get("/readyz", healthHandler.ReadinessCheck)
	r.Handle("/metrics", a.Metrics.Handler())

	analysisHandler := handlers.NewAnalysisHandler(
		a.AnalysisService,
		dataprocessing.LoadOptions{
			Encoding:  a.Config.Input.Encoding,
			Delimiter: a.Config.Input.DelimiterRune(),
		},
		a.Config.Input.MaxUploadBytes,
		a.Logger,
		errorHandler,
	)

	r.Group(func(r chi.Router) {
		if a.Config.Server.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Server.RateLimit.RPS,
				a.Config.Server.RateLimit.Burst,
				a.Logger,
			).Handler)
		}
		r.Mount("/api/v1", analysisHandler.Routes())
	})

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start binds the listener and serves in the background. A serve failure
// calls cancel so the caller can shut down.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", ln.Addr().String()),
		slog.String("version", contracts.Version),
		slog.String("level", a.Config.Logging.Level))
	return nil
}

// Addr returns the bound listener address once Start has succeeded
func (a *Application) Addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Stop shuts the server down gracefully, then flushes spans and closes the store
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if err := a.Close(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Close releases tracing and the store without touching the server
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if err := a.Tracing.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close error: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Run serves until ctx is cancelled or the process is interrupted
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx, stop); err != nil {
		a.Close(context.Background())
		return err
	}

	<-ctx.Done()
	a.Logger.InfoContext(ctx, "Received shutdown signal")

	return a.Stop(context.WithoutCancel(ctx))
}
