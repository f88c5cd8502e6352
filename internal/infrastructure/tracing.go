package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"trackstats/internal/config"
)

const (
	ServiceName = "trackstats"
	TracerName  = "trackstats"
)

// Tracing owns the tracer provider for the lifetime of the process
type Tracing struct {
	provider *sdktrace.TracerProvider
	Tracer   trace.Tracer
	logger   *slog.Logger
}

// InitTracing installs a global tracer provider. Disabled tracing, or the
// none exporter, yields a no-op tracer. Spans are written to w as JSON.
func InitTracing(cfg config.TracingConfig, version string, w io.Writer, logger *slog.Logger) (*Tracing, error) {
	logger = WithComponent(logger, "tracing")

	if !cfg.Enabled || cfg.Exporter == "none" {
		return &Tracing{Tracer: noop.NewTracerProvider().Tracer(TracerName), logger: logger}, nil
	}

	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch cfg.Exporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w))
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", ServiceName),
		attribute.String("service.version", version),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Tracing initialized", slog.String("exporter", cfg.Exporter))
	return &Tracing{
		provider: tp,
		Tracer:   tp.Tracer(TracerName, trace.WithInstrumentationVersion(version)),
		logger:   logger,
	}, nil
}

// Shutdown flushes and stops the tracer provider
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	if err := t.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("tracer provider shutdown: %w", err)
	}
	t.logger.InfoContext(ctx, "Tracing shutdown complete")
	return nil
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceIDFromContext extracts the span trace id for log correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}
