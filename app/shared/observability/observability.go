package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ServiceName identifies this service in logs, traces and metrics.
const ServiceName = "league-ledger"

// Config holds what the observability stack needs from the application config.
type Config struct {
	Environment     string
	Version         string
	LogLevel        string
	OTLPEndpoint    string
	OTLPInsecure    bool
	TraceSampleRate float64
	LogOutput       io.Writer
}

// Observability bundles the logger, tracer and metrics handed to every module.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Metrics  Metrics
	Registry *prometheus.Registry

	shutdown func(context.Context) error
}

// New wires logging, tracing and metrics. Tracing exports over OTLP/HTTP only
// when an endpoint is configured; otherwise a no-op tracer is used.
func New(ctx context.Context, cfg Config) (*Observability, error) {
	logger := NewLogger(cfg.LogOutput, cfg.LogLevel, cfg.Environment)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := NewPrometheusMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("observability: register metrics: %w", err)
	}

	obs := &Observability{
		Logger:   logger,
		Metrics:  metrics,
		Registry: registry,
		shutdown: func(context.Context) error { return nil },
	}

	if cfg.OTLPEndpoint == "" {
		obs.Tracer = noop.NewTracerProvider().Tracer(ServiceName)
		return obs, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("observability: create otlp exporter: %w", err)
	}

	res := sdkresource.NewWithAttributes(semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(cfg.Version),
		semconv.DeploymentEnvironment(cfg.Environment),
	)

	sampleRate := cfg.TraceSampleRate
	if sampleRate <= 0 {
		sampleRate = 0.1
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRate))),
	)
	otel.SetTracerProvider(provider)

	obs.Tracer = provider.Tracer(ServiceName)
	obs.shutdown = provider.Shutdown

	logger.InfoContext(ctx, "Tracing enabled", slog.String("otlp_endpoint", cfg.OTLPEndpoint))
	return obs, nil
}

// NewNoOp returns an Observability that records nothing.
func NewNoOp() *Observability {
	return &Observability{
		Logger:   NoOpLogger,
		Tracer:   noop.NewTracerProvider().Tracer(ServiceName),
		Metrics:  NoOpMetrics{},
		Registry: prometheus.NewRegistry(),
		shutdown: func(context.Context) error { return nil },
	}
}

// Shutdown flushes pending spans.
func (o *Observability) Shutdown(ctx context.Context) error {
	return o.shutdown(ctx)
}
