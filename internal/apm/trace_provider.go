// Package apm wires the OpenTelemetry trace pipeline for the watcher. It
// picks a span exporter, installs the global tracer provider and
// propagators, and hands back a handle for shutdown.
package apm

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/mmaeda/arbwatch/internal/logger"
)

// Provider names a span exporter backend.
type Provider string

const (
	ZipkinProvider    Provider = "ZIPKIN_PROVIDER"
	CollectorProvider Provider = "COLLECTOR_PROVIDER"
	ConsoleProvider   Provider = "CONSOLE_PROVIDER"
	EmptyProvider     Provider = "EMPTY_PROVIDER"
)

// TraceProvider is the shutdown handle for an installed trace pipeline.
type TraceProvider interface {
	Stop() error
}

// TracerOption configures NewTraceProvider.
type TracerOption func(*tracerConfig)

type tracerConfig struct {
	provider Provider
}

// WithProvider selects the exporter backend. Unknown values fall back to
// the no-op pipeline with a warning.
func WithProvider(provider Provider, log logger.LoggerInterface) TracerOption {
	switch provider {
	case ZipkinProvider, CollectorProvider, ConsoleProvider, EmptyProvider:
	default:
		log.Warn(context.Background(), "unknown trace provider, tracing disabled",
			"provider", string(provider))
		provider = EmptyProvider
	}
	return func(c *tracerConfig) {
		c.provider = provider
	}
}

// NewTraceProvider installs the global tracer provider and W3C propagators.
// Service name and collector endpoint come from the standard OTEL_*
// environment variables. Exporter construction failures disable tracing
// rather than killing the watcher.
func NewTraceProvider(log logger.LoggerInterface, options ...TracerOption) TraceProvider {
	cfg := &tracerConfig{provider: ConsoleProvider}
	for _, opt := range options {
		opt(cfg)
	}

	if cfg.provider == EmptyProvider {
		return noopProvider{}
	}

	exporter, err := newExporter(cfg.provider, log)
	if err != nil {
		log.Error(context.Background(), "trace exporter init failed, tracing disabled",
			"provider", string(cfg.provider), "error", err)
		return noopProvider{}
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(os.Getenv("OTEL_SERVICE_NAME")),
			attribute.String("otel.provider", string(cfg.provider)),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &sdkProvider{tp: tp}
}

func newExporter(provider Provider, log logger.LoggerInterface) (sdktrace.SpanExporter, error) {
	ctx := context.Background()
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	switch provider {
	case ZipkinProvider:
		return zipkin.New(endpoint)
	case CollectorProvider:
		if os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL") == "http/protobuf" {
			log.Info(ctx, "using OTLP HTTP trace exporter", "endpoint", endpoint)
			return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
		}
		log.Info(ctx, "using OTLP gRPC trace exporter", "endpoint", endpoint)
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(endpoint))
	case ConsoleProvider:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	return nil, fmt.Errorf("no exporter for provider %q", provider)
}

type sdkProvider struct {
	tp *sdktrace.TracerProvider
}

// Stop flushes pending spans with a bounded deadline.
func (p *sdkProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.tp.Shutdown(ctx)
}

type noopProvider struct{}

func (noopProvider) Stop() error { return nil }
