// Package metrics installs the OpenTelemetry meter provider and, when the
// Prometheus backend is selected, serves the scrape endpoint.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

// MetricProvider is the subset of the SDK provider callers need.
type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
}

// NewMetricProvider builds the meter provider from the configured backends
// and installs it globally. With no backend configured it falls back to an
// OTLP gRPC push reader driven by the standard environment variables.
func NewMetricProvider(options ...OptionFn) MetricProvider {
	ctx := context.Background()

	var cfg Config
	for _, opt := range options {
		cfg = opt(cfg)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = os.Getenv("OTEL_SERVICE_NAME")
	}

	providerOpts := []sdkmetric.Option{
		sdkmetric.WithResource(
			resource.NewSchemaless(semconv.ServiceNameKey.String(serviceName)),
		),
	}
	for _, reader := range buildReaders(ctx, cfg) {
		providerOpts = append(providerOpts, sdkmetric.WithReader(reader))
	}

	provider := sdkmetric.NewMeterProvider(providerOpts...)
	otel.SetMeterProvider(provider)
	return provider
}

func buildReaders(ctx context.Context, cfg Config) []sdkmetric.Reader {
	if len(cfg.Provider) == 0 {
		exp, err := otlpmetricgrpc.New(ctx)
		if err != nil {
			panic(err)
		}
		return []sdkmetric.Reader{sdkmetric.NewPeriodicReader(exp)}
	}

	readers := make([]sdkmetric.Reader, 0, len(cfg.Provider))
	for _, backend := range cfg.Provider {
		switch backend.Provider {
		case PrometheusProvider:
			exp, err := prometheus.New()
			if err != nil {
				panic(err)
			}
			readers = append(readers, exp)
		case OtelCollector:
			opts := []otlpmetricgrpc.Option{
				otlpmetricgrpc.WithEndpointURL(backend.Endpoint),
				otlpmetricgrpc.WithHeaders(backend.Headers),
			}
			if backend.Insecure {
				opts = append(opts, otlpmetricgrpc.WithInsecure())
			}
			exp, err := otlpmetricgrpc.New(ctx, opts...)
			if err != nil {
				panic(err)
			}
			readers = append(readers, sdkmetric.NewPeriodicReader(exp))
		}
	}
	return readers
}

// ServePrometheusMetrics blocks serving /metrics for the scraper. Run it in
// its own goroutine.
func ServePrometheusMetrics(opts ...PromOptionFn) {
	cfg := PromServerConfig{port: "9090"}
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              ":" + cfg.port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "metrics server stopped: %v\n", err)
	}
}
