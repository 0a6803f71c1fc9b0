package metrics

// Provider names a metrics backend.
type Provider string

const (
	// PrometheusProvider exposes a pull endpoint for scraping.
	PrometheusProvider Provider = "prometheus"
	// OtelCollector pushes over OTLP gRPC to a collector.
	OtelCollector Provider = "customOtelCollector"
)

// Config is the assembled provider configuration.
type Config struct {
	ServiceName string
	Provider    []ProviderCfg
}

// ProviderCfg describes one backend. Endpoint, Headers, and Insecure only
// apply to push backends.
type ProviderCfg struct {
	Provider Provider
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// OptionFn transforms a Config during NewMetricProvider.
type OptionFn func(config Config) Config

// WithServiceName sets the service name attached to every metric.
func WithServiceName(name string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = name
		return config
	}
}

// WithProviderConfig adds a backend. Repeatable; each backend gets its own
// reader.
func WithProviderConfig(backend ProviderCfg) OptionFn {
	return func(config Config) Config {
		config.Provider = append(config.Provider, backend)
		return config
	}
}

// NewOtelCollectorConfig is shorthand for an OTLP push backend.
func NewOtelCollectorConfig(endpoint string, headers map[string]string, insecure bool) ProviderCfg {
	return ProviderCfg{
		Provider: OtelCollector,
		Endpoint: endpoint,
		Headers:  headers,
		Insecure: insecure,
	}
}

// PromServerConfig holds the scrape server settings.
type PromServerConfig struct {
	port string
}

// PromOptionFn configures ServePrometheusMetrics.
type PromOptionFn func(config PromServerConfig) PromServerConfig

// WithPort overrides the default scrape port.
func WithPort(port string) PromOptionFn {
	return func(config PromServerConfig) PromServerConfig {
		config.port = port
		return config
	}
}
