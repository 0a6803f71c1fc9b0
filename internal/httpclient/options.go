// Package httpclient is the instrumented JSON fetch client the exchange
// adapters share. Every request gets a span and a counter increment; venues
// differ only in base URL, headers, and how they signal errors in the body.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ClientOption configures a client at construction time.
type ClientOption func(*clientConfig)

type clientConfig struct {
	httpClient   *http.Client
	transport    http.RoundTripper
	timeout      time.Duration
	providerName string
	baseURL      string
	headers      map[string]string
	tracer       trace.Tracer
	meters       metric.MeterProvider
}

func buildClientConfig(opts []ClientOption) *clientConfig {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithProviderName tags every span and metric from this client with the
// venue's name.
func WithProviderName(name string) ClientOption {
	return func(c *clientConfig) { c.providerName = name }
}

// WithBaseURL prefixes relative request paths with url.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithRequestTimeout bounds each request end to end.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) { c.timeout = d }
}

// WithHeaders sets headers sent on every request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *clientConfig) { c.headers = headers }
}

// WithTracer overrides the tracer used for request spans.
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(c *clientConfig) { c.tracer = tracer }
}

// WithHTTPClient supplies a preconfigured http.Client, for tests mostly.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithRoundTripper swaps the transport under the instrumentation wrapper.
func WithRoundTripper(rt http.RoundTripper) ClientOption {
	return func(c *clientConfig) { c.transport = rt }
}

// WithMeterProvider overrides the meter provider for the request counter.
func WithMeterProvider(mp metric.MeterProvider) ClientOption {
	return func(c *clientConfig) { c.meters = mp }
}

// ResponseErrorHandler inspects a completed response and may turn it into an
// error. When it returns non-nil the request fails with that error while the
// response stays available for inspection. Without a handler, HTTP-level
// errors are left to the caller via Response.IsError.
type ResponseErrorHandler func(statusCode int, body []byte) error

// RequestOption configures a single request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	errorHandler ResponseErrorHandler
	labels       []*Label
}

func buildRequestConfig(opts []RequestOption) *requestConfig {
	cfg := &requestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithResponseErrorHandler installs a body-level error check on the request.
func WithResponseErrorHandler(handler ResponseErrorHandler) RequestOption {
	return func(c *requestConfig) { c.errorHandler = handler }
}

// Label is an extra dimension on the request counter.
type Label struct {
	Key   string
	Value string
}

// NewLabel builds a metric label.
func NewLabel(key, value string) *Label {
	return &Label{Key: key, Value: value}
}

// WithLabels attaches metric labels to the request.
func WithLabels(labels ...*Label) RequestOption {
	return func(c *requestConfig) { c.labels = labels }
}
