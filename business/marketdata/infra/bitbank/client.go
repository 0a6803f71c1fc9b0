// Package bitbank implements the BookProvider port for the bitbank exchange.
package bitbank

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mmaeda/arbwatch/business/marketdata/domain"
	"github.com/mmaeda/arbwatch/internal/apperror"
	"github.com/mmaeda/arbwatch/internal/circuitbreaker"
	"github.com/mmaeda/arbwatch/internal/httpclient"
	"github.com/mmaeda/arbwatch/internal/logger"
	"github.com/mmaeda/arbwatch/internal/ratelimit"
)

const (
	// bitbank public REST API
	BaseAPIURL = "https://public.bitbank.cc"

	tracerName  = "bitbank"
	httpTimeout = 5 * time.Second
)

// Config holds configuration for the bitbank client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client fetches and normalizes bitbank depth responses.
type Client struct {
	client  httpclient.Client
	limiter *ratelimit.Limiter
	breaker *gobreaker.CircuitBreaker[*domain.OrderBookSnapshot]
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewClient creates a new bitbank client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseAPIURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	rpm := cfg.RequestsPerMinute
	if rpm == 0 {
		rpm = 60
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("bitbank"),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTracer(tracer),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	cbCfg := circuitbreaker.DefaultConfig("bitbank")
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	limiter := ratelimit.New(rpm)
	log.Debug(context.Background(), "bitbank client ready",
		"base_url", baseURL, "rpm_budget", limiter.Budget())

	return &Client{
		client:  client,
		limiter: limiter,
		breaker: circuitbreaker.New[*domain.OrderBookSnapshot](cbCfg),
		logger:  log,
		tracer:  tracer,
	}, nil
}

// Exchange returns the exchange this provider serves.
func (c *Client) Exchange() domain.Exchange {
	return domain.Bitbank
}

// FetchBook retrieves and normalizes the depth for a pair identifier such as
// "btc_jpy". The endpoint is path-based: /{pair}/depth.
func (c *Client) FetchBook(ctx context.Context, pairID string) (*domain.OrderBookSnapshot, error) {
	snapshot, err := c.breaker.Execute(func() (*domain.OrderBookSnapshot, error) {
		return c.fetchBook(ctx, pairID)
	})
	if circuitbreaker.IsOpen(err) {
		return nil, apperror.New(apperror.CodeCircuitOpen,
			apperror.WithCause(err),
			apperror.WithContext("bitbank breaker open"))
	}
	return snapshot, err
}

func (c *Client) fetchBook(ctx context.Context, pairID string) (*domain.OrderBookSnapshot, error) {
	ctx, span := c.tracer.Start(ctx, "bitbank.fetch_book",
		trace.WithAttributes(attribute.String("pair", pairID)),
	)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err))
	}

	var result DepthResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "depth"),
			httpclient.NewLabel("pair", pairID),
		),
	).
		SetResult(&result).
		Get(ctx, fmt.Sprintf("/%s/depth", pairID))

	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeOrderbookFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext("bitbank depth request failed"))
	}

	if resp.IsError() {
		return nil, apperror.New(apperror.CodeExchangeAPIError,
			apperror.WithContext(fmt.Sprintf("bitbank HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	if resp.Result() == nil {
		return nil, apperror.New(apperror.CodeInvalidOrderbook,
			apperror.WithContext("bitbank depth body is not valid JSON"))
	}

	snapshot, err := result.Normalize(pairID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	c.logger.Debug(ctx, "fetched bitbank depth",
		"pair", pairID,
		"bid", snapshot.BestBid.String(),
		"ask", snapshot.BestAsk.String())

	return snapshot, nil
}
