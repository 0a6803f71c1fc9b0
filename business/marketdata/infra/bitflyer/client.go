// Package bitflyer implements the BookProvider port for the bitFlyer exchange.
package bitflyer

import (
	"context"
	"encoding/json"
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
	// bitFlyer public REST API
	BaseAPIURL = "https://api.bitflyer.com"

	boardEndpoint = "/v1/board"

	tracerName  = "bitflyer"
	httpTimeout = 5 * time.Second
)

// Config holds configuration for the bitFlyer client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client fetches and normalizes bitFlyer order boards.
type Client struct {
	client  httpclient.Client
	limiter *ratelimit.Limiter
	breaker *gobreaker.CircuitBreaker[*domain.OrderBookSnapshot]
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewClient creates a new bitFlyer client.
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
		httpclient.WithProviderName("bitflyer"),
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

	cbCfg := circuitbreaker.DefaultConfig("bitflyer")
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	limiter := ratelimit.New(rpm)
	log.Debug(context.Background(), "bitflyer client ready",
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
	return domain.Bitflyer
}

// FetchBook retrieves and normalizes the order board for a product code such
// as "BTC_JPY".
func (c *Client) FetchBook(ctx context.Context, pairID string) (*domain.OrderBookSnapshot, error) {
	snapshot, err := c.breaker.Execute(func() (*domain.OrderBookSnapshot, error) {
		return c.fetchBook(ctx, pairID)
	})
	if circuitbreaker.IsOpen(err) {
		return nil, apperror.New(apperror.CodeCircuitOpen,
			apperror.WithCause(err),
			apperror.WithContext("bitflyer breaker open"))
	}
	return snapshot, err
}

func (c *Client) fetchBook(ctx context.Context, pairID string) (*domain.OrderBookSnapshot, error) {
	ctx, span := c.tracer.Start(ctx, "bitflyer.fetch_book",
		trace.WithAttributes(attribute.String("product_code", pairID)),
	)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err))
	}

	var result BoardResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "board"),
			httpclient.NewLabel("product_code", pairID),
		),
		httpclient.WithResponseErrorHandler(bitflyerErrorHandler),
	).
		SetQueryParam("product_code", pairID).
		SetResult(&result).
		Get(ctx, boardEndpoint)

	if err != nil {
		span.RecordError(err)
		// An HTTP-level response means the exchange answered with an
		// error payload rather than the transport failing.
		if resp != nil && resp.IsError() {
			return nil, apperror.New(apperror.CodeExchangeAPIError, apperror.WithCause(err),
				apperror.WithContext(fmt.Sprintf("bitflyer HTTP %d", resp.StatusCode)))
		}
		return nil, apperror.New(apperror.CodeOrderbookFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext("bitflyer board request failed"))
	}

	if resp.IsError() {
		return nil, apperror.New(apperror.CodeExchangeAPIError,
			apperror.WithContext(fmt.Sprintf("bitflyer HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	if resp.Result() == nil {
		return nil, apperror.New(apperror.CodeInvalidOrderbook,
			apperror.WithContext("bitflyer board body is not valid JSON"))
	}

	snapshot, err := result.Normalize(pairID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	c.logger.Debug(ctx, "fetched bitflyer board",
		"product_code", pairID,
		"bid", snapshot.BestBid.String(),
		"ask", snapshot.BestAsk.String())

	return snapshot, nil
}

// APIError represents an error response from the bitFlyer API.
type APIError struct {
	Status       int    `json:"status"`
	ErrorMessage string `json:"error_message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bitflyer API error %d: %s", e.Status, e.ErrorMessage)
}

// bitflyerErrorHandler parses bitFlyer API error responses.
func bitflyerErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.ErrorMessage != "" {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}
