package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeInvalidFormat      Code = "INVALID_FORMAT"
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Exchange and arbitrage error codes
const (
	// Order book fetching
	CodeOrderbookFetchFailed Code = "ORDERBOOK_FETCH_FAILED"
	CodeInvalidOrderbook     Code = "INVALID_ORDERBOOK"
	CodeEmptyOrderbook       Code = "EMPTY_ORDERBOOK"
	CodeExchangeAPIError     Code = "EXCHANGE_API_ERROR"
	CodeExchangeUnavailable  Code = "EXCHANGE_UNAVAILABLE"

	// Evaluation
	CodeRateCalculationError Code = "RATE_CALCULATION_ERROR"
	CodeUnknownExchange      Code = "UNKNOWN_EXCHANGE"

	// Opportunity logging
	CodeOpportunityFlushFailed Code = "OPPORTUNITY_FLUSH_FAILED"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
