package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeInvalidInput:       "Invalid input provided",
	CodeInvalidFormat:      "Invalid data format",
	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	CodeOrderbookFetchFailed: "Failed to fetch order book",
	CodeInvalidOrderbook:     "Invalid order book data",
	CodeEmptyOrderbook:       "Order book has no bids or asks",
	CodeExchangeAPIError:     "Exchange API error",
	CodeExchangeUnavailable:  "Exchange temporarily unavailable",

	CodeRateCalculationError: "Profit rate calculation error",
	CodeUnknownExchange:      "Unknown exchange",

	CodeOpportunityFlushFailed: "Failed to flush opportunity log",

	CodeCircuitOpen: "Circuit breaker is open",
}
