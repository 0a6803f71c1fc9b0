// Package app contains application ports for the marketdata context.
package app

import (
	"context"

	"github.com/mmaeda/arbwatch/business/marketdata/domain"
)

// BookProvider fetches and normalizes one exchange's public order book.
// Implementations must return the numerically-lowest ask and the
// numerically-highest bid of the raw book, and must report a non-2xx status,
// a malformed body, an unsuccessful envelope, or an empty bid/ask side as an
// error rather than a partial snapshot.
type BookProvider interface {
	// Exchange returns the exchange this provider serves.
	Exchange() domain.Exchange

	// FetchBook retrieves the order book for the exchange-specific pair
	// identifier and normalizes it to a snapshot.
	FetchBook(ctx context.Context, pairID string) (*domain.OrderBookSnapshot, error)
}
