package domain

import (
	"time"

	"github.com/shopspring/decimal"

	marketdata "github.com/mmaeda/arbwatch/business/marketdata/domain"
)

// BookQuote is the top of one exchange's book for a pair.
type BookQuote struct {
	Bid decimal.Decimal
	Ask decimal.Decimal
}

// PairResult is one pair's evaluation for a single tick: the quotes that
// went into it and the profit rate of every directed route. Treated as
// immutable once built.
type PairResult struct {
	Timestamp time.Time
	Symbol    string
	Books     map[marketdata.Exchange]BookQuote
	Rates     map[Route]decimal.Decimal
}

// BestRoute returns the route with the highest rate, in enumeration order
// on ties. ok is false when the result holds no rates.
func (r *PairResult) BestRoute() (Route, decimal.Decimal, bool) {
	var (
		best     Route
		bestRate decimal.Decimal
		found    bool
	)
	for _, route := range EnumerateRoutes(marketdata.Exchanges()) {
		rate, ok := r.Rates[route]
		if !ok {
			continue
		}
		if !found || rate.GreaterThan(bestRate) {
			best = route
			bestRate = rate
			found = true
		}
	}
	return best, bestRate, found
}
