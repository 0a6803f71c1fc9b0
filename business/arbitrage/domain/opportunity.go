package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	marketdata "github.com/mmaeda/arbwatch/business/marketdata/domain"
)

// Opportunity is a single profitable route observed at one tick. One is
// created per strictly positive rate; zero is not profitable.
type Opportunity struct {
	ID        uuid.UUID
	Timestamp time.Time
	Symbol    string
	Route     Route
	Rate      decimal.Decimal
	Books     map[marketdata.Exchange]BookQuote
}

// ExtractOpportunities collects every strictly positive rate from a result,
// in route enumeration order.
func ExtractOpportunities(result *PairResult) []Opportunity {
	var opps []Opportunity
	for _, route := range EnumerateRoutes(marketdata.Exchanges()) {
		rate, ok := result.Rates[route]
		if !ok || rate.Sign() <= 0 {
			continue
		}
		opps = append(opps, Opportunity{
			ID:        uuid.New(),
			Timestamp: result.Timestamp,
			Symbol:    result.Symbol,
			Route:     route,
			Rate:      rate,
			Books:     result.Books,
		})
	}
	return opps
}
