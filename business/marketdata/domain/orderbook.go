package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderBookSnapshot is the normalized best bid/ask for one exchange and pair
// at one point in time. A malformed or empty book never becomes a snapshot;
// it is a fetch failure upstream, so BestBid and BestAsk are always positive
// here. Snapshots are created fresh each tick and discarded after evaluation.
type OrderBookSnapshot struct {
	Exchange  Exchange
	Symbol    string
	BestBid   decimal.Decimal
	BestAsk   decimal.Decimal
	FetchedAt time.Time
}

// Spread returns the ask-bid spread of this book.
func (s *OrderBookSnapshot) Spread() decimal.Decimal {
	return s.BestAsk.Sub(s.BestBid)
}

// FeeSchedule holds the static per-exchange fee constants plus the global
// transfer fee applied once on every cross-exchange sell leg. All values are
// percentages (0.1 means 0.1%). Set at startup, read-only afterwards.
type FeeSchedule struct {
	Maker    map[Exchange]decimal.Decimal
	Taker    map[Exchange]decimal.Decimal
	Transfer decimal.Decimal
}

// MakerFee returns the maker fee percentage for an exchange.
func (f FeeSchedule) MakerFee(ex Exchange) decimal.Decimal {
	return f.Maker[ex]
}

// TakerFee returns the taker fee percentage for an exchange.
func (f FeeSchedule) TakerFee(ex Exchange) decimal.Decimal {
	return f.Taker[ex]
}
