package coincheck

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmaeda/arbwatch/business/marketdata/domain"
	"github.com/mmaeda/arbwatch/internal/apperror"
)

// OrderBooksResponse is the /api/order_books response: bare bid/ask arrays of
// [price, amount] string tuples, best price first by convention.
type OrderBooksResponse struct {
	Asks [][]string `json:"asks"` // [["price","amount"], ...]
	Bids [][]string `json:"bids"`
}

// Normalize extracts the lowest ask and highest bid into a snapshot. The
// arrays are scanned rather than trusted to be sorted.
func (r *OrderBooksResponse) Normalize(pairID string) (*domain.OrderBookSnapshot, error) {
	ask, err := lowestPrice(r.Asks)
	if err != nil {
		return nil, err
	}
	bid, err := highestPrice(r.Bids)
	if err != nil {
		return nil, err
	}

	return &domain.OrderBookSnapshot{
		Exchange:  domain.Coincheck,
		Symbol:    pairID,
		BestBid:   bid,
		BestAsk:   ask,
		FetchedAt: time.Now(),
	}, nil
}

// lowestPrice returns the minimum price across string-tuple levels.
func lowestPrice(levels [][]string) (decimal.Decimal, error) {
	return scanPrices(levels, func(best, p decimal.Decimal) bool { return p.LessThan(best) })
}

// highestPrice returns the maximum price across string-tuple levels.
func highestPrice(levels [][]string) (decimal.Decimal, error) {
	return scanPrices(levels, func(best, p decimal.Decimal) bool { return p.GreaterThan(best) })
}

func scanPrices(levels [][]string, better func(best, p decimal.Decimal) bool) (decimal.Decimal, error) {
	if len(levels) == 0 {
		return decimal.Zero, apperror.New(apperror.CodeEmptyOrderbook,
			apperror.WithContext("coincheck book side is empty"))
	}

	var best decimal.Decimal
	found := false
	for _, level := range levels {
		if len(level) < 2 {
			return decimal.Zero, apperror.New(apperror.CodeInvalidOrderbook,
				apperror.WithContext("coincheck level is not a [price, amount] tuple"))
		}
		p, err := decimal.NewFromString(level[0])
		if err != nil {
			return decimal.Zero, apperror.New(apperror.CodeInvalidOrderbook,
				apperror.WithCause(err),
				apperror.WithContext("coincheck price is not numeric"))
		}
		if !found || better(best, p) {
			best = p
			found = true
		}
	}

	if best.Sign() <= 0 {
		return decimal.Zero, apperror.New(apperror.CodeInvalidOrderbook,
			apperror.WithContext("coincheck best price is not positive"))
	}
	return best, nil
}
