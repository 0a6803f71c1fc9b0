package bitbank

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmaeda/arbwatch/business/marketdata/domain"
	"github.com/mmaeda/arbwatch/internal/apperror"
)

// DepthResponse is the /{pair}/depth response. bitbank wraps every public
// endpoint in a success/data envelope; on failure data carries an error code
// instead of book sides.
type DepthResponse struct {
	Success int       `json:"success"`
	Data    DepthData `json:"data"`
}

// DepthData holds the book sides as [price, amount] string tuples, plus the
// error code bitbank reports when Success is 0.
type DepthData struct {
	Asks      [][]string `json:"asks"`
	Bids      [][]string `json:"bids"`
	Timestamp int64      `json:"timestamp"`
	Code      int        `json:"code"`
}

// Normalize validates the envelope and extracts the lowest ask and highest
// bid into a snapshot. The arrays are scanned rather than trusted to be
// sorted.
func (r *DepthResponse) Normalize(pairID string) (*domain.OrderBookSnapshot, error) {
	if r.Success != 1 {
		return nil, apperror.New(apperror.CodeExchangeAPIError,
			apperror.WithContext(fmt.Sprintf("bitbank error code %d", r.Data.Code)))
	}

	ask, err := bestPrice(r.Data.Asks, func(best, p decimal.Decimal) bool { return p.LessThan(best) })
	if err != nil {
		return nil, err
	}
	bid, err := bestPrice(r.Data.Bids, func(best, p decimal.Decimal) bool { return p.GreaterThan(best) })
	if err != nil {
		return nil, err
	}

	return &domain.OrderBookSnapshot{
		Exchange:  domain.Bitbank,
		Symbol:    pairID,
		BestBid:   bid,
		BestAsk:   ask,
		FetchedAt: time.Now(),
	}, nil
}

func bestPrice(levels [][]string, better func(best, p decimal.Decimal) bool) (decimal.Decimal, error) {
	if len(levels) == 0 {
		return decimal.Zero, apperror.New(apperror.CodeEmptyOrderbook,
			apperror.WithContext("bitbank book side is empty"))
	}

	var best decimal.Decimal
	found := false
	for _, level := range levels {
		if len(level) < 2 {
			return decimal.Zero, apperror.New(apperror.CodeInvalidOrderbook,
				apperror.WithContext("bitbank level is not a [price, amount] tuple"))
		}
		p, err := decimal.NewFromString(level[0])
		if err != nil {
			return decimal.Zero, apperror.New(apperror.CodeInvalidOrderbook,
				apperror.WithCause(err),
				apperror.WithContext("bitbank price is not numeric"))
		}
		if !found || better(best, p) {
			best = p
			found = true
		}
	}

	if best.Sign() <= 0 {
		return decimal.Zero, apperror.New(apperror.CodeInvalidOrderbook,
			apperror.WithContext("bitbank best price is not positive"))
	}
	return best, nil
}
