package bitflyer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmaeda/arbwatch/business/marketdata/domain"
	"github.com/mmaeda/arbwatch/internal/apperror"
)

// BoardLevel is one price level in the /v1/board response. bitFlyer sends
// numbers, not strings.
type BoardLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// BoardResponse is the /v1/board response: array-of-objects levels plus a
// mid price.
type BoardResponse struct {
	MidPrice float64      `json:"mid_price"`
	Bids     []BoardLevel `json:"bids"`
	Asks     []BoardLevel `json:"asks"`
}

// Normalize extracts the lowest ask and highest bid into a snapshot. Levels
// are scanned; the board is not assumed sorted.
func (r *BoardResponse) Normalize(pairID string) (*domain.OrderBookSnapshot, error) {
	if len(r.Asks) == 0 || len(r.Bids) == 0 {
		return nil, apperror.New(apperror.CodeEmptyOrderbook,
			apperror.WithContext("bitflyer board side is empty"))
	}

	ask := r.Asks[0].Price
	for _, level := range r.Asks[1:] {
		if level.Price < ask {
			ask = level.Price
		}
	}

	bid := r.Bids[0].Price
	for _, level := range r.Bids[1:] {
		if level.Price > bid {
			bid = level.Price
		}
	}

	if ask <= 0 || bid <= 0 {
		return nil, apperror.New(apperror.CodeInvalidOrderbook,
			apperror.WithContext("bitflyer best price is not positive"))
	}

	return &domain.OrderBookSnapshot{
		Exchange:  domain.Bitflyer,
		Symbol:    pairID,
		BestBid:   decimal.NewFromFloat(bid),
		BestAsk:   decimal.NewFromFloat(ask),
		FetchedAt: time.Now(),
	}, nil
}
