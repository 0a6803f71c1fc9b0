// Package app orchestrates arbitrage evaluation: fetching books in
// parallel, computing route rates, buffering opportunities, and driving the
// poll loop.
package app

import (
	"context"

	"github.com/mmaeda/arbwatch/business/arbitrage/domain"
)

// Reporter is a display sink for per-tick results. Implementations render
// to the console or to the interactive dashboard.
type Reporter interface {
	Start(ctx context.Context) error
	// ReportTick delivers one tick's results plus the count of buffered
	// opportunities not yet written to the log.
	ReportTick(results []*domain.PairResult, pending int)
	ReportError(err error)
	Stop()
}

// OpportunityWriter persists flushed opportunities.
type OpportunityWriter interface {
	Write(ctx context.Context, opps []domain.Opportunity) error
}
