package app

import (
	"sync"
	"time"

	"github.com/mmaeda/arbwatch/business/arbitrage/domain"
)

// OpportunityBuffer accumulates opportunities between log flushes. Safe for
// concurrent use.
type OpportunityBuffer struct {
	mu        sync.Mutex
	opps      []domain.Opportunity
	lastFlush time.Time
}

// NewOpportunityBuffer starts the flush clock at now so the first flush
// happens one full interval after startup.
func NewOpportunityBuffer(now time.Time) *OpportunityBuffer {
	return &OpportunityBuffer{lastFlush: now}
}

// Append adds opportunities in order. No deduplication across ticks.
func (b *OpportunityBuffer) Append(opps []domain.Opportunity) {
	if len(opps) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opps = append(b.opps, opps...)
}

// FlushIfDue returns and clears the buffered opportunities when at least
// interval has passed since the last flush, nil otherwise. lastFlush
// advances whenever the interval has elapsed, even with nothing buffered,
// so an empty window never causes the next one to flush early.
func (b *OpportunityBuffer) FlushIfDue(now time.Time, interval time.Duration) []domain.Opportunity {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastFlush) < interval {
		return nil
	}
	b.lastFlush = now

	return b.take()
}

// Drain returns and clears everything buffered, regardless of the flush
// interval. Used on shutdown.
func (b *OpportunityBuffer) Drain() []domain.Opportunity {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastFlush = time.Now()
	return b.take()
}

// Len reports how many opportunities are waiting for the next flush.
func (b *OpportunityBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.opps)
}

func (b *OpportunityBuffer) take() []domain.Opportunity {
	if len(b.opps) == 0 {
		return nil
	}
	out := b.opps
	b.opps = nil
	return out
}
