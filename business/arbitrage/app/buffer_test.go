package app

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmaeda/arbwatch/business/arbitrage/domain"
	marketdata "github.com/mmaeda/arbwatch/business/marketdata/domain"
)

func makeOpp(symbol, rate string) domain.Opportunity {
	return domain.Opportunity{
		ID:        uuid.New(),
		Timestamp: time.Now(),
		Symbol:    symbol,
		Route:     domain.Route{Buy: marketdata.Coincheck, Sell: marketdata.Bitflyer},
		Rate:      decimal.RequireFromString(rate),
	}
}

func TestOpportunityBuffer_AppendPreservesOrder(t *testing.T) {
	start := time.Now()
	buf := NewOpportunityBuffer(start)

	buf.Append([]domain.Opportunity{makeOpp("BTC", "0.5"), makeOpp("ETH", "0.2")})
	buf.Append([]domain.Opportunity{makeOpp("XRP", "1.1")})

	if got := buf.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}

	flushed := buf.FlushIfDue(start.Add(time.Minute), time.Minute)
	wantSymbols := []string{"BTC", "ETH", "XRP"}
	if len(flushed) != len(wantSymbols) {
		t.Fatalf("flushed %d opportunities, want %d", len(flushed), len(wantSymbols))
	}
	for i, opp := range flushed {
		if opp.Symbol != wantSymbols[i] {
			t.Errorf("flushed[%d].Symbol = %s, want %s", i, opp.Symbol, wantSymbols[i])
		}
	}
}

func TestOpportunityBuffer_NotDueBeforeInterval(t *testing.T) {
	start := time.Now()
	buf := NewOpportunityBuffer(start)
	buf.Append([]domain.Opportunity{makeOpp("BTC", "0.5")})

	if flushed := buf.FlushIfDue(start.Add(30*time.Second), time.Minute); flushed != nil {
		t.Fatalf("flush before interval returned %d opportunities", len(flushed))
	}
	if got := buf.Len(); got != 1 {
		t.Fatalf("Len() = %d after early flush attempt, want 1", got)
	}
}

func TestOpportunityBuffer_FlushClearsForNextWindow(t *testing.T) {
	start := time.Now()
	buf := NewOpportunityBuffer(start)
	buf.Append([]domain.Opportunity{makeOpp("BTC", "0.5")})

	first := buf.FlushIfDue(start.Add(time.Minute), time.Minute)
	if len(first) != 1 {
		t.Fatalf("first flush returned %d opportunities, want 1", len(first))
	}

	// Immediately after a flush the window restarts.
	if again := buf.FlushIfDue(start.Add(time.Minute+time.Second), time.Minute); again != nil {
		t.Fatalf("flush right after a flush returned %d opportunities", len(again))
	}
}

// An empty due window must advance the flush clock. Otherwise the first
// opportunity after a quiet stretch would be flushed immediately instead of
// waiting out a full interval.
func TestOpportunityBuffer_EmptyDueWindowAdvancesClock(t *testing.T) {
	start := time.Now()
	buf := NewOpportunityBuffer(start)

	// Due check with nothing buffered.
	if flushed := buf.FlushIfDue(start.Add(time.Minute), time.Minute); flushed != nil {
		t.Fatalf("empty flush returned %d opportunities", len(flushed))
	}

	// An opportunity arriving just after must wait for the next window,
	// not ride the stale clock from before the empty check.
	buf.Append([]domain.Opportunity{makeOpp("BTC", "0.5")})
	if flushed := buf.FlushIfDue(start.Add(90*time.Second), time.Minute); flushed != nil {
		t.Fatalf("flush 30s into the new window returned %d opportunities", len(flushed))
	}
	if flushed := buf.FlushIfDue(start.Add(2*time.Minute), time.Minute); len(flushed) != 1 {
		t.Fatalf("flush at window end returned %d opportunities, want 1", len(flushed))
	}
}

func TestOpportunityBuffer_DrainIgnoresInterval(t *testing.T) {
	start := time.Now()
	buf := NewOpportunityBuffer(start)
	buf.Append([]domain.Opportunity{makeOpp("BTC", "0.5"), makeOpp("ETH", "0.2")})

	drained := buf.Drain()
	if len(drained) != 2 {
		t.Fatalf("Drain() returned %d opportunities, want 2", len(drained))
	}
	if got := buf.Len(); got != 0 {
		t.Fatalf("Len() = %d after drain, want 0", got)
	}
	if again := buf.Drain(); again != nil {
		t.Fatalf("second Drain() returned %d opportunities", len(again))
	}
}
