package infra

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmaeda/arbwatch/business/arbitrage/domain"
	marketdata "github.com/mmaeda/arbwatch/business/marketdata/domain"
)

func TestConsoleReporter_ReportTick(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewConsoleReporter(&buf)

	result := &domain.PairResult{
		Timestamp: time.Now(),
		Symbol:    "BTC",
		Books: map[marketdata.Exchange]domain.BookQuote{
			marketdata.Coincheck: {Bid: decimal.RequireFromString("99"), Ask: decimal.RequireFromString("100")},
			marketdata.Bitflyer:  {Bid: decimal.RequireFromString("101"), Ask: decimal.RequireFromString("102")},
			marketdata.Bitbank:   {Bid: decimal.RequireFromString("98"), Ask: decimal.RequireFromString("99")},
		},
		Rates: map[domain.Route]decimal.Decimal{
			{Buy: marketdata.Coincheck, Sell: marketdata.Bitflyer}: decimal.RequireFromString("1"),
			{Buy: marketdata.Bitflyer, Sell: marketdata.Coincheck}: decimal.RequireFromString("-2.941"),
			{Buy: marketdata.Coincheck, Sell: marketdata.Bitbank}:  decimal.RequireFromString("-2"),
			{Buy: marketdata.Bitbank, Sell: marketdata.Coincheck}:  decimal.RequireFromString("0"),
			{Buy: marketdata.Bitflyer, Sell: marketdata.Bitbank}:   decimal.RequireFromString("-3.922"),
			{Buy: marketdata.Bitbank, Sell: marketdata.Bitflyer}:   decimal.RequireFromString("2.02"),
		},
	}

	reporter.ReportTick([]*domain.PairResult{result}, 4)

	out := buf.String()
	if !strings.Contains(out, "pending log entries: 4") {
		t.Errorf("output missing pending count:\n%s", out)
	}
	if !strings.Contains(out, "coincheck->bitflyer") {
		t.Errorf("output missing route column:\n%s", out)
	}
	if !strings.Contains(out, "1.000% *") {
		t.Errorf("positive rate not marked:\n%s", out)
	}
	if strings.Contains(out, "0.000% *") {
		t.Errorf("zero rate wrongly marked as an opportunity:\n%s", out)
	}
}
