package infra

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmaeda/arbwatch/business/arbitrage/domain"
	marketdata "github.com/mmaeda/arbwatch/business/marketdata/domain"
)

type mockLogger struct{}

func (mockLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (mockLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (mockLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (mockLogger) Error(ctx context.Context, msg string, args ...any) {}

func sampleOpportunity(symbol string) domain.Opportunity {
	return domain.Opportunity{
		ID:        uuid.New(),
		Timestamp: time.Date(2024, 8, 6, 12, 30, 0, 0, time.UTC),
		Symbol:    symbol,
		Route:     domain.Route{Buy: marketdata.Coincheck, Sell: marketdata.Bitflyer},
		Rate:      decimal.RequireFromString("0.3"),
		Books: map[marketdata.Exchange]domain.BookQuote{
			marketdata.Coincheck: {Bid: decimal.RequireFromString("99"), Ask: decimal.RequireFromString("100")},
			marketdata.Bitflyer:  {Bid: decimal.RequireFromString("100.5"), Ask: decimal.RequireFromString("101")},
			marketdata.Bitbank:   {Bid: decimal.RequireFromString("98"), Ask: decimal.RequireFromString("99.5")},
		},
	}
}

func TestCSVWriter_Write(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewCSVWriter(dir, mockLogger{})
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	writer.now = func() time.Time {
		return time.Date(2024, 8, 6, 12, 35, 0, 0, time.UTC)
	}

	opps := []domain.Opportunity{sampleOpportunity("BTC"), sampleOpportunity("ETH")}
	if err := writer.Write(context.Background(), opps); err != nil {
		t.Fatalf("Write: %v", err)
	}

	path := filepath.Join(dir, "opportunities_20240806_123500.csv")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("expected log file at %s: %v", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}

	wantHeader := []string{
		"timestamp", "symbol", "buy_exchange", "sell_exchange", "rate_pct",
		"coincheck_bid", "coincheck_ask",
		"bitflyer_bid", "bitflyer_ask",
		"bitbank_bid", "bitbank_ask",
	}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}

	row := records[1]
	if row[1] != "BTC" || row[2] != "coincheck" || row[3] != "bitflyer" {
		t.Errorf("unexpected first row: %v", row)
	}
	if row[4] != "0.300" {
		t.Errorf("rate column = %q, want 0.300", row[4])
	}
	if records[2][1] != "ETH" {
		t.Errorf("second row symbol = %q, want ETH", records[2][1])
	}
}

func TestCSVWriter_SeparateFilePerFlush(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewCSVWriter(dir, mockLogger{})
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	stamp := time.Date(2024, 8, 6, 12, 0, 0, 0, time.UTC)
	writer.now = func() time.Time { return stamp }

	if err := writer.Write(context.Background(), []domain.Opportunity{sampleOpportunity("BTC")}); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	stamp = stamp.Add(5 * time.Minute)
	if err := writer.Write(context.Background(), []domain.Opportunity{sampleOpportunity("ETH")}); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d log files, want 2", len(entries))
	}
}

func TestCSVWriter_EmptyFlushWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewCSVWriter(dir, mockLogger{})
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	if err := writer.Write(context.Background(), nil); err != nil {
		t.Fatalf("Write(nil): %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("empty flush created %d files", len(entries))
	}
}
