// Package infra provides the output sinks for arbitrage results: the CSV
// opportunity log and the console and dashboard reporters.
package infra

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mmaeda/arbwatch/business/arbitrage/domain"
	marketdata "github.com/mmaeda/arbwatch/business/marketdata/domain"
	"github.com/mmaeda/arbwatch/internal/apperror"
	"github.com/mmaeda/arbwatch/internal/logger"
)

// CSVWriter writes one timestamped CSV file per flush under the log dir.
type CSVWriter struct {
	dir    string
	logger logger.LoggerInterface
	now    func() time.Time
}

// NewCSVWriter creates the log directory if needed.
func NewCSVWriter(dir string, log logger.LoggerInterface) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperror.New(apperror.CodeOpportunityFlushFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("creating log dir %s", dir)))
	}
	return &CSVWriter{dir: dir, logger: log, now: time.Now}, nil
}

// Write persists one flush window to its own file, named after the flush
// time: opportunities_20060102_150405.csv.
func (w *CSVWriter) Write(ctx context.Context, opps []domain.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}

	path := filepath.Join(w.dir, fmt.Sprintf("opportunities_%s.csv", w.now().Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return apperror.New(apperror.CodeOpportunityFlushFailed,
			apperror.WithCause(err),
			apperror.WithContext(path))
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header()); err != nil {
		return apperror.New(apperror.CodeOpportunityFlushFailed, apperror.WithCause(err))
	}
	for _, opp := range opps {
		if err := cw.Write(row(opp)); err != nil {
			return apperror.New(apperror.CodeOpportunityFlushFailed, apperror.WithCause(err))
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperror.New(apperror.CodeOpportunityFlushFailed,
			apperror.WithCause(err),
			apperror.WithContext(path))
	}

	w.logger.Info(ctx, "wrote opportunity log", "path", path, "count", len(opps))
	return nil
}

func header() []string {
	h := []string{"timestamp", "symbol", "buy_exchange", "sell_exchange", "rate_pct"}
	for _, ex := range marketdata.Exchanges() {
		h = append(h, fmt.Sprintf("%s_bid", ex), fmt.Sprintf("%s_ask", ex))
	}
	return h
}

func row(opp domain.Opportunity) []string {
	r := []string{
		opp.Timestamp.Format(time.RFC3339),
		opp.Symbol,
		opp.Route.Buy.String(),
		opp.Route.Sell.String(),
		opp.Rate.StringFixed(3),
	}
	for _, ex := range marketdata.Exchanges() {
		quote := opp.Books[ex]
		r = append(r, quote.Bid.String(), quote.Ask.String())
	}
	return r
}
