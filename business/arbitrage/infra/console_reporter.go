package infra

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/mmaeda/arbwatch/business/arbitrage/domain"
	marketdata "github.com/mmaeda/arbwatch/business/marketdata/domain"
)

// ConsoleReporter prints a plain per-tick table, one line per route.
type ConsoleReporter struct {
	out io.Writer
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) Start(ctx context.Context) error { return nil }

func (r *ConsoleReporter) Stop() {}

// ReportTick renders one tick. Routes keep enumeration order; positive
// rates get a marker so they stand out in a scrolling log.
func (r *ConsoleReporter) ReportTick(results []*domain.PairResult, pending int) {
	fmt.Fprintf(r.out, "\n=== %s (pending log entries: %d) ===\n",
		time.Now().Format("15:04:05"), pending)

	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PAIR\tROUTE\tRATE\t")
	for _, result := range results {
		for _, route := range domain.EnumerateRoutes(marketdata.Exchanges()) {
			rate, ok := result.Rates[route]
			if !ok {
				continue
			}
			marker := ""
			if rate.Sign() > 0 {
				marker = " *"
			}
			fmt.Fprintf(w, "%s\t%s\t%s%%%s\t\n", result.Symbol, route, rate.StringFixed(3), marker)
		}
	}
	w.Flush()
}

func (r *ConsoleReporter) ReportError(err error) {
	fmt.Fprintf(r.out, "error: %v\n", err)
}
