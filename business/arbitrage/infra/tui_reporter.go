package infra

import (
	"context"

	"github.com/mmaeda/arbwatch/business/arbitrage/domain"
	"github.com/mmaeda/arbwatch/pkg/ui"
)

// TUIReporter forwards tick results to the Bubble Tea dashboard.
type TUIReporter struct{}

func NewTUIReporter() *TUIReporter {
	return &TUIReporter{}
}

// Start is a no-op; the program is run by main so it owns the terminal.
func (r *TUIReporter) Start(ctx context.Context) error { return nil }

func (r *TUIReporter) Stop() {
	if ui.Program != nil {
		ui.Program.Quit()
	}
}

func (r *TUIReporter) ReportTick(results []*domain.PairResult, pending int) {
	ui.Send(ui.TickResultsMsg{Results: results, Pending: pending})
}

func (r *TUIReporter) ReportError(err error) {
	ui.Send(ui.ErrorMsg{Error: err})
}
