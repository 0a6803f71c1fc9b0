package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/mmaeda/arbwatch/business/arbitrage/domain"
	marketdata "github.com/mmaeda/arbwatch/business/marketdata/domain"
	"github.com/mmaeda/arbwatch/internal/apperror"
	"github.com/mmaeda/arbwatch/internal/logger"
)

// Poller state values.
const (
	StateRunning int32 = iota
	StateTerminating
)

// PollerConfig controls the evaluation loop.
type PollerConfig struct {
	Pairs         []marketdata.CurrencyPair
	TickInterval  time.Duration
	ErrorBackoff  time.Duration
	FlushInterval time.Duration
}

// Poller drives the tick loop: evaluate every pair, buffer opportunities,
// flush on interval, report each tick.
type Poller struct {
	cfg       PollerConfig
	evaluator *Evaluator
	buffer    *OpportunityBuffer
	writer    OpportunityWriter
	reporter  Reporter
	logger    logger.LoggerInterface
	state     atomic.Int32

	ticksTotal   metric.Int64Counter
	oppsTotal    metric.Int64Counter
	flushesTotal metric.Int64Counter
}

// NewPoller wires the loop. The buffer's flush clock starts at construction.
func NewPoller(cfg PollerConfig, evaluator *Evaluator, writer OpportunityWriter, reporter Reporter, log logger.LoggerInterface) *Poller {
	meter := otel.Meter("poller")
	ticks, _ := meter.Int64Counter("arbwatch_ticks_total",
		metric.WithDescription("Completed evaluation ticks"))
	opps, _ := meter.Int64Counter("arbwatch_opportunities_total",
		metric.WithDescription("Opportunities observed"))
	flushes, _ := meter.Int64Counter("arbwatch_flushes_total",
		metric.WithDescription("Opportunity log flushes"))

	return &Poller{
		cfg:          cfg,
		evaluator:    evaluator,
		buffer:       NewOpportunityBuffer(time.Now()),
		writer:       writer,
		reporter:     reporter,
		logger:       log,
		ticksTotal:   ticks,
		oppsTotal:    opps,
		flushesTotal: flushes,
	}
}

// State reports whether the poller is running or shutting down.
func (p *Poller) State() int32 {
	return p.state.Load()
}

// Run executes the tick loop until ctx is cancelled, then drains the buffer
// to the writer so no observed opportunity is lost.
func (p *Poller) Run(ctx context.Context) error {
	p.state.Store(StateRunning)
	p.logger.Info(ctx, "poller started",
		"pairs", len(p.cfg.Pairs),
		"tick_interval", p.cfg.TickInterval.String(),
		"flush_interval", p.cfg.FlushInterval.String())

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return p.shutdown()
		case <-timer.C:
		}

		wait := p.cfg.TickInterval
		if err := p.tick(ctx); err != nil {
			if ctx.Err() != nil {
				return p.shutdown()
			}
			args := []any{"error", err}
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				args = append(args, "code", appErr.Code, "stack", appErr.Stack())
			}
			p.logger.Error(ctx, "tick failed, backing off", args...)
			p.reporter.ReportError(err)
			wait = p.cfg.ErrorBackoff
		}
		timer.Reset(wait)
	}
}

func (p *Poller) tick(ctx context.Context) error {
	results := make([]*domain.PairResult, 0, len(p.cfg.Pairs))
	var collected []domain.Opportunity

	for _, pair := range p.cfg.Pairs {
		result, err := p.evaluator.Evaluate(ctx, pair)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// One pair failing must not starve the others.
			p.logger.Warn(ctx, "pair evaluation failed", "symbol", pair.Symbol, "error", err)
			continue
		}
		results = append(results, result)
		collected = append(collected, domain.ExtractOpportunities(result)...)
	}

	p.buffer.Append(collected)
	p.oppsTotal.Add(ctx, int64(len(collected)))

	if flushed := p.buffer.FlushIfDue(time.Now(), p.cfg.FlushInterval); len(flushed) > 0 {
		if err := p.writer.Write(ctx, flushed); err != nil {
			return err
		}
		p.flushesTotal.Add(ctx, 1)
		p.logger.Info(ctx, "flushed opportunities", "count", len(flushed))
	}

	p.reporter.ReportTick(results, p.buffer.Len())
	p.ticksTotal.Add(ctx, 1)
	return nil
}

// shutdown drains whatever is buffered. The write deadline is independent
// of the cancelled run context.
func (p *Poller) shutdown() error {
	p.state.Store(StateTerminating)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if remaining := p.buffer.Drain(); len(remaining) > 0 {
		if err := p.writer.Write(ctx, remaining); err != nil {
			p.logger.Error(ctx, "failed to write buffered opportunities on shutdown",
				"count", len(remaining), "error", err)
			return err
		}
		p.logger.Info(ctx, "wrote buffered opportunities on shutdown", "count", len(remaining))
	}
	p.logger.Info(ctx, "poller stopped")
	return nil
}
