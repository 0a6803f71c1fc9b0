package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mmaeda/arbwatch/business/arbitrage/domain"
	marketapp "github.com/mmaeda/arbwatch/business/marketdata/app"
	marketdata "github.com/mmaeda/arbwatch/business/marketdata/domain"
	"github.com/mmaeda/arbwatch/internal/apperror"
	"github.com/mmaeda/arbwatch/internal/logger"
)

// Evaluator computes one PairResult per tick per pair from live books.
type Evaluator struct {
	providers map[marketdata.Exchange]marketapp.BookProvider
	fees      marketdata.FeeSchedule
	logger    logger.LoggerInterface
	tracer    trace.Tracer
}

// NewEvaluator requires one provider per exchange in the canonical list.
func NewEvaluator(providers []marketapp.BookProvider, fees marketdata.FeeSchedule, log logger.LoggerInterface) (*Evaluator, error) {
	byExchange := make(map[marketdata.Exchange]marketapp.BookProvider, len(providers))
	for _, p := range providers {
		byExchange[p.Exchange()] = p
	}
	for _, ex := range marketdata.Exchanges() {
		if _, ok := byExchange[ex]; !ok {
			return nil, fmt.Errorf("no book provider for %s", ex)
		}
	}

	return &Evaluator{
		providers: byExchange,
		fees:      fees,
		logger:    log,
		tracer:    otel.Tracer("evaluator"),
	}, nil
}

// Evaluate fetches the pair's book on every exchange in parallel and
// computes the rate of each directed route. Any fetch failure fails the
// whole evaluation; a partial result is never returned.
func (e *Evaluator) Evaluate(ctx context.Context, pair marketdata.CurrencyPair) (*domain.PairResult, error) {
	ctx, span := e.tracer.Start(ctx, "evaluate_pair",
		trace.WithAttributes(attribute.String("symbol", pair.Symbol)),
	)
	defer span.End()

	var (
		mu    sync.Mutex
		books = make(map[marketdata.Exchange]domain.BookQuote, len(e.providers))
	)

	g, gctx := errgroup.WithContext(ctx)
	for ex, provider := range e.providers {
		g.Go(func() error {
			snapshot, err := provider.FetchBook(gctx, pair.Identifier(ex))
			if err != nil {
				return apperror.New(apperror.CodeOrderbookFetchFailed,
					apperror.WithCause(err),
					apperror.WithContext(fmt.Sprintf("%s %s", ex, pair.Symbol)))
			}
			mu.Lock()
			books[ex] = domain.BookQuote{Bid: snapshot.BestBid, Ask: snapshot.BestAsk}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	rates := make(map[domain.Route]decimal.Decimal)
	for _, route := range domain.EnumerateRoutes(marketdata.Exchanges()) {
		// Buying crosses the ask at taker fee; selling rests at the bid
		// at maker fee. The transfer fee applies once per route.
		rates[route] = domain.ProfitRate(
			books[route.Buy].Ask,
			e.fees.TakerFee(route.Buy),
			books[route.Sell].Bid,
			e.fees.MakerFee(route.Sell),
			e.fees.Transfer,
		)
	}

	result := &domain.PairResult{
		Timestamp: time.Now(),
		Symbol:    pair.Symbol,
		Books:     books,
		Rates:     rates,
	}

	if best, rate, ok := result.BestRoute(); ok {
		e.logger.Debug(ctx, "evaluated pair",
			"symbol", pair.Symbol, "best_route", best.String(), "best_rate", rate.String())
	}

	return result, nil
}
