// Package domain holds the arbitrage evaluation model: routes between
// exchanges, profit rate math, per-tick results, and opportunities.
package domain

import (
	"fmt"

	marketdata "github.com/mmaeda/arbwatch/business/marketdata/domain"
)

// Route is a directed buy/sell leg pair between two exchanges.
type Route struct {
	Buy  marketdata.Exchange
	Sell marketdata.Exchange
}

// String renders the route as "buy->sell".
func (r Route) String() string {
	return fmt.Sprintf("%s->%s", r.Buy, r.Sell)
}

// EnumerateRoutes yields every directed pair over the given exchanges in a
// fixed order: for [A, B, C] the result is A->B, B->A, A->C, C->A, B->C,
// C->B. Downstream output ordering depends on this.
func EnumerateRoutes(exchanges []marketdata.Exchange) []Route {
	routes := make([]Route, 0, len(exchanges)*(len(exchanges)-1))
	for i := 0; i < len(exchanges); i++ {
		for j := 0; j < i; j++ {
			routes = append(routes, Route{Buy: exchanges[j], Sell: exchanges[i]})
			routes = append(routes, Route{Buy: exchanges[i], Sell: exchanges[j]})
		}
	}
	return routes
}
