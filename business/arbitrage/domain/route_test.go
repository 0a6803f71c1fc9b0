package domain

import (
	"testing"

	marketdata "github.com/mmaeda/arbwatch/business/marketdata/domain"
)

func TestEnumerateRoutes_Order(t *testing.T) {
	routes := EnumerateRoutes(marketdata.Exchanges())

	want := []Route{
		{Buy: marketdata.Coincheck, Sell: marketdata.Bitflyer},
		{Buy: marketdata.Bitflyer, Sell: marketdata.Coincheck},
		{Buy: marketdata.Coincheck, Sell: marketdata.Bitbank},
		{Buy: marketdata.Bitbank, Sell: marketdata.Coincheck},
		{Buy: marketdata.Bitflyer, Sell: marketdata.Bitbank},
		{Buy: marketdata.Bitbank, Sell: marketdata.Bitflyer},
	}

	if len(routes) != len(want) {
		t.Fatalf("got %d routes, want %d", len(routes), len(want))
	}
	for i, route := range routes {
		if route != want[i] {
			t.Errorf("route[%d] = %s, want %s", i, route, want[i])
		}
	}
}

func TestEnumerateRoutes_NoSelfRoutes(t *testing.T) {
	for _, route := range EnumerateRoutes(marketdata.Exchanges()) {
		if route.Buy == route.Sell {
			t.Errorf("self route %s", route)
		}
	}
}
