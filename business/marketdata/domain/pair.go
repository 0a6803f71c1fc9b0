package domain

import "fmt"

// CurrencyPair is a static configuration entity: one currency symbol plus the
// exchange-specific pair identifier used to query each exchange's order book.
// Loaded at startup, never mutated.
type CurrencyPair struct {
	Symbol      string
	Identifiers map[Exchange]string
}

// NewCurrencyPair builds a CurrencyPair, requiring an identifier for every
// monitored exchange.
func NewCurrencyPair(symbol string, identifiers map[Exchange]string) (CurrencyPair, error) {
	for _, ex := range Exchanges() {
		if identifiers[ex] == "" {
			return CurrencyPair{}, fmt.Errorf("pair %s: missing identifier for %s", symbol, ex)
		}
	}
	ids := make(map[Exchange]string, len(identifiers))
	for ex, id := range identifiers {
		ids[ex] = id
	}
	return CurrencyPair{Symbol: symbol, Identifiers: ids}, nil
}

// Identifier returns the pair identifier used by the given exchange.
func (p CurrencyPair) Identifier(ex Exchange) string {
	return p.Identifiers[ex]
}

// String returns the currency symbol (e.g. "BTC").
func (p CurrencyPair) String() string {
	return p.Symbol
}
