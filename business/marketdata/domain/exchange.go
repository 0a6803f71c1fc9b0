// Package domain contains the core domain types for the marketdata context.
package domain

// Exchange identifies one of the monitored exchanges.
type Exchange string

const (
	Coincheck Exchange = "coincheck"
	Bitflyer  Exchange = "bitflyer"
	Bitbank   Exchange = "bitbank"
)

// Exchanges returns the monitored exchanges in their canonical order. Route
// enumeration and display column order both derive from this ordering.
func Exchanges() []Exchange {
	return []Exchange{Coincheck, Bitflyer, Bitbank}
}

// String returns the exchange identifier.
func (e Exchange) String() string {
	return string(e)
}

// Valid reports whether e is one of the monitored exchanges.
func (e Exchange) Valid() bool {
	switch e {
	case Coincheck, Bitflyer, Bitbank:
		return true
	}
	return false
}
