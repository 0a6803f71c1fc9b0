package ui

import "github.com/mmaeda/arbwatch/business/arbitrage/domain"

// Message types for dashboard updates

// TickResultsMsg carries one tick's evaluations plus the count of buffered
// opportunities awaiting the next log flush.
type TickResultsMsg struct {
	Results []*domain.PairResult
	Pending int
}

// ErrorMsg is sent when an evaluation or flush error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg drives periodic redraws.
type TickMsg struct{}
