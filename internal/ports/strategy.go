package ports

import "rangeBreakout/internal/domain"

// SignalSource produces the confirmation crossovers for a close-price series.
type SignalSource interface {
	// RequiredDataPoints returns the number of closes consumed before crossovers can be reported.
	RequiredDataPoints() int

	// Crossovers returns one entry per close; index i holds the crossover completed at bar i.
	Crossovers(closes []float64) []domain.Crossover
}
