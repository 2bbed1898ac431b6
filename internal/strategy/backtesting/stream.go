package backtesting

import (
	"fmt"
	"math"
	"time"

	"rangeBreakout/internal/domain"
	"rangeBreakout/internal/ports"
)

// ValidateBars rejects streams with out-of-order or duplicate timestamps and bars
// with missing or non-finite prices.
func ValidateBars(bars []*domain.Bar) error {
	for i, b := range bars {
		if b == nil {
			return fmt.Errorf("%w: %w: bar %d is nil", ports.ErrInvalidBars, ports.ErrMalformedBar, i)
		}
		for _, p := range [...]float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(p) || math.IsInf(p, 0) {
				return fmt.Errorf("%w: %w: bar %d at %s", ports.ErrInvalidBars, ports.ErrMalformedBar, i, b.Time.Format(time.RFC3339))
			}
		}
		if b.High < b.Low {
			return fmt.Errorf("%w: %w: bar %d at %s has high %v below low %v",
				ports.ErrInvalidBars, ports.ErrMalformedBar, i, b.Time.Format(time.RFC3339), b.High, b.Low)
		}
		if i > 0 && !b.Time.After(bars[i-1].Time) {
			return fmt.Errorf("%w: %w: bar %d at %s does not follow %s",
				ports.ErrInvalidBars, ports.ErrNonMonotonicBars, i,
				b.Time.Format(time.RFC3339), bars[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// FilterBars keeps bars with from <= time < to. A zero bound is open.
func FilterBars(bars []*domain.Bar, from, to time.Time) []*domain.Bar {
	if from.IsZero() && to.IsZero() {
		return bars
	}
	out := make([]*domain.Bar, 0, len(bars))
	for _, b := range bars {
		if !from.IsZero() && b.Time.Before(from) {
			continue
		}
		if !to.IsZero() && !b.Time.Before(to) {
			continue
		}
		out = append(out, b)
	}
	return out
}
