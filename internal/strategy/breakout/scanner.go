// Package breakout finds the first breach of a day's reference range.
package breakout

import (
	"rangeBreakout/internal/domain"
)

// Scanner checks bars against a daily range.
type Scanner struct {
	trigger domain.BreakoutTrigger
}

// NewScanner creates a scanner comparing the given bar price against the range.
// An empty trigger means wick.
func NewScanner(trigger domain.BreakoutTrigger) *Scanner {
	if trigger == "" {
		trigger = domain.TriggerWick
	}
	return &Scanner{trigger: trigger}
}

// Check returns the breakout caused by bar, or nil when the bar stays inside the range.
// A bar breaching both bounds resolves to the high break.
func (s *Scanner) Check(bar *domain.Bar, rng *domain.DailyRange) *domain.BreakoutEvent {
	if rng == nil {
		return nil
	}
	up, down := bar.High, bar.Low
	if s.trigger == domain.TriggerClose {
		up, down = bar.Close, bar.Close
	}

	switch {
	case up > rng.High:
		return &domain.BreakoutEvent{
			Date:         rng.Date,
			Kind:         domain.BreakHigh,
			Direction:    domain.Short,
			Level:        rng.High,
			TriggerPrice: up,
			TriggerTime:  bar.Time,
		}
	case down < rng.Low:
		return &domain.BreakoutEvent{
			Date:         rng.Date,
			Kind:         domain.BreakLow,
			Direction:    domain.Long,
			Level:        rng.Low,
			TriggerPrice: down,
			TriggerTime:  bar.Time,
		}
	}
	return nil
}
