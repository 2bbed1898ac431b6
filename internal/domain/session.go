package domain

import "time"

// DailyRange is the high/low measured over the reference window of one day.
type DailyRange struct {
	Date time.Time // Midnight of the calendar day in the configured location
	High float64
	Low  float64
	Bars int // Number of bars that contributed
}

// Size returns the distance between the range bounds.
func (r DailyRange) Size() float64 {
	return r.High - r.Low
}

// BreakoutEvent is the first breach of the daily range inside the trading window.
type BreakoutEvent struct {
	Date         time.Time
	Kind         BreakKind
	Direction    Direction // Setup direction: SHORT for a high break, LONG for a low break
	Level        float64   // Range bound that was breached
	TriggerPrice float64   // Bar price that breached it
	TriggerTime  time.Time
}
