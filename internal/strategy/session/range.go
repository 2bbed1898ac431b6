package session

import (
	"math"
	"time"

	"rangeBreakout/internal/domain"
)

// RangeDetector accumulates the high and low of the bars inside a reference window.
type RangeDetector struct {
	window Window
	loc    *time.Location
	high   float64
	low    float64
	count  int
}

// NewRangeDetector creates a detector for the given window evaluated in loc.
func NewRangeDetector(window Window, loc *time.Location) *RangeDetector {
	if loc == nil {
		loc = time.UTC
	}
	d := &RangeDetector{window: window, loc: loc}
	d.Reset()
	return d
}

// Observe folds bar into the range if it falls inside the window.
// It reports whether the bar was used.
func (d *RangeDetector) Observe(bar *domain.Bar) bool {
	if !d.window.Contains(TimeOfDayOf(bar.Time.In(d.loc))) {
		return false
	}
	d.high = math.Max(d.high, bar.High)
	d.low = math.Min(d.low, bar.Low)
	d.count++
	return true
}

// Range returns the accumulated range for date, or false when no bar was observed.
func (d *RangeDetector) Range(date time.Time) (*domain.DailyRange, bool) {
	if d.count == 0 {
		return nil, false
	}
	return &domain.DailyRange{Date: date, High: d.high, Low: d.low, Bars: d.count}, true
}

// Reset clears the accumulated state for a new day.
func (d *RangeDetector) Reset() {
	d.high = math.Inf(-1)
	d.low = math.Inf(1)
	d.count = 0
}

// SplitDays groups a time-ordered bar slice by calendar day in loc.
func SplitDays(bars []*domain.Bar, loc *time.Location) [][]*domain.Bar {
	if loc == nil {
		loc = time.UTC
	}
	var days [][]*domain.Bar
	var current []*domain.Bar
	var currentDay time.Time
	for _, b := range bars {
		day := DayOf(b.Time, loc)
		if len(current) > 0 && !day.Equal(currentDay) {
			days = append(days, current)
			current = nil
		}
		currentDay = day
		current = append(current, b)
	}
	if len(current) > 0 {
		days = append(days, current)
	}
	return days
}
