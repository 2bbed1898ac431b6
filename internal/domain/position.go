package domain

import "time"

// OpenPosition is a confirmed entry that has not exited yet.
type OpenPosition struct {
	Symbol      string
	Direction   Direction
	EntryTime   time.Time
	EntryPrice  float64
	StopPrice   float64
	TargetPrice float64
	Range       DailyRange
	Trend       Trend

	// Last bar seen while the position was open.
	LastTime  time.Time
	LastClose float64
}
