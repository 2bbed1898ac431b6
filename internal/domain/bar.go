package domain

import "time"

// Bar represents a single OHLCV candle.
type Bar struct {
	Time   time.Time // Start time of the interval
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
