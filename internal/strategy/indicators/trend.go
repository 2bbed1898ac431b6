package indicators

import (
	"time"

	"rangeBreakout/internal/domain"
)

// Resample aggregates bars into buckets of the given timeframe.
// Bucket boundaries are multiples of timeframe since the zero time.
func Resample(bars []*domain.Bar, timeframe time.Duration) []*domain.Bar {
	if timeframe <= 0 || len(bars) == 0 {
		return nil
	}
	var out []*domain.Bar
	var cur *domain.Bar
	for _, b := range bars {
		start := b.Time.Truncate(timeframe)
		if cur == nil || !start.Equal(cur.Time) {
			cur = &domain.Bar{Time: start, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
			out = append(out, cur)
			continue
		}
		cur.High = max(cur.High, b.High)
		cur.Low = min(cur.Low, b.Low)
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	return out
}

// TrendSeries labels every bar with the trend of the last completed higher-timeframe
// bucket: UP when that bucket closed above its EMA(period), DOWN otherwise.
// Bars before the EMA has warmed up are labelled TrendUnknown.
func TrendSeries(bars []*domain.Bar, timeframe time.Duration, period int) []domain.Trend {
	out := make([]domain.Trend, len(bars))
	if timeframe <= 0 || period <= 0 {
		return out
	}

	ema := NewEMA(period)
	current := domain.TrendUnknown
	var bucket time.Time
	var bucketClose float64
	started := false

	for i, b := range bars {
		start := b.Time.Truncate(timeframe)
		if started && !start.Equal(bucket) {
			// The previous bucket is now complete.
			value := ema.Update(bucketClose)
			switch {
			case !ema.Ready():
				current = domain.TrendUnknown
			case bucketClose > value:
				current = domain.TrendUp
			default:
				current = domain.TrendDown
			}
		}
		bucket = start
		bucketClose = b.Close
		started = true
		out[i] = current
	}
	return out
}
