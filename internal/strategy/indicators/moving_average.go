package indicators

// EMA is a streaming exponential moving average with smoothing 2/(period+1),
// seeded with the first sample.
type EMA struct {
	period int
	alpha  float64
	value  float64
	count  int
}

// NewEMA creates an EMA for the given period.
func NewEMA(period int) *EMA {
	return &EMA{period: period, alpha: 2.0 / float64(period+1)}
}

// Update folds v into the average and returns the new value.
func (e *EMA) Update(v float64) float64 {
	if e.count == 0 {
		e.value = v
	} else {
		e.value = e.alpha*v + (1-e.alpha)*e.value
	}
	e.count++
	return e.value
}

// Ready reports whether at least period samples have been consumed.
func (e *EMA) Ready() bool { return e.count >= e.period }
