package risk

// Equity values an account in quote currency: free quote balance plus the
// base holding marked at the last close. Paper mode passes its synthetic
// quote balance and a zero base holding.
func Equity(quoteFree, baseTotal, lastPrice float64) float64 {
	return quoteFree + baseTotal*lastPrice
}

// Tracker follows peak equity across ticks and trips a one-way latch when the
// drawdown from peak reaches the configured limit while trading live. Once
// tripped, live trading stays disabled for the rest of the run even if equity
// recovers; only a restart re-arms it.
type Tracker struct {
	limit   float64
	peak    float64
	tripped bool
}

// NewTracker creates a drawdown tracker. limit is a fraction, e.g. 0.10 for
// 10%. seedPeak may carry a peak recovered from the tick log on restart; pass
// 0 to start from the first observed equity.
func NewTracker(limit, seedPeak float64) *Tracker {
	return &Tracker{limit: limit, peak: seedPeak}
}

// Observe records an equity snapshot and reports whether the latch tripped on
// this observation. The peak is monotonically non-decreasing.
func (t *Tracker) Observe(equity float64, live bool) (tripped bool) {
	if equity > t.peak {
		t.peak = equity
	}
	if !t.tripped && live && t.Drawdown(equity) >= t.limit {
		t.tripped = true
		return true
	}
	return false
}

// Drawdown returns the fractional decline of equity from the tracked peak.
func (t *Tracker) Drawdown(equity float64) float64 {
	if t.peak <= 0 {
		return 0
	}
	return (t.peak - equity) / t.peak
}

// Peak returns the highest equity seen this run (or the restart seed).
func (t *Tracker) Peak() float64 { return t.peak }

// Tripped reports whether the latch has fired this run.
func (t *Tracker) Tripped() bool { return t.tripped }
