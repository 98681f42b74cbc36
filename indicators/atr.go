// Package indicators provides the volatility measures the classifier and the
// decision engine share. Everything here is a pure function over a candle
// window so it behaves identically in live and paper runs.
package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/regimebot/market"
)

// DefaultATRPeriod is the trailing window used for stop and target distances.
const DefaultATRPeriod = 20

// ATR calculates the Average True Range over the trailing `period` bars of the
// window: the simple mean of per-bar true ranges, where true range is
// max(high-low, |high-prevClose|, |low-prevClose|). The first bar of the
// window has no previous close and contributes its plain high-low range.
// Returns an error if there aren't enough candles for the period.
func ATR(candles []market.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < period {
		return 0, fmt.Errorf("not enough candles: need %d, got %d", period, len(candles))
	}

	sum := 0.0
	start := len(candles) - period
	for i := start; i < len(candles); i++ {
		if i == 0 {
			sum += candles[i].Range()
			continue
		}
		sum += trueRange(candles[i], candles[i-1])
	}
	return sum / float64(period), nil
}

// trueRange calculates the True Range for a candle given the previous candle.
func trueRange(current, previous market.Candle) float64 {
	highLow := current.High - current.Low
	highClose := math.Abs(current.High - previous.Close)
	lowClose := math.Abs(current.Low - previous.Close)

	return math.Max(highLow, math.Max(highClose, lowClose))
}
