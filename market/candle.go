// Package market provides the bar and side types shared across the bot,
// timeframe parsing, and data-integrity checks on fetched candle windows.
package market

import "time"

// Candle is one OHLCV bar. Time is the exchange-defined bar-open time in UTC
// and is unique per (pair, timeframe) series.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Range returns the bar's high-low spread.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// Side is the direction of an order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == Buy || s == Sell
}
