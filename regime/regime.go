// Package regime labels the current market condition from a candle window.
// The classifier is a pure function: no clocks, no I/O, no state, so the same
// window always yields the same label in live, paper, and test runs.
package regime

import "github.com/rustyeddy/regimebot/market"

// Regime is the classified market condition.
type Regime string

const (
	Consolidation Regime = "consolidation"
	Up            Regime = "up"
	Down          Regime = "down"
	Chaos         Regime = "chaos"
)

// Lookback is the trailing window the classifier measures. One extra bar is
// required so the current bar can be compared against the 20 bars before it.
const Lookback = 20

// MinBars is the minimum window length for a meaningful label.
const MinBars = Lookback + 1

// Classify maps a candle window (oldest first) to a market regime. Windows
// shorter than MinBars are Chaos unconditionally: not enough history to call
// anything else.
//
// Decision order, first match wins:
//  1. current range within 1% of the trailing median and the trailing 20 bars
//     overlap inside one median range -> Consolidation
//  2. range expanding and the close breaks the prior 20-bar high (or low)
//     -> Up (or Down)
//  3. otherwise -> Chaos
func Classify(window []market.Candle) Regime {
	if len(window) < MinBars {
		return Chaos
	}

	last := window[len(window)-1]
	prev := window[len(window)-2]

	atr := last.Range()
	atrPrev := prev.Range()

	trailing := window[len(window)-Lookback:] // includes the current bar
	// the 20 bars before the current one
	prior := window[len(window)-MinBars : len(window)-1]

	medianRange := market.MedianRange(trailing)
	overlap := market.HighestHigh(trailing)-market.LowestLow(trailing) <= medianRange

	newHigh := last.Close > market.HighestHigh(prior)
	newLow := last.Close < market.LowestLow(prior)
	expanding := atr > atrPrev

	switch {
	case atr <= 1.01*medianRange && overlap:
		return Consolidation
	case expanding && newHigh:
		return Up
	case expanding && newLow:
		return Down
	default:
		return Chaos
	}
}
