// Package risk holds position sizing and the equity/drawdown tracking that
// gates live trading.
package risk

import "math"

// PositionSize converts an account balance and a per-trade risk fraction into
// an order quantity at the given price, rounded to 8 decimal places (the
// finest base-asset precision crypto venues quote).
//
// A zero or negative balance or price yields 0 rather than an error: the
// caller treats "nothing to size" as a hold, not a fault.
func PositionSize(balance, price, riskPct float64) float64 {
	if balance <= 0 || price <= 0 {
		return 0
	}
	qty := balance * riskPct / price
	return math.Round(qty*1e8) / 1e8
}
