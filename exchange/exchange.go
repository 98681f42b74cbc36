// Package exchange defines the ports the bot consumes for market data,
// balances, and order execution, plus the Coinbase implementation and a paper
// stub. The decision engine never talks to an exchange directly; everything
// passes through these interfaces so tests can inject fakes.
package exchange

import (
	"context"
	"time"

	"github.com/rustyeddy/regimebot/market"
)

// Balance is one currency's exchange balance.
type Balance struct {
	Free  float64
	Total float64
}

// MarketData fetches recent bars for a pair/timeframe series.
type MarketData interface {
	// RecentCandles returns up to limit bars with open time >= since, oldest
	// first.
	RecentCandles(ctx context.Context, pair, timeframe string, since time.Time, limit int) ([]market.Candle, error)
}

// BalanceSource reports account balances keyed by currency code.
type BalanceSource interface {
	Balances(ctx context.Context) (map[string]Balance, error)
}

// Executor places and cancels real orders. It is only invoked in live mode;
// paper runs get the no-op implementation.
type Executor interface {
	SubmitMarketOrder(ctx context.Context, pair string, side market.Side, qty float64) (string, error)
	CancelOrder(ctx context.Context, id string) error
}
