// Package journal persists everything the bot needs to restart safely: the
// deduplicated candle series, the order ledger, and the per-tick decision log.
// The decision engine re-reads the one open order from here every cycle, so
// the journal is the only state that survives between ticks.
package journal

import (
	"time"

	"github.com/rustyeddy/regimebot/market"
)

// Status is an order's lifecycle state. An order transitions from open to
// closed exactly once and is never reopened; a new position gets a new ID.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Order is one row of the order ledger. Stop and Target are mutated in place
// by trailing logic while the order is open.
type Order struct {
	ID     string
	Time   time.Time
	Pair   string
	Side   market.Side
	Price  float64 // entry price
	Amount float64
	Stop   float64
	Target float64
	Status Status
}

// Tick is one row of the append-only decision log: what the bot saw and did
// on a single cycle.
type Tick struct {
	Time     time.Time
	State    string
	Decision string
	PnL      float64 // realized pnl this tick, 0 if none
	Equity   float64
}

// Journal is the durable-storage contract the drive loop and decision engine
// depend on.
type Journal interface {
	InsertCandles(pair, timeframe string, candles []market.Candle) (int, error)
	RecentCandles(pair, timeframe string, limit int) ([]market.Candle, error)
	LastCandleTime(pair, timeframe string) (time.Time, bool, error)

	OpenOrder(o Order) error
	LastOpenOrder() (*Order, error)
	UpdateOrderLevels(id string, stop, target float64) error
	CloseOrder(id string) error

	AppendTick(t Tick) error
	PeakEquity() (float64, error)

	Close() error
}
