package journal

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/regimebot/market"
	"github.com/rustyeddy/regimebot/pkg/id"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func testCandles(start time.Time, n int) []market.Candle {
	out := make([]market.Candle, n)
	for i := range out {
		out[i] = market.Candle{
			Time:   start.Add(time.Duration(i) * 15 * time.Minute),
			Open:   100, High: 101, Low: 99, Close: 100,
			Volume: float64(i + 1),
		}
	}
	return out
}

func testOrder(ts time.Time) Order {
	return Order{
		ID:     id.New(),
		Time:   ts,
		Pair:   "BTC/USD",
		Side:   market.Buy,
		Price:  124,
		Amount: 0.80645161,
		Stop:   97.85,
		Target: 127.15,
		Status: StatusOpen,
	}
}

func TestInsertCandlesIdempotent(t *testing.T) {
	t.Parallel()
	j := newTestSQLite(t)

	start := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	batch := testCandles(start, 5)

	n, err := j.InsertCandles("BTC/USD", "15m", batch)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// Refetching the same window inserts nothing.
	n, err = j.InsertCandles("BTC/USD", "15m", batch)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	got, err := j.RecentCandles("BTC/USD", "15m", 100)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestInsertCandlesOverlappingBatch(t *testing.T) {
	t.Parallel()
	j := newTestSQLite(t)

	start := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	all := testCandles(start, 8)

	_, err := j.InsertCandles("BTC/USD", "15m", all[:5])
	require.NoError(t, err)

	n, err := j.InsertCandles("BTC/USD", "15m", all[3:])
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRecentCandlesChronological(t *testing.T) {
	t.Parallel()
	j := newTestSQLite(t)

	start := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	_, err := j.InsertCandles("BTC/USD", "15m", testCandles(start, 10))
	require.NoError(t, err)

	got, err := j.RecentCandles("BTC/USD", "15m", 4)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i].Time.After(got[i-1].Time))
	}
	// The limit keeps the newest bars.
	assert.Equal(t, start.Add(9*15*time.Minute), got[3].Time)
}

func TestRecentCandlesSeparatesSeries(t *testing.T) {
	t.Parallel()
	j := newTestSQLite(t)

	start := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	_, err := j.InsertCandles("BTC/USD", "15m", testCandles(start, 3))
	require.NoError(t, err)
	_, err = j.InsertCandles("ETH/USD", "15m", testCandles(start, 3))
	require.NoError(t, err)
	_, err = j.InsertCandles("BTC/USD", "1h", testCandles(start, 3))
	require.NoError(t, err)

	got, err := j.RecentCandles("BTC/USD", "15m", 100)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestLastCandleTime(t *testing.T) {
	t.Parallel()
	j := newTestSQLite(t)

	_, ok, err := j.LastCandleTime("BTC/USD", "15m")
	require.NoError(t, err)
	assert.False(t, ok)

	start := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	_, err = j.InsertCandles("BTC/USD", "15m", testCandles(start, 3))
	require.NoError(t, err)

	last, ok, err := j.LastCandleTime("BTC/USD", "15m")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, start.Add(2*15*time.Minute), last)
}

func TestOrderLifecycle(t *testing.T) {
	t.Parallel()
	j := newTestSQLite(t)

	open, err := j.LastOpenOrder()
	require.NoError(t, err)
	assert.Nil(t, open)

	o := testOrder(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	require.NoError(t, j.OpenOrder(o))

	open, err = j.LastOpenOrder()
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, o.ID, open.ID)
	assert.Equal(t, market.Buy, open.Side)
	assert.Equal(t, StatusOpen, open.Status)
	assert.InDelta(t, 97.85, open.Stop, 1e-9)

	require.NoError(t, j.UpdateOrderLevels(o.ID, 120.85, 127.98))
	open, err = j.LastOpenOrder()
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.InDelta(t, 120.85, open.Stop, 1e-9)
	assert.InDelta(t, 127.98, open.Target, 1e-9)

	require.NoError(t, j.CloseOrder(o.ID))
	open, err = j.LastOpenOrder()
	require.NoError(t, err)
	assert.Nil(t, open)

	got, err := j.GetOrder(o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, got.Status)
}

func TestOpenOrderRejectsSecondOpen(t *testing.T) {
	t.Parallel()
	j := newTestSQLite(t)

	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.OpenOrder(testOrder(ts)))

	err := j.OpenOrder(testOrder(ts.Add(15 * time.Minute)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOrderConflict)

	// Closing the first order makes room for the next one.
	open, err := j.LastOpenOrder()
	require.NoError(t, err)
	require.NotNil(t, open)
	require.NoError(t, j.CloseOrder(open.ID))
	assert.NoError(t, j.OpenOrder(testOrder(ts.Add(30*time.Minute))))
}

func TestCloseOrderExactlyOnce(t *testing.T) {
	t.Parallel()
	j := newTestSQLite(t)

	o := testOrder(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	require.NoError(t, j.OpenOrder(o))
	require.NoError(t, j.CloseOrder(o.ID))

	assert.Error(t, j.CloseOrder(o.ID))
	assert.Error(t, j.CloseOrder("no-such-order"))
}

func TestUpdateOrderLevelsRequiresOpenOrder(t *testing.T) {
	t.Parallel()
	j := newTestSQLite(t)

	o := testOrder(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	require.NoError(t, j.OpenOrder(o))
	require.NoError(t, j.CloseOrder(o.ID))

	assert.Error(t, j.UpdateOrderLevels(o.ID, 100, 110))
}

func TestTicksAndPeakEquity(t *testing.T) {
	t.Parallel()
	j := newTestSQLite(t)

	peak, err := j.PeakEquity()
	require.NoError(t, err)
	assert.Zero(t, peak)

	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	for i, eq := range []float64{10000, 10250, 9900} {
		err := j.AppendTick(Tick{
			Time:     base.Add(time.Duration(i) * 15 * time.Minute),
			State:    "consolidation",
			Decision: "hold",
			Equity:   eq,
		})
		require.NoError(t, err)
	}

	peak, err = j.PeakEquity()
	require.NoError(t, err)
	assert.InDelta(t, 10250.0, peak, 1e-9)
}

func TestListOrdersBetween(t *testing.T) {
	t.Parallel()
	j := newTestSQLite(t)

	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	inside := testOrder(day.Add(10 * time.Hour))
	require.NoError(t, j.OpenOrder(inside))
	require.NoError(t, j.CloseOrder(inside.ID))

	after := testOrder(day.Add(25 * time.Hour))
	require.NoError(t, j.OpenOrder(after))

	got, err := j.ListOrdersBetween(day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inside.ID, got[0].ID)
}

func TestListTicksBetween(t *testing.T) {
	t.Parallel()
	j := newTestSQLite(t)

	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{-time.Hour, time.Hour, 23 * time.Hour, 25 * time.Hour} {
		err := j.AppendTick(Tick{Time: day.Add(offset), State: "chaos", Decision: "hold", Equity: 1})
		require.NoError(t, err)
	}

	got, err := j.ListTicksBetween(day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Time.Before(got[1].Time))
}

func TestWriteOrdersCSV(t *testing.T) {
	t.Parallel()

	o := testOrder(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	var buf bytes.Buffer
	require.NoError(t, WriteOrdersCSV(&buf, []Order{o}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,time,pair,side,price,amount,stop,target,status", lines[0])
	assert.Contains(t, lines[1], o.ID)
	assert.Contains(t, lines[1], "BTC/USD")
	assert.Contains(t, lines[1], "0.80645161")
}

func TestWriteTicksCSV(t *testing.T) {
	t.Parallel()

	ticks := []Tick{{
		Time:     time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		State:    "up",
		Decision: "buy",
		PnL:      0,
		Equity:   10000,
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteTicksCSV(&buf, ticks))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "time,state,decision,pnl,equity", lines[0])
	assert.Contains(t, lines[1], "up,buy")
}
