package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/regimebot/market"
)

// ErrOrderConflict is returned when a second open order would violate the
// single-position invariant.
var ErrOrderConflict = errors.New("an open order already exists")

// SQLite is the sqlite-backed journal. A single loop goroutine is the only
// writer; each method is one complete transaction, so a crash between cycles
// leaves the last committed state intact.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// InsertCandles upserts a batch of candles with ignore-on-duplicate semantics,
// so refetching an overlapping window is idempotent. Returns how many rows
// were actually new.
func (j *SQLite) InsertCandles(pair, timeframe string, candles []market.Candle) (int, error) {
	tx, err := j.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO candles
		(ts, pair, timeframe, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range candles {
		res, err := stmt.Exec(c.Time.UnixMilli(), pair, timeframe,
			c.Open, c.High, c.Low, c.Close, c.Volume)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// RecentCandles returns up to `limit` most recent candles for the series,
// oldest first.
func (j *SQLite) RecentCandles(pair, timeframe string, limit int) ([]market.Candle, error) {
	rows, err := j.db.Query(`
		SELECT ts, open, high, low, close, volume
		FROM candles
		WHERE pair = ? AND timeframe = ?
		ORDER BY ts DESC
		LIMIT ?`, pair, timeframe, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Candle
	for rows.Next() {
		var ts int64
		var c market.Candle
		if err := rows.Scan(&ts, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		c.Time = time.UnixMilli(ts).UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// reverse into chronological order
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

// LastCandleTime returns the newest stored bar-open time for the series, with
// ok=false when the series is empty.
func (j *SQLite) LastCandleTime(pair, timeframe string) (time.Time, bool, error) {
	var ts sql.NullInt64
	err := j.db.QueryRow(`
		SELECT MAX(ts) FROM candles WHERE pair = ? AND timeframe = ?`,
		pair, timeframe).Scan(&ts)
	if err != nil {
		return time.Time{}, false, err
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ts.Int64).UTC(), true, nil
}

// OpenOrder records a new open order. The partial unique index rejects a
// second open row; that case comes back as ErrOrderConflict.
func (j *SQLite) OpenOrder(o Order) error {
	_, err := j.db.Exec(`
		INSERT INTO orders
		(id, ts, pair, side, price, amount, stop, target, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Time.UnixMilli(), o.Pair, string(o.Side),
		o.Price, o.Amount, o.Stop, o.Target, string(StatusOpen),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w (order %s)", ErrOrderConflict, o.ID)
		}
		return err
	}
	return nil
}

// LastOpenOrder returns the open order, or nil when the book is flat.
func (j *SQLite) LastOpenOrder() (*Order, error) {
	row := j.db.QueryRow(`
		SELECT id, ts, pair, side, price, amount, stop, target, status
		FROM orders
		WHERE status = ?
		ORDER BY ts DESC
		LIMIT 1`, string(StatusOpen))

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateOrderLevels rewrites an open order's stop and target after trailing.
func (j *SQLite) UpdateOrderLevels(id string, stop, target float64) error {
	res, err := j.db.Exec(`
		UPDATE orders SET stop = ?, target = ?
		WHERE id = ? AND status = ?`,
		stop, target, id, string(StatusOpen))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("order %q not found or not open", id)
	}
	return nil
}

// CloseOrder flips an order to closed. The status guard makes the transition
// exactly-once: closing twice is an error, not a silent no-op.
func (j *SQLite) CloseOrder(id string) error {
	res, err := j.db.Exec(`
		UPDATE orders SET status = ?
		WHERE id = ? AND status = ?`,
		string(StatusClosed), id, string(StatusOpen))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("order %q not found or already closed", id)
	}
	return nil
}

// AppendTick records one decision cycle in the audit log.
func (j *SQLite) AppendTick(t Tick) error {
	_, err := j.db.Exec(`
		INSERT INTO logs (ts, state, decision, pnl, equity)
		VALUES (?, ?, ?, ?, ?)`,
		t.Time.UnixMilli(), t.State, t.Decision, t.PnL, t.Equity,
	)
	return err
}

// PeakEquity returns the highest equity snapshot in the tick log, 0 when the
// log is empty. Used to seed the drawdown tracker across restarts.
func (j *SQLite) PeakEquity() (float64, error) {
	var peak sql.NullFloat64
	if err := j.db.QueryRow(`SELECT MAX(equity) FROM logs`).Scan(&peak); err != nil {
		return 0, err
	}
	return peak.Float64, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	var ts int64
	var side, status string
	err := row.Scan(&o.ID, &ts, &o.Pair, &side, &o.Price, &o.Amount,
		&o.Stop, &o.Target, &status)
	if err != nil {
		return Order{}, err
	}
	o.Time = time.UnixMilli(ts).UTC()
	o.Side = market.Side(side)
	o.Status = Status(status)
	return o, nil
}

func isUniqueViolation(err error) bool {
	// Matching on the message keeps the driver import surface to the blank
	// registration above.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
