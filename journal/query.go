package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetOrder returns a single ledger row by ID.
func (j *SQLite) GetOrder(id string) (Order, error) {
	row := j.db.QueryRow(`
		SELECT id, ts, pair, side, price, amount, stop, target, status
		FROM orders
		WHERE id = ?`, id)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return Order{}, fmt.Errorf("order %q not found", id)
	}
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

// ListOrdersBetween returns orders opened within [start, end), oldest first.
func (j *SQLite) ListOrdersBetween(start, end time.Time) ([]Order, error) {
	rows, err := j.db.Query(`
		SELECT id, ts, pair, side, price, amount, stop, target, status
		FROM orders
		WHERE ts >= ? AND ts < ?
		ORDER BY ts ASC`, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTicksBetween returns decision-log rows within [start, end), oldest
// first.
func (j *SQLite) ListTicksBetween(start, end time.Time) ([]Tick, error) {
	rows, err := j.db.Query(`
		SELECT ts, state, decision, pnl, equity
		FROM logs
		WHERE ts >= ? AND ts < ?
		ORDER BY ts ASC`, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tick
	for rows.Next() {
		var t Tick
		var ts int64
		if err := rows.Scan(&ts, &t.State, &t.Decision, &t.PnL, &t.Equity); err != nil {
			return nil, err
		}
		t.Time = time.UnixMilli(ts).UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
