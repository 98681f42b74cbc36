package journal

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// WriteOrdersCSV streams ledger rows as CSV with a header, for offline
// analysis of a run.
func WriteOrdersCSV(w io.Writer, orders []Order) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"id", "time", "pair", "side", "price", "amount", "stop", "target", "status"}); err != nil {
		return err
	}
	for _, o := range orders {
		rec := []string{
			o.ID,
			o.Time.Format(time.RFC3339),
			o.Pair,
			string(o.Side),
			f(o.Price),
			f(o.Amount),
			f(o.Stop),
			f(o.Target),
			string(o.Status),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTicksCSV streams decision-log rows as CSV with a header.
func WriteTicksCSV(w io.Writer, ticks []Tick) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"time", "state", "decision", "pnl", "equity"}); err != nil {
		return err
	}
	for _, t := range ticks {
		rec := []string{
			t.Time.Format(time.RFC3339),
			t.State,
			t.Decision,
			f(t.PnL),
			f(t.Equity),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 8, 64)
}
