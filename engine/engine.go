package engine

import (
	"context"
	"fmt"

	"github.com/rustyeddy/regimebot/exchange"
	"github.com/rustyeddy/regimebot/journal"
)

// Engine applies decision outcomes to the journal and, in live mode, to the
// exchange. It holds no position state of its own: every Step re-reads the
// open order from the ledger, which is what makes a restart mid-run safe.
type Engine struct {
	journal journal.Journal
	exec    exchange.Executor
}

func New(j journal.Journal, exec exchange.Executor) *Engine {
	return &Engine{journal: j, exec: exec}
}

// Step runs one decision cycle: read the open order, decide, persist the
// outcome, and append the tick log entry. When live is set, order placement
// goes to the exchange before the ledger records it, so a failed submission
// aborts the cycle with the ledger untouched.
func (e *Engine) Step(ctx context.Context, in Input, live bool) (journal.Tick, error) {
	open, err := e.journal.LastOpenOrder()
	if err != nil {
		return journal.Tick{}, fmt.Errorf("read open order: %w", err)
	}
	in.Open = open

	out, err := Decide(in)
	if err != nil {
		return journal.Tick{}, err
	}

	if out.Trailed && out.CloseID == "" {
		if err := e.journal.UpdateOrderLevels(open.ID, out.Stop, out.Target); err != nil {
			return journal.Tick{}, fmt.Errorf("trail order %s: %w", open.ID, err)
		}
	}

	if out.CloseID != "" {
		if live {
			_, err := e.exec.SubmitMarketOrder(ctx, in.Pair, open.Side.Opposite(), open.Amount)
			if err != nil {
				return journal.Tick{}, fmt.Errorf("close position: %w", err)
			}
		}
		if err := e.journal.CloseOrder(out.CloseID); err != nil {
			return journal.Tick{}, fmt.Errorf("close order %s: %w", out.CloseID, err)
		}
	}

	if out.Entry != nil {
		if live {
			_, err := e.exec.SubmitMarketOrder(ctx, in.Pair, out.Entry.Side, out.Entry.Amount)
			if err != nil {
				return journal.Tick{}, fmt.Errorf("open position: %w", err)
			}
		}
		if err := e.journal.OpenOrder(*out.Entry); err != nil {
			return journal.Tick{}, fmt.Errorf("record order %s: %w", out.Entry.ID, err)
		}
	}

	tick := journal.Tick{
		Time:     in.Window[len(in.Window)-1].Time,
		State:    string(in.State),
		Decision: string(out.Decision),
		PnL:      out.PnL,
		Equity:   in.Balance,
	}
	if err := e.journal.AppendTick(tick); err != nil {
		return journal.Tick{}, fmt.Errorf("append tick log: %w", err)
	}
	return tick, nil
}
