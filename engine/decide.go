// Package engine is the trade decision state machine. Decide is a pure
// function over one cycle's inputs; Engine wraps it with the journal reads
// and writes that make the machine stateless across cycles.
package engine

import (
	"fmt"
	"math"

	"github.com/rustyeddy/regimebot/indicators"
	"github.com/rustyeddy/regimebot/journal"
	"github.com/rustyeddy/regimebot/market"
	"github.com/rustyeddy/regimebot/pkg/id"
	"github.com/rustyeddy/regimebot/regime"
	"github.com/rustyeddy/regimebot/risk"
)

// Decision labels what the engine did this cycle.
type Decision string

const (
	DecideBuy   Decision = "buy"
	DecideSell  Decision = "sell"
	DecideClose Decision = "close"
	DecideHold  Decision = "hold"
)

// entryBand is the fraction of the consolidation range within which a fade
// entry triggers at either edge.
const entryBand = 0.1

// Input is everything one decision cycle depends on. Open is the current open
// order, nil when flat; Decide works on a copy and never mutates it.
type Input struct {
	Pair    string
	Window  []market.Candle
	State   regime.Regime
	Open    *journal.Order
	Balance float64
	RiskPct float64
}

// Outcome is what the cycle decided. At most one of Entry/CloseID is set:
// exit and entry are mutually exclusive within a tick, and a close forbids
// re-entry on the same bar.
type Outcome struct {
	Decision Decision
	PnL      float64

	Entry   *journal.Order // new order to record, nil if none
	CloseID string         // order to transition to closed, "" if none

	// Trailed reports that stop/target tightened this cycle and carries the
	// new levels. Only set when the order stays open.
	Trailed bool
	Stop    float64
	Target  float64
}

// Decide maps one cycle's inputs to a decision. It never errors on regime
// labels it doesn't recognize (those hold, like chaos); an empty window is a
// caller contract violation and does error.
func Decide(in Input) (Outcome, error) {
	if len(in.Window) == 0 {
		return Outcome{}, fmt.Errorf("decide: empty candle window")
	}
	if in.Open != nil {
		return manage(in)
	}
	return enter(in)
}

// manage handles the In-Position state: trail stops in directional regimes,
// then check the current bar for stop/target touches and regime flips.
func manage(in Input) (Outcome, error) {
	o := *in.Open
	if !o.Side.Valid() {
		return Outcome{}, fmt.Errorf("decide: open order %s has invalid side %q", o.ID, o.Side)
	}

	last := in.Window[len(in.Window)-1]
	out := Outcome{Decision: DecideHold}

	if in.State == regime.Up || in.State == regime.Down {
		atr, err := indicators.ATR(in.Window, indicators.DefaultATRPeriod)
		if err != nil {
			return Outcome{}, fmt.Errorf("decide: %w", err)
		}

		// Monotonic tightening: the stop only ever moves in the trade's
		// favor.
		var stop, target float64
		if o.Side == market.Buy {
			stop = math.Max(o.Stop, last.Close-atr)
			target = last.Close + atr
		} else {
			stop = math.Min(o.Stop, last.Close+atr)
			target = last.Close - atr
		}
		if stop != o.Stop || target != o.Target {
			o.Stop, o.Target = stop, target
			out.Trailed = true
			out.Stop, out.Target = stop, target
		}
	}

	// Exit checks run every cycle regardless of regime, against the bar's
	// high/low so intrabar touches are caught.
	var hitStop, hitTarget bool
	if o.Side == market.Buy {
		hitStop = last.Low <= o.Stop
		hitTarget = last.High >= o.Target
	} else {
		hitStop = last.High >= o.Stop
		hitTarget = last.Low <= o.Target
	}
	stateFlip := (in.State == regime.Up && o.Side == market.Sell) ||
		(in.State == regime.Down && o.Side == market.Buy) ||
		in.State == regime.Chaos

	if hitStop || hitTarget || stateFlip {
		// Fill approximated at the bar close; real stop fills happen
		// intrabar, but close-pricing is the stated pnl semantic.
		pnl := (last.Close - o.Price) * o.Amount
		if o.Side == market.Sell {
			pnl = -pnl
		}
		return Outcome{
			Decision: DecideClose,
			PnL:      pnl,
			CloseID:  o.ID,
		}, nil
	}

	return out, nil
}

// enter handles the Flat state: regime-keyed entry triggers. Chaos and any
// label we don't recognize hold.
func enter(in Input) (Outcome, error) {
	hold := Outcome{Decision: DecideHold}

	if len(in.Window) < regime.MinBars {
		return hold, nil
	}

	last := in.Window[len(in.Window)-1]
	prior := in.Window[len(in.Window)-regime.MinBars : len(in.Window)-1]
	high20 := market.HighestHigh(prior)
	low20 := market.LowestLow(prior)

	atr, err := indicators.ATR(in.Window, indicators.DefaultATRPeriod)
	if err != nil {
		return Outcome{}, fmt.Errorf("decide: %w", err)
	}

	var side market.Side
	var stop, target float64

	switch in.State {
	case regime.Consolidation:
		rangeSize := high20 - low20
		rangeMid := low20 + rangeSize/2
		switch {
		case last.Close <= low20+entryBand*rangeSize:
			side, stop, target = market.Buy, low20-atr, rangeMid
		case last.Close >= high20-entryBand*rangeSize:
			side, stop, target = market.Sell, high20+atr, rangeMid
		default:
			return hold, nil
		}

	case regime.Up:
		if last.Close <= high20 {
			return hold, nil
		}
		side, stop, target = market.Buy, high20-atr, last.Close+atr

	case regime.Down:
		if last.Close >= low20 {
			return hold, nil
		}
		side, stop, target = market.Sell, low20+atr, last.Close-atr

	default:
		return hold, nil
	}

	qty := risk.PositionSize(in.Balance, last.Close, in.RiskPct)
	if qty <= 0 {
		return hold, nil
	}

	return Outcome{
		Decision: Decision(side),
		Entry: &journal.Order{
			ID:     id.New(),
			Time:   last.Time,
			Pair:   in.Pair,
			Side:   side,
			Price:  last.Close,
			Amount: qty,
			Stop:   stop,
			Target: target,
			Status: journal.StatusOpen,
		},
	}, nil
}
