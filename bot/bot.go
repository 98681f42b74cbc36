// Package bot runs the drive loop: one decision cycle per timeframe tick,
// with error containment at the cycle boundary. A failed cycle is logged and
// retried after a fixed backoff; only context cancellation stops the loop.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/regimebot/config"
	"github.com/rustyeddy/regimebot/engine"
	"github.com/rustyeddy/regimebot/exchange"
	"github.com/rustyeddy/regimebot/journal"
	"github.com/rustyeddy/regimebot/market"
	"github.com/rustyeddy/regimebot/regime"
	"github.com/rustyeddy/regimebot/risk"
)

// errBackoff is how long the loop sleeps after a failed cycle instead of a
// full timeframe, so transient exchange hiccups don't stall the series and
// hard failures don't retry in a tight storm.
const errBackoff = 30 * time.Second

// Bot wires the collaborators of one trading run together.
type Bot struct {
	cfg     *config.Config
	journal journal.Journal
	data    exchange.MarketData
	bal     exchange.BalanceSource
	engine  *engine.Engine
	tracker *risk.Tracker
	live    bool
	logger  *slog.Logger
}

// New assembles a bot. live selects real order submission; the drawdown
// tracker can revoke it mid-run but never grant it back.
func New(cfg *config.Config, j journal.Journal, data exchange.MarketData,
	bal exchange.BalanceSource, exec exchange.Executor, live bool,
	logger *slog.Logger) (*Bot, error) {

	var seedPeak float64
	if cfg.ResumePeak {
		peak, err := j.PeakEquity()
		if err != nil {
			return nil, fmt.Errorf("recover peak equity: %w", err)
		}
		seedPeak = peak
	}

	return &Bot{
		cfg:     cfg,
		journal: j,
		data:    data,
		bal:     bal,
		engine:  engine.New(j, exec),
		tracker: risk.NewTracker(cfg.DrawdownLimit, seedPeak),
		live:    live,
		logger:  logger.With(slog.String("component", "bot")),
	}, nil
}

// Run loops until the context is cancelled. Each cycle is a complete,
// independent unit; errors never escape the loop.
func (b *Bot) Run(ctx context.Context) error {
	tf, err := market.ParseTimeframe(b.cfg.Timeframe)
	if err != nil {
		return err
	}

	b.logger.Info("starting",
		slog.String("pair", b.cfg.Pair),
		slog.String("timeframe", b.cfg.Timeframe),
		slog.Bool("live", b.live),
		slog.Float64("risk_pct", b.cfg.RiskPct),
	)

	for {
		sleep := tf
		if err := b.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			mtxCycleErrors.Inc()
			b.logger.Error("cycle failed", slog.String("error", err.Error()))
			sleep = errBackoff
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// cycle is one tick: fetch -> validate -> store -> classify -> decide -> log.
func (b *Bot) cycle(ctx context.Context) error {
	tf, err := market.ParseTimeframe(b.cfg.Timeframe)
	if err != nil {
		return err
	}

	since, err := b.fetchSince(tf)
	if err != nil {
		return err
	}

	fetched, err := b.data.RecentCandles(ctx, b.cfg.Pair, b.cfg.Timeframe, since, b.cfg.Lookback)
	if err != nil {
		return fmt.Errorf("fetch candles: %w", err)
	}
	if err := market.Validate(fetched, b.cfg.Timeframe); err != nil {
		return err
	}
	if _, err := b.journal.InsertCandles(b.cfg.Pair, b.cfg.Timeframe, fetched); err != nil {
		return fmt.Errorf("store candles: %w", err)
	}

	window, err := b.journal.RecentCandles(b.cfg.Pair, b.cfg.Timeframe, b.cfg.Lookback)
	if err != nil {
		return fmt.Errorf("load window: %w", err)
	}
	if len(window) == 0 {
		return fmt.Errorf("no candles stored for %s %s", b.cfg.Pair, b.cfg.Timeframe)
	}
	lastClose := window[len(window)-1].Close

	equity, err := b.equity(ctx, lastClose)
	if err != nil {
		return err
	}

	if tripped := b.tracker.Observe(equity, b.live); tripped {
		// One-way latch: finish the run in paper-equivalent mode.
		b.live = false
		b.logger.Warn("drawdown limit reached, live trading disabled",
			slog.Float64("equity", equity),
			slog.Float64("peak", b.tracker.Peak()),
			slog.Float64("drawdown", b.tracker.Drawdown(equity)),
		)
	}

	state := regime.Classify(window)

	tick, err := b.engine.Step(ctx, engine.Input{
		Pair:    b.cfg.Pair,
		Window:  window,
		State:   state,
		Balance: equity,
		RiskPct: b.cfg.RiskPct,
	}, b.live)
	if err != nil {
		return err
	}

	// The telemetry contract: one machine-parseable line per decision cycle.
	b.logger.Info("tick",
		slog.Int64("ts", tick.Time.UnixMilli()),
		slog.String("state", tick.State),
		slog.String("decision", tick.Decision),
		slog.Float64("pnl", tick.PnL),
		slog.Float64("equity", tick.Equity),
	)

	mtxCycles.Inc()
	mtxStates.WithLabelValues(tick.State).Inc()
	mtxDecisions.WithLabelValues(tick.Decision).Inc()
	mtxEquity.Set(equity)
	mtxDrawdown.Set(b.tracker.Drawdown(equity))
	if b.live {
		mtxLive.Set(1)
	} else {
		mtxLive.Set(0)
	}
	return nil
}

// fetchSince picks the fetch window start: a little before the newest stored
// bar so the exchange's still-forming candle gets refreshed, or a full
// lookback when the series is empty. Overlap is harmless because candle
// inserts are idempotent.
func (b *Bot) fetchSince(tf time.Duration) (time.Time, error) {
	last, ok, err := b.journal.LastCandleTime(b.cfg.Pair, b.cfg.Timeframe)
	if err != nil {
		return time.Time{}, fmt.Errorf("last stored candle: %w", err)
	}
	if !ok {
		return time.Now().UTC().Add(-time.Duration(b.cfg.Lookback) * tf), nil
	}
	return last.Add(-2 * tf), nil
}

// equity values the account for this cycle. Live mode reads exchange
// balances; paper mode uses the synthetic quote balance with no position
// value and no exchange call.
func (b *Bot) equity(ctx context.Context, lastClose float64) (float64, error) {
	if !b.live {
		return risk.Equity(b.cfg.PaperBalance, 0, lastClose), nil
	}

	balances, err := b.bal.Balances(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch balances: %w", err)
	}
	quote := balances[b.cfg.QuoteCurrency()]
	base := balances[b.cfg.BaseCurrency()]
	return risk.Equity(quote.Free, base.Total, lastClose), nil
}
