package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/regimebot/bot"
	"github.com/rustyeddy/regimebot/config"
	"github.com/rustyeddy/regimebot/exchange"
	"github.com/rustyeddy/regimebot/journal"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading loop",
	Long: `Run the trading loop against Coinbase market data.

Paper mode (the default) uses a synthetic balance and never submits orders.
Live mode requires COINBASE_API_KEY, COINBASE_API_SECRET and
COINBASE_API_PASSPHRASE in the environment or a .env file.

Example:
  regimebot run -f config.yaml --paper --risk 0.005`,
	RunE: runRun,
}

var (
	runConfigPath string
	runLive       bool
	runPaper      bool
	runRisk       float64
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().BoolVar(&runLive, "live", false, "enable live trading")
	runCmd.Flags().BoolVar(&runPaper, "paper", false, "force paper trading (overrides --live)")
	runCmd.Flags().Float64Var(&runRisk, "risk", 0, "risk fraction per trade (overrides config)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runRisk > 0 {
		cfg.RiskPct = runRisk
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}

	live := runLive && !runPaper

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	creds, err := config.Credentials(live)
	if err != nil {
		return err
	}

	j, err := journal.NewSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	cb := exchange.NewCoinbase(creds)

	// Market data is always real; balances and execution switch with the
	// mode.
	var bal exchange.BalanceSource = cb
	var exec exchange.Executor = cb
	if !live {
		paper := exchange.NewPaper(cfg.QuoteCurrency(), cfg.PaperBalance)
		bal, exec = paper, paper
	}

	b, err := bot.New(cfg, j, cb, bal, exec, live, logger)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		go func() {
			logger.Info("metrics listening", slog.String("addr", cfg.MetricsAddr))
			if err := http.ListenAndServe(cfg.MetricsAddr, bot.MetricsHandler()); err != nil {
				logger.Error("metrics listener failed", slog.String("error", err.Error()))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shut down")
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
