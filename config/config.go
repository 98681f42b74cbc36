// Package config loads the bot's run configuration from a YAML (or JSON)
// file and exchange credentials from the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/regimebot/market"
)

// Config represents one bot run: a single pair on a single timeframe.
type Config struct {
	Pair      string `json:"pair" yaml:"pair"`           // e.g. "BTC/USD"
	Timeframe string `json:"timeframe" yaml:"timeframe"` // e.g. "15m"
	DBPath    string `json:"db_path" yaml:"db_path"`

	RiskPct       float64 `json:"risk_pct" yaml:"risk_pct"`
	DrawdownLimit float64 `json:"drawdown_limit" yaml:"drawdown_limit"`
	PaperBalance  float64 `json:"paper_balance" yaml:"paper_balance"`

	// Lookback is how many bars each cycle fetches and keeps on hand for
	// classification.
	Lookback int `json:"lookback" yaml:"lookback"`

	// ResumePeak recovers peak equity from the tick log on restart instead
	// of starting the drawdown window fresh.
	ResumePeak bool `json:"resume_peak" yaml:"resume_peak"`

	MetricsAddr string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
	LogLevel    string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// Default returns a paper-safe configuration.
func Default() *Config {
	return &Config{
		Pair:          "BTC/USD",
		Timeframe:     "15m",
		DBPath:        "./regimebot.db",
		RiskPct:       0.01,
		DrawdownLimit: 0.10,
		PaperBalance:  10000,
		Lookback:      200,
		LogLevel:      "info",
	}
}

// LoadFromFile loads configuration from a YAML or JSON file, layered over
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	base, quote, err := splitPair(c.Pair)
	if err != nil {
		return err
	}
	if base == "" || quote == "" {
		return fmt.Errorf("pair must look like BASE/QUOTE, got %q", c.Pair)
	}
	if _, err := market.ParseTimeframe(c.Timeframe); err != nil {
		return err
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.RiskPct <= 0 || c.RiskPct > 1 {
		return fmt.Errorf("risk_pct must be between 0 and 1")
	}
	if c.DrawdownLimit <= 0 || c.DrawdownLimit >= 1 {
		return fmt.Errorf("drawdown_limit must be between 0 and 1")
	}
	if c.PaperBalance <= 0 {
		return fmt.Errorf("paper_balance must be positive")
	}
	if c.Lookback < 21 {
		return fmt.Errorf("lookback must be at least 21 bars, got %d", c.Lookback)
	}
	return nil
}

// BaseCurrency returns the pair's base asset, e.g. "BTC" for BTC/USD.
func (c *Config) BaseCurrency() string {
	base, _, _ := splitPair(c.Pair)
	return base
}

// QuoteCurrency returns the pair's quote asset, e.g. "USD" for BTC/USD.
func (c *Config) QuoteCurrency() string {
	_, quote, _ := splitPair(c.Pair)
	return quote
}

func splitPair(pair string) (base, quote string, err error) {
	parts := strings.Split(pair, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("pair must look like BASE/QUOTE, got %q", pair)
	}
	return parts[0], parts[1], nil
}
