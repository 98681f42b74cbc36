package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Default().Validate())
}

func TestLoadFromFileYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.yaml", `
pair: ETH/USD
timeframe: 1h
risk_pct: 0.02
lookback: 100
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ETH/USD", cfg.Pair)
	assert.Equal(t, "1h", cfg.Timeframe)
	assert.InDelta(t, 0.02, cfg.RiskPct, 1e-9)
	assert.Equal(t, 100, cfg.Lookback)

	// Untouched fields keep their defaults.
	assert.InDelta(t, 0.10, cfg.DrawdownLimit, 1e-9)
	assert.Equal(t, "./regimebot.db", cfg.DBPath)
}

func TestLoadFromFileJSON(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.json", `{"pair": "BTC/EUR", "paper_balance": 5000}`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "BTC/EUR", cfg.Pair)
	assert.InDelta(t, 5000.0, cfg.PaperBalance, 1e-9)
}

func TestLoadFromFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFileInvalidValues(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.yaml", "risk_pct: 2.0\n")
	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad pair", func(c *Config) { c.Pair = "BTCUSD" }},
		{"empty base", func(c *Config) { c.Pair = "/USD" }},
		{"bad timeframe", func(c *Config) { c.Timeframe = "15x" }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"zero risk", func(c *Config) { c.RiskPct = 0 }},
		{"risk over one", func(c *Config) { c.RiskPct = 1.5 }},
		{"zero drawdown", func(c *Config) { c.DrawdownLimit = 0 }},
		{"drawdown at one", func(c *Config) { c.DrawdownLimit = 1 }},
		{"zero paper balance", func(c *Config) { c.PaperBalance = 0 }},
		{"short lookback", func(c *Config) { c.Lookback = 20 }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestCurrencyAccessors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "BTC", cfg.BaseCurrency())
	assert.Equal(t, "USD", cfg.QuoteCurrency())
}

func TestCredentialsPaperWithoutEnv(t *testing.T) {
	t.Setenv("COINBASE_API_KEY", "")
	t.Setenv("COINBASE_API_SECRET", "")
	t.Setenv("COINBASE_API_PASSPHRASE", "")

	creds, err := Credentials(false)
	require.NoError(t, err)
	assert.Empty(t, creds.Key)
}

func TestCredentialsLiveRequiresAllThree(t *testing.T) {
	t.Setenv("COINBASE_API_KEY", "k")
	t.Setenv("COINBASE_API_SECRET", "s")
	t.Setenv("COINBASE_API_PASSPHRASE", "")

	_, err := Credentials(true)
	assert.Error(t, err)

	t.Setenv("COINBASE_API_PASSPHRASE", "p")
	creds, err := Credentials(true)
	require.NoError(t, err)
	assert.Equal(t, "k", creds.Key)
	assert.Equal(t, "s", creds.Secret)
	assert.Equal(t, "p", creds.Passphrase)
}
