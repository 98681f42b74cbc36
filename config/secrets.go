package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/rustyeddy/regimebot/exchange"
)

// Credentials reads the Coinbase API key triple from the environment,
// loading a .env file first if one is present. Paper runs work without any
// of these; live mode requires all three.
func Credentials(live bool) (exchange.Credentials, error) {
	// Best effort: absence of a .env file is fine, the process env may
	// already carry the keys.
	_ = godotenv.Load()

	creds := exchange.Credentials{
		Key:        os.Getenv("COINBASE_API_KEY"),
		Secret:     os.Getenv("COINBASE_API_SECRET"),
		Passphrase: os.Getenv("COINBASE_API_PASSPHRASE"),
	}

	if live && (creds.Key == "" || creds.Secret == "" || creds.Passphrase == "") {
		return exchange.Credentials{}, fmt.Errorf(
			"live mode requires COINBASE_API_KEY, COINBASE_API_SECRET and COINBASE_API_PASSPHRASE")
	}
	return creds, nil
}
