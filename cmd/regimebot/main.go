package main

import (
	"os"

	"github.com/rustyeddy/regimebot/cmd/regimebot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
