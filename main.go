package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"smc-trader/internal/cli"
)

func main() {
	// Optional .env for local overrides; absence is fine.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
