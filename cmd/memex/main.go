// Package main provides the entry point for the memex CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/Aman-CERP/memex/cmd/memex/cmd"
)

func main() {
	// MEMEX_* settings may live in a .env next to the workspace.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
