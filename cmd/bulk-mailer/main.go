// Package main is the entry point for bulk-mailer.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/shineum/bulk-mailer/internal/cmd"
)

func main() {
	// A .env file in the working directory may carry SENDER_EMAIL and
	// SENDER_PASSWORD; its absence is fine.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
