// Command leadsync loads prospect exports and syncs them into Linear.
package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; variables already set in the environment win
	_ = godotenv.Load()

	Execute()
}
