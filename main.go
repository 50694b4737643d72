package main

import (
	"github.com/joho/godotenv"

	"github.com/nextlevelbuilder/autoreact/cmd"
)

func main() {
	// Secrets (bot token, owner id) usually live in .env; a missing
	// file just means the environment is already set.
	_ = godotenv.Load()

	cmd.Execute()
}
