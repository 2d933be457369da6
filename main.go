package main

import (
	"github.com/joho/godotenv"

	"github.com/KaramelBytes/eda-cli/cmd"
)

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()
	cmd.Execute()
}
