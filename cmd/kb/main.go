package main

import (
	"github.com/joho/godotenv"

	"kb/internal/cli"
)

func main() {
	// Makes EMBEDDING_* / OPENAI_API_KEY available from a local .env.
	_ = godotenv.Load()
	cli.Execute()
}
