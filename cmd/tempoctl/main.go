package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const defaultAPIURL = "http://localhost:8081"

func main() {
	_ = godotenv.Load()

	baseURL := os.Getenv("TEMPO_API_URL")
	if baseURL == "" {
		baseURL = defaultAPIURL
	}

	api := newAPIClient(baseURL)
	if err := setupCommands(api).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
