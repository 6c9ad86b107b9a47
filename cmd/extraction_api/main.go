// Package main provides the entry point for the extraction API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "extraction_api",
	Short: "Product extraction HTTP API server",
	Long:  "Serves the guided 8-step product extraction pipeline: streaming LLM generation, per-user sessions, and progress tracking over a REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
