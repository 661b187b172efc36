// Package main provides the entry point for the auto-apply service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "autoapply",
	Short: "Résumé-to-job matching and application service",
	Long:  "Autoapply extracts a candidate profile from a résumé, aggregates remote job postings, ranks them by fit and composes and sends job applications by email, via REST API or CLI.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
