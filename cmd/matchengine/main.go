// Package main provides the entry point for the CV match engine CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "matchengine",
	Short: "Job-description match and component-selection engine",
	Long:  "matchengine scores a user's CV component library against job descriptions, pairs individual requirements with library components, and assembles focus-area CV variants.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
