// Package main is the entry point for the portfolio review API server.
package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/yigit/portfoliohub/internal/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "portfoliohub",
	Short: "Student portfolio review API",
	Long:  "Collects student portfolio sections, runs the faculty and admin review workflow and renders approved portfolios to PDF.",
	// Running the binary without a subcommand starts the server
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", filepath.Join("configs", "config.yaml"), "Path to the YAML config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
