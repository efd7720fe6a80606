package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yigit/portfoliohub/internal/pkg/logger"
	"github.com/yigit/portfoliohub/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	srv, err := server.NewServer(cmd.Context(), configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	if err := srv.Run(cmd.Context()); err != nil {
		return err
	}

	logger.Info().Msg("Application finished gracefully.")
	return nil
}
