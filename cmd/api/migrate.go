package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/yigit/portfoliohub/internal/bootstrap"
	"github.com/yigit/portfoliohub/internal/config"
	"github.com/yigit/portfoliohub/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return errors.New("migrate requires the postgres driver")
	}

	database, err := db.NewPostgresDB(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	return bootstrap.RunMigrations(cmd.Context(), cfg, database, lgr)
}
