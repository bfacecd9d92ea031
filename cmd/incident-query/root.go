package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/goatkit/incidentquery/internal/config"
	"github.com/goatkit/incidentquery/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "incident-query",
	Short:         "Read-only query API over incidents",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(".env"); err == nil {
			if err := godotenv.Load(); err != nil {
				return fmt.Errorf("failed to load .env: %w", err)
			}
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (yaml, toml or json)")
	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
}

// loadConfig loads the configuration and installs the configured logger as
// the slog default.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
