// Package cmd is the catering command line: the API server plus maintenance commands.
package cmd

import (
	"fmt"
	"os"

	"catering/config"
	"catering/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "catering",
	Short: "Catering menu API",
	Long: `Catering menu API: menus, categories, menu items and tags for caterers,
with read-only share links for guests.

Configuration comes from the embedded defaults, an optional YAML file
and CATERING_* environment variables, in that order.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (optional)")
}

// Execute runs the command tree and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads .env, the configuration and the global logger
func bootstrap() (*config.Config, *zap.Logger, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.Init(cfg.Server.Mode, cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}
