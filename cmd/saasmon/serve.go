package main

import (
	"fmt"
	"os"

	"github.com/artpar/saasmon/bootstrap"
	"github.com/artpar/saasmon/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var hotReload bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the account and usage monitoring server",
	Long: `Start the saasmon HTTP server.

The server will:
  - Load configuration from saasmon.yaml (or --config)
  - Or load configuration from SAASMON_* environment variables
  - Open the account store and run migrations
  - Serve the account, usage log, and analytics endpoints

Environment variables (for Docker deployments):
  SAASMON_SERVER_PORT      - Server port (default: 5001)
  SAASMON_DATABASE_DRIVER  - Store driver: sqlite or memory
  SAASMON_DATABASE_DSN     - Database path (default: saasmon.db)
  SAASMON_LOG_LEVEL        - Log level: debug, info, warn, error
  SAASMON_METRICS_ENABLED  - Enable the /metrics endpoint

Examples:
  saasmon serve
  saasmon serve --config /etc/saasmon/config.yaml
  SAASMON_DATABASE_DSN=/var/lib/saasmon/accounts.db saasmon serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	var cfg *config.Config
	var holder *config.Holder

	if hasConfigFile && hotReload {
		var err error
		holder, err = config.NewHolder(cfgFile, zerolog.New(os.Stdout).With().Timestamp().Logger())
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		cfg = holder.Get()
	} else {
		var err error
		cfg, err = config.LoadWithFallback(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		if !hasConfigFile {
			fmt.Println("Running with environment variables (no config file)")
		}
	}

	app, err := bootstrap.New(cfg)
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	if holder != nil {
		// Log level is the one setting that applies without a restart.
		holder.OnChange(func(c *config.Config) {
			bootstrap.SetLogLevel(c.Logging.Level)
		})
		if err := holder.WatchFile(); err != nil {
			app.Logger.Warn().Err(err).Msg("config watch unavailable")
		}
		holder.WatchSignals()
		defer holder.Stop()
	}

	// Run (blocks until shutdown)
	return app.Run()
}
