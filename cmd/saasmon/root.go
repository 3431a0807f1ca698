package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "saasmon",
	Short: "SaaS account and usage monitoring service",
	Long: `saasmon tracks SaaS customer accounts and their per-period usage
(API calls, storage consumption) and serves simple operational analytics
over that history: per-account average usage and high-usage anomaly flags.

Quick start:
  saasmon serve     # Start the HTTP service
  saasmon seed      # Populate the store with synthetic accounts`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "saasmon.yaml", "config file path")
}
