package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"campus_exchange/internal/config"
	"campus_exchange/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Campus exchange chat server",
	Long:  `Serves the campus exchange chat API and WebSocket endpoint, and manages its database schema.`,
	// Running the binary without a subcommand starts the server.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) logger.Logger {
	if cfg.IsDevelopment() {
		return logger.NewConsole(cfg.Log.Level)
	}
	return logger.New(cfg.Log.Level)
}
