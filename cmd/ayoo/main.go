// Command ayoo runs the Ayoo delivery API and its maintenance tasks.
//
//	ayoo serve              # HTTP + gRPC health + realtime hub
//	ayoo migrate            # apply pending migrations
//	ayoo seed               # load demo data
//	ayoo queue:work -w 8    # drain the job queue
//	ayoo events:tail        # follow the order event log
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ayoo/config"
	"github.com/shashiranjanraj/ayoo/pkg/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var flushLogs = func() {}

var rootCmd = &cobra.Command{
	Use:           "ayoo",
	Short:         "Ayoo food delivery API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		flush, err := logger.Setup()
		if err != nil {
			logger.Warn("log shipping disabled", "error", err)
		}
		flushLogs = flush
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushLogs()
	},
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	// Workers
	rootCmd.AddCommand(queueWorkCmd)
	rootCmd.AddCommand(queueFailedCmd)
	rootCmd.AddCommand(queueRetryCmd)
	rootCmd.AddCommand(scheduleRunCmd)
	rootCmd.AddCommand(eventsTailCmd)
}
