// Package cli implements the sked command line, a thin client over the
// sked server API.
package cli

import (
	"log/slog"
	"os"

	"github.com/me/sked/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking SKED_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("SKED_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the sked CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sked",
		Short: "sked — optimizer-assisted school timetabling",
		Long:  "sked manages master schedules and drives the external timetable optimizer.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "sked server URL (or SKED_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newListCmd(),
		newGenerateCmd(),
		newCompareCmd(),
		newExportCmd(),
		newHealthCmd(),
	)

	return root
}
