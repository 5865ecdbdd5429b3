/*
PURPOSE:
  Defines the root Cobra command for the uxperf CLI.
  Handles global flags and command initialization.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Log level and format must be set before any subcommand logs.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/uxperf/main.go
  - Calls: Child commands (run, list-workloads, init, functions)
  - Modifies: output.Logger (via output.Configure).

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root is usually empty or helps.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to init().

RELATED FILES:
  - cmd/uxperf/main.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/daryltucker/uxperf/internal/output"
)

var (
	// cfgFile stores the path to the agenda file (if specified via flag)
	cfgFile   string
	logLevel  string
	logFormat string

	rootCmd = &cobra.Command{
		Use:   "uxperf",
		Short: "UX performance workloads for Android applications",
		Long: `Drives Android applications (Office, Google Slides, Reader, Skype, YouTube)
through UI automation over adb and records the timings they report.
Use 'run --help' for agenda options.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return output.Configure(os.Stdout, logLevel, logFormat)
		},
	}
)

// Execute executes the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "agenda file (default is ./uxperf.yaml or ./agenda.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
}
