// Package cli implements the disco command line using Cobra.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/disco/internal/core"
	"github.com/valter-silva-au/disco/internal/observability"
	"github.com/valter-silva-au/disco/pkg/models"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// Version returns the version injected via ldflags.
func Version() string {
	return appVersion
}

var rootCmd = &cobra.Command{
	Use:   "disco",
	Short: "Scriptable Discord rich presence",
	Long: `disco publishes a Discord rich presence described by a Lua script.

The script sets globals named after presence fields: Active, State, Details,
Timestamp, Button1, Button2, LargeImage and SmallImage, plus an optional
ApplicationID. Each field can be a plain value, a zero-argument function,
a {interval, function} table that is polled, or a coroutine that yields
new values as they happen. disco keeps the presence up to date until every
field has finished or it is interrupted.

Every flag can also be set with a DISCO_* environment variable, for example
DISCO_RETRY_AFTER=10. A .env file in the working directory is loaded first.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return core.LoadDotEnv(".env")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if settings.PrintConfigPath {
			fmt.Fprintln(cmd.OutOrStdout(), settings.ConfigPath)
			if _, err := os.Stat(settings.ConfigPath); err != nil {
				observability.NewLogger(settings.Quiet, cmd.ErrOrStderr()).
					Warnf("config file %s does not exist", settings.ConfigPath)
			}
			return nil
		}
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return Engine.Run(ctx, settings, RunOptions{})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "disco %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", core.DefaultConfigPath(), "Lua script describing the presence")
	flags.StringP("application-id", "i", "", "Discord application id, overrides ApplicationID in the script")
	flags.IntP("retry-after", "r", 0, "Seconds to wait between connection attempts, 0 to give up after the first")
	flags.CountP("quiet", "q", "Reduce output, once for warnings only, twice for silence")
	flags.BoolP("print-config-path", "p", false, "Print the config path and exit")
	flags.BoolP("dry-run", "d", false, "Log the presence instead of publishing it")
	flags.String("event-log", "", "Append engine events to this JSONL file")
	flags.Int("max-indirection", 8, "How many nested zero-argument functions a field may return")

	rootCmd.AddCommand(versionCmd)
}

// loadSettings merges flags, DISCO_* environment variables and defaults.
func loadSettings(cmd *cobra.Command) (*models.Settings, error) {
	v := core.NewSettingsViper()
	if err := v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}
	return core.LoadSettings(v)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
