package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Show how each field of the config script resolves",
	Long: `Load the config script once and print, as YAML, how every presence
field resolves: its strategy, its value for static fields, its poll interval,
or why it could not be used. Nothing is published and no watcher is started.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		report, err := Engine.Check(cmd.Context(), settings)
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
