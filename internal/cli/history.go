package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/disco/internal/observability"
)

var (
	historyType  string
	historySince string
	historyLevel string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded engine events",
	Long: `Print events from the JSONL event log selected with --event-log or
DISCO_EVENT_LOG, oldest first.

Examples:
  disco history --event-log ~/.local/state/disco/events.jsonl
  disco history --type publish.failed --since 2h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if settings.EventLogPath == "" {
			return fmt.Errorf("no event log configured, pass --event-log or set DISCO_EVENT_LOG")
		}

		filter := observability.EventFilter{
			Type:  historyType,
			Level: strings.ToUpper(historyLevel),
		}
		if historySince != "" {
			since, err := observability.ParseSince(historySince, time.Now().UTC())
			if err != nil {
				return err
			}
			filter.Since = &since
		}

		events, err := observability.ReadEvents(settings.EventLogPath, filter)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No events found.")
			return nil
		}

		for _, e := range events {
			fmt.Fprintln(cmd.OutOrStdout(), formatEvent(e))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyType, "type", "", "Only show events of this type (e.g. publish.failed)")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Only show events newer than this (e.g. 30m, 2h, 7d)")
	historyCmd.Flags().StringVar(&historyLevel, "level", "", "Only show events of this level (INFO or WARN)")
	rootCmd.AddCommand(historyCmd)
}

// formatEvent renders e as one line with its data as sorted key=value pairs.
func formatEvent(e observability.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-4s %-19s %s",
		e.Time.Local().Format("2006-01-02 15:04:05"), e.Level, e.Type, e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	return b.String()
}
