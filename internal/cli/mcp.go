package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/disco/internal/core"
	discomcp "github.com/valter-silva-au/disco/internal/mcp"
	"github.com/valter-silva-au/disco/internal/observability"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the disco MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the presence engine and serve its state over MCP on stdio",
	Long: `Run the presence engine as the root command does and expose its state
as MCP tools on stdio: get_presence, list_fields and get_events.

The engine log goes to standard error so it does not mix with the protocol.
The server keeps running after every field has finished until it is stopped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		ready := make(chan *core.SnapshotClient, 1)
		opts := RunOptions{
			HoldOpen:  true,
			LogOutput: cmd.ErrOrStderr(),
			Wrap: func(client core.PresenceClient) core.PresenceClient {
				snap := core.NewSnapshotClient(client)
				ready <- snap
				return snap
			},
		}

		engineDone := make(chan error, 1)
		go func() {
			engineDone <- Engine.Run(ctx, settings, opts)
		}()

		var snap *core.SnapshotClient
		select {
		case snap = <-ready:
		case err := <-engineDone:
			if err != nil {
				return err
			}
			return fmt.Errorf("engine exited before the presence client was ready")
		}

		var events discomcp.EventReader
		if settings.EventLogPath != "" {
			events = observability.EventFile(settings.EventLogPath)
		}
		srv := discomcp.NewServer(snap, events, appVersion)

		serveErr := srv.Run(ctx)
		interrupted := ctx.Err() != nil
		cancel()
		engineErr := <-engineDone

		if serveErr != nil && !interrupted {
			return fmt.Errorf("running MCP server: %w", serveErr)
		}
		return engineErr
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
