package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/omnisearch/internal/mcp"
)

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Starts the MCP server on stdin/stdout. Point an MCP client (Claude
Desktop, Cursor) at this command to get the unified search tool surface.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(slog.Default(), onDemand)
			if err != nil {
				return err
			}
			defer a.Close()

			srv, err := mcp.NewServer(a.orch, a.logger)
			if err != nil {
				return err
			}

			return srv.Serve(ctx)
		},
	}
}
