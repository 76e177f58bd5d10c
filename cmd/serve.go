package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"teamtime/internal/graph"
	"teamtime/internal/mcpserver"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sign in and serve MCP tools over stdio",
	Long: `Sign in to Microsoft 365 and serve the teamtime tool set over the MCP
stdio transport.

Authentication completes before the server accepts its first request: a
cached token is refreshed silently when possible, otherwise a browser
opens for interactive sign-in. Accounts outside the required tenant or
user domain are rejected and signed out.

Examples:
  teamtime serve                       # Serve with the default token cache
  teamtime serve --cache-dir /tmp/tt   # Serve with an alternate cache`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	setupLogging()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager, err := newAuthManager()
	if err != nil {
		return err
	}

	session, err := authenticateAndAdmit(ctx, manager)
	if err != nil {
		return err
	}
	slog.Info("serving MCP over stdio",
		"user", session.Username,
		"tenant", session.TenantID,
	)

	client := graph.NewClient(manager)
	server := mcpserver.NewServer(client, GetVersion())

	return server.Start(ctx)
}
