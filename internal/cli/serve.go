package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brandon/mail-admin/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the account tools to an assistant over MCP stdio",
	Long: `Run an MCP server on stdin/stdout exposing account, thread, chat and
attachment tools. Logs go to stderr so they never mix with the protocol.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{logOutput: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		defer a.close()

		a.logger.Info("Starting mail admin MCP server")

		server := mcp.NewServer(a.config, a.manager, a.resolver, a.logger)
		server.SetVersion(appVersion)
		server.SetIO(cmd.InOrStdin(), cmd.OutOrStdout())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errChan := make(chan error, 1)
		go func() {
			errChan <- server.Run(ctx)
		}()

		select {
		case <-ctx.Done():
			a.logger.Info("Received shutdown signal")
			return nil
		case err := <-errChan:
			if err != nil {
				a.logger.WithError(err).Error("Server error")
				return err
			}
		}

		a.logger.Info("Shutting down mail admin MCP server")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
