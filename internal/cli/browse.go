package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/brandon/mail-admin/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive console",
	Long: `Open the interactive console: search accounts as you type, add, delete or
resync them, and browse their INBOX and SENT threads with attachment
previews. Logs go to LOG_FILE when it is set and are discarded otherwise.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		toasts := tui.NewToasts()
		a, err := newApp(appOptions{
			logOutput:  io.Discard,
			useLogFile: true,
			notifier:   toasts,
		})
		if err != nil {
			return err
		}
		defer a.close()

		m := tui.New(cmd.Context(), a.manager, a.resolver, toasts, tui.Options{
			AccountSearchDelay: a.config.AccountSearchDebounce,
			ThreadSearchDelay:  a.config.ThreadSearchDebounce,
		})
		return tui.Run(m)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
