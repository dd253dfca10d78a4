package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brandon/mail-admin/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login [token]",
	Short: "Save the backend auth token",
	Long: `Save the bearer token sent with every backend request. The token is read
from the argument, or from the first line of stdin when no argument is given.
An AUTH_TOKEN setting takes precedence over the saved token.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := ""
		if len(args) == 1 {
			token = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("reading token from stdin: %w", err)
			}
			token = line
		}
		token = strings.TrimSpace(token)

		a, err := newApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.tokens.Save(token); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Token saved.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved backend auth token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		if _, err := a.tokens.Stored(cmd.Context()); errors.Is(err, auth.ErrNoToken) {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return nil
		} else if err != nil {
			return err
		}

		if err := a.tokens.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Token removed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd)
}
