package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/brandon/mail-admin/internal/allowlist"
)

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "Show the domains accounts may be created in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		domains, err := a.validator.Domains(cmd.Context())
		if err != nil {
			return err
		}

		return printResult(cmd.OutOrStdout(), domains, func(w io.Writer) {
			if len(domains) == 0 {
				fmt.Fprintf(w, "No domains are allowed for %s accounts.\n", a.config.AllowedDomainType)
				return
			}
			for _, d := range domains {
				fmt.Fprintln(w, d)
			}
		})
	},
}

var domainsCheckCmd = &cobra.Command{
	Use:   "check <email>",
	Short: "Check whether an email may be added",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		err = a.validator.Check(cmd.Context(), args[0])
		switch {
		case err == nil:
			fmt.Fprintf(cmd.OutOrStdout(), "%s is allowed\n", args[0])
			return nil
		case errors.Is(err, allowlist.ErrDomainNotAllowed):
			return err
		default:
			return fmt.Errorf("checking %s: %w", args[0], err)
		}
	},
}

func init() {
	domainsCmd.AddCommand(domainsCheckCmd)
	rootCmd.AddCommand(domainsCmd)
}
