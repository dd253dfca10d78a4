package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/brandon/mail-admin/pkg/types"
)

var (
	updateEmail  string
	updateName   string
	updateActive bool
)

var accountsCmd = &cobra.Command{
	Use:     "accounts",
	Aliases: []string{"account"},
	Short:   "Manage synchronized email accounts",
}

var accountsListCmd = &cobra.Command{
	Use:   "list [search]",
	Short: "List accounts, optionally filtered by an email substring",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		search := ""
		if len(args) == 1 {
			search = args[0]
		}
		accounts, err := a.manager.SearchAccounts(cmd.Context(), search)
		if err != nil {
			return err
		}

		return printResult(cmd.OutOrStdout(), accounts, func(w io.Writer) {
			if len(accounts) == 0 {
				fmt.Fprintln(w, "No accounts found.")
				return
			}
			fmt.Fprintln(w, "EMAIL\tNAME\tACTIVE\tLAST SYNC\tID")
			for _, acc := range accounts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", acc.Email, orDash(acc.Name), activeLabel(acc.IsActive), shortTime(acc.LastSync), acc.ID)
			}
		})
	},
}

var accountsAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Add an account for an email in an allowed domain",
	Long: `Add an account for an email address. The address is checked against the
backend's allowed domains first; a rejected address never reaches the
create endpoint.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.manager.AddAccount(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return printResult(cmd.OutOrStdout(), result, func(w io.Writer) {
			fmt.Fprintln(w, orDash(result.Message))
			if result.Account != nil {
				fmt.Fprintf(w, "ID:\t%s\nEmail:\t%s\n", result.Account.ID, result.Account.Email)
			}
		})
	},
}

var accountsUpdateCmd = &cobra.Command{
	Use:   "update <id|email>",
	Short: "Change an account's email, name or active flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		update := types.AccountUpdate{
			Email: updateEmail,
			Name:  updateName,
		}
		if cmd.Flags().Changed("active") {
			active := updateActive
			update.IsActive = &active
		}
		if update.Email == "" && update.Name == "" && update.IsActive == nil {
			return fmt.Errorf("nothing to update: pass --email, --name or --active")
		}

		a, err := newApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		id, err := a.manager.ResolveAccountID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		acc, err := a.manager.UpdateAccount(cmd.Context(), id, update)
		if err != nil {
			return err
		}

		return printResult(cmd.OutOrStdout(), acc, func(w io.Writer) {
			fmt.Fprintln(w, "Account updated.")
			if acc != nil {
				fmt.Fprintf(w, "Email:\t%s\nName:\t%s\nActive:\t%s\n", acc.Email, orDash(acc.Name), activeLabel(acc.IsActive))
			}
		})
	},
}

var accountsDeleteCmd = &cobra.Command{
	Use:     "delete <id|email>",
	Aliases: []string{"rm"},
	Short:   "Delete an account and its cached threads",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.manager.DeleteAccountByRef(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %s\n", args[0])
		return nil
	},
}

var accountsSyncCmd = &cobra.Command{
	Use:   "sync <email>",
	Short: "Ask the backend to resynchronize an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		msg, err := a.manager.SyncAccount(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func activeLabel(active *bool) string {
	if active != nil && !*active {
		return "no"
	}
	return "yes"
}

func init() {
	accountsUpdateCmd.Flags().StringVar(&updateEmail, "email", "", "New email address (must be in an allowed domain)")
	accountsUpdateCmd.Flags().StringVar(&updateName, "name", "", "New display name")
	accountsUpdateCmd.Flags().BoolVar(&updateActive, "active", true, "Enable or disable syncing")

	accountsCmd.AddCommand(accountsListCmd, accountsAddCmd, accountsUpdateCmd, accountsDeleteCmd, accountsSyncCmd)
	rootCmd.AddCommand(accountsCmd)
}
