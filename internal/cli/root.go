// Package cli wires the mailadmin command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var (
	configFile   string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "mailadmin",
	Short: "Administer synchronized email accounts",
	Long: `mailadmin manages the email accounts synchronized by the mail backend.

It provisions accounts for allowed domains, browses their INBOX and SENT
threads and Google Chat spaces, searches threads offline, and resolves
attachment media links. The same operations are available interactively
(mailadmin browse) and to assistant clients over MCP (mailadmin serve).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mailadmin %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./mailadmin.yaml or <user config dir>/mailadmin/mailadmin.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json or yaml")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
