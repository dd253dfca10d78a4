package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brandon/mail-admin/internal/email"
	"github.com/brandon/mail-admin/internal/render"
)

var (
	threadsLabel    string
	threadsPage     int
	threadsQuery    string
	threadsMessages bool

	searchAccount string
	searchLabel   string
	searchSender  string
	searchLimit   int
)

var threadsCmd = &cobra.Command{
	Use:   "threads <email>",
	Short: "List a page of an account's INBOX or SENT threads",
	Long: `List one page of an account's threads from the backend. Every listed page
is also kept in the local cache so it can be searched offline with
"mailadmin search".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		page, err := a.manager.ListThreads(cmd.Context(), args[0], email.ThreadRequest{
			Label: threadsLabel,
			Page:  threadsPage,
			Query: threadsQuery,
		})
		if err != nil {
			return err
		}

		return printResult(cmd.OutOrStdout(), page, func(w io.Writer) {
			if len(page.Threads) == 0 {
				fmt.Fprintln(w, "No threads found.")
				return
			}
			fmt.Fprintln(w, "DATE\tFROM\tSUBJECT\tMESSAGES")
			for _, th := range page.Threads {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", shortTime(th.Date), orDash(th.From), orDash(th.Subject), th.MessageCount)
				if threadsMessages {
					for _, msg := range th.Messages {
						body := render.MessageBody(a.resolver, msg.Body, msg.Attachments)
						fmt.Fprintf(w, "\n%s  %s\n%s\n\n", msg.From, shortTime(msg.Date), body.Render(80))
					}
				}
			}
			p := page.Pagination
			fmt.Fprintf(w, "\nPage %d of %d (%d threads)\n", p.Page, max(p.Pages, 1), p.Total)
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search cached threads offline",
	Long: `Full-text search over the subject, sender and snippet of threads seen in
earlier listings. The backend is not contacted.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		has, err := a.manager.HasCachedThreads(searchAccount)
		if err != nil {
			return err
		}
		if !has {
			fmt.Fprintln(cmd.ErrOrStderr(), "No cached threads yet; run \"mailadmin threads <email>\" first.")
		}

		results, err := a.manager.SearchCachedThreads(email.CachedSearch{
			Account: searchAccount,
			Label:   searchLabel,
			Query:   strings.Join(args, " "),
			Sender:  searchSender,
			Limit:   searchLimit,
		})
		if err != nil {
			return err
		}

		return printResult(cmd.OutOrStdout(), results, func(w io.Writer) {
			if len(results) == 0 {
				fmt.Fprintln(w, "No matching threads.")
				return
			}
			fmt.Fprintln(w, "DATE\tACCOUNT\tLABEL\tFROM\tSUBJECT")
			for _, th := range results {
				date := "-"
				if !th.Date.IsZero() {
					date = th.Date.Local().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", date, th.AccountEmail, th.Label, orDash(th.Sender), orDash(th.Subject))
			}
		})
	},
}

func init() {
	threadsCmd.Flags().StringVarP(&threadsLabel, "label", "l", "INBOX", "Label tab: INBOX or SENT")
	threadsCmd.Flags().IntVarP(&threadsPage, "page", "p", 1, "Page number")
	threadsCmd.Flags().StringVarP(&threadsQuery, "query", "q", "", "Search text passed to the backend")
	threadsCmd.Flags().BoolVar(&threadsMessages, "messages", false, "Print message bodies and attachment links")

	searchCmd.Flags().StringVar(&searchAccount, "account", "", "Only threads of this account email")
	searchCmd.Flags().StringVarP(&searchLabel, "label", "l", "", "Only threads under INBOX or SENT")
	searchCmd.Flags().StringVar(&searchSender, "sender", "", "Sender substring")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum results (default: SEARCH_RESULT_LIMIT)")

	rootCmd.AddCommand(threadsCmd, searchCmd)
}
