package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/brandon/mail-admin/internal/render"
)

var chatsCmd = &cobra.Command{
	Use:   "chats <email>",
	Short: "List an account's Google Chat spaces",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		chats, err := a.manager.ListChats(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return printResult(cmd.OutOrStdout(), chats, func(w io.Writer) {
			if len(chats) == 0 {
				fmt.Fprintln(w, "No chats found.")
				return
			}
			fmt.Fprintln(w, "NAME\tTYPE\tMESSAGES\tLAST MESSAGE\tID")
			for _, c := range chats {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", orDash(c.DisplayName), orDash(c.SpaceType), c.MessageCount, shortTime(c.LastMessageTime), c.ID)
			}
		})
	},
}

var messagesCmd = &cobra.Command{
	Use:   "messages <email> <chat-id>",
	Short: "Print the messages of a chat space",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		messages, err := a.manager.ListChatMessages(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		out := make([]chatMessageView, len(messages))
		for i, msg := range messages {
			out[i] = chatMessageView{
				ID:     msg.ID,
				Sender: msg.Sender.DisplayName,
				Time:   shortTime(msg.CreateTime),
				Body:   render.MessageBody(a.resolver, msg.Text, msg.Attachments),
			}
		}

		return printResult(cmd.OutOrStdout(), out, func(w io.Writer) {
			if len(out) == 0 {
				fmt.Fprintln(w, "No messages.")
				return
			}
			for _, m := range out {
				fmt.Fprintf(w, "%s  %s\n%s\n\n", orDash(m.Sender), m.Time, m.Body.Render(80))
			}
		})
	},
}

type chatMessageView struct {
	ID     string      `json:"id"`
	Sender string      `json:"sender"`
	Time   string      `json:"time"`
	Body   render.Body `json:"body"`
}

func init() {
	rootCmd.AddCommand(chatsCmd, messagesCmd)
}
