package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brandon/mail-admin/internal/media"
	"github.com/brandon/mail-admin/internal/render"
	"github.com/brandon/mail-admin/pkg/types"
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Inspect attachment media links",
}

var mediaCheck bool

var mediaResolveCmd = &cobra.Command{
	Use:   "resolve <attachment-json|path>",
	Short: "Resolve an attachment record to its media URL, kind and download link",
	Long: `Resolve an attachment record as returned by the backend. The argument is
either a JSON object or a bare server-side path. Pass "-" to read the record
from stdin. With --check the media URL is requested and the plan falls back to
"unavailable" when it does not load.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := args[0]
		if raw == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading attachment from stdin: %w", err)
			}
			raw = string(data)
		}

		att, err := parseAttachment(raw)
		if err != nil {
			return err
		}

		a, err := newApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		res := a.resolver.Resolve(att)
		plan := render.PlanAttachment(a.resolver, att)
		if mediaCheck {
			plan = render.Check(cmd.Context(), a.http, plan)
		}
		out := attachmentView{
			URL:      res.URL,
			Rule:     res.Rule,
			Kind:     res.Kind,
			SubKind:  media.ResolveSubKind(att),
			Download: plan.Download,
			Plan:     plan,
		}
		out.Thumbnail, _ = a.resolver.ResolveThumbnail(att)

		return printResult(cmd.OutOrStdout(), out, func(w io.Writer) {
			fmt.Fprintf(w, "Rule:\t%s\n", orDash(out.Rule))
			fmt.Fprintf(w, "Kind:\t%s\n", out.Kind)
			fmt.Fprintf(w, "Display:\t%s\n", out.Plan.Branch)
			if out.SubKind != media.SubKindNone {
				fmt.Fprintf(w, "Sub-kind:\t%s\n", out.SubKind)
			}
			fmt.Fprintf(w, "URL:\t%s\n", orDash(out.URL))
			fmt.Fprintf(w, "Thumbnail:\t%s\n", orDash(out.Thumbnail))
			fmt.Fprintf(w, "Download:\t%s\n", orDash(out.Download))
		})
	},
}

type attachmentView struct {
	URL       string        `json:"url"`
	Rule      string        `json:"rule"`
	Kind      media.Kind    `json:"kind"`
	SubKind   media.SubKind `json:"sub_kind,omitempty"`
	Thumbnail string        `json:"thumbnail,omitempty"`
	Download  string        `json:"download,omitempty"`
	Plan      render.Plan   `json:"plan"`
}

// parseAttachment accepts a JSON record or a bare path
func parseAttachment(raw string) (types.Attachment, error) {
	raw = strings.TrimSpace(raw)
	var att types.Attachment
	if raw == "" {
		return att, fmt.Errorf("attachment is required")
	}
	if !strings.HasPrefix(raw, "{") && !strings.HasPrefix(raw, "\"") {
		att.Path = raw
		return att, nil
	}
	if err := json.Unmarshal([]byte(raw), &att); err != nil {
		return att, fmt.Errorf("invalid attachment: %w", err)
	}
	return att, nil
}

func init() {
	mediaResolveCmd.Flags().BoolVar(&mediaCheck, "check", false, "Request the media URL and report media that fails to load")
	mediaCmd.AddCommand(mediaResolveCmd)
	rootCmd.AddCommand(mediaCmd)
}
