package render

import (
	"strings"

	"github.com/brandon/mail-admin/internal/media"
	"github.com/brandon/mail-admin/pkg/types"
)

// NoContentText is shown for messages with neither text nor attachments
const NoContentText = "(no content)"

// Body is a message prepared for display
type Body struct {
	Text        string `json:"text,omitempty"`
	NoContent   bool   `json:"no_content"`
	Attachments []Plan `json:"attachments,omitempty"`
}

// ShowNoContent reports whether the no-content placeholder applies. The
// attachments alone count as content.
func ShowNoContent(text string, attachments int) bool {
	return strings.TrimSpace(text) == "" && attachments == 0
}

// MessageBody plans a message's text and attachments
func MessageBody(r *media.Resolver, text string, atts []types.Attachment) Body {
	b := Body{
		Text:      strings.TrimSpace(text),
		NoContent: ShowNoContent(text, len(atts)),
	}
	for _, att := range atts {
		b.Attachments = append(b.Attachments, PlanAttachment(r, att))
	}
	return b
}
