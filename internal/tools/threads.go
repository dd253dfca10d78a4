package tools

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mail-admin/internal/email"
	"github.com/brandon/mail-admin/internal/media"
	"github.com/brandon/mail-admin/internal/render"
	"github.com/brandon/mail-admin/pkg/types"
)

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// ListThreadsTool lists one page of an account's threads
type ListThreadsTool struct {
	manager  *email.Manager
	resolver *media.Resolver
	logger   *logrus.Logger
}

// NewListThreadsTool creates a new list threads tool
func NewListThreadsTool(manager *email.Manager, resolver *media.Resolver, logger *logrus.Logger) *ListThreadsTool {
	return &ListThreadsTool{manager: manager, resolver: resolver, logger: logger}
}

// Name returns the tool name
func (t *ListThreadsTool) Name() string {
	return "list_threads"
}

// Description returns the tool description
func (t *ListThreadsTool) Description() string {
	return "List a page of an account's INBOX or SENT threads from the backend; results are also kept for offline search"
}

// InputSchema returns the JSON schema for tool inputs
func (t *ListThreadsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"email": map[string]interface{}{
				"type":        "string",
				"description": "Account email",
			},
			"label": map[string]interface{}{
				"type":        "string",
				"description": "Optional: INBOX (default) or SENT",
				"enum":        []string{types.LabelInbox, types.LabelSent},
			},
			"page": map[string]interface{}{
				"type":        "integer",
				"description": "Optional: Page number (default: 1)",
				"minimum":     1,
			},
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Search text passed to the backend",
			},
			"include_messages": map[string]interface{}{
				"type":        "boolean",
				"description": "Optional: Include message bodies and attachment links",
			},
		},
		"required": []string{"email"},
	}
}

// Execute executes the tool
func (t *ListThreadsTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	addr, err := requiredString(params, "email")
	if err != nil {
		return nil, err
	}
	page, err := intParam(params, "page")
	if err != nil {
		return nil, err
	}
	withMessages, _, err := boolParam(params, "include_messages")
	if err != nil {
		return nil, err
	}

	result, err := t.manager.ListThreads(ctx, addr, email.ThreadRequest{
		Label: stringParam(params, "label"),
		Page:  page,
		Query: stringParam(params, "query"),
	})
	if err != nil {
		return nil, err
	}

	threads := make([]map[string]interface{}, len(result.Threads))
	for i, th := range result.Threads {
		entry := map[string]interface{}{
			"id":            th.ID,
			"thread_id":     th.ThreadID,
			"subject":       th.Subject,
			"from":          th.From,
			"snippet":       th.Snippet,
			"date":          formatTime(th.Date),
			"message_count": th.MessageCount,
		}
		if withMessages {
			messages := make([]map[string]interface{}, len(th.Messages))
			for j, msg := range th.Messages {
				messages[j] = map[string]interface{}{
					"id":      msg.ID,
					"from":    msg.From,
					"to":      msg.To,
					"subject": msg.Subject,
					"date":    formatTime(msg.Date),
					"body":    render.MessageBody(t.resolver, msg.Body, msg.Attachments),
				}
			}
			entry["messages"] = messages
		}
		threads[i] = entry
	}

	return map[string]interface{}{
		"threads":    threads,
		"pagination": result.Pagination,
	}, nil
}
