package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mail-admin/internal/config"
	"github.com/brandon/mail-admin/internal/email"
)

// SearchCachedThreadsTool searches threads kept from earlier listings
type SearchCachedThreadsTool struct {
	config  *config.Config
	manager *email.Manager
	logger  *logrus.Logger
}

// NewSearchCachedThreadsTool creates a new cached thread search tool
func NewSearchCachedThreadsTool(cfg *config.Config, manager *email.Manager, logger *logrus.Logger) *SearchCachedThreadsTool {
	return &SearchCachedThreadsTool{
		config:  cfg,
		manager: manager,
		logger:  logger,
	}
}

// Name returns the tool name
func (t *SearchCachedThreadsTool) Name() string {
	return "search_cached_threads"
}

// Description returns the tool description
func (t *SearchCachedThreadsTool) Description() string {
	return "Full-text search over threads seen in earlier list_threads calls, without contacting the backend"
}

// InputSchema returns the JSON schema for tool inputs
func (t *SearchCachedThreadsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Words to match in subject, sender or snippet",
			},
			"account": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Filter by account email",
			},
			"label": map[string]interface{}{
				"type":        "string",
				"description": "Optional: INBOX or SENT",
			},
			"sender": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Filter by sender (substring match)",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Optional: Result limit (default: SEARCH_RESULT_LIMIT, max: 1000)",
				"minimum":     1,
				"maximum":     1000,
			},
		},
	}
}

// Execute executes the tool
func (t *SearchCachedThreadsTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	limit, err := intParam(params, "limit")
	if err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = t.config.SearchResultLimit
	}

	account := stringParam(params, "account")
	has, err := t.manager.HasCachedThreads(account)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, fmt.Errorf("no cached threads yet; run list_threads first")
	}

	results, err := t.manager.SearchCachedThreads(email.CachedSearch{
		Account: account,
		Label:   stringParam(params, "label"),
		Query:   stringParam(params, "query"),
		Sender:  stringParam(params, "sender"),
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	// Convert to JSON-serializable format
	list := make([]map[string]interface{}, len(results))
	for i, th := range results {
		date := ""
		if !th.Date.IsZero() {
			date = th.Date.Format(time.RFC3339)
		}
		list[i] = map[string]interface{}{
			"id":        th.ID,
			"account":   th.AccountEmail,
			"label":     th.Label,
			"thread_id": th.ThreadID,
			"subject":   th.Subject,
			"sender":    th.Sender,
			"date":      date,
			"snippet":   th.Snippet,
		}
	}

	return list, nil
}
