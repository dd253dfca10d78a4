package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mail-admin/internal/media"
	"github.com/brandon/mail-admin/internal/render"
	"github.com/brandon/mail-admin/pkg/types"
)

// ResolveAttachmentTool turns a raw attachment record into media links
type ResolveAttachmentTool struct {
	resolver *media.Resolver
	logger   *logrus.Logger
}

// NewResolveAttachmentTool creates a new resolve attachment tool
func NewResolveAttachmentTool(resolver *media.Resolver, logger *logrus.Logger) *ResolveAttachmentTool {
	return &ResolveAttachmentTool{resolver: resolver, logger: logger}
}

// Name returns the tool name
func (t *ResolveAttachmentTool) Name() string {
	return "resolve_attachment"
}

// Description returns the tool description
func (t *ResolveAttachmentTool) Description() string {
	return "Resolve an attachment record (object or bare server path) to its media URL, kind, thumbnail and download link"
}

// InputSchema returns the JSON schema for tool inputs
func (t *ResolveAttachmentTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"attachment": map[string]interface{}{
				"description": "Attachment record as returned by the backend, or a server-local path string",
			},
		},
		"required": []string{"attachment"},
	}
}

// Execute executes the tool
func (t *ResolveAttachmentTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	raw, ok := params["attachment"]
	if !ok || raw == nil {
		return nil, fmt.Errorf("attachment is required")
	}

	// Round-trip through JSON so the lenient decoder handles loose records
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid attachment: %w", err)
	}
	var att types.Attachment
	if err := json.Unmarshal(data, &att); err != nil {
		return nil, fmt.Errorf("invalid attachment: %w", err)
	}

	res := t.resolver.Resolve(att)
	thumb, _ := t.resolver.ResolveThumbnail(att)

	return map[string]interface{}{
		"url":       res.URL,
		"rule":      res.Rule,
		"kind":      res.Kind,
		"sub_kind":  media.ResolveSubKind(att),
		"thumbnail": thumb,
		"plan":      render.PlanAttachment(t.resolver, att),
	}, nil
}
