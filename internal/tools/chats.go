package tools

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mail-admin/internal/email"
	"github.com/brandon/mail-admin/internal/media"
	"github.com/brandon/mail-admin/internal/render"
)

// ListChatsTool lists an account's chat spaces
type ListChatsTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewListChatsTool creates a new list chats tool
func NewListChatsTool(manager *email.Manager, logger *logrus.Logger) *ListChatsTool {
	return &ListChatsTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *ListChatsTool) Name() string {
	return "list_chats"
}

// Description returns the tool description
func (t *ListChatsTool) Description() string {
	return "List the Google Chat spaces synchronized for an account"
}

// InputSchema returns the JSON schema for tool inputs
func (t *ListChatsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"email": map[string]interface{}{
				"type":        "string",
				"description": "Account email",
			},
		},
		"required": []string{"email"},
	}
}

// Execute executes the tool
func (t *ListChatsTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	addr, err := requiredString(params, "email")
	if err != nil {
		return nil, err
	}

	chats, err := t.manager.ListChats(ctx, addr)
	if err != nil {
		return nil, err
	}

	list := make([]map[string]interface{}, len(chats))
	for i, c := range chats {
		list[i] = map[string]interface{}{
			"id":                c.ID,
			"space_id":          c.SpaceID,
			"display_name":      c.DisplayName,
			"space_type":        c.SpaceType,
			"message_count":     c.MessageCount,
			"last_message_time": formatTime(c.LastMessageTime),
		}
	}
	return list, nil
}

// ListChatMessagesTool lists the messages of a chat space
type ListChatMessagesTool struct {
	manager  *email.Manager
	resolver *media.Resolver
	logger   *logrus.Logger
}

// NewListChatMessagesTool creates a new list chat messages tool
func NewListChatMessagesTool(manager *email.Manager, resolver *media.Resolver, logger *logrus.Logger) *ListChatMessagesTool {
	return &ListChatMessagesTool{manager: manager, resolver: resolver, logger: logger}
}

// Name returns the tool name
func (t *ListChatMessagesTool) Name() string {
	return "list_chat_messages"
}

// Description returns the tool description
func (t *ListChatMessagesTool) Description() string {
	return "List the messages of a chat space with resolved attachment links"
}

// InputSchema returns the JSON schema for tool inputs
func (t *ListChatMessagesTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"email": map[string]interface{}{
				"type":        "string",
				"description": "Account email",
			},
			"chat_id": map[string]interface{}{
				"type":        "string",
				"description": "Chat id (from list_chats)",
			},
		},
		"required": []string{"email", "chat_id"},
	}
}

// Execute executes the tool
func (t *ListChatMessagesTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	addr, err := requiredString(params, "email")
	if err != nil {
		return nil, err
	}
	chatID, err := requiredString(params, "chat_id")
	if err != nil {
		return nil, err
	}

	messages, err := t.manager.ListChatMessages(ctx, addr, chatID)
	if err != nil {
		return nil, err
	}

	list := make([]map[string]interface{}, len(messages))
	for i, msg := range messages {
		list[i] = map[string]interface{}{
			"id":          msg.ID,
			"sender":      msg.Sender.DisplayName,
			"create_time": formatTime(msg.CreateTime),
			"body":        render.MessageBody(t.resolver, msg.Text, msg.Attachments),
		}
	}
	return list, nil
}
