package tools

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mail-admin/internal/email"
	"github.com/brandon/mail-admin/pkg/types"
)

func accountJSON(acc types.Account) map[string]interface{} {
	out := map[string]interface{}{
		"id":    acc.ID,
		"email": acc.Email,
	}
	if acc.Name != "" {
		out["name"] = acc.Name
	}
	if acc.IsActive != nil {
		out["is_active"] = *acc.IsActive
	}
	if acc.LastSync != nil {
		out["last_sync"] = acc.LastSync.Format(time.RFC3339)
	}
	return out
}

// ListAccountsTool searches managed accounts
type ListAccountsTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewListAccountsTool creates a new list accounts tool
func NewListAccountsTool(manager *email.Manager, logger *logrus.Logger) *ListAccountsTool {
	return &ListAccountsTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *ListAccountsTool) Name() string {
	return "list_accounts"
}

// Description returns the tool description
func (t *ListAccountsTool) Description() string {
	return "List managed email accounts, optionally filtered by a search string"
}

// InputSchema returns the JSON schema for tool inputs
func (t *ListAccountsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"search": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Substring of the account email",
			},
		},
	}
}

// Execute executes the tool
func (t *ListAccountsTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	accounts, err := t.manager.SearchAccounts(ctx, stringParam(params, "search"))
	if err != nil {
		return nil, err
	}

	list := make([]map[string]interface{}, len(accounts))
	for i, acc := range accounts {
		list[i] = accountJSON(acc)
	}
	return list, nil
}

// AddAccountTool provisions a new account
type AddAccountTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewAddAccountTool creates a new add account tool
func NewAddAccountTool(manager *email.Manager, logger *logrus.Logger) *AddAccountTool {
	return &AddAccountTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *AddAccountTool) Name() string {
	return "add_account"
}

// Description returns the tool description
func (t *AddAccountTool) Description() string {
	return "Add an email account. The email must belong to an allowed domain; rejected emails never reach the backend"
}

// InputSchema returns the JSON schema for tool inputs
func (t *AddAccountTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"email": map[string]interface{}{
				"type":        "string",
				"description": "Email address of the account to add",
			},
		},
		"required": []string{"email"},
	}
}

// Execute executes the tool
func (t *AddAccountTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	addr, err := requiredString(params, "email")
	if err != nil {
		return nil, err
	}

	result, err := t.manager.AddAccount(ctx, addr)
	if err != nil {
		return nil, err
	}

	out := map[string]interface{}{
		"message": result.Message,
	}
	if result.Account != nil {
		out["account"] = accountJSON(*result.Account)
	}
	return out, nil
}

// UpdateAccountTool changes an account
type UpdateAccountTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewUpdateAccountTool creates a new update account tool
func NewUpdateAccountTool(manager *email.Manager, logger *logrus.Logger) *UpdateAccountTool {
	return &UpdateAccountTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *UpdateAccountTool) Name() string {
	return "update_account"
}

// Description returns the tool description
func (t *UpdateAccountTool) Description() string {
	return "Update an account's email, display name or active flag"
}

// InputSchema returns the JSON schema for tool inputs
func (t *UpdateAccountTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"account": map[string]interface{}{
				"type":        "string",
				"description": "Account id or current email",
			},
			"email": map[string]interface{}{
				"type":        "string",
				"description": "Optional: New email (must be in an allowed domain)",
			},
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Optional: New display name",
			},
			"is_active": map[string]interface{}{
				"type":        "boolean",
				"description": "Optional: Enable or disable syncing",
			},
		},
		"required": []string{"account"},
	}
}

// Execute executes the tool
func (t *UpdateAccountTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	ref, err := requiredString(params, "account")
	if err != nil {
		return nil, err
	}

	update := types.AccountUpdate{
		Email: stringParam(params, "email"),
		Name:  stringParam(params, "name"),
	}
	active, set, err := boolParam(params, "is_active")
	if err != nil {
		return nil, err
	}
	if set {
		update.IsActive = &active
	}

	id, err := t.manager.ResolveAccountID(ctx, ref)
	if err != nil {
		return nil, err
	}

	acc, err := t.manager.UpdateAccount(ctx, id, update)
	if err != nil {
		return nil, err
	}

	out := map[string]interface{}{"message": "Account updated"}
	if acc != nil {
		out["account"] = accountJSON(*acc)
	}
	return out, nil
}

// DeleteAccountTool removes an account
type DeleteAccountTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewDeleteAccountTool creates a new delete account tool
func NewDeleteAccountTool(manager *email.Manager, logger *logrus.Logger) *DeleteAccountTool {
	return &DeleteAccountTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *DeleteAccountTool) Name() string {
	return "delete_account"
}

// Description returns the tool description
func (t *DeleteAccountTool) Description() string {
	return "Delete an account by id or email"
}

// InputSchema returns the JSON schema for tool inputs
func (t *DeleteAccountTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"account": map[string]interface{}{
				"type":        "string",
				"description": "Account id or email",
			},
		},
		"required": []string{"account"},
	}
}

// Execute executes the tool
func (t *DeleteAccountTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	ref, err := requiredString(params, "account")
	if err != nil {
		return nil, err
	}

	if err := t.manager.DeleteAccountByRef(ctx, ref); err != nil {
		return nil, err
	}
	return map[string]interface{}{"message": "Account deleted", "account": ref}, nil
}

// SyncAccountTool triggers a backend resync
type SyncAccountTool struct {
	manager *email.Manager
	logger  *logrus.Logger
}

// NewSyncAccountTool creates a new sync account tool
func NewSyncAccountTool(manager *email.Manager, logger *logrus.Logger) *SyncAccountTool {
	return &SyncAccountTool{manager: manager, logger: logger}
}

// Name returns the tool name
func (t *SyncAccountTool) Name() string {
	return "sync_account"
}

// Description returns the tool description
func (t *SyncAccountTool) Description() string {
	return "Ask the backend to resynchronize an account's mail and chats"
}

// InputSchema returns the JSON schema for tool inputs
func (t *SyncAccountTool) InputSchema() map[string]interface{} {
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
func (t *SyncAccountTool) Execute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	addr, err := requiredString(params, "email")
	if err != nil {
		return nil, err
	}

	msg, err := t.manager.SyncAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"message": msg}, nil
}
