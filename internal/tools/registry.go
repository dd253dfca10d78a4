package tools

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mail-admin/internal/config"
	"github.com/brandon/mail-admin/internal/email"
	"github.com/brandon/mail-admin/internal/media"
)

// Registry manages MCP tools
type Registry struct {
	config   *config.Config
	logger   *logrus.Logger
	manager  *email.Manager
	resolver *media.Resolver
	tools    map[string]Tool
}

// Tool represents an MCP tool
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(ctx context.Context, params map[string]interface{}) (interface{}, error)
}

// NewRegistry creates a new tool registry
func NewRegistry(cfg *config.Config, manager *email.Manager, resolver *media.Resolver, logger *logrus.Logger) *Registry {
	reg := &Registry{
		config:   cfg,
		logger:   logger,
		manager:  manager,
		resolver: resolver,
		tools:    make(map[string]Tool),
	}

	// Register all tools
	reg.registerTools()

	return reg
}

// registerTools registers all available tools
func (r *Registry) registerTools() {
	toolList := []Tool{
		NewListAccountsTool(r.manager, r.logger),
		NewAddAccountTool(r.manager, r.logger),
		NewUpdateAccountTool(r.manager, r.logger),
		NewDeleteAccountTool(r.manager, r.logger),
		NewSyncAccountTool(r.manager, r.logger),
		NewListThreadsTool(r.manager, r.resolver, r.logger),
		NewSearchCachedThreadsTool(r.config, r.manager, r.logger),
		NewListChatsTool(r.manager, r.logger),
		NewListChatMessagesTool(r.manager, r.resolver, r.logger),
		NewResolveAttachmentTool(r.resolver, r.logger),
	}

	for _, tool := range toolList {
		if tool != nil {
			r.tools[tool.Name()] = tool
			r.logger.WithField("tool", tool.Name()).Debug("Registered tool")
		}
	}

	r.logger.WithField("count", len(r.tools)).Info("Registered tools")
}

// GetTool returns a tool by name
func (r *Registry) GetTool(name string) (Tool, bool) {
	tool, exists := r.tools[name]
	return tool, exists
}

// ListTools returns all registered tools sorted by name
func (r *Registry) ListTools() []Tool {
	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// GetToolDefinitions returns tool definitions for MCP
func (r *Registry) GetToolDefinitions() []map[string]interface{} {
	tools := r.ListTools()
	definitions := make([]map[string]interface{}, 0, len(tools))
	for _, tool := range tools {
		definitions = append(definitions, map[string]interface{}{
			"name":        tool.Name(),
			"description": tool.Description(),
			"inputSchema": tool.InputSchema(),
		})
	}
	return definitions
}
