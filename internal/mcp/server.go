package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mail-admin/internal/config"
	"github.com/brandon/mail-admin/internal/email"
	"github.com/brandon/mail-admin/internal/media"
	"github.com/brandon/mail-admin/internal/tools"
)

const protocolVersion = "2024-11-05"

// Server represents the MCP server
type Server struct {
	config  *config.Config
	logger  *logrus.Logger
	tools   *tools.Registry
	version string

	in  io.Reader
	out io.Writer
	mu  sync.Mutex
}

// NewServer creates a new MCP server instance speaking over stdio
func NewServer(cfg *config.Config, manager *email.Manager, resolver *media.Resolver, logger *logrus.Logger) *Server {
	return &Server{
		config:  cfg,
		logger:  logger,
		tools:   tools.NewRegistry(cfg, manager, resolver, logger),
		version: "dev",
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

// SetIO replaces the stdio transport
func (s *Server) SetIO(in io.Reader, out io.Writer) {
	s.in = in
	s.out = out
}

// SetVersion sets the version reported during initialize
func (s *Server) SetVersion(v string) {
	if v != "" {
		s.version = v
	}
}

// Run serves newline-delimited JSON-RPC requests until the input ends or ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting MCP server with stdio transport")

	decoder := json.NewDecoder(s.in)
	encoder := json.NewEncoder(s.out)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		var req map[string]interface{}
		if err := decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				// The decoder cannot resync after malformed input
				s.logger.WithError(err).Error("Failed to decode request")
				s.write(encoder, errorResponse(nil, -32700, "Parse error"))
				return fmt.Errorf("failed to decode request: %w", err)
			}
			s.logger.WithError(err).Error("Failed to decode request")
			s.write(encoder, errorResponse(nil, -32600, "Invalid request"))
			continue
		}

		resp := s.handleRequest(ctx, req)
		if resp == nil {
			continue
		}
		s.write(encoder, resp)
	}
}

func (s *Server) write(encoder *json.Encoder, resp map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := encoder.Encode(resp); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

// handleRequest processes an MCP request; notifications get no response
func (s *Server) handleRequest(ctx context.Context, req map[string]interface{}) map[string]interface{} {
	method, _ := req["method"].(string)
	id, hasID := req["id"]

	log := s.logger.WithField("method", method)

	switch method {
	case "initialize":
		return result(id, map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "mail-admin",
				"version": s.version,
			},
		})

	case "ping":
		return result(id, map[string]interface{}{})

	case "tools/list":
		return result(id, map[string]interface{}{
			"tools": s.tools.GetToolDefinitions(),
		})

	case "tools/call":
		params, _ := req["params"].(map[string]interface{})
		toolName, _ := params["name"].(string)
		arguments, _ := params["arguments"].(map[string]interface{})
		if arguments == nil {
			arguments = map[string]interface{}{}
		}

		tool, exists := s.tools.GetTool(toolName)
		if !exists {
			return errorResponse(id, -32602, fmt.Sprintf("Tool not found: %s", toolName))
		}

		log = log.WithField("tool", toolName)
		out, err := tool.Execute(ctx, arguments)
		if err != nil {
			log.WithError(err).Warn("Tool call failed")
			return result(id, map[string]interface{}{
				"content": []map[string]interface{}{
					{"type": "text", "text": err.Error()},
				},
				"isError": true,
			})
		}

		resultJSON, err := json.Marshal(out)
		if err != nil {
			resultJSON = []byte(fmt.Sprintf("%v", out))
		}
		log.Debug("Tool call succeeded")

		return result(id, map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": string(resultJSON)},
			},
		})
	}

	if !hasID {
		log.Debug("Ignoring notification")
		return nil
	}
	return errorResponse(id, -32601, fmt.Sprintf("Method not found: %s", method))
}

func result(id interface{}, body map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  body,
	}
}

func errorResponse(id interface{}, code int, message string) map[string]interface{} {
	return map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	}
}
