// Package mcp connects the task loop to MCP (Model Context Protocol)
// servers. A Hub manages named server connections; the use_mcp_tool and
// access_mcp_resource tools proxy invocations from the tag micro-language to
// the connected servers.
package mcp

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// Server is one connected MCP server and its cached tool list.
type Server struct {
	name   string
	client *client.Client
	mu     sync.RWMutex
	tools  map[string]mcp.Tool
}

// Name returns the hub-local server name.
func (s *Server) Name() string {
	return s.name
}

// Tools returns the cached tool definitions, sorted by name.
func (s *Server) Tools() []mcp.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]mcp.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Refresh re-fetches the server's tool list.
func (s *Server) Refresh(ctx context.Context) error {
	result, err := s.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools = make(map[string]mcp.Tool, len(result.Tools))
	for _, t := range result.Tools {
		s.tools[t.Name] = t
	}
	return nil
}

// Hub manages named MCP server connections. Safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	servers map[string]*Server
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{servers: make(map[string]*Server)}
}

// Connect starts an MCP server as a subprocess over stdio and registers it
// under the given name.
func (h *Hub) Connect(ctx context.Context, name, command string, env []string, args ...string) (*Server, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("mcp: create client for %q: %w", name, err)
	}
	return h.register(ctx, name, c)
}

// ConnectSSE connects to an MCP server over SSE and registers it under the
// given name.
func (h *Hub) ConnectSSE(ctx context.Context, name, baseURL string) (*Server, error) {
	c, err := client.NewSSEMCPClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("mcp: create SSE client for %q: %w", name, err)
	}
	return h.register(ctx, name, c)
}

func (h *Hub) register(ctx context.Context, name string, c *client.Client) (*Server, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("mcp: start client for %q: %w", name, err)
	}

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "crank-mcp-client",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("mcp: initialize %q: %w", name, err)
	}

	s := &Server{name: name, client: c, tools: make(map[string]mcp.Tool)}
	if err := s.Refresh(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("mcp: list tools for %q: %w", name, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.servers[name]; ok {
		old.client.Close()
	}
	h.servers[name] = s
	return s, nil
}

// Get returns the named server.
func (h *Hub) Get(name string) (*Server, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.servers[name]
	return s, ok
}

// Names returns the connected server names, sorted.
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.servers))
	for name := range h.servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CallTool invokes a tool on the named server. args is the parsed JSON
// argument object, or nil.
func (h *Hub) CallTool(ctx context.Context, serverName, toolName string, args any) (*mcp.CallToolResult, error) {
	s, ok := h.Get(serverName)
	if !ok {
		return nil, fmt.Errorf("mcp: no connected server named %q", serverName)
	}
	return s.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: args,
		},
	})
}

// ReadResource reads a resource URI from the named server.
func (h *Hub) ReadResource(ctx context.Context, serverName, uri string) (*mcp.ReadResourceResult, error) {
	s, ok := h.Get(serverName)
	if !ok {
		return nil, fmt.Errorf("mcp: no connected server named %q", serverName)
	}
	return s.client.ReadResource(ctx, mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: uri},
	})
}

// Close closes every server connection. The last error wins.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var last error
	for name, s := range h.servers {
		if err := s.client.Close(); err != nil {
			last = err
		}
		delete(h.servers, name)
	}
	return last
}
