// Package mcpbridge adapts tools exposed by an external MCP server into
// internal/tool.Tool implementations, so a session's tool.Registry can
// mix built-in domain tools with tools hosted by a remote MCP server
// (e.g. a CRM or ticketing integration maintained outside this service).
//
// Follows a connect-once, list-tools, wrap-each-as-a-local-Tool adapter
// shape, unwrapping CallToolResult's text content blocks back into our
// own tool.Output shape.
package mcpbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vaak-ai/voxengine/internal/tool"
	"github.com/vaak-ai/voxengine/internal/voxerr"
)

// Manager owns one MCP client session and the tools wrapped from it.
type Manager struct {
	session *mcp.ClientSession
}

// Connect dials an MCP server over the given transport and returns a
// Manager ready to list and wrap its tools. clientName/version identify
// this service to the server, per the MCP handshake.
func Connect(ctx context.Context, clientName, version string, transport mcp.Transport) (*Manager, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: clientName, Version: version}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, voxerr.New(voxerr.BackendUnavailable, "mcpbridge.Connect", err)
	}
	return &Manager{session: session}, nil
}

// Close ends the underlying MCP session.
func (m *Manager) Close() error {
	return m.session.Close()
}

// Tools lists every tool the connected server exposes and returns each
// wrapped as an internal/tool.Tool, prefixed with serverName to avoid
// name collisions with built-in tools.
func (m *Manager) Tools(ctx context.Context, serverName string) ([]tool.Tool, error) {
	var out []tool.Tool
	for t, err := range m.session.Tools(ctx, nil) {
		if err != nil {
			return out, voxerr.New(voxerr.BackendUnavailable, "mcpbridge.Tools", err)
		}
		out = append(out, &bridgedTool{server: serverName, session: m.session, remote: t})
	}
	return out, nil
}

// bridgedTool adapts one remote MCP tool to the local tool.Tool interface.
type bridgedTool struct {
	server  string
	session *mcp.ClientSession
	remote  *mcp.Tool
}

func (t *bridgedTool) Definition() tool.Definition {
	return tool.Definition{
		Name:        fmt.Sprintf("%s_%s", t.server, t.remote.Name),
		Description: t.remote.Description,
		Category:    "mcp_bridge",
		Input:       inputDescriptorFromSchema(t.remote.InputSchema),
	}
}

func (t *bridgedTool) Call(ctx context.Context, args map[string]string) (tool.Output, error) {
	callArgs := make(map[string]any, len(args))
	for k, v := range args {
		callArgs[k] = v
	}

	res, err := t.session.CallTool(ctx, &mcp.CallToolParams{Name: t.remote.Name, Arguments: callArgs})
	if err != nil {
		return tool.Output{}, voxerr.New(voxerr.BackendUnavailable, "mcpbridge.bridgedTool.Call", err)
	}

	var content []tool.Content
	for _, c := range res.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			content = append(content, tool.Content{Kind: tool.ContentText, Text: text.Text})
		}
	}

	return tool.Output{Content: content, IsError: res.IsError}, nil
}

// inputDescriptorFromSchema best-effort converts an MCP JSON Schema into
// our InputDescriptor shape, defaulting to an empty object schema when the
// remote tool declares none.
func inputDescriptorFromSchema(schema any) tool.InputDescriptor {
	desc := tool.InputDescriptor{Type: "object", Properties: map[string]tool.PropertySchema{}}
	if schema == nil {
		return desc
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return desc
	}
	var parsed struct {
		Properties map[string]struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return desc
	}

	for name, p := range parsed.Properties {
		desc.Properties[name] = tool.PropertySchema{Type: p.Type, Description: p.Description}
	}
	desc.Required = parsed.Required
	return desc
}
