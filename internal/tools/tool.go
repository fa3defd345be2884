// Package tools provides the tool execution framework and the Home
// Assistant tool implementations exposed over MCP.
package tools

import (
	"context"
	"encoding/json"
)

// Tool is the interface that all tools must implement
type Tool interface {
	// Name returns the unique name of the tool
	Name() string

	// Description returns a human-readable description for the agent
	Description() string

	// Schema returns the JSON Schema for the tool's input parameters
	Schema() map[string]any

	// Execute runs the tool with the given input and returns a JSON
	// document. Tool-level failures are reported inside the document as
	// a structured error payload, not as a Go error; the error return
	// is reserved for faults the tool could not shape itself.
	Execute(ctx context.Context, input json.RawMessage) (string, error)
}

// ToolDefinition is the format served to MCP clients in tools/list
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ToDefinition converts a Tool to the wire format
func ToDefinition(t Tool) ToolDefinition {
	return ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		InputSchema: t.Schema(),
	}
}
