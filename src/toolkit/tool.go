// Package toolkit provides the tool registry and helpers for defining the
// callable functions an execution loop can dispatch.
package toolkit

import (
	"context"

	"github.com/cadenzr/turnpike/src/aisdk"
	jsonschema "github.com/swaggest/jsonschema-go"
)

// Tool is the interface every callable function implements.
type Tool interface {
	// GetType returns the tool type, always "function".
	GetType() string

	// GetName returns the tool's name.
	GetName() string

	// GetDescription returns the tool's description.
	GetDescription() string

	// GetParameters returns the JSON schema for the tool's parameters.
	GetParameters() *jsonschema.Schema

	// Execute runs the tool with the given call.
	Execute(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error)
}

// ToChatTools converts registered tools into the wire format sent to the
// backend.
func ToChatTools(tools []Tool) []*aisdk.ChatTool {
	out := make([]*aisdk.ChatTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, &aisdk.ChatTool{
			Type: t.GetType(),
			Function: &aisdk.ToolFunction{
				Name:        t.GetName(),
				Description: t.GetDescription(),
				Parameters:  t.GetParameters(),
			},
		})
	}
	return out
}
