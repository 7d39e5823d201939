package toolkit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cadenzr/turnpike/src/aisdk"
	jsonschema "github.com/swaggest/jsonschema-go"
)

// FuncTool adapts a typed Go function into a Tool, generating the parameter
// schema from the input struct's tags via jsonschema-go.
type FuncTool[TIn any, TOut any] struct {
	name        string
	description string
	schema      *jsonschema.Schema
	handler     func(ctx context.Context, input TIn) (TOut, error)
}

// NewFuncTool builds a tool from a handler function. The input type's
// jsonschema struct tags drive the generated parameter schema.
func NewFuncTool[TIn any, TOut any](name, description string, handler func(ctx context.Context, input TIn) (TOut, error)) (Tool, error) {
	var reflector jsonschema.Reflector
	var input TIn
	schema, err := reflector.Reflect(input)
	if err != nil {
		return nil, fmt.Errorf("failed to reflect schema for tool %s: %w", name, err)
	}
	return &FuncTool[TIn, TOut]{
		name:        name,
		description: description,
		schema:      &schema,
		handler:     handler,
	}, nil
}

// MustNewFuncTool is NewFuncTool that panics on error, for package-level
// tool construction.
func MustNewFuncTool[TIn any, TOut any](name, description string, handler func(ctx context.Context, input TIn) (TOut, error)) Tool {
	tool, err := NewFuncTool(name, description, handler)
	if err != nil {
		panic(fmt.Sprintf("failed to create tool %s: %v", name, err))
	}
	return tool
}

func (t *FuncTool[TIn, TOut]) GetType() string                   { return "function" }
func (t *FuncTool[TIn, TOut]) GetName() string                   { return t.name }
func (t *FuncTool[TIn, TOut]) GetDescription() string            { return t.description }
func (t *FuncTool[TIn, TOut]) GetParameters() *jsonschema.Schema { return t.schema }

// Execute parses the call arguments into the input type, runs the handler,
// and marshals the output. Handler errors become error-shaped responses
// rather than Go errors, so the model sees them as data.
func (t *FuncTool[TIn, TOut]) Execute(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
	var input TIn
	if len(call.Function.Arguments) > 0 {
		if err := json.Unmarshal(call.Function.Arguments, &input); err != nil {
			return errorResponse(fmt.Sprintf("failed to parse input: %v", err)), nil
		}
	}

	output, err := t.handler(ctx, input)
	if err != nil {
		return errorResponse(err.Error()), nil
	}

	content, err := json.Marshal(output)
	if err != nil {
		return errorResponse(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return &aisdk.ToolResponse{Type: "success", Content: content}, nil
}

func errorResponse(msg string) *aisdk.ToolResponse {
	return &aisdk.ToolResponse{Type: "error", Content: []byte(msg), IsError: true}
}
