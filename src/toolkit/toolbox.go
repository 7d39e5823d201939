package toolkit

import (
	"context"
	"fmt"
	"sort"

	"github.com/cadenzr/turnpike/src/aisdk"
)

// Executor is a function that executes a tool call.
type Executor func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error)

// Middleware wraps an Executor to add functionality.
type Middleware func(next Executor) Executor

// Toolbox holds registered tools and the middleware applied to every
// execution.
type Toolbox struct {
	tools      map[string]Tool
	middleware []Middleware
}

// NewToolbox creates an empty toolbox.
func NewToolbox() *Toolbox {
	return &Toolbox{tools: make(map[string]Tool)}
}

// Register adds a tool. Names must be non-empty and unique.
func (tb *Toolbox) Register(tool Tool) error {
	name := tool.GetName()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := tb.tools[name]; exists {
		return fmt.Errorf("tool %s is already registered", name)
	}
	tb.tools[name] = tool
	return nil
}

// Use registers middleware applied to all tool executions, outermost first.
func (tb *Toolbox) Use(mw Middleware) {
	tb.middleware = append(tb.middleware, mw)
}

// Tools returns the registered tools sorted by name for stable wire output.
func (tb *Toolbox) Tools() []Tool {
	out := make([]Tool, 0, len(tb.tools))
	for _, t := range tb.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

// Get returns a tool by name.
func (tb *Toolbox) Get(name string) (Tool, bool) {
	t, ok := tb.tools[name]
	return t, ok
}

// Execute runs a tool call through the middleware chain.
func (tb *Toolbox) Execute(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
	tool, ok := tb.tools[call.Function.Name]
	if !ok {
		return nil, fmt.Errorf("tool %s not found", call.Function.Name)
	}

	exec := Executor(tool.Execute)
	for i := len(tb.middleware) - 1; i >= 0; i-- {
		exec = tb.middleware[i](exec)
	}
	return exec(ctx, call)
}

// LoggingMiddleware logs tool execution through any slog-shaped logger.
func LoggingMiddleware(logger interface {
	Info(msg string, args ...any)
}) Middleware {
	return func(next Executor) Executor {
		return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
			logger.Info("executing tool", "tool", call.Function.Name, "params", string(call.Function.Arguments))
			resp, err := next(ctx, call)
			if err != nil {
				logger.Info("tool execution failed", "tool", call.Function.Name, "error", err)
			}
			return resp, err
		}
	}
}
