package toolkit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cadenzr/turnpike/src/aisdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoInput struct {
	Text string `json:"text" required:"true" description:"Text to echo back"`
}

type echoOutput struct {
	Echo string `json:"echo"`
}

func newEchoTool(t *testing.T) Tool {
	t.Helper()
	tool, err := NewFuncTool("echo", "Echoes the input text",
		func(ctx context.Context, in echoInput) (echoOutput, error) {
			return echoOutput{Echo: in.Text}, nil
		})
	require.NoError(t, err)
	return tool
}

func TestToolboxRegisterAndGet(t *testing.T) {
	tb := NewToolbox()
	require.NoError(t, tb.Register(newEchoTool(t)))

	got, ok := tb.Get("echo")
	assert.True(t, ok)
	assert.Equal(t, "echo", got.GetName())

	_, ok = tb.Get("missing")
	assert.False(t, ok)
}

func TestToolboxRejectsDuplicates(t *testing.T) {
	tb := NewToolbox()
	require.NoError(t, tb.Register(newEchoTool(t)))
	assert.Error(t, tb.Register(newEchoTool(t)))
}

func TestToolboxExecute(t *testing.T) {
	tb := NewToolbox()
	require.NoError(t, tb.Register(newEchoTool(t)))

	resp, err := tb.Execute(context.Background(), &aisdk.ToolCall{
		ID:   "call_1",
		Type: "function",
		Function: aisdk.FunctionCall{
			Name:      "echo",
			Arguments: []byte(`{"text":"hello"}`),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.False(t, resp.IsError)

	var out echoOutput
	require.NoError(t, json.Unmarshal(resp.Content, &out))
	assert.Equal(t, "hello", out.Echo)
}

func TestToolboxExecuteUnknownTool(t *testing.T) {
	tb := NewToolbox()
	_, err := tb.Execute(context.Background(), &aisdk.ToolCall{
		Function: aisdk.FunctionCall{Name: "nope"},
	})
	assert.ErrorContains(t, err, "not found")
}

func TestFuncToolBadArgumentsBecomeErrorResponse(t *testing.T) {
	tool := newEchoTool(t)
	resp, err := tool.Execute(context.Background(), &aisdk.ToolCall{
		Function: aisdk.FunctionCall{Name: "echo", Arguments: []byte(`{not json`)},
	})
	require.NoError(t, err)
	assert.True(t, resp.IsError)
}

func TestToolboxMiddlewareOrder(t *testing.T) {
	tb := NewToolbox()
	require.NoError(t, tb.Register(newEchoTool(t)))

	var trace []string
	mw := func(label string) Middleware {
		return func(next Executor) Executor {
			return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
				trace = append(trace, label)
				return next(ctx, call)
			}
		}
	}
	tb.Use(mw("outer"))
	tb.Use(mw("inner"))

	_, err := tb.Execute(context.Background(), &aisdk.ToolCall{
		Function: aisdk.FunctionCall{Name: "echo", Arguments: []byte(`{"text":"x"}`)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, trace)
}

func TestToChatTools(t *testing.T) {
	tb := NewToolbox()
	require.NoError(t, tb.Register(newEchoTool(t)))

	chatTools := ToChatTools(tb.Tools())
	require.Len(t, chatTools, 1)
	assert.Equal(t, "function", chatTools[0].Type)
	assert.Equal(t, "echo", chatTools[0].Function.Name)
	assert.NotNil(t, chatTools[0].Function.Parameters)
}
