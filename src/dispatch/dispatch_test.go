package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cadenzr/turnpike/src/aisdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCalls(n int) []aisdk.ToolCall {
	calls := make([]aisdk.ToolCall, n)
	for i := range calls {
		calls[i] = aisdk.ToolCall{
			ID:   fmt.Sprintf("call_%d", i+1),
			Type: "function",
			Function: aisdk.FunctionCall{
				Name:      fmt.Sprintf("tool_%d", i+1),
				Arguments: []byte(`{}`),
			},
		}
	}
	return calls
}

func okInvoker(delays map[string]time.Duration) Invoker {
	return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
		if d, ok := delays[call.ID]; ok {
			time.Sleep(d)
		}
		return &aisdk.ToolResponse{
			Type:    "success",
			Content: []byte("result of " + call.ID),
		}, nil
	}
}

func TestRunPreservesIssueOrder(t *testing.T) {
	// Call 2 resolves well before call 1; output order must not change.
	calls := makeCalls(2)
	delays := map[string]time.Duration{"call_1": 80 * time.Millisecond}

	outcomes := Run(context.Background(), calls, okInvoker(delays), Options{MaxConcurrent: 2})

	require.Len(t, outcomes, 2)
	assert.Equal(t, "call_1", outcomes[0].Call.ID)
	assert.Equal(t, "call_2", outcomes[1].Call.ID)
	assert.Equal(t, "result of call_1", string(outcomes[0].Response.Content))
	assert.Equal(t, "result of call_2", string(outcomes[1].Response.Content))
}

func TestRunBatchesByConcurrencyCap(t *testing.T) {
	// Three calls with cap 2: calls 1 and 2 start in the first batch, call
	// 3 only after both finish plus the inter-batch delay.
	var mu sync.Mutex
	starts := map[string]time.Time{}

	invoke := func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
		mu.Lock()
		starts[call.ID] = time.Now()
		mu.Unlock()
		time.Sleep(30 * time.Millisecond)
		return &aisdk.ToolResponse{Content: []byte("ok")}, nil
	}

	stagger := 20 * time.Millisecond
	batchDelay := 50 * time.Millisecond
	began := time.Now()
	outcomes := Run(context.Background(), makeCalls(3), invoke, Options{
		MaxConcurrent: 2,
		StaggerDelay:  stagger,
		BatchDelay:    batchDelay,
	})
	elapsed := time.Since(began)

	require.Len(t, outcomes, 3)
	assert.Equal(t, []string{"call_1", "call_2", "call_3"},
		[]string{outcomes[0].Call.ID, outcomes[1].Call.ID, outcomes[2].Call.ID})

	// Second call is staggered behind the first.
	assert.GreaterOrEqual(t, starts["call_2"].Sub(starts["call_1"]), stagger/2)
	// Third call waits for the whole first batch and the inter-batch pause.
	assert.GreaterOrEqual(t, starts["call_3"].Sub(starts["call_1"]), stagger+batchDelay)
	assert.GreaterOrEqual(t, elapsed, stagger+batchDelay)
}

func TestRunFailingToolDoesNotAbortSiblings(t *testing.T) {
	calls := makeCalls(3)
	invoke := func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
		if call.ID == "call_2" {
			return nil, errors.New("boom")
		}
		return &aisdk.ToolResponse{Content: []byte("ok")}, nil
	}

	outcomes := Run(context.Background(), calls, invoke, Options{MaxConcurrent: 3})

	require.Len(t, outcomes, 3)
	assert.NoError(t, outcomes[0].Err)
	assert.Error(t, outcomes[1].Err)
	assert.NoError(t, outcomes[2].Err)

	msg := outcomes[1].Message()
	assert.Equal(t, aisdk.RoleTool, msg.Role)
	assert.Equal(t, "call_2", msg.ToolCallID)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(msg.Content), &payload))
	assert.Equal(t, "boom", payload["error"])
}

func TestRunSequentialFastPath(t *testing.T) {
	var order []string
	invoke := func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
		order = append(order, call.ID) // safe: sequential mode has no goroutines
		return &aisdk.ToolResponse{Content: []byte("ok")}, nil
	}

	Run(context.Background(), makeCalls(3), invoke, Options{Sequential: true})
	assert.Equal(t, []string{"call_1", "call_2", "call_3"}, order)
}

func TestRunSingleCallNoDelay(t *testing.T) {
	began := time.Now()
	outcomes := Run(context.Background(), makeCalls(1), okInvoker(nil), Options{
		StaggerDelay: 500 * time.Millisecond,
		BatchDelay:   500 * time.Millisecond,
	})
	assert.Less(t, time.Since(began), 200*time.Millisecond)
	require.Len(t, outcomes, 1)
	assert.NoError(t, outcomes[0].Err)
}

func TestRunEnforcesPerCallTimeout(t *testing.T) {
	invoke := func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
		select {
		case <-time.After(5 * time.Second):
			return &aisdk.ToolResponse{Content: []byte("too late")}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	outcomes := Run(context.Background(), makeCalls(1), invoke, Options{
		Timeout: 30 * time.Millisecond,
	})
	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, context.DeadlineExceeded)
}

func TestRunRecoversPanics(t *testing.T) {
	invoke := func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
		panic("tool bug")
	}

	outcomes := Run(context.Background(), makeCalls(2), invoke, Options{MaxConcurrent: 2})
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.ErrorContains(t, o.Err, "panicked")
	}
}

func TestRunEmpty(t *testing.T) {
	assert.Nil(t, Run(context.Background(), nil, okInvoker(nil), Options{}))
}

func TestOutcomeMessageSuccess(t *testing.T) {
	o := Outcome{
		Call: aisdk.ToolCall{
			ID:       "call_9",
			Function: aisdk.FunctionCall{Name: "read_file"},
		},
		Response: &aisdk.ToolResponse{Content: []byte(`{"content":"hi"}`)},
	}
	msg := o.Message()
	assert.Equal(t, aisdk.RoleTool, msg.Role)
	assert.Equal(t, "read_file", msg.Name)
	assert.Equal(t, "call_9", msg.ToolCallID)
	assert.Equal(t, `{"content":"hi"}`, msg.Content)
}
