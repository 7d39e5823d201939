// Package dispatch executes batches of tool calls with bounded concurrency
// and rate-limit-aware pacing, preserving the order calls were issued in.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cadenzr/turnpike/src/aisdk"
)

// Defaults for the dispatcher configuration.
const (
	DefaultMaxConcurrent = 3
	DefaultStaggerDelay  = 100 * time.Millisecond
)

// Invoker executes a single tool call. An error return is captured as an
// error-shaped result; it never aborts sibling calls.
type Invoker func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error)

// Options controls batching and pacing.
type Options struct {
	// MaxConcurrent caps the number of in-flight invocations per batch.
	// Zero or negative means DefaultMaxConcurrent.
	MaxConcurrent int

	// StaggerDelay offsets the i-th start within a batch by i*StaggerDelay
	// to avoid bursting a rate-limited downstream.
	StaggerDelay time.Duration

	// BatchDelay pauses between consecutive batches.
	BatchDelay time.Duration

	// Timeout bounds each individual invocation. Zero disables it.
	Timeout time.Duration

	// Sequential disables parallelism entirely: calls run one after
	// another with no pacing delays.
	Sequential bool
}

// Outcome is the result of one invocation, transient until converted into a
// tool-role message.
type Outcome struct {
	Call     aisdk.ToolCall
	Response *aisdk.ToolResponse
	Err      error
	Duration time.Duration
}

// Message converts the outcome into a tool-role message. Failures become an
// {"error": ...} payload so the model can see what went wrong.
func (o *Outcome) Message() *aisdk.Message {
	content := ""
	switch {
	case o.Err != nil:
		content = errorPayload(o.Err.Error())
	case o.Response != nil:
		content = string(o.Response.Content)
	}
	return &aisdk.Message{
		Role:       aisdk.RoleTool,
		Content:    content,
		Name:       o.Call.Function.Name,
		ToolCallID: o.Call.ID,
	}
}

func errorPayload(msg string) string {
	b, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, msg)
	}
	return string(b)
}

// Run executes the calls and returns one outcome per call, in the order the
// calls were issued regardless of completion order. Single calls and
// Sequential mode run serially with no delays.
func Run(ctx context.Context, calls []aisdk.ToolCall, invoke Invoker, opts Options) []Outcome {
	if len(calls) == 0 {
		return nil
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}

	outcomes := make([]Outcome, len(calls))

	if opts.Sequential || len(calls) == 1 {
		for i := range calls {
			outcomes[i] = runOne(ctx, &calls[i], invoke, opts.Timeout)
		}
		return outcomes
	}

	for start := 0; start < len(calls); start += opts.MaxConcurrent {
		if start > 0 && opts.BatchDelay > 0 {
			sleep(ctx, opts.BatchDelay)
		}
		end := start + opts.MaxConcurrent
		if end > len(calls) {
			end = len(calls)
		}
		runBatch(ctx, calls[start:end], outcomes[start:end], invoke, opts)
	}
	return outcomes
}

// runBatch starts every call in the batch, staggering the i-th start by
// i*StaggerDelay, and waits for all of them. Outcomes land at their call's
// index, which is what preserves issue order.
func runBatch(ctx context.Context, calls []aisdk.ToolCall, outcomes []Outcome, invoke Invoker, opts Options) {
	var wg sync.WaitGroup
	for i := range calls {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if opts.StaggerDelay > 0 && i > 0 {
				sleep(ctx, time.Duration(i)*opts.StaggerDelay)
			}
			outcomes[i] = runOne(ctx, &calls[i], invoke, opts.Timeout)
		}(i)
	}
	wg.Wait()
}

// runOne wraps a single invocation, converting panics into errors and
// enforcing the per-call timeout when configured.
func runOne(ctx context.Context, call *aisdk.ToolCall, invoke Invoker, timeout time.Duration) (out Outcome) {
	out.Call = *call
	start := time.Now()
	defer func() {
		out.Duration = time.Since(start)
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("tool %s panicked: %v", call.Function.Name, r)
		}
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := invoke(ctx, call)
	if err != nil {
		out.Err = err
		return out
	}
	if resp != nil && resp.IsError {
		out.Err = fmt.Errorf("%s", resp.Content)
		return out
	}
	out.Response = resp
	return out
}

// sleep waits for d or until the context is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
