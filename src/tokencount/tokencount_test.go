package tokencount

import (
	"strings"
	"testing"

	"github.com/cadenzr/turnpike/src/aisdk"
	"github.com/stretchr/testify/assert"
)

func TestEstimateRequestNeverZero(t *testing.T) {
	c := NewCounter()
	assert.GreaterOrEqual(t, c.EstimateRequest("any-model", nil), 1)
	assert.GreaterOrEqual(t, c.EstimateRequest("", []*aisdk.Message{{Role: "user"}}), 1)
}

func TestEstimateRequestScalesWithContent(t *testing.T) {
	c := NewCounter()
	short := []*aisdk.Message{{Role: "user", Content: "hi"}}
	long := []*aisdk.Message{{Role: "user", Content: strings.Repeat("hello world ", 100)}}

	assert.Greater(t, c.EstimateRequest("m", long), c.EstimateRequest("m", short))
}

func TestEstimateRequestCountsToolCalls(t *testing.T) {
	c := NewCounter()
	plain := []*aisdk.Message{{Role: "assistant"}}
	withCalls := []*aisdk.Message{{
		Role: "assistant",
		ToolCalls: []aisdk.ToolCall{{
			Function: aisdk.FunctionCall{
				Name:      "read_file",
				Arguments: []byte(`{"path":"/tmp/some/long/path/to/a/file.txt"}`),
			},
		}},
	}}

	assert.Greater(t, c.EstimateRequest("m", withCalls), c.EstimateRequest("m", plain))
}

func TestRecordUsageCalibrates(t *testing.T) {
	c := NewCounter()
	messages := []*aisdk.Message{{Role: "user", Content: strings.Repeat("x", 400)}}

	before := c.EstimateRequest("m", messages)

	// Backend reports far more tokens than the 4-chars heuristic assumed,
	// so the ratio should shrink and the estimate should grow.
	c.RecordUsage(messages, 400)
	after := c.EstimateRequest("m", messages)

	assert.Greater(t, after, before)
}

func TestRecordUsageIgnoresBadObservations(t *testing.T) {
	c := NewCounter()
	messages := []*aisdk.Message{{Role: "user", Content: "hello"}}
	before := c.EstimateRequest("m", messages)

	c.RecordUsage(messages, 0)
	c.RecordUsage(messages, -5)
	c.RecordUsage(nil, 100)

	assert.Equal(t, before, c.EstimateRequest("m", messages))
}

func TestCountText(t *testing.T) {
	c := NewCounter()
	assert.Equal(t, 0, c.CountText(""))
	assert.GreaterOrEqual(t, c.CountText("a"), 1)
	assert.Equal(t, 25, c.CountText(strings.Repeat("z", 100)))
}
