// Package tokencount estimates token counts for pre-flight budget checks.
// It uses a character-based heuristic (~4 chars per token for English) that
// calibrates itself from actual provider usage, which is sufficient for
// admission control without pulling in a full tokenizer.
package tokencount

import (
	"sync"

	"github.com/cadenzr/turnpike/src/aisdk"
)

const (
	// defaultCharsPerToken is conservative for English text with code.
	// Overestimating is the safe direction: an oversized request is
	// rejected before the network rather than after.
	defaultCharsPerToken = 4.0

	// smoothingFactor weighs new observations against the running average
	// when calibrating from actual usage.
	smoothingFactor = 0.3

	// messageOverhead approximates the per-message cost of role markers and
	// separators.
	messageOverhead = 4

	// replyPrimer accounts for the tokens priming the assistant reply.
	replyPrimer = 3
)

// Counter estimates token counts for requests and text. The zero value is
// not usable; create one with NewCounter.
type Counter struct {
	mu            sync.Mutex
	charsPerToken float64
	observations  int
}

// NewCounter creates a Counter with the default ratio.
func NewCounter() *Counter {
	return &Counter{charsPerToken: defaultCharsPerToken}
}

// EstimateRequest estimates the total token count for a chat completion
// request. The model identifier is accepted for interface compatibility; an
// unrecognized model degrades to the character heuristic rather than
// failing. The result is always at least 1.
func (c *Counter) EstimateRequest(model string, messages []*aisdk.Message) int {
	c.mu.Lock()
	ratio := c.charsPerToken
	c.mu.Unlock()

	chars := messagesCharCount(messages)
	total := int(float64(chars)/ratio) + 1
	total += messageOverhead * len(messages)
	total += replyPrimer
	if total < 1 {
		total = 1
	}
	return total
}

// CountText estimates tokens for a plain text string using the current ratio.
func (c *Counter) CountText(text string) int {
	c.mu.Lock()
	ratio := c.charsPerToken
	c.mu.Unlock()

	if len(text) == 0 {
		return 0
	}
	n := int(float64(len(text)) / ratio)
	if n < 1 {
		n = 1
	}
	return n
}

// RecordUsage calibrates the ratio from the actual prompt token count a
// backend reported for the given messages. The first observation replaces
// the default outright; later ones blend in via exponential moving average.
func (c *Counter) RecordUsage(messages []*aisdk.Message, actualPromptTokens int) {
	if actualPromptTokens <= 0 {
		return
	}
	chars := messagesCharCount(messages)
	if chars == 0 {
		return
	}
	observed := float64(chars) / float64(actualPromptTokens)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.observations++
	if c.observations == 1 {
		c.charsPerToken = observed
		return
	}
	c.charsPerToken = smoothingFactor*observed + (1.0-smoothingFactor)*c.charsPerToken
}

func messagesCharCount(messages []*aisdk.Message) int {
	total := 0
	for _, m := range messages {
		total += len(m.Role) + len(m.Content) + len(m.Name) + len(m.ToolCallID)
		for _, tc := range m.ToolCalls {
			total += len(tc.Function.Name) + len(tc.Function.Arguments)
		}
	}
	return total
}
