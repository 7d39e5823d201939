package aisdk

import (
	"sync"
	"time"
)

// Conversation is an append-only ordered history of messages. The execution
// core appends during a turn and never removes entries; concurrent turns on
// one conversation must be serialized by the caller.
type Conversation struct {
	ID           string
	SystemPrompt string
	// MaxMessages, when positive, bounds the history. Once exceeded, the
	// oldest non-system messages are evicted; system messages are never
	// evicted.
	MaxMessages int

	CreatedAt     time.Time
	LastMessageAt time.Time

	mu       sync.Mutex
	messages []*Message
}

// NewConversation creates an empty conversation.
func NewConversation(id, systemPrompt string) *Conversation {
	return &Conversation{
		ID:           id,
		SystemPrompt: systemPrompt,
		CreatedAt:    time.Now(),
	}
}

// Append adds messages to the end of the history, stamping CreatedAt on any
// message that lacks one, then applies the capacity policy.
func (c *Conversation) Append(msgs ...*Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for _, m := range msgs {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		c.messages = append(c.messages, m)
	}
	c.LastMessageAt = now
	c.evictLocked()
}

// evictLocked drops the oldest non-system messages until the history fits
// within MaxMessages. Callers must hold c.mu.
func (c *Conversation) evictLocked() {
	if c.MaxMessages <= 0 || len(c.messages) <= c.MaxMessages {
		return
	}
	excess := len(c.messages) - c.MaxMessages
	kept := make([]*Message, 0, c.MaxMessages)
	for _, m := range c.messages {
		if excess > 0 && m.Role != RoleSystem {
			excess--
			continue
		}
		kept = append(kept, m)
	}
	c.messages = kept
}

// Messages returns a copy of the history slice. The messages themselves are
// shared; callers must not mutate them.
func (c *Conversation) Messages() []*Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages in the history.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)
