package storage

import "time"

// Conversation is one persisted conversation.
type Conversation struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	SystemPrompt string    `json:"system_prompt" db:"system_prompt"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Message is one persisted turn element.
type Message struct {
	ID             string    `json:"id" db:"id"`
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	Role           string    `json:"role" db:"role"`
	Model          string    `json:"model" db:"model"`
	Content        string    `json:"content" db:"content"`
	ToolCalls      *string   `json:"tool_calls,omitempty" db:"tool_calls"` // JSON array of tool calls
	ToolCallID     string    `json:"tool_call_id,omitempty" db:"tool_call_id"`
	Name           string    `json:"name,omitempty" db:"name"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ToolExecution records one dispatched tool invocation.
type ToolExecution struct {
	ID             string    `json:"id" db:"id"`
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	CallID         string    `json:"call_id" db:"call_id"`
	ToolName       string    `json:"tool_name" db:"tool_name"`
	Input          string    `json:"input" db:"input"`
	Output         string    `json:"output" db:"output"`
	Error          string    `json:"error" db:"error"`
	ExecutionOrder int       `json:"execution_order" db:"execution_order"`
	DurationMs     int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// UsageRow is one persisted usage event.
type UsageRow struct {
	ID        string    `json:"id" db:"id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Tokens    int       `json:"tokens" db:"tokens"`
	BackendID string    `json:"backend_id" db:"backend_id"`
	ModelID   string    `json:"model_id" db:"model_id"`
}
