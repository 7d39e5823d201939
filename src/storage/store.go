package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

// Execer abstracts *sql.DB and *sql.Tx for writes.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateConversation inserts a new conversation, generating an ID when
// absent.
func CreateConversation(ctx context.Context, db Execer, conversation *Conversation) error {
	if conversation.ID == "" {
		conversation.ID = uuid.New().String()
	}
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = time.Now()
	}
	if conversation.UpdatedAt.IsZero() {
		conversation.UpdatedAt = time.Now()
	}

	query := `INSERT INTO conversations (id, title, system_prompt, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, conversation.ID, conversation.Title, conversation.SystemPrompt, conversation.CreatedAt, conversation.UpdatedAt)
	return err
}

// GetConversationByID retrieves a conversation, or nil when not found.
func GetConversationByID(ctx context.Context, db sqlscan.Querier, conversationID string) (*Conversation, error) {
	query := `SELECT id, title, system_prompt, created_at, updated_at FROM conversations WHERE id = ?`
	var conv Conversation
	err := sqlscan.Get(ctx, db, &conv, query, conversationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// CreateMessage inserts a message, generating an ID when absent.
func CreateMessage(ctx context.Context, db Execer, message *Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	query := `INSERT INTO messages (id, conversation_id, role, model, content, tool_calls, tool_call_id, name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		message.ID, message.ConversationID, message.Role, message.Model,
		message.Content, message.ToolCalls, message.ToolCallID, message.Name, message.CreatedAt)
	return err
}

// GetMessagesByConversationID returns a conversation's messages in creation
// order.
func GetMessagesByConversationID(ctx context.Context, db sqlscan.Querier, conversationID string) ([]Message, error) {
	query := `SELECT id, conversation_id, role, model, content, tool_calls, tool_call_id, name, created_at
		FROM messages WHERE conversation_id = ? ORDER BY created_at, id`
	var messages []Message
	if err := sqlscan.Select(ctx, db, &messages, query, conversationID); err != nil {
		return nil, err
	}
	return messages, nil
}

// CreateToolExecution inserts a tool execution record.
func CreateToolExecution(ctx context.Context, db Execer, exec *ToolExecution) error {
	if exec.ID == "" {
		exec.ID = uuid.New().String()
	}
	if exec.CreatedAt.IsZero() {
		exec.CreatedAt = time.Now()
	}

	query := `INSERT INTO tool_executions (id, conversation_id, call_id, tool_name, input, output, error, execution_order, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		exec.ID, exec.ConversationID, exec.CallID, exec.ToolName, exec.Input,
		exec.Output, exec.Error, exec.ExecutionOrder, exec.DurationMs, exec.CreatedAt)
	return err
}

// GetToolExecutions returns a conversation's tool executions in dispatch
// order.
func GetToolExecutions(ctx context.Context, db sqlscan.Querier, conversationID string) ([]ToolExecution, error) {
	query := `SELECT id, conversation_id, call_id, tool_name, input, output, error, execution_order, duration_ms, created_at
		FROM tool_executions WHERE conversation_id = ? ORDER BY created_at, execution_order`
	var execs []ToolExecution
	if err := sqlscan.Select(ctx, db, &execs, query, conversationID); err != nil {
		return nil, err
	}
	return execs, nil
}

// CreateUsageRow inserts a usage event row.
func CreateUsageRow(ctx context.Context, db Execer, row *UsageRow) error {
	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	if row.Timestamp.IsZero() {
		row.Timestamp = time.Now()
	}

	query := `INSERT INTO usage_records (id, timestamp, tokens, backend_id, model_id) VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, row.ID, row.Timestamp, row.Tokens, row.BackendID, row.ModelID)
	return err
}

// ListUsageRows returns all usage rows ordered by timestamp.
func ListUsageRows(ctx context.Context, db sqlscan.Querier) ([]UsageRow, error) {
	query := `SELECT id, timestamp, tokens, backend_id, model_id FROM usage_records ORDER BY timestamp`
	var rows []UsageRow
	if err := sqlscan.Select(ctx, db, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}
