package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening must not attempt to re-apply migration 1.
	db, err = Open(path)
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestConversationRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	conv := &Conversation{Title: "budget planning", SystemPrompt: "You are terse."}
	require.NoError(t, CreateConversation(ctx, db.DB(), conv))
	require.NotEmpty(t, conv.ID)

	got, err := GetConversationByID(ctx, db.DB(), conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "budget planning", got.Title)
	assert.Equal(t, "You are terse.", got.SystemPrompt)

	missing, err := GetConversationByID(ctx, db.DB(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMessagesOrderedByCreation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	conv := &Conversation{}
	require.NoError(t, CreateConversation(ctx, db.DB(), conv))

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	toolCalls := `[{"id":"call_1","type":"function"}]`
	msgs := []*Message{
		{ConversationID: conv.ID, Role: "user", Content: "hi", CreatedAt: base},
		{ConversationID: conv.ID, Role: "assistant", ToolCalls: &toolCalls, CreatedAt: base.Add(time.Second)},
		{ConversationID: conv.ID, Role: "tool", Content: "{}", ToolCallID: "call_1", Name: "echo", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, m := range msgs {
		require.NoError(t, CreateMessage(ctx, db.DB(), m))
	}

	got, err := GetMessagesByConversationID(ctx, db.DB(), conv.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "user", got[0].Role)
	require.NotNil(t, got[1].ToolCalls)
	assert.Equal(t, toolCalls, *got[1].ToolCalls)
	assert.Equal(t, "call_1", got[2].ToolCallID)
}

func TestToolExecutionRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	conv := &Conversation{}
	require.NoError(t, CreateConversation(ctx, db.DB(), conv))

	exec := &ToolExecution{
		ConversationID: conv.ID,
		CallID:         "call_1",
		ToolName:       "read_file",
		Input:          `{"path":"/tmp/x"}`,
		Output:         `{"content":"data"}`,
		ExecutionOrder: 0,
		DurationMs:     12,
	}
	require.NoError(t, CreateToolExecution(ctx, db.DB(), exec))

	got, err := GetToolExecutions(ctx, db.DB(), conv.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "read_file", got[0].ToolName)
	assert.Equal(t, int64(12), got[0].DurationMs)
}

func TestUsageRows(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i, tokens := range []int{100, 50} {
		require.NoError(t, CreateUsageRow(ctx, db.DB(), &UsageRow{
			Timestamp: time.Date(2026, 5, 1, 10, i, 0, 0, time.UTC),
			Tokens:    tokens,
			BackendID: "openai",
			ModelID:   "gpt-4o",
		}))
	}

	rows, err := ListUsageRows(ctx, db.DB())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 100, rows[0].Tokens)
	assert.Equal(t, 50, rows[1].Tokens)
}
