package executor

import (
	"context"
	"encoding/json"

	"github.com/cadenzr/turnpike/src/aisdk"
	"github.com/cadenzr/turnpike/src/dispatch"
	"github.com/cadenzr/turnpike/src/storage"
)

// Persistence is a best-effort side channel: failures are logged and never
// fail the turn, and the loop's contract does not depend on it.

func (s *Service) saveMessage(ctx context.Context, conversationID string, msg *aisdk.Message) {
	if s.store == nil || conversationID == "" {
		return
	}

	row := &storage.Message{
		ConversationID: conversationID,
		Role:           msg.Role,
		Model:          s.model(),
		Content:        msg.Content,
		ToolCallID:     msg.ToolCallID,
		Name:           msg.Name,
	}
	if len(msg.ToolCalls) > 0 {
		b, err := json.Marshal(msg.ToolCalls)
		if err != nil {
			s.logger.Error("failed to marshal tool calls", "error", err)
		} else {
			str := string(b)
			row.ToolCalls = &str
		}
	}

	if err := storage.CreateMessage(ctx, s.store.DB(), row); err != nil {
		s.logger.Error("failed to save message", "role", msg.Role, "error", err)
	}
}

func (s *Service) saveToolExecution(ctx context.Context, conversationID string, order int, outcome *dispatch.Outcome) {
	if s.store == nil || conversationID == "" {
		return
	}

	exec := &storage.ToolExecution{
		ConversationID: conversationID,
		CallID:         outcome.Call.ID,
		ToolName:       outcome.Call.Function.Name,
		Input:          string(outcome.Call.Function.Arguments),
		ExecutionOrder: order,
		DurationMs:     outcome.Duration.Milliseconds(),
	}
	if outcome.Err != nil {
		exec.Error = outcome.Err.Error()
	} else if outcome.Response != nil {
		exec.Output = string(outcome.Response.Content)
	}

	if err := storage.CreateToolExecution(ctx, s.store.DB(), exec); err != nil {
		s.logger.Error("failed to save tool execution", "tool", exec.ToolName, "error", err)
	}
}
