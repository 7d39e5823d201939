package executor

import (
	"context"
	"fmt"

	"github.com/cadenzr/turnpike/src/aisdk"
	"github.com/cadenzr/turnpike/src/dispatch"
	"github.com/cadenzr/turnpike/src/toolkit"
)

// TurnRequest describes one user turn.
type TurnRequest struct {
	// Content is the user message. Required.
	Content string

	// SystemPrompt overrides all configured system content for this turn.
	SystemPrompt string

	// Temperature and MaxTokens override the instance defaults.
	Temperature *float64
	MaxTokens   *int

	// DisableTools suppresses tool advertising for the whole turn.
	DisableTools bool
}

// TurnResult is the outcome of a completed turn.
type TurnResult struct {
	// Message is the final assistant message appended to history.
	Message *aisdk.Message
	// Content is the final assistant text.
	Content string
	// ToolMessages are the ordered tool-result messages of this turn, if
	// any tools ran.
	ToolMessages []*aisdk.Message
	// Usage is the summed backend-reported usage for the turn.
	Usage aisdk.Usage
	// BackendCalls is the number of chat calls issued (1, or 2 when tools
	// ran).
	BackendCalls int
}

// ExecuteTurn runs one user turn: at most one tool-dispatching backend call
// followed by one synthesis call with tool-calling disabled. Recursive tool
// calling is deliberately unsupported; a caller wanting it issues a new
// turn.
func (s *Service) ExecuteTurn(ctx context.Context, conv *aisdk.Conversation, req *TurnRequest) (*TurnResult, error) {
	if conv == nil {
		return nil, ErrNilConversation
	}
	if req == nil || req.Content == "" {
		return nil, ErrEmptyUserMessage
	}

	userMsg := &aisdk.Message{Role: aisdk.RoleUser, Content: req.Content}
	conv.Append(userMsg)
	s.saveMessage(ctx, conv.ID, userMsg)

	sys := resolveSystemContent(s.systemPrompt, s.systemMsgs, req.SystemPrompt)
	messages := assembleContext(conv, sys)

	// Admission runs before any network call: a predictably oversized
	// request is rejected with zero spend.
	estimate := s.estimator.EstimateRequest(s.model(), messages)
	if err := s.limits.CheckEstimatedTokenLimit(estimate); err != nil {
		return nil, err
	}
	if err := s.limits.CheckRequestLimit(); err != nil {
		return nil, err
	}

	var tools []*aisdk.ChatTool
	if !req.DisableTools && s.toolbox != nil {
		tools = toolkit.ToChatTools(s.toolbox.Tools())
	}

	result := &TurnResult{}

	resp, err := s.chat(ctx, messages, tools, "auto", req)
	if err != nil {
		return nil, err
	}
	result.BackendCalls++
	result.Usage.Add(resp.Usage)

	assistant := resp.Choices[0].Message
	assistant.Role = aisdk.RoleAssistant
	// The assistant message lands in history before any tool executes, so
	// an interrupted dispatch leaves a consistent, resumable record.
	conv.Append(&assistant)
	s.saveMessage(ctx, conv.ID, &assistant)

	if err := s.commitUsage(messages, resp); err != nil {
		return nil, err
	}

	if len(assistant.ToolCalls) == 0 {
		result.Message = &assistant
		result.Content = assistant.Content
		return result, nil
	}

	s.logger.Debug("dispatching tool calls", "count", len(assistant.ToolCalls))
	outcomes := dispatch.Run(ctx, assistant.ToolCalls, s.invoker(), s.dispatch)

	for i := range outcomes {
		msg := outcomes[i].Message()
		conv.Append(msg)
		result.ToolMessages = append(result.ToolMessages, msg)
		s.saveMessage(ctx, conv.ID, msg)
		s.saveToolExecution(ctx, conv.ID, i, &outcomes[i])
	}

	// Synthesis call: tool-calling explicitly disabled to bound the turn
	// at exactly two backend calls.
	messages = assembleContext(conv, sys)
	resp, err = s.chat(ctx, messages, nil, "none", req)
	if err != nil {
		return nil, err
	}
	result.BackendCalls++
	result.Usage.Add(resp.Usage)

	if err := s.commitUsage(messages, resp); err != nil {
		return nil, err
	}

	final := resp.Choices[0].Message
	final.Role = aisdk.RoleAssistant
	conv.Append(&final)
	s.saveMessage(ctx, conv.ID, &final)

	result.Message = &final
	result.Content = final.Content
	return result, nil
}

// chat issues one backend call with per-turn overrides applied.
func (s *Service) chat(ctx context.Context, messages []*aisdk.Message, tools []*aisdk.ChatTool, toolChoice string, req *TurnRequest) (*aisdk.ChatCompletionResponse, error) {
	ccr := &aisdk.ChatCompletionRequest{
		Model:       s.model(),
		Messages:    messages,
		Temperature: coalesce(req.Temperature, s.temperature),
		MaxTokens:   coalesce(req.MaxTokens, s.maxTokens),
	}
	if len(tools) > 0 {
		ccr.Tools = tools
		ccr.ToolChoice = toolChoice
	} else if toolChoice == "none" {
		ccr.ToolChoice = toolChoice
	}

	var resp *aisdk.ChatCompletionResponse
	var err error
	if s.stream {
		resp, err = s.chatStream(ctx, ccr)
	} else {
		resp, err = s.backend.CreateChatCompletion(ctx, ccr)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	return resp, nil
}

// chatStream consumes a chunk stream and folds it into one complete
// response, so the rest of the turn is agnostic to the delivery mode.
func (s *Service) chatStream(ctx context.Context, ccr *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	stream, err := s.backend.CreateChatCompletionStream(ctx, ccr)
	if err != nil {
		return nil, err
	}
	agg := &aisdk.StreamAggregator{}
	var received bool
	err = aisdk.StreamToCallback(stream, func(chunk *aisdk.StreamChunk) error {
		received = true
		agg.AddChunk(chunk)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !received {
		return nil, ErrEmptyResponse
	}
	return agg.Response(), nil
}

// commitUsage records backend-reported usage against the ledger, the
// analytics log, and the estimator's calibration. Absent usage means
// nothing to record; a rejected commit surfaces to the caller with the
// counters untouched.
func (s *Service) commitUsage(messages []*aisdk.Message, resp *aisdk.ChatCompletionResponse) error {
	if resp.Usage == nil {
		s.logger.Debug("backend reported no usage; skipping commit")
		return nil
	}
	if err := s.limits.RecordRequest(resp.Usage.TotalTokens); err != nil {
		return err
	}
	if s.analytics != nil {
		s.analytics.RecordRequest(resp.Usage.TotalTokens, s.backendID, s.model())
	}
	s.estimator.RecordUsage(messages, resp.Usage.PromptTokens)
	return nil
}

// invoker adapts the toolbox into the dispatcher's invocation capability.
func (s *Service) invoker() dispatch.Invoker {
	if s.toolbox == nil {
		return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
			return nil, fmt.Errorf("tool execution not available: no toolbox configured")
		}
	}
	return s.toolbox.Execute
}

func (s *Service) model() string {
	if info := s.backend.GetModelInfo(); info != nil {
		return info.ID
	}
	return ""
}

func coalesce[T any](override, fallback *T) *T {
	if override != nil {
		return override
	}
	return fallback
}
