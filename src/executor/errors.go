package executor

import "errors"

var (
	// Config validation errors
	ErrBackendRequired  = errors.New("backend client is required")
	ErrLimitsRequired   = errors.New("limit tracker is required")
	ErrEmptyUserMessage = errors.New("user message content is required")
	ErrNilConversation  = errors.New("conversation is required")

	// ErrBackendUnavailable wraps chat-call failures. The turn is aborted
	// and the original cause is attached; there is no automatic retry.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrEmptyResponse indicates the backend returned no choices.
	ErrEmptyResponse = errors.New("empty response from backend")
)
