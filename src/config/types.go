// Package config defines the typed configuration surface and its loader.
// The option set is closed: unknown keys in a config file are rejected at
// load time rather than silently carried along.
package config

import "fmt"

// Config is the complete application configuration.
type Config struct {
	// Version of the configuration format.
	Version string `json:"version"`

	// Backend configuration.
	Backend BackendConfig `json:"backend"`

	// Limits configuration for the usage ledger.
	Limits LimitsConfig `json:"limits"`

	// Call defaults applied to every backend request.
	Call CallConfig `json:"call"`

	// Tools configuration for the dispatcher.
	Tools ToolsConfig `json:"tools"`

	// Logging configuration.
	Logging LoggingConfig `json:"logging"`

	// Data directory configuration.
	Data DataConfig `json:"data"`
}

// BackendConfig identifies the chat completions endpoint.
type BackendConfig struct {
	// BaseURL of an OpenAI-compatible API.
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"`

	// APIKey for authentication. APIKeyEnvVar takes precedence when both
	// are set and the variable is present.
	APIKey       string `json:"api_key,omitempty"`
	APIKeyEnvVar string `json:"api_key_env_var,omitempty"`

	// Model identifier sent with every request.
	Model string `json:"model" validate:"required"`

	// RetryCount bounds transport-level retries on server errors.
	RetryCount int `json:"retry_count,omitempty" validate:"min=0"`
}

// LimitsConfig configures the usage ledger. Zero means unlimited.
type LimitsConfig struct {
	MaxTokenLimit   int `json:"max_token_limit" validate:"min=0"`
	MaxRequestLimit int `json:"max_request_limit" validate:"min=0"`
}

// CallConfig holds per-request defaults.
type CallConfig struct {
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
	MaxTokens   *int     `json:"max_tokens,omitempty" validate:"omitempty,min=1"`

	// SystemPrompt is the default system prompt. SystemMessages, when
	// non-empty, replaces it entirely.
	SystemPrompt   string   `json:"system_prompt,omitempty"`
	SystemMessages []string `json:"system_messages,omitempty"`
}

// ToolsConfig configures parallel tool dispatch.
type ToolsConfig struct {
	// DisableParallel forces every call to run sequentially in issue
	// order. Parallel dispatch is the default.
	DisableParallel bool `json:"disable_parallel,omitempty"`

	MaxConcurrent  int `json:"max_concurrent" validate:"min=1"`
	StaggerDelayMs int `json:"stagger_delay_ms" validate:"min=0"`
	BatchDelayMs   int `json:"batch_delay_ms" validate:"min=0"`
	TimeoutSeconds int `json:"timeout_seconds" validate:"min=0"`
}

// LoggingConfig defines logging output.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`

	// Format is the output format (text, json).
	Format string `json:"format,omitempty" validate:"omitempty,oneof=text json"`
}

// DataConfig defines where application data is stored.
type DataConfig struct {
	// Directory holding the sqlite database. Defaults to the XDG data dir.
	Directory string `json:"directory,omitempty"`
}

// ValidationError reports one rejected configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration field %q: %s", e.Field, e.Message)
}
