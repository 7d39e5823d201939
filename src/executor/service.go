// Package executor drives one conversation turn end to end: context
// assembly, budget admission, backend calls, tool dispatch, and usage
// accounting.
package executor

import (
	"log/slog"

	"github.com/cadenzr/turnpike/src/aisdk"
	"github.com/cadenzr/turnpike/src/analytics"
	"github.com/cadenzr/turnpike/src/dispatch"
	"github.com/cadenzr/turnpike/src/limits"
	"github.com/cadenzr/turnpike/src/storage"
	"github.com/cadenzr/turnpike/src/tokencount"
	"github.com/cadenzr/turnpike/src/toolkit"
)

// Service executes conversation turns. Each stateful collaborator is
// constructed independently and injected here; the service owns none of
// their lifecycles beyond the turn.
type Service struct {
	backend   aisdk.ModelClient
	backendID string

	limits    *limits.Tracker
	analytics *analytics.Recorder
	estimator *tokencount.Counter
	toolbox   *toolkit.Toolbox
	store     *storage.DB

	logger       *slog.Logger
	systemPrompt string
	systemMsgs   []*aisdk.Message

	temperature *float64
	maxTokens   *int
	stream      bool
	dispatch    dispatch.Options
}

// ServiceConfig holds the dependencies and defaults for a Service.
type ServiceConfig struct {
	// Backend is the text-generation client. Required.
	Backend aisdk.ModelClient
	// BackendID labels usage records, e.g. "openai" or "local". Optional.
	BackendID string

	// Limits is the budget ledger. Required; construct with zero maxima
	// for unlimited operation.
	Limits *limits.Tracker

	// Analytics records committed usage. Optional.
	Analytics *analytics.Recorder
	// Estimator estimates request tokens for admission checks. Optional;
	// a default counter is created when nil.
	Estimator *tokencount.Counter
	// Toolbox provides the tool invocation capability. Optional; without
	// it, requested tool calls produce error-shaped results.
	Toolbox *toolkit.Toolbox
	// Store persists messages and tool executions best-effort. Optional.
	Store *storage.DB

	// SystemPrompt is the default system prompt.
	SystemPrompt string
	// SystemMessages, when set, replace the default prompt (see
	// resolveSystemContent for precedence).
	SystemMessages []*aisdk.Message

	// Temperature and MaxTokens are instance defaults forwarded to the
	// backend; per-turn values override them.
	Temperature *float64
	MaxTokens   *int

	// Stream makes backend calls streaming; chunks are aggregated into a
	// complete response before the turn proceeds.
	Stream bool

	// Dispatch controls tool-call batching and pacing.
	Dispatch dispatch.Options

	Logger *slog.Logger
}

// NewService creates a turn executor.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Backend == nil {
		return nil, ErrBackendRequired
	}
	if cfg.Limits == nil {
		return nil, ErrLimitsRequired
	}
	if cfg.Estimator == nil {
		cfg.Estimator = tokencount.NewCounter()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		backend:      cfg.Backend,
		backendID:    cfg.BackendID,
		limits:       cfg.Limits,
		analytics:    cfg.Analytics,
		estimator:    cfg.Estimator,
		toolbox:      cfg.Toolbox,
		store:        cfg.Store,
		logger:       cfg.Logger.With("component", "executor"),
		systemPrompt: cfg.SystemPrompt,
		systemMsgs:   cfg.SystemMessages,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		stream:       cfg.Stream,
		dispatch:     cfg.Dispatch,
	}, nil
}

// Limits exposes the budget ledger, e.g. for reporting.
func (s *Service) Limits() *limits.Tracker { return s.limits }

// Analytics exposes the usage recorder, or nil when none is configured.
func (s *Service) Analytics() *analytics.Recorder { return s.analytics }
