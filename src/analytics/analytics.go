// Package analytics keeps an append-only log of committed usage events with
// aggregate and time-windowed queries.
package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// UsageRecord is one committed usage event. Records are immutable once
// created.
type UsageRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Tokens    int       `json:"tokens"`
	BackendID string    `json:"backend_id"`
	ModelID   string    `json:"model_id"`
}

// Analytics aggregates the recorded history.
type Analytics struct {
	RequestCount      int           `json:"request_count"`
	TotalTokensUsed   int           `json:"total_tokens_used"`
	MeanTokensPerCall float64       `json:"mean_tokens_per_call"`
	TokenUsageHistory []UsageRecord `json:"token_usage_history"`
}

// Sink receives each record as it is committed, for persistence. Sink
// failures are logged and never surfaced to the recording path.
type Sink interface {
	SaveUsageRecord(ctx context.Context, rec UsageRecord) error
}

// Recorder is an append-only usage log. Entries are never mutated or
// removed except by a full Reset.
type Recorder struct {
	mu      sync.Mutex
	records []UsageRecord
	sink    Sink
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithSink attaches a persistence sink.
func WithSink(sink Sink) Option {
	return func(r *Recorder) { r.sink = sink }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder creates an empty recorder.
func NewRecorder(logger *slog.Logger, opts ...Option) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		logger: logger.With("component", "analytics"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecordRequest appends a usage event.
func (r *Recorder) RecordRequest(tokens int, backendID, modelID string) {
	rec := UsageRecord{
		Timestamp: r.now(),
		Tokens:    tokens,
		BackendID: backendID,
		ModelID:   modelID,
	}

	r.mu.Lock()
	r.records = append(r.records, rec)
	sink := r.sink
	r.mu.Unlock()

	if sink != nil {
		if err := sink.SaveUsageRecord(context.Background(), rec); err != nil {
			r.logger.Error("failed to persist usage record", "error", err)
		}
	}
}

// Analytics returns request count, total tokens, mean tokens per request,
// and a copy of the full history.
func (r *Recorder) Analytics() Analytics {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := make([]UsageRecord, len(r.records))
	copy(history, r.records)

	total := 0
	for _, rec := range history {
		total += rec.Tokens
	}
	mean := 0.0
	if len(history) > 0 {
		mean = float64(total) / float64(len(history))
	}
	return Analytics{
		RequestCount:      len(history),
		TotalTokensUsed:   total,
		MeanTokensPerCall: mean,
		TokenUsageHistory: history,
	}
}

// UsageBetween returns records with start <= Timestamp <= end, inclusive on
// both boundaries. A zero end means "up to now".
func (r *Recorder) UsageBetween(start, end time.Time) []UsageRecord {
	if end.IsZero() {
		end = r.now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []UsageRecord
	for _, rec := range r.records {
		if rec.Timestamp.Before(start) || rec.Timestamp.After(end) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Reset discards all recorded history.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}
