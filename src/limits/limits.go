// Package limits enforces per-conversation request and token budgets.
// Checks run before any network call is issued, so a predictably oversized
// request never reaches the backend.
package limits

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrBudgetExceeded is matched by errors.Is for any rejected admission
	// check or commit.
	ErrBudgetExceeded = errors.New("budget exceeded")

	// ErrInvalidLimit indicates a negative limit was configured.
	ErrInvalidLimit = errors.New("limit must be zero or positive")
)

// BudgetKind identifies which ceiling was hit.
type BudgetKind string

const (
	BudgetTokens   BudgetKind = "tokens"
	BudgetRequests BudgetKind = "requests"
)

// BudgetExceededError reports a rejected check with the numbers involved.
type BudgetExceededError struct {
	Kind      BudgetKind
	Used      int
	Requested int
	Limit     int
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("%s budget exceeded: used %d + requested %d > limit %d",
		e.Kind, e.Used, e.Requested, e.Limit)
}

func (e *BudgetExceededError) Is(target error) bool {
	return target == ErrBudgetExceeded
}

// Info is a snapshot of configured ceilings and running counters.
type Info struct {
	MaxTokens    int `json:"max_tokens"`
	MaxRequests  int `json:"max_requests"`
	UsedTokens   int `json:"used_tokens"`
	UsedRequests int `json:"used_requests"`
}

// Tracker holds configured ceilings and running counters. A max of zero
// means unlimited, not a literal zero budget.
type Tracker struct {
	mu           sync.Mutex
	maxTokens    int
	maxRequests  int
	usedTokens   int
	usedRequests int
}

// NewTracker creates a tracker with the given ceilings. Negative values are
// a configuration error.
func NewTracker(maxTokens, maxRequests int) (*Tracker, error) {
	if maxTokens < 0 {
		return nil, fmt.Errorf("%w: max tokens %d", ErrInvalidLimit, maxTokens)
	}
	if maxRequests < 0 {
		return nil, fmt.Errorf("%w: max requests %d", ErrInvalidLimit, maxRequests)
	}
	return &Tracker{maxTokens: maxTokens, maxRequests: maxRequests}, nil
}

// CheckEstimatedTokenLimit rejects when committing the estimate would push
// token usage over the ceiling. Skipped when the token limit is unlimited.
func (t *Tracker) CheckEstimatedTokenLimit(estimate int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checkTokensLocked(estimate)
}

// CheckRequestLimit rejects when one more request would exceed the request
// ceiling. Skipped when the request limit is unlimited.
func (t *Tracker) CheckRequestLimit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checkRequestsLocked()
}

// RecordRequest re-validates both limits against actual usage and, only if
// both pass, commits one request and actualTokens tokens. A failed commit
// leaves the counters untouched.
func (t *Tracker) RecordRequest(actualTokens int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkTokensLocked(actualTokens); err != nil {
		return err
	}
	if err := t.checkRequestsLocked(); err != nil {
		return err
	}
	t.usedRequests++
	t.usedTokens += actualTokens
	return nil
}

// Reset zeroes the counters, preserving configured maxima.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usedTokens = 0
	t.usedRequests = 0
}

// Info returns a snapshot of the tracker state.
func (t *Tracker) Info() Info {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Info{
		MaxTokens:    t.maxTokens,
		MaxRequests:  t.maxRequests,
		UsedTokens:   t.usedTokens,
		UsedRequests: t.usedRequests,
	}
}

func (t *Tracker) checkTokensLocked(tokens int) error {
	if t.maxTokens == 0 {
		return nil
	}
	if t.usedTokens+tokens > t.maxTokens {
		return &BudgetExceededError{
			Kind:      BudgetTokens,
			Used:      t.usedTokens,
			Requested: tokens,
			Limit:     t.maxTokens,
		}
	}
	return nil
}

func (t *Tracker) checkRequestsLocked() error {
	if t.maxRequests == 0 {
		return nil
	}
	if t.usedRequests+1 > t.maxRequests {
		return &BudgetExceededError{
			Kind:      BudgetRequests,
			Used:      t.usedRequests,
			Requested: 1,
			Limit:     t.maxRequests,
		}
	}
	return nil
}
