package limits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrackerRejectsNegativeLimits(t *testing.T) {
	_, err := NewTracker(-1, 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)

	_, err = NewTracker(0, -5)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestZeroMeansUnlimited(t *testing.T) {
	tr, err := NewTracker(0, 0)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		require.NoError(t, tr.CheckEstimatedTokenLimit(1 << 20))
		require.NoError(t, tr.CheckRequestLimit())
		require.NoError(t, tr.RecordRequest(1<<20))
	}
	info := tr.Info()
	assert.Equal(t, 1000, info.UsedRequests)
	assert.Equal(t, 1000<<20, info.UsedTokens)
}

func TestCheckEstimatedTokenLimit(t *testing.T) {
	tr, err := NewTracker(100, 0)
	require.NoError(t, err)

	assert.NoError(t, tr.CheckEstimatedTokenLimit(100))
	assert.ErrorIs(t, tr.CheckEstimatedTokenLimit(101), ErrBudgetExceeded)

	require.NoError(t, tr.RecordRequest(60))
	assert.NoError(t, tr.CheckEstimatedTokenLimit(40))
	assert.ErrorIs(t, tr.CheckEstimatedTokenLimit(41), ErrBudgetExceeded)
}

func TestCheckRequestLimit(t *testing.T) {
	tr, err := NewTracker(0, 2)
	require.NoError(t, err)

	require.NoError(t, tr.RecordRequest(1))
	require.NoError(t, tr.RecordRequest(1))
	err = tr.CheckRequestLimit()
	assert.ErrorIs(t, err, ErrBudgetExceeded)

	var bex *BudgetExceededError
	require.ErrorAs(t, err, &bex)
	assert.Equal(t, BudgetRequests, bex.Kind)
	assert.Equal(t, 2, bex.Used)
	assert.Equal(t, 2, bex.Limit)
}

func TestRecordRequestIsAtomic(t *testing.T) {
	// Budget of 150 tokens, two commits of 100 actual tokens: the first
	// succeeds, the second is rejected without touching the counters.
	tr, err := NewTracker(150, 0)
	require.NoError(t, err)

	require.NoError(t, tr.RecordRequest(100))

	err = tr.RecordRequest(100)
	assert.ErrorIs(t, err, ErrBudgetExceeded)

	info := tr.Info()
	assert.Equal(t, 100, info.UsedTokens)
	assert.Equal(t, 1, info.UsedRequests)
}

func TestRecordRequestCountersMatchCommits(t *testing.T) {
	tr, err := NewTracker(0, 0)
	require.NoError(t, err)

	commits := []int{10, 20, 30, 0, 5}
	total := 0
	for _, n := range commits {
		require.NoError(t, tr.RecordRequest(n))
		total += n
	}

	info := tr.Info()
	assert.Equal(t, len(commits), info.UsedRequests)
	assert.Equal(t, total, info.UsedTokens)
}

func TestResetPreservesMaxima(t *testing.T) {
	tr, err := NewTracker(500, 10)
	require.NoError(t, err)
	require.NoError(t, tr.RecordRequest(123))

	tr.Reset()

	info := tr.Info()
	assert.Equal(t, 0, info.UsedTokens)
	assert.Equal(t, 0, info.UsedRequests)
	assert.Equal(t, 500, info.MaxTokens)
	assert.Equal(t, 10, info.MaxRequests)
}
