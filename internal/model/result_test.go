package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Processing Lifecycle:
// - NewProcessingResult starts Pending with timings initialized
// - Advance walks the strict Pending → Extracting → Transforming → Loading → Completed order
// - Advance out of a terminal state returns an error
// - Completed sets FinishedAt
// - Fail from any state is terminal and records phase, code, and message
// - Terminal() is true only for Completed and Failed
// - CodeOf unwraps PipelineError codes, including wrapped ones
// - LoadResult.Succeeded reflects per-backend statuses

func TestProcessingResult_LifecycleOrder(t *testing.T) {
	t.Parallel()

	r := NewProcessingResult("id-1", "plant.zip")
	require.Equal(t, StatusPending, r.Status)
	require.NotNil(t, r.Timings)
	assert.False(t, r.Status.Terminal())

	want := []Status{StatusExtracting, StatusTransforming, StatusLoading, StatusCompleted}
	for _, next := range want {
		require.NoError(t, r.Advance())
		assert.Equal(t, next, r.Status)
	}

	assert.True(t, r.Status.Terminal())
	assert.False(t, r.FinishedAt.IsZero())

	// No transition leaves a terminal state.
	err := r.Advance()
	assert.Error(t, err)
	assert.Equal(t, StatusCompleted, r.Status)
}

func TestProcessingResult_FailIsTerminal(t *testing.T) {
	t.Parallel()

	r := NewProcessingResult("id-2", "plant.zip")
	require.NoError(t, r.Advance()) // Extracting

	r.Fail("extract", NewError(ErrInvalidArchive, "plant.zip", nil))

	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, "extract", r.Phase)
	assert.Equal(t, ErrInvalidArchive, r.ErrorCode)
	assert.Contains(t, r.Error, "plant.zip")
	assert.False(t, r.FinishedAt.IsZero())
	assert.True(t, r.Status.Terminal())

	assert.Error(t, r.Advance())
	assert.Equal(t, StatusFailed, r.Status)
}

func TestCodeOf(t *testing.T) {
	t.Parallel()

	base := NewError(ErrTier1Timeout, "engine", nil)
	assert.Equal(t, ErrTier1Timeout, CodeOf(base))
	assert.Equal(t, ErrTier1Timeout, CodeOf(fmt.Errorf("tier chain: %w", base)))
	assert.Equal(t, ErrorCode(""), CodeOf(fmt.Errorf("plain error")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestLoadResult_Succeeded(t *testing.T) {
	t.Parallel()

	ok := &LoadResult{Backends: map[string]BackendStatus{
		"relational": {Name: "relational", Success: true},
		"vector":     {Name: "vector", Success: true},
	}}
	assert.True(t, ok.Succeeded())

	partial := &LoadResult{Backends: map[string]BackendStatus{
		"relational": {Name: "relational", Success: true},
		"vector":     {Name: "vector", Error: "offline", Code: ErrBackendUnavailable},
	}}
	assert.False(t, partial.Succeeded())
}
