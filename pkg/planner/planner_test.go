package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/duty-planner-go/pkg/models"
)

// stubClient scripts the proposal service: a canned reply, a forced error,
// or a delay long enough to trip the call timeout.
type stubClient struct {
	reply string
	err   error
	delay time.Duration
}

func (s *stubClient) Complete(ctx context.Context, prompt string) (string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestGenerateAISuccess(t *testing.T) {
	cat := testCatalog(t, models.Slot{ID: "counter", Min: 1, Max: 2, Priority: 1})
	client := &stubClient{reply: `{"assignments": [
		{"worker": "w1", "slot": "counter", "role": "Lead", "score": 15},
		{"worker": "w2", "slot": "counter", "role": "Member", "score": 11}
	]}`}

	result := New(cat, WithClient(client)).Generate(context.Background(), "2026-03-05", testRoster())

	require.NotNil(t, result)
	assert.Equal(t, models.SourceAIOptimized, result.Source)
	assert.Equal(t, "2026-03-05", result.Day)
	assert.NotEmpty(t, result.ID)
	require.Len(t, result.Assignments, 2)
	assert.Equal(t, models.SlotFill{Assigned: 2, Min: 1, Max: 2}, result.Fills["counter"])
}

func TestGenerateFallsBackOnServiceError(t *testing.T) {
	cat := testCatalog(t, models.Slot{ID: "counter", Min: 1, Max: 1, Priority: 1})
	client := &stubClient{err: errors.New("upstream 503")}

	result := New(cat, WithClient(client)).Generate(context.Background(), "2026-03-05", testRoster())

	assert.Equal(t, models.SourceDeterministicFallback, result.Source)
	require.Len(t, result.Assignments, 1)

	foundReason := false
	for _, n := range result.Notes {
		if n == "proposal path unavailable: proposal service: upstream 503" {
			foundReason = true
		}
	}
	assert.True(t, foundReason, "the fallback reason surfaces as a note, got %v", result.Notes)
}

func TestGenerateFallsBackOnGarbageReply(t *testing.T) {
	cat := testCatalog(t, models.Slot{ID: "counter", Min: 1, Max: 1, Priority: 1})
	client := &stubClient{reply: "I am sorry, I cannot produce a roster today."}

	result := New(cat, WithClient(client)).Generate(context.Background(), "2026-03-05", testRoster())

	assert.Equal(t, models.SourceDeterministicFallback, result.Source)
	require.Len(t, result.Assignments, 1, "the deterministic path still staffs the slot")
}

func TestGenerateFallsBackOnTimeout(t *testing.T) {
	cat := testCatalog(t, models.Slot{ID: "counter", Min: 1, Max: 1, Priority: 1})
	client := &stubClient{delay: 200 * time.Millisecond, reply: "{}"}

	p := New(cat, WithClient(client), WithTimeout(10*time.Millisecond))
	result := p.Generate(context.Background(), "2026-03-05", testRoster())

	assert.Equal(t, models.SourceDeterministicFallback, result.Source)
	require.Len(t, result.Assignments, 1)
}

func TestGenerateWithoutClient(t *testing.T) {
	cat := testCatalog(t, models.Slot{ID: "counter", Min: 1, Max: 1, Priority: 1})

	result := New(cat).Generate(context.Background(), "2026-03-05", testRoster())

	assert.Equal(t, models.SourceDeterministicFallback, result.Source)
	require.Len(t, result.Assignments, 1)

	foundSpread := false
	for _, n := range result.Notes {
		if len(n) > 8 && n[:8] == "workload" {
			foundSpread = true
		}
	}
	assert.True(t, foundSpread, "expected a workload spread note, got %v", result.Notes)
}

func TestGenerateRejectedProposalFallsBack(t *testing.T) {
	// The reply parses but leaves a staffable required slot empty, so
	// validation rejects it and the deterministic path takes over.
	cat := testCatalog(t,
		models.Slot{ID: "counter", Min: 1, Max: 1, Priority: 1},
		models.Slot{ID: "floor", Min: 0, Max: 2, Priority: 2},
	)
	client := &stubClient{reply: `{"assignments": [{"worker": "w1", "slot": "floor"}]}`}

	result := New(cat, WithClient(client)).Generate(context.Background(), "2026-03-05", testRoster())

	assert.Equal(t, models.SourceDeterministicFallback, result.Source)

	staffed := false
	for _, a := range result.Assignments {
		if a.SlotID == "counter" {
			staffed = true
		}
	}
	assert.True(t, staffed, "fallback must staff the required slot")
}

func TestGenerateNeverReturnsNilSlices(t *testing.T) {
	cat := testCatalog(t, models.Slot{ID: "forge", Min: 0, Max: 1, RequiredSkill: "smith"})

	result := New(cat).Generate(context.Background(), "2026-03-05", nil)

	require.NotNil(t, result)
	assert.NotNil(t, result.Assignments)
	assert.NotNil(t, result.Notes)
	assert.Contains(t, result.Fills, "forge")
}
