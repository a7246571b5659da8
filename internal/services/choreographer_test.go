package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"leadflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSignal(issuedAt string) models.WorkflowSignal {
	return models.WorkflowSignal{
		Trigger:        true,
		SubjectID:      "lead-1",
		ChainDirective: models.ChainOpenEditAfterAssistant,
		IssuedAt:       issuedAt,
	}
}

func newTestChoreographer(api *fakeLeadAPI, timeout time.Duration) (*Choreographer, *memScratchpad, *int32) {
	scratch := newMemScratchpad()
	choreo := NewChoreographer(scratch, api, timeout)
	choreo.broadcast = func(models.WorkflowSignal) {}
	var opens int32
	choreo.openEdit = func(string, string) { atomic.AddInt32(&opens, 1) }
	return choreo, scratch, &opens
}

func TestSignalProcessedAtMostOncePerConsumer(t *testing.T) {
	api := &fakeLeadAPI{leads: []models.Lead{{ID: "lead-1", Phone: "+919876543210"}}}
	choreo, _, _ := newTestChoreographer(api, time.Minute)

	choreo.Publish(testSignal("t1"))

	// Three surfaces observe the same signal, each through both the live
	// broadcast and the mount-time replay. Each acknowledges every
	// observation; only the first claim per consumer is fresh.
	fresh := 0
	for _, consumer := range []string{"assistant", "lead-list", "edit-modal"} {
		pending := choreo.Pending(consumer)
		require.NotNil(t, pending)
		assert.Equal(t, "t1", pending.IssuedAt)

		if choreo.Acknowledge(consumer, "t1") {
			fresh++
		}
		// Duplicate delivery of the same signal to the same consumer.
		assert.False(t, choreo.Acknowledge(consumer, "t1"))
		assert.Nil(t, choreo.Pending(consumer), "acknowledged signal must not replay")
	}
	assert.Equal(t, 3, fresh, "each consumer claims the signal exactly once")
}

func TestChainOpensEditOnceDespiteConcurrentCompletions(t *testing.T) {
	api := &fakeLeadAPI{leads: []models.Lead{{ID: "lead-1", Phone: "+919876543210"}}}
	choreo, scratch, opens := newTestChoreographer(api, time.Minute)

	choreo.Publish(testSignal("t1"))

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			choreo.AssistantCompleted(context.Background(), "t1")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(opens), "overlapping completions collapse into one chained action")
	assert.Equal(t, StateDone, choreo.State())

	// Scratchpad is cleared at the terminal step.
	signal, err := scratch.LoadSignal()
	require.NoError(t, err)
	assert.Nil(t, signal)
}

func TestTwoSignalsProduceTwoActions(t *testing.T) {
	api := &fakeLeadAPI{leads: []models.Lead{{ID: "lead-1", Phone: "+919876543210"}}}
	choreo, _, opens := newTestChoreographer(api, time.Minute)

	choreo.Publish(testSignal("t1"))
	assert.Equal(t, StateDone, choreo.AssistantCompleted(context.Background(), "t1"))

	choreo.Publish(testSignal("t2"))
	assert.Equal(t, StateDone, choreo.AssistantCompleted(context.Background(), "t2"))

	assert.Equal(t, int32(2), atomic.LoadInt32(opens))
}

func TestChainAbandonedWhenLeadNotVisible(t *testing.T) {
	api := &fakeLeadAPI{}
	choreo, scratch, opens := newTestChoreographer(api, time.Minute)

	choreo.Publish(testSignal("t1"))
	state := choreo.AssistantCompleted(context.Background(), "t1")

	assert.Equal(t, StateAbandoned, state)
	assert.Equal(t, int32(0), atomic.LoadInt32(opens))

	// Cleared regardless of lookup success, so the stale signal can never
	// replay on a later mount.
	signal, err := scratch.LoadSignal()
	require.NoError(t, err)
	assert.Nil(t, signal)
}

func TestChainAbandonedOnTimeout(t *testing.T) {
	api := &fakeLeadAPI{leads: []models.Lead{{ID: "lead-1", Phone: "+919876543210"}}}
	choreo, scratch, _ := newTestChoreographer(api, 20*time.Millisecond)

	choreo.Publish(testSignal("t1"))

	require.Eventually(t, func() bool {
		return choreo.State() == StateAbandoned
	}, time.Second, 5*time.Millisecond)

	signal, err := scratch.LoadSignal()
	require.NoError(t, err)
	assert.Nil(t, signal)

	// A completion arriving after the timeout is ignored.
	assert.Equal(t, StateAbandoned, choreo.AssistantCompleted(context.Background(), "t1"))
}

func TestStaleCompletionIgnored(t *testing.T) {
	api := &fakeLeadAPI{leads: []models.Lead{{ID: "lead-1", Phone: "+919876543210"}}}
	choreo, _, opens := newTestChoreographer(api, time.Minute)

	choreo.Publish(testSignal("t1"))
	choreo.Publish(testSignal("t2"))

	// Completing the superseded signal does nothing.
	assert.Equal(t, StateAwaitingAssistant, choreo.AssistantCompleted(context.Background(), "t1"))
	assert.Equal(t, int32(0), atomic.LoadInt32(opens))

	assert.Equal(t, StateDone, choreo.AssistantCompleted(context.Background(), "t2"))
	assert.Equal(t, int32(1), atomic.LoadInt32(opens))
}

func TestPublishDegradesWhenScratchpadFails(t *testing.T) {
	api := &fakeLeadAPI{leads: []models.Lead{{ID: "lead-1", Phone: "+919876543210"}}}
	scratch := newMemScratchpad()
	scratch.saveErr = assert.AnError
	choreo := NewChoreographer(scratch, api, time.Minute)

	broadcasts := 0
	choreo.broadcast = func(models.WorkflowSignal) { broadcasts++ }
	choreo.openEdit = func(string, string) {}

	// Publishing must not fail the conversion path.
	choreo.Publish(testSignal("t1"))
	assert.Equal(t, 1, broadcasts, "live listeners still get the broadcast")
	assert.Equal(t, StateAwaitingAssistant, choreo.State())
}
