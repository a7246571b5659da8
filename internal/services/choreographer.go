package services

import (
	"context"
	"sync"
	"time"

	"leadflow/internal/models"
	"leadflow/internal/utils"
	"leadflow/internal/wsnotify"
)

// Chain states. The post-conversion chain is a small state machine instead
// of a fire-and-forget side effect, so its terminal outcome is observable.
const (
	StateIdle                = "idle"
	StateAwaitingAssistant   = "awaiting_assistant"
	StateAwaitingLeadVisible = "awaiting_lead_visible"
	StateDone                = "done"
	StateAbandoned           = "abandoned"
)

// Choreographer propagates "a conversion just happened" to independently
// mounted console surfaces. One logical channel carries the signal: a live
// broadcast for mounted listeners plus scratchpad replay for surfaces that
// mount (or reload) later. At-most-once handling is enforced centrally via
// per-consumer marks, not by client-side lock flags.
//
// Scratchpad and broadcast failures only degrade the chained behavior; the
// conversion they follow has already succeeded.
type Choreographer struct {
	scratch      models.ScratchpadRepository
	api          models.LeadAPI
	chainTimeout time.Duration

	broadcast func(models.WorkflowSignal)
	openEdit  func(leadID string, issuedAt string)

	lock    sync.Mutex
	state   string
	current *models.WorkflowSignal
	timer   *time.Timer
}

func NewChoreographer(scratch models.ScratchpadRepository, api models.LeadAPI, chainTimeout time.Duration) *Choreographer {
	return &Choreographer{
		scratch:      scratch,
		api:          api,
		chainTimeout: chainTimeout,
		broadcast:    wsnotify.SendWorkflowSignalEvent,
		openEdit:     wsnotify.SendOpenEditEvent,
		state:        StateIdle,
	}
}

// Publish records a new signal and announces it. A newer signal supersedes
// whatever was pending; the scratchpad is last-writer-wins by design.
func (c *Choreographer) Publish(signal models.WorkflowSignal) {
	c.lock.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	sig := signal
	c.current = &sig
	c.state = StateAwaitingAssistant
	issuedAt := sig.IssuedAt
	c.timer = time.AfterFunc(c.chainTimeout, func() {
		c.finish(issuedAt, StateAbandoned)
	})
	c.lock.Unlock()

	if err := c.scratch.SaveSignal(&sig); err != nil {
		// Degraded: late-mounting surfaces miss the replay, live listeners
		// still get the broadcast.
		utils.LogError("Error persisting workflow signal %s: %v", sig.IssuedAt, err)
	}
	c.broadcast(sig)
}

// Pending is the replay path for a surface that mounts after the broadcast:
// it returns the stored signal unless this consumer already processed it.
func (c *Choreographer) Pending(consumer string) *models.WorkflowSignal {
	signal, err := c.scratch.LoadSignal()
	if err != nil {
		utils.LogError("Error loading workflow signal for %s: %v", consumer, err)
		return nil
	}
	if signal == nil {
		return nil
	}

	processed, err := c.scratch.IsProcessed(consumer, signal.IssuedAt)
	if err != nil {
		utils.LogError("Error checking signal mark for %s: %v", consumer, err)
		return nil
	}
	if processed {
		return nil
	}
	return signal
}

// Acknowledge claims a signal for a consumer and reports whether the claim
// is fresh. A consumer that observes the same signal through both the
// broadcast and the replay acknowledges twice but acts once.
func (c *Choreographer) Acknowledge(consumer string, issuedAt string) bool {
	fresh, err := c.scratch.MarkProcessed(consumer, issuedAt)
	if err != nil {
		// Degrade to not acting rather than acting twice.
		utils.LogError("Error marking signal %s processed for %s: %v", issuedAt, consumer, err)
		return false
	}
	return fresh
}

// AssistantCompleted advances the chain once the assistant step reports
// done. For the open-edit directive the subject lead must already be
// visible in the CRM; if it is not, the chain is abandoned without retry.
// The scratchpad is cleared at either terminal state so a stale signal can
// never replay on a later, unrelated mount. Returns the resulting state.
func (c *Choreographer) AssistantCompleted(ctx context.Context, issuedAt string) string {
	c.lock.Lock()
	if c.current == nil || c.current.IssuedAt != issuedAt || c.state != StateAwaitingAssistant {
		state := c.state
		c.lock.Unlock()
		return state
	}
	sig := *c.current
	c.state = StateAwaitingLeadVisible
	c.lock.Unlock()

	if sig.ChainDirective != models.ChainOpenEditAfterAssistant || sig.SubjectID == "" {
		return c.finish(issuedAt, StateDone)
	}

	lead, err := c.api.GetLead(ctx, sig.SubjectID)
	if err != nil || lead == nil || lead.ID == "" {
		utils.LogWarning("Lead %s not visible yet, abandoning chain for signal %s", sig.SubjectID, issuedAt)
		return c.finish(issuedAt, StateAbandoned)
	}

	c.openEdit(lead.ID, issuedAt)
	return c.finish(issuedAt, StateDone)
}

// State returns the current chain state.
func (c *Choreographer) State() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

func (c *Choreographer) finish(issuedAt string, terminal string) string {
	c.lock.Lock()
	if c.current == nil || c.current.IssuedAt != issuedAt {
		// A newer signal superseded this one; leave it alone.
		state := c.state
		c.lock.Unlock()
		return state
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.current = nil
	c.state = terminal
	c.lock.Unlock()

	if err := c.scratch.ClearSignal(); err != nil {
		utils.LogError("Error clearing workflow scratchpad: %v", err)
	}
	return terminal
}
