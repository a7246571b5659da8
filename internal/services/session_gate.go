package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"leadflow/internal/models"
	"leadflow/internal/utils"
)

// SessionGate decides whether a free-form reply is allowed on a conversation
// or whether a template message is required. The channel permits free-form
// replies only inside its session window (24h since the contact's last
// inbound message); outside the window, or whenever the window status is
// unknown, the gate fails closed and requires a template.
type SessionGate struct {
	api             models.ChannelAPI
	window          time.Duration
	defaultTemplate string
	language        string

	lock       sync.Mutex
	assumeOpen map[string]time.Time
	lastKnown  map[string]bool
	now        func() time.Time
}

func NewSessionGate(api models.ChannelAPI, window time.Duration, defaultTemplate string, language string) *SessionGate {
	return &SessionGate{
		api:             api,
		window:          window,
		defaultTemplate: defaultTemplate,
		language:        language,
		assumeOpen:      make(map[string]time.Time),
		lastKnown:       make(map[string]bool),
		now:             time.Now,
	}
}

// CanSendFreeform reports whether a free-form reply is currently permitted.
// A successful send marks the session assume-open, which short-circuits the
// status call until the assumption expires with the session window or a
// later status check or failed send replaces it; a failed status call falls
// back to the last known state, which defaults to closed.
func (g *SessionGate) CanSendFreeform(ctx context.Context, contactNumber string) bool {
	g.lock.Lock()
	if expiry, ok := g.assumeOpen[contactNumber]; ok {
		if g.now().Before(expiry) {
			g.lock.Unlock()
			utils.LogDebug("Session for %s assumed open after recent send", contactNumber)
			return true
		}
		delete(g.assumeOpen, contactNumber)
	}
	g.lock.Unlock()

	status, err := g.api.GetSessionStatus(ctx, contactNumber)
	if err != nil {
		utils.LogWarning("Session status unknown for %s, failing closed: %v", contactNumber, err)
		g.lock.Lock()
		defer g.lock.Unlock()
		return g.lastKnown[contactNumber]
	}

	g.lock.Lock()
	g.lastKnown[contactNumber] = status.WithinWindow
	delete(g.assumeOpen, contactNumber)
	g.lock.Unlock()
	return status.WithinWindow
}

// SelectSendMode returns the freeform mode when the window is open, else the
// configured default template.
func (g *SessionGate) SelectSendMode(ctx context.Context, contactNumber string) models.SendMode {
	if g.CanSendFreeform(ctx, contactNumber) {
		return models.SendMode{Freeform: true}
	}
	return models.SendMode{
		Freeform:     false,
		TemplateName: g.defaultTemplate,
		LanguageCode: g.language,
	}
}

// SendReply picks the permitted mode and sends through the channel. Any
// successful send resets the session to assume-open for the length of the
// window; a failed send drops the assumption so the next check queries the
// channel again.
func (g *SessionGate) SendReply(ctx context.Context, contactNumber string, text string) (models.SendMode, error) {
	mode := g.SelectSendMode(ctx, contactNumber)

	var err error
	if mode.Freeform {
		err = g.api.SendFreeform(ctx, contactNumber, text)
	} else {
		err = g.api.SendTemplate(ctx, contactNumber, mode.TemplateName, mode.LanguageCode)
	}
	if err != nil {
		g.lock.Lock()
		delete(g.assumeOpen, contactNumber)
		g.lock.Unlock()
		return mode, fmt.Errorf("error sending reply to %s: %w", contactNumber, err)
	}

	g.lock.Lock()
	g.assumeOpen[contactNumber] = g.now().Add(g.window)
	g.lock.Unlock()
	return mode, nil
}
