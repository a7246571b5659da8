package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"leadflow/internal/models"
	"leadflow/internal/phone"
	"leadflow/internal/utils"
)

var (
	// ErrInvalidIdentifier means the contact number has no digits to
	// normalize. Nothing is created or mutated in that case.
	ErrInvalidIdentifier = errors.New("contact number cannot be normalized")

	// ErrConversionInFlight rejects a re-submission while a conversion for
	// the same canonical number is still pending.
	ErrConversionInFlight = errors.New("conversion already in progress for this contact")

	ErrLeadCreationFailed = errors.New("lead creation failed")
)

// LinkError reports that the lead was resolved or created but linking the
// conversation to it failed. Callers must keep the lead reference and retry
// linking only; retrying the whole conversion would find the same lead again
// through the resolver anyway.
type LinkError struct {
	Lead    *models.Lead
	Created bool
	Err     error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("lead %s identified but linking failed: %v", e.Lead.ID, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }

// ConversionService turns an inbound conversation into a durable CRM lead:
// normalize the number, find or create the lead, link the conversation,
// then kick off the post-conversion workflow.
type ConversionService struct {
	api      models.LeadAPI
	resolver *LeadResolver
	choreo   *Choreographer
	notifier *Notifier
	norm     phone.Normalizer
	source   string

	mutex    sync.Mutex
	inFlight map[string]bool
}

func NewConversionService(api models.LeadAPI, resolver *LeadResolver, choreo *Choreographer, notifier *Notifier, norm phone.Normalizer, source string) *ConversionService {
	return &ConversionService{
		api:      api,
		resolver: resolver,
		choreo:   choreo,
		notifier: notifier,
		norm:     norm,
		source:   source,
		inFlight: make(map[string]bool),
	}
}

// Convert runs the conversion transaction for a conversation. Steps are
// strictly sequential: normalize, resolve duplicate, create if absent, link.
// Double submission for the same number is rejected while a conversion is
// pending; the flag is released on every exit path.
func (s *ConversionService) Convert(ctx context.Context, conversation *models.Conversation) (*models.ConversionResult, error) {
	canonical := s.norm.Normalize(conversation.ContactNumber)
	if canonical == "" {
		return nil, ErrInvalidIdentifier
	}

	if !s.acquire(canonical) {
		return nil, ErrConversionInFlight
	}
	defer s.release(canonical)

	lead, err := s.resolver.FindExisting(ctx, canonical)
	if err != nil {
		return nil, err
	}

	created := false
	if lead == nil {
		fields := models.LeadFields{
			// The timestamp in the name is for traceability, not uniqueness.
			Name:   fmt.Sprintf("WhatsApp Lead %s", time.Now().UTC().Format("2006-01-02 15:04:05")),
			Phone:  canonical,
			Source: s.source,
		}
		lead, err = s.api.CreateLead(ctx, fields)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLeadCreationFailed, err)
		}
		if lead == nil || lead.ID == "" {
			return nil, fmt.Errorf("%w: collaborator returned a record without an identifier", ErrLeadCreationFailed)
		}
		created = true
		utils.LogInfo("Created lead %s for contact %s", lead.ID, canonical)
	} else {
		utils.LogInfo("Resolved contact %s to existing lead %s", canonical, lead.ID)
	}

	result := &models.ConversionResult{Lead: *lead, Created: created}

	if err := s.api.LinkConversationToLead(ctx, canonical, lead.ID); err != nil {
		s.notifier.Notify(models.NotificationSpec{
			Title:    "Lead linking failed",
			Message:  fmt.Sprintf("Lead %s is ready but the conversation with %s could not be linked. Retry linking.", lead.ID, canonical),
			Category: "conversion",
			Priority: models.PriorityHigh,
			Channels: []string{models.ChannelInApp, models.ChannelSystem},
		})
		return result, &LinkError{Lead: lead, Created: created, Err: err}
	}

	s.finishConversion(ctx, canonical, lead, created)
	return result, nil
}

// RetryLink re-attempts only the linking step after a LinkError. The lead is
// never re-created here.
func (s *ConversionService) RetryLink(ctx context.Context, contactNumber string, leadID string) error {
	canonical := s.norm.Normalize(contactNumber)
	if canonical == "" {
		return ErrInvalidIdentifier
	}

	lead, err := s.api.GetLead(ctx, leadID)
	if err != nil || lead == nil || lead.ID == "" {
		lead = &models.Lead{ID: leadID, Phone: canonical}
	}

	if err := s.api.LinkConversationToLead(ctx, canonical, leadID); err != nil {
		return &LinkError{Lead: lead, Err: err}
	}

	s.finishConversion(ctx, canonical, lead, false)
	return nil
}

func (s *ConversionService) finishConversion(ctx context.Context, canonical string, lead *models.Lead, created bool) {
	s.choreo.Publish(models.WorkflowSignal{
		Trigger:        true,
		SubjectID:      lead.ID,
		ChainDirective: models.ChainOpenEditAfterAssistant,
		IssuedAt:       time.Now().UTC().Format(time.RFC3339Nano),
	})

	title := "Conversation linked to existing lead"
	if created {
		title = "New lead created"
	}
	s.notifier.Notify(models.NotificationSpec{
		Title:    title,
		Message:  fmt.Sprintf("Contact %s is now tracked as lead %s", canonical, lead.ID),
		Category: "conversion",
		Priority: models.PriorityLow,
		Channels: []string{models.ChannelInApp},
	})

	// Best effort; the conversion itself already succeeded.
	if err := s.api.MarkConversationRead(ctx, canonical); err != nil {
		utils.LogWarning("Error marking conversation %s read: %v", canonical, err)
	}
}

func (s *ConversionService) acquire(canonical string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.inFlight[canonical] {
		return false
	}
	s.inFlight[canonical] = true
	return true
}

func (s *ConversionService) release(canonical string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.inFlight, canonical)
}
