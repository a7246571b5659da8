package models

import (
	"context"
	"time"
)

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Conversation is a read model of one ongoing exchange with a contact.
// Conversations are created by inbound traffic on the channel side; this
// service only links them to leads and marks them read.
type Conversation struct {
	ContactNumber string    `json:"contact_number"`
	LeadID        string    `json:"lead_id,omitempty"`
	LastMessageAt time.Time `json:"last_message_at"`
	LastDirection string    `json:"last_direction"`
	UnreadCount   int       `json:"unread_count"`
	AssignedTo    string    `json:"assigned_to,omitempty"`
}

type SessionStatus struct {
	WithinWindow bool `json:"within_window"`
}

// SendMode is the gate's decision for an outbound reply: free-form text when
// the session window is open, otherwise a named template message.
type SendMode struct {
	Freeform     bool   `json:"freeform"`
	TemplateName string `json:"template_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// ChannelAPI is the messaging channel collaborator. Inbound ingestion and
// actual delivery happen there; this service only checks the session window
// and issues send requests.
type ChannelAPI interface {
	GetSessionStatus(ctx context.Context, contactNumber string) (*SessionStatus, error)
	SendFreeform(ctx context.Context, contactNumber string, text string) error
	SendTemplate(ctx context.Context, contactNumber string, templateName string, languageCode string) error
}
