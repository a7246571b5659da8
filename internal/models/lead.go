package models

import (
	"context"
	"time"
)

type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

type LeadFields struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Source string `json:"source"`
}

type ConversionResult struct {
	Lead    Lead `json:"lead"`
	Created bool `json:"created"`
}

// LeadAPI is the remote persistence collaborator that owns leads and
// conversations. This service only creates, references and links records;
// it never stores them locally.
type LeadAPI interface {
	SearchLeads(ctx context.Context, query string) ([]Lead, error)
	CreateLead(ctx context.Context, fields LeadFields) (*Lead, error)
	GetLead(ctx context.Context, id string) (*Lead, error)
	LinkConversationToLead(ctx context.Context, contactNumber string, leadID string) error
	MarkConversationRead(ctx context.Context, contactNumber string) error
}
