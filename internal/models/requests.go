package models

type ConvertRequest struct {
	ContactNumber string `json:"contact_number" example:"09876543210" swagger:"required" description:"Raw contact phone number as observed on the conversation"`
	AssignedTo    string `json:"assigned_to,omitempty"`
}

type RetryLinkRequest struct {
	ContactNumber string `json:"contact_number" swagger:"required"`
	LeadID        string `json:"lead_id" swagger:"required"`
}

type SendReplyRequest struct {
	ContactNumber string `json:"contact_number" example:"919876543210" swagger:"required"`
	Message       string `json:"message" swagger:"required"`
}

type SignalAckRequest struct {
	Consumer string `json:"consumer" example:"lead-list" swagger:"required" description:"Stable name of the consuming surface"`
	IssuedAt string `json:"issued_at" swagger:"required"`
}

type AssistantCompleteRequest struct {
	IssuedAt string `json:"issued_at" swagger:"required"`
}

type MarkReadRequest struct {
	ID string `json:"id" swagger:"required"`
}
