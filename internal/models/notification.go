package models

import "time"

const (
	PriorityLow  = "low"
	PriorityHigh = "high"
)

const (
	ChannelInApp  = "in_app"
	ChannelSystem = "system"
)

type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	Priority  string    `json:"priority"`
	Channels  []string  `json:"channels"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationSpec struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Category string   `json:"category"`
	Priority string   `json:"priority"`
	Channels []string `json:"channels"`
}

type NotificationRepository interface {
	Add(notification *Notification)
	All() []*Notification
	MarkRead(id string) error
	MarkAllRead()
	UnreadCount() int
}
