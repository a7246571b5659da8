package services

import (
	"time"

	"leadflow/internal/models"
	"leadflow/internal/wsnotify"

	"github.com/google/uuid"
)

// Auto-dismiss delays for system notifications, by priority.
const (
	dismissLowMs  = 5000
	dismissHighMs = 10000
)

// Notifier turns engine outcomes into operator-visible notifications. It
// does not deduplicate: two conversions of the same contact in one session
// legitimately produce two notifications.
type Notifier struct {
	repo     models.NotificationRepository
	dispatch func(n *models.Notification, system bool, dismissAfterMs int, unreadCount int)
}

func NewNotifier(repo models.NotificationRepository) *Notifier {
	return &Notifier{
		repo:     repo,
		dispatch: wsnotify.SendNotificationEvent,
	}
}

func (d *Notifier) Notify(spec models.NotificationSpec) *models.Notification {
	priority := spec.Priority
	if priority != models.PriorityHigh {
		priority = models.PriorityLow
	}
	channels := spec.Channels
	if len(channels) == 0 {
		channels = []string{models.ChannelInApp}
	}

	notification := &models.Notification{
		ID:        uuid.NewString(),
		Title:     spec.Title,
		Body:      spec.Message,
		Category:  spec.Category,
		Priority:  priority,
		Channels:  channels,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	d.repo.Add(notification)

	system := false
	for _, ch := range channels {
		if ch == models.ChannelSystem {
			system = true
			break
		}
	}
	dismiss := dismissLowMs
	if priority == models.PriorityHigh {
		dismiss = dismissHighMs
	}

	d.dispatch(notification, system, dismiss, d.repo.UnreadCount())
	return notification
}

func (d *Notifier) All() []*models.Notification {
	return d.repo.All()
}

func (d *Notifier) MarkRead(id string) error {
	return d.repo.MarkRead(id)
}

func (d *Notifier) MarkAllRead() {
	d.repo.MarkAllRead()
}

func (d *Notifier) UnreadCount() int {
	return d.repo.UnreadCount()
}
