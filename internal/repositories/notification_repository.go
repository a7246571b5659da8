package repositories

import (
	"fmt"
	"sync"

	"leadflow/internal/models"
)

// InMemoryNotificationRepository keeps the operator's notification feed for
// the lifetime of the process, most recent first. Notifications are session
// state, not business records, so nothing is persisted.
type InMemoryNotificationRepository struct {
	lock          sync.RWMutex
	notifications []*models.Notification
}

func NewInMemoryNotificationRepository() *InMemoryNotificationRepository {
	return &InMemoryNotificationRepository{}
}

func (r *InMemoryNotificationRepository) Add(notification *models.Notification) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.notifications = append([]*models.Notification{notification}, r.notifications...)
}

func (r *InMemoryNotificationRepository) All() []*models.Notification {
	r.lock.RLock()
	defer r.lock.RUnlock()
	out := make([]*models.Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

func (r *InMemoryNotificationRepository) MarkRead(id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return fmt.Errorf("notification not found")
}

func (r *InMemoryNotificationRepository) MarkAllRead() {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, n := range r.notifications {
		n.Read = true
	}
}

// UnreadCount is derived by counting, never stored.
func (r *InMemoryNotificationRepository) UnreadCount() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	count := 0
	for _, n := range r.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}
