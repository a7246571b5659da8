package wsnotify

import (
	"net/http"
	"sync"
	"time"

	"leadflow/internal/models"

	"github.com/gorilla/websocket"
)

type WebSocketManager struct {
	clients map[*websocket.Conn]bool
	lock    sync.RWMutex
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func Upgrader() *websocket.Upgrader {
	return &upgrader
}

var Manager = &WebSocketManager{
	clients: make(map[*websocket.Conn]bool),
}

func (m *WebSocketManager) AddClient(conn *websocket.Conn) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.clients[conn] = true
}

func (m *WebSocketManager) RemoveClient(conn *websocket.Conn) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.clients, conn)
}

func (m *WebSocketManager) Broadcast(event interface{}) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	for client := range m.clients {
		client.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := client.WriteJSON(event); err != nil {
			client.Close()
			go m.RemoveClient(client)
		}
	}
}

type SignalEvent struct {
	Type    string                `json:"type"`
	Payload models.WorkflowSignal `json:"payload"`
}

// SendWorkflowSignalEvent broadcasts a freshly published workflow signal to
// every mounted console surface. Surfaces that mount later pick the same
// signal up from the scratchpad replay endpoint, so this is fire-and-forget.
func SendWorkflowSignalEvent(signal models.WorkflowSignal) {
	Manager.Broadcast(SignalEvent{
		Type:    "workflow_signal",
		Payload: signal,
	})
}

type OpenEditPayload struct {
	LeadID   string `json:"leadId"`
	IssuedAt string `json:"issuedAt"`
}

type OpenEditEvent struct {
	Type    string          `json:"type"`
	Payload OpenEditPayload `json:"payload"`
}

func SendOpenEditEvent(leadID string, issuedAt string) {
	Manager.Broadcast(OpenEditEvent{
		Type: "open_edit",
		Payload: OpenEditPayload{
			LeadID:   leadID,
			IssuedAt: issuedAt,
		},
	})
}

type NotificationPayload struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	Category       string `json:"category"`
	Priority       string `json:"priority"`
	System         bool   `json:"system"`
	DismissAfterMs int    `json:"dismissAfterMs"`
	PlaySound      bool   `json:"playSound"`
	CreatedAt      string `json:"createdAt"`
	UnreadCount    int    `json:"unreadCount"`
}

type NotificationEvent struct {
	Type    string              `json:"type"`
	Payload NotificationPayload `json:"payload"`
}

func SendNotificationEvent(n *models.Notification, system bool, dismissAfterMs int, unreadCount int) {
	Manager.Broadcast(NotificationEvent{
		Type: "notification",
		Payload: NotificationPayload{
			ID:             n.ID,
			Title:          n.Title,
			Body:           n.Body,
			Category:       n.Category,
			Priority:       n.Priority,
			System:         system,
			DismissAfterMs: dismissAfterMs,
			PlaySound:      true,
			CreatedAt:      n.CreatedAt.UTC().Format(time.RFC3339Nano),
			UnreadCount:    unreadCount,
		},
	})
}
