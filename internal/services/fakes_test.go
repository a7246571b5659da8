package services

import (
	"context"
	"fmt"
	"sync"

	"leadflow/internal/models"
	"leadflow/internal/repositories"
)

// fakeLeadAPI is an in-memory stand-in for the remote CRM collaborator.
type fakeLeadAPI struct {
	mu    sync.Mutex
	leads []models.Lead

	createErr error
	linkErr   error
	linkBlock chan struct{}

	searchCalls int
	createCalls int
	linkCalls   int
	getCalls    int
	readCalls   int
}

func (f *fakeLeadAPI) SearchLeads(ctx context.Context, query string) ([]models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	out := make([]models.Lead, len(f.leads))
	copy(out, f.leads)
	return out, nil
}

func (f *fakeLeadAPI) CreateLead(ctx context.Context, fields models.LeadFields) (*models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	lead := models.Lead{
		ID:     fmt.Sprintf("lead-%d", len(f.leads)+1),
		Name:   fields.Name,
		Phone:  fields.Phone,
		Source: fields.Source,
	}
	f.leads = append(f.leads, lead)
	return &lead, nil
}

func (f *fakeLeadAPI) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	for i := range f.leads {
		if f.leads[i].ID == id {
			lead := f.leads[i]
			return &lead, nil
		}
	}
	return nil, fmt.Errorf("lead %s not found", id)
}

func (f *fakeLeadAPI) LinkConversationToLead(ctx context.Context, contactNumber string, leadID string) error {
	f.mu.Lock()
	block := f.linkBlock
	f.linkCalls++
	err := f.linkErr
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return err
}

func (f *fakeLeadAPI) MarkConversationRead(ctx context.Context, contactNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCalls++
	return nil
}

// memScratchpad keeps the workflow signal and marks in memory.
type memScratchpad struct {
	mu      sync.Mutex
	signal  *models.WorkflowSignal
	marks   map[string]bool
	saveErr error
}

func newMemScratchpad() *memScratchpad {
	return &memScratchpad{marks: make(map[string]bool)}
}

func (m *memScratchpad) SaveSignal(signal *models.WorkflowSignal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	sig := *signal
	m.signal = &sig
	return nil
}

func (m *memScratchpad) LoadSignal() (*models.WorkflowSignal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.signal == nil {
		return nil, nil
	}
	sig := *m.signal
	return &sig, nil
}

func (m *memScratchpad) ClearSignal() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signal = nil
	return nil
}

func (m *memScratchpad) MarkProcessed(consumer string, issuedAt string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := consumer + "|" + issuedAt
	if m.marks[key] {
		return false, nil
	}
	m.marks[key] = true
	return true, nil
}

func (m *memScratchpad) IsProcessed(consumer string, issuedAt string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.marks[consumer+"|"+issuedAt], nil
}

func newTestNotifier() *Notifier {
	n := NewNotifier(repositories.NewInMemoryNotificationRepository())
	n.dispatch = func(*models.Notification, bool, int, int) {}
	return n
}
