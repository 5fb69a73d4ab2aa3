package service

import (
	"context"
	"sync"

	"familyregistry/internal/models"
)

type recordingNotifier struct {
	mu         sync.Mutex
	registered []string
	changed    []models.Status
	err        error
}

func (n *recordingNotifier) SendRegistrationReceived(ctx context.Context, family *models.FamilyRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.registered = append(n.registered, family.ID)
	return n.err
}

func (n *recordingNotifier) SendStatusChanged(ctx context.Context, family *models.FamilyRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, family.Status)
	return n.err
}
