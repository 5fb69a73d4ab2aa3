package session

import (
	"context"

	"familyregistry/internal/models"
)

// Store persists sessions. Get returns nil, nil for unknown ids.
type Store interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
