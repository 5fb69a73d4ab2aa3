package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familyregistry/internal/models"
)

// Runs against a real server only when REDIS_URL is set
func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	client, err := Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	session := &models.Session{
		ID:        "redis-test-" + time.Now().Format("150405.000000"),
		Kind:      models.SessionKindAdmin,
		User:      models.SessionUser{Email: "admin@example.com", DisplayName: "Admin"},
		ExpiresAt: time.Now().Add(time.Minute),
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Create(ctx, session))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.User, got.User)
	assert.Equal(t, session.Kind, got.Kind)

	require.NoError(t, store.Delete(ctx, session.ID))
	got, err = store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreRejectsExpiredSession(t *testing.T) {
	store := newTestRedisStore(t)

	err := store.Create(context.Background(), &models.Session{ID: "stale", ExpiresAt: time.Now().Add(-time.Second)})
	assert.Error(t, err)
}

func TestConnectRejectsBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}
