package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familyregistry/internal/config"
	"familyregistry/internal/models"
	"familyregistry/internal/repository"
	"familyregistry/internal/testhelpers"
)

const testSecret = "manager-test-secret"

func newTestManagers(t *testing.T, duration time.Duration) (*Manager, *Manager, *repository.SessionRepository) {
	t.Helper()
	store := repository.NewSessionRepository(testhelpers.SetupTestDB(t))
	cfg := config.SessionConfig{Secret: testSecret, Duration: duration}
	family := NewManager(store, cfg, "session_id", models.SessionKindFamily)
	admin := NewManager(store, cfg, "admin_session_id", models.SessionKindAdmin)
	return family, admin, store
}

// requestWithCookies replays the cookies set on rec into a fresh request
func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

var testUser = models.SessionUser{ID: "family-1", Email: "a@x.com", DisplayName: "Shah Family"}

func TestBeginAndCurrent(t *testing.T) {
	family, _, _ := newTestManagers(t, time.Hour)

	rec := httptest.NewRecorder()
	created, err := family.Begin(rec, httptest.NewRequest(http.MethodPost, "/login", nil), testUser)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session_id", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEqual(t, created.ID, cookies[0].Value, "cookie should carry a signed token")

	current, err := family.Current(requestWithCookies(rec))
	require.NoError(t, err)
	assert.Equal(t, created.ID, current.ID)
	assert.Equal(t, testUser, current.User)
	assert.Equal(t, models.SessionKindFamily, current.Kind)
}

func TestCurrentWithoutCookie(t *testing.T) {
	family, _, _ := newTestManagers(t, time.Hour)

	_, err := family.Current(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestEndDestroysSession(t *testing.T) {
	family, _, store := newTestManagers(t, time.Hour)

	rec := httptest.NewRecorder()
	created, err := family.Begin(rec, httptest.NewRequest(http.MethodPost, "/login", nil), testUser)
	require.NoError(t, err)
	req := requestWithCookies(rec)

	out := httptest.NewRecorder()
	require.NoError(t, family.End(out, req))

	stored, err := store.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	cleared := out.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)

	_, err = family.Current(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestBeginReplacesExistingSession(t *testing.T) {
	family, _, store := newTestManagers(t, time.Hour)

	first := httptest.NewRecorder()
	old, err := family.Begin(first, httptest.NewRequest(http.MethodPost, "/login", nil), testUser)
	require.NoError(t, err)

	second := httptest.NewRecorder()
	_, err = family.Begin(second, requestWithCookies(first), testUser)
	require.NoError(t, err)

	stored, err := store.Get(context.Background(), old.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestKindsAreSeparate(t *testing.T) {
	family, admin, _ := newTestManagers(t, time.Hour)

	rec := httptest.NewRecorder()
	_, err := admin.Begin(rec, httptest.NewRequest(http.MethodPost, "/admin/login", nil), models.SessionUser{Email: "admin@example.com"})
	require.NoError(t, err)

	// Replay the admin token under the family cookie name
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: family.CookieName(), Value: rec.Result().Cookies()[0].Value})

	_, err = family.Current(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestTamperedTokenRejected(t *testing.T) {
	family, _, _ := newTestManagers(t, time.Hour)

	rec := httptest.NewRecorder()
	created, err := family.Begin(rec, httptest.NewRequest(http.MethodPost, "/login", nil), testUser)
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{
		ID:        created.ID,
		Subject:   string(models.SessionKindFamily),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: forged})
	_, err = family.Current(req)
	assert.ErrorIs(t, err, ErrNoSession)

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: created.ID})
	_, err = family.Current(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestExpiredSessionIsRemoved(t *testing.T) {
	family, _, store := newTestManagers(t, time.Hour)
	ctx := context.Background()

	expired := &models.Session{
		ID:        "expired-session",
		Kind:      models.SessionKindFamily,
		User:      testUser,
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, store.Create(ctx, expired))

	_, err := family.lookup(ctx, expired.ID)
	assert.ErrorIs(t, err, ErrNoSession)

	stored, err := store.Get(ctx, expired.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestCleanupExpired(t *testing.T) {
	family, _, store := newTestManagers(t, time.Hour)
	ctx := context.Background()

	for _, id := range []string{"old-1", "old-2"} {
		require.NoError(t, store.Create(ctx, &models.Session{
			ID:        id,
			Kind:      models.SessionKindFamily,
			User:      testUser,
			ExpiresAt: time.Now().Add(-time.Hour),
			CreatedAt: time.Now().Add(-2 * time.Hour),
		}))
	}
	rec := httptest.NewRecorder()
	live, err := family.Begin(rec, httptest.NewRequest(http.MethodPost, "/login", nil), testUser)
	require.NoError(t, err)

	removed, err := family.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	stored, err := store.Get(ctx, live.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}
