package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familyregistry/internal/config"
	"familyregistry/internal/models"
	"familyregistry/internal/security"
	"familyregistry/internal/session"
)

// unreachableStore accepts new sessions but cannot read them back
type unreachableStore struct{}

func (unreachableStore) Create(ctx context.Context, s *models.Session) error { return nil }
func (unreachableStore) Get(ctx context.Context, id string) (*models.Session, error) {
	return nil, errors.New("connection refused")
}
func (unreachableStore) Delete(ctx context.Context, id string) error { return nil }
func (unreachableStore) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

func TestRequireFamilyKeepsCookieWhenStoreFails(t *testing.T) {
	cfg := config.SessionConfig{Secret: "middleware-secret", Duration: time.Hour}
	family := session.NewManager(unreachableStore{}, cfg, FamilySessionCookieName, models.SessionKindFamily)
	admin := session.NewManager(unreachableStore{}, cfg, AdminSessionCookieName, models.SessionKindAdmin)
	mw := NewMiddleware(family, admin, security.NewCSRFGenerator(cfg.Secret), security.NewRateLimiter(5, time.Minute))

	login := httptest.NewRecorder()
	_, err := family.Begin(login, httptest.NewRequest(http.MethodPost, "/login", nil), models.SessionUser{ID: "f-1"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}

	called := false
	rec := httptest.NewRecorder()
	mw.RequireFamily(func(w http.ResponseWriter, r *http.Request) { called = true })(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "session cookie must not be cleared on a store error")
}

func TestRequireFamilyClearsCookieWithoutSession(t *testing.T) {
	cfg := config.SessionConfig{Secret: "middleware-secret", Duration: time.Hour}
	family := session.NewManager(unreachableStore{}, cfg, FamilySessionCookieName, models.SessionKindFamily)
	admin := session.NewManager(unreachableStore{}, cfg, AdminSessionCookieName, models.SessionKindAdmin)
	mw := NewMiddleware(family, admin, security.NewCSRFGenerator(cfg.Secret), security.NewRateLimiter(5, time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: FamilySessionCookieName, Value: "garbage"})

	rec := httptest.NewRecorder()
	mw.RequireFamily(func(w http.ResponseWriter, r *http.Request) {})(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
