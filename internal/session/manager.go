package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"familyregistry/internal/config"
	"familyregistry/internal/models"
	"familyregistry/internal/security"
)

// ErrNoSession means the request carries no usable session
var ErrNoSession = errors.New("no active session")

// Manager binds sessions in a Store to a signed browser cookie.
// The cookie holds an HS256 token whose jti is the session id; the payload
// itself only lives in the store, so logout takes effect immediately.
type Manager struct {
	store      Store
	kind       models.SessionKind
	cookieName string
	secret     []byte
	duration   time.Duration
}

// NewManager creates a manager for one kind of session and cookie
func NewManager(store Store, cfg config.SessionConfig, cookieName string, kind models.SessionKind) *Manager {
	return &Manager{
		store:      store,
		kind:       kind,
		cookieName: cookieName,
		secret:     []byte(cfg.Secret),
		duration:   cfg.Duration,
	}
}

// Begin creates a session for user and sets the cookie. Any session the
// browser already carried is destroyed first.
func (m *Manager) Begin(w http.ResponseWriter, r *http.Request, user models.SessionUser) (*models.Session, error) {
	ctx := r.Context()
	if sessionID, err := m.sessionIDFromRequest(r); err == nil {
		_ = m.store.Delete(ctx, sessionID)
	}

	now := time.Now()
	session := &models.Session{
		ID:        security.GenerateSessionID(),
		Kind:      m.kind,
		User:      user,
		ExpiresAt: now.Add(m.duration),
		CreatedAt: now,
	}
	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	token, err := m.sign(session)
	if err != nil {
		_ = m.store.Delete(ctx, session.ID)
		return nil, err
	}

	http.SetCookie(w, security.CreateSessionCookie(r, m.cookieName, token, session.ExpiresAt))
	return session, nil
}

// Current returns the session bound to the request or ErrNoSession
func (m *Manager) Current(r *http.Request) (*models.Session, error) {
	sessionID, err := m.sessionIDFromRequest(r)
	if err != nil {
		return nil, ErrNoSession
	}
	return m.lookup(r.Context(), sessionID)
}

// End destroys the request's session, if any, and clears the cookie
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	var err error
	if sessionID, idErr := m.sessionIDFromRequest(r); idErr == nil {
		err = m.store.Delete(r.Context(), sessionID)
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, m.cookieName))
	return err
}

// ClearCookie removes the cookie without touching the store
func (m *Manager) ClearCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, m.cookieName))
}

// CookieName returns the name of the session cookie
func (m *Manager) CookieName() string {
	return m.cookieName
}

// CleanupExpired removes expired sessions from the store
func (m *Manager) CleanupExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx)
}

func (m *Manager) lookup(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.Kind != m.kind {
		return nil, ErrNoSession
	}
	if session.IsExpired() {
		_ = m.store.Delete(ctx, sessionID)
		return nil, ErrNoSession
	}
	return session, nil
}

func (m *Manager) sessionIDFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrNoSession
	}
	return m.verify(cookie.Value)
}

func (m *Manager) sign(session *models.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   string(session.Kind),
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

func (m *Manager) verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return "", ErrNoSession
	}
	if claims.ID == "" || claims.Subject != string(m.kind) {
		return "", ErrNoSession
	}
	return claims.ID, nil
}
