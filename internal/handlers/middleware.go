package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"familyregistry/internal/models"
	"familyregistry/internal/security"
	"familyregistry/internal/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	FamilySessionContextKey ContextKey = "family_session"
	AdminSessionContextKey  ContextKey = "admin_session"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	familySessions *session.Manager
	adminSessions  *session.Manager
	csrf           *security.CSRFGenerator
	limiter        *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(familySessions, adminSessions *session.Manager, csrf *security.CSRFGenerator, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		familySessions: familySessions,
		adminSessions:  adminSessions,
		csrf:           csrf,
		limiter:        limiter,
	}
}

// RequireFamily admits requests bound to a family session and redirects the rest to /login
func (m *Middleware) RequireFamily(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.familySessions.Current(r)
		if errors.Is(err, session.ErrNoSession) {
			m.familySessions.ClearCookie(w, r)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err != nil {
			respondWithError(w, http.StatusServiceUnavailable, ErrSessionUnavailable, "Failed to load family session", err)
			return
		}

		ctx := context.WithValue(r.Context(), FamilySessionContextKey, sess)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin admits requests bound to an admin session and redirects the rest to /admin/login
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.adminSessions.Current(r)
		if errors.Is(err, session.ErrNoSession) {
			m.adminSessions.ClearCookie(w, r)
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		if err != nil {
			respondWithError(w, http.StatusServiceUnavailable, ErrSessionUnavailable, "Failed to load admin session", err)
			return
		}

		ctx := context.WithValue(r.Context(), AdminSessionContextKey, sess)
		next(w, r.WithContext(ctx))
	}
}

// CSRFProtect validates the CSRF token of an admin form post. Must run inside RequireAdmin.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := GetAdminSessionFromContext(r.Context())
		if sess == nil {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		token := r.Header.Get("X-CSRF-Token")
		if token == "" {
			token = r.PostFormValue(security.CSRFFormField)
		}
		if !m.csrf.ValidateToken(sess.ID, token) {
			respondWithError(w, http.StatusForbidden, ErrForbidden,
				"Rejected admin request without a valid CSRF token: "+r.Method+" "+r.URL.Path, nil)
			return
		}
		next(w, r)
	}
}

// RateLimit rejects clients that exceed the limiter's budget
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := security.GetClientIP(r)
		if !m.limiter.Allow(client) {
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "Rate limit exceeded for "+client, nil)
			return
		}
		next(w, r)
	}
}

// CSRFToken returns the token admin forms must echo back
func (m *Middleware) CSRFToken(sess *models.Session) string {
	if sess == nil {
		return ""
	}
	token, err := m.csrf.GenerateToken(sess.ID)
	if err != nil {
		log.Printf("Failed to generate CSRF token: %v", err)
		return ""
	}
	return token
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// GetFamilySessionFromContext retrieves the family session from the request context
func GetFamilySessionFromContext(ctx context.Context) *models.Session {
	sess, ok := ctx.Value(FamilySessionContextKey).(*models.Session)
	if !ok {
		return nil
	}
	return sess
}

// GetAdminSessionFromContext retrieves the admin session from the request context
func GetAdminSessionFromContext(ctx context.Context) *models.Session {
	sess, ok := ctx.Value(AdminSessionContextKey).(*models.Session)
	if !ok {
		return nil
	}
	return sess
}
