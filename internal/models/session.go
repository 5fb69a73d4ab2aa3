package models

import "time"

// SessionKind separates family logins from administrator logins
type SessionKind string

const (
	SessionKindFamily SessionKind = "family"
	SessionKindAdmin  SessionKind = "admin"
)

// SessionUser is the small payload bound to an authenticated browser session
type SessionUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Session represents an authenticated session
type Session struct {
	ID        string      `json:"id"`
	Kind      SessionKind `json:"kind"`
	User      SessionUser `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
	CreatedAt time.Time   `json:"createdAt"`
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
