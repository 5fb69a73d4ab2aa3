package security

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIsSecureRequest(t *testing.T) {
	plain := httptest.NewRequest("GET", "/", nil)
	if IsSecureRequest(plain) {
		t.Error("plain request should not be secure")
	}

	proxied := httptest.NewRequest("GET", "/", nil)
	proxied.Header.Set("X-Forwarded-Proto", "https")
	if !IsSecureRequest(proxied) {
		t.Error("X-Forwarded-Proto https should be secure")
	}

	direct := httptest.NewRequest("GET", "/", nil)
	direct.TLS = &tls.ConnectionState{}
	if !IsSecureRequest(direct) {
		t.Error("TLS request should be secure")
	}
}

func TestSessionCookies(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	expires := time.Now().Add(time.Hour)

	cookie := CreateSessionCookie(r, "session_id", "token", expires)
	if !cookie.HttpOnly || cookie.Path != "/" || cookie.Value != "token" {
		t.Errorf("unexpected session cookie: %+v", cookie)
	}

	deleted := CreateDeleteCookie(r, "session_id")
	if deleted.MaxAge != -1 || deleted.Value != "" {
		t.Errorf("unexpected delete cookie: %+v", deleted)
	}
}

func TestCSRFGenerator(t *testing.T) {
	gen := NewCSRFGenerator("secret")

	token, err := gen.GenerateToken("session-1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if !gen.ValidateToken("session-1", token) {
		t.Error("token should validate for its own session")
	}
	if gen.ValidateToken("session-2", token) {
		t.Error("token must not validate for another session")
	}
	if NewCSRFGenerator("other").ValidateToken("session-1", token) {
		t.Error("token must not validate under another secret")
	}
	if _, err := gen.GenerateToken(""); err == nil {
		t.Error("expected error for empty session id")
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests should be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request inside the window should be rejected")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other clients keep their own budget")
	}
}

func TestRateLimiterPrune(t *testing.T) {
	rl := NewRateLimiter(1, time.Millisecond)
	rl.Allow("1.2.3.4")
	time.Sleep(5 * time.Millisecond)

	if removed := rl.Prune(); removed != 1 {
		t.Errorf("Prune() = %d, want 1", removed)
	}
	if !rl.Allow("1.2.3.4") {
		t.Error("client should get a fresh budget after its window passed")
	}
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:4321"
	if got := GetClientIP(r); got != "10.0.0.1" {
		t.Errorf("GetClientIP() = %q, want 10.0.0.1", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := GetClientIP(r); got != "203.0.113.7" {
		t.Errorf("GetClientIP() = %q, want 203.0.113.7", got)
	}
}
