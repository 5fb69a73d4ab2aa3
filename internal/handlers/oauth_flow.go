package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"familyregistry/internal/config"
	"familyregistry/internal/security"
)

const (
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	oauthStateCookie   = "oauth_state"
	oauthStateLifetime = 10 * time.Minute
	adminCallbackPath  = "/admin/auth/google/callback"
)

// GoogleAuth is the Google sign-in configuration for administrators
type GoogleAuth struct {
	Config          *oauth2.Config
	UserInfoURL     string
	RedirectBaseURL string
}

// NewGoogleAuth returns nil when no Google client is configured
func NewGoogleAuth(cfg config.AdminConfig) *GoogleAuth {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil
	}
	return &GoogleAuth{
		Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		UserInfoURL:     googleUserInfoURL,
		RedirectBaseURL: cfg.OAuthRedirectBase,
	}
}

type oauthUserInfo struct {
	Email         string
	EmailVerified bool
	Name          string
}

// StartGoogle redirects an administrator to Google's consent page
func (h *AdminHandler) StartGoogle(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.renderLogin(w, http.StatusBadRequest, "Google sign-in is not configured", "")
		return
	}

	state := security.GenerateSessionID()
	http.SetCookie(w, security.CreateTempCookie(r, oauthStateCookie, state, oauthStateLifetime))

	cfg := *h.google.Config
	cfg.RedirectURL = h.oauthRedirectURL(r)
	http.Redirect(w, r, cfg.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

// GoogleCallback finishes Google sign-in and starts an admin session for allowed emails
func (h *AdminHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.renderLogin(w, http.StatusBadRequest, "Google sign-in is not configured", "")
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		h.renderLogin(w, http.StatusBadRequest, "Missing authorization code", "")
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		h.renderLogin(w, http.StatusBadRequest, "Invalid OAuth state", "")
		return
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, oauthStateCookie))

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cfg := *h.google.Config
	cfg.RedirectURL = h.oauthRedirectURL(r)
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		log.Printf("Failed to exchange Google OAuth code: %v", err)
		h.renderLogin(w, http.StatusBadRequest, "Failed to exchange OAuth code", "")
		return
	}

	info, err := fetchGoogleUser(ctx, &cfg, h.google.UserInfoURL, token)
	if err != nil {
		log.Printf("Failed to fetch Google user: %v", err)
		h.renderLogin(w, http.StatusBadRequest, "Failed to fetch Google account", "")
		return
	}
	if !info.EmailVerified {
		h.renderLogin(w, http.StatusForbidden, "Google account email is not verified", info.Email)
		return
	}

	user, err := h.adminService.AuthorizeEmail(info.Email, info.Name)
	if err != nil {
		log.Printf("Google sign-in refused for %s: %v", info.Email, err)
		h.renderLogin(w, http.StatusForbidden, "This Google account is not an administrator", info.Email)
		return
	}

	if _, err := h.adminSessions.Begin(w, r, *user); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to start admin session", err)
		return
	}
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

func fetchGoogleUser(ctx context.Context, cfg *oauth2.Config, userInfoURL string, token *oauth2.Token) (oauthUserInfo, error) {
	client := cfg.Client(ctx, token)
	resp, err := client.Get(userInfoURL)
	if err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch Google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch Google user info: status %d", resp.StatusCode)
	}

	var payload struct {
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to parse Google user info: %w", err)
	}
	if payload.Email == "" {
		return oauthUserInfo{}, errors.New("google account has no email")
	}

	return oauthUserInfo{
		Email:         payload.Email,
		EmailVerified: payload.VerifiedEmail,
		Name:          payload.Name,
	}, nil
}

func (h *AdminHandler) oauthRedirectURL(r *http.Request) string {
	baseURL := strings.TrimSpace(h.google.RedirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return strings.TrimRight(baseURL, "/") + adminCallbackPath
}
