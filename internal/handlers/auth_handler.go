package handlers

import (
	"encoding/json"
	"html/template"
	"log"
	"mime"
	"net/http"

	"familyregistry/internal/service"
	"familyregistry/internal/session"
)

// AuthHandler handles family sign-in, the dashboard and sign-out
type AuthHandler struct {
	authService    *service.AuthService
	familySessions *session.Manager
	templates      *template.Template
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, familySessions *session.Manager, templates *template.Template) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		familySessions: familySessions,
		templates:      templates,
	}
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := h.familySessions.Current(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	render(w, h.templates, "login.tmpl", http.StatusOK, LoginViewData{
		Title: "Login",
	})
}

type loginRequest struct {
	Email string `json:"email"`
	DOB   string `json:"dob"`
}

// Login checks email and date of birth and starts a family session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := readLoginRequest(w, r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "Failed to parse login form", err)
		return
	}

	user, err := h.authService.Login(r.Context(), req.Email, req.DOB)
	if err != nil {
		h.renderLoginError(w, req.Email, service.LoginErrorMessage(err))
		return
	}

	if _, err := h.familySessions.Begin(w, r, *user); err != nil {
		log.Printf("Failed to start session for family %s: %v", user.ID, err)
		h.renderLoginError(w, req.Email, service.LoginErrorMessage(service.ErrLoginFailed))
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) renderLoginError(w http.ResponseWriter, email, message string) {
	render(w, h.templates, "login.tmpl", http.StatusOK, LoginViewData{
		Title: "Login",
		Error: message,
		Email: email,
	})
}

func readLoginRequest(w http.ResponseWriter, r *http.Request) (loginRequest, error) {
	var req loginRequest
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "application/json" {
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Email = r.PostFormValue("email")
	req.DOB = r.PostFormValue("dob")
	return req, nil
}

// Dashboard renders the signed-in family's dashboard. Must run inside RequireFamily.
func (h *AuthHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess := GetFamilySessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	render(w, h.templates, "dashboard.tmpl", http.StatusOK, DashboardViewData{
		Title: "Dashboard",
		User:  sess.User,
	})
}

// Logout destroys the family session and returns to the login page
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.familySessions.End(w, r); err != nil {
		log.Printf("Failed to delete family session: %v", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
