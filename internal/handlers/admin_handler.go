package handlers

import (
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"net/url"

	"familyregistry/internal/models"
	"familyregistry/internal/service"
	"familyregistry/internal/session"
)

// AdminHandler serves the approval area
type AdminHandler struct {
	adminService  *service.AdminService
	adminSessions *session.Manager
	middleware    *Middleware
	templates     *template.Template
	google        *GoogleAuth
}

// NewAdminHandler creates a new admin handler. google may be nil when Google sign-in is not configured.
func NewAdminHandler(adminService *service.AdminService, adminSessions *session.Manager, middleware *Middleware, templates *template.Template, google *GoogleAuth) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		adminSessions: adminSessions,
		middleware:    middleware,
		templates:     templates,
		google:        google,
	}
}

// ShowLogin renders the admin sign-in page
func (h *AdminHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := h.adminSessions.Current(r); err == nil {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, http.StatusOK, "", "")
}

// Login checks the admin email and password
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "Failed to parse admin login form", err)
		return
	}

	email := r.PostFormValue("email")
	user, err := h.adminService.Authenticate(email, r.PostFormValue("password"))
	if err != nil {
		log.Printf("Admin sign-in failed for %q", email)
		h.renderLogin(w, http.StatusUnauthorized, "Invalid email or password", email)
		return
	}

	if _, err := h.adminSessions.Begin(w, r, *user); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to start admin session", err)
		return
	}
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// Logout ends the admin session
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.adminSessions.End(w, r); err != nil {
		log.Printf("Failed to delete admin session: %v", err)
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func (h *AdminHandler) renderLogin(w http.ResponseWriter, status int, message, email string) {
	render(w, h.templates, "admin_login.tmpl", status, AdminLoginViewData{
		Title:           "Admin Login",
		Error:           message,
		Email:           email,
		PasswordEnabled: h.adminService.PasswordLoginEnabled(),
		GoogleEnabled:   h.google != nil,
	})
}

// Dashboard lists families in the requested status (pending by default)
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess := GetAdminSessionFromContext(r.Context())

	status, err := service.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Unknown status filter", "", nil)
		return
	}

	families, err := h.adminService.ListByStatus(r.Context(), status)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to list families", err)
		return
	}
	counts, err := h.adminService.Counts(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to count families", err)
		return
	}

	render(w, h.templates, "admin_dashboard.tmpl", http.StatusOK, AdminDashboardViewData{
		Title:     "Registrations",
		Admin:     sess.User,
		Status:    status,
		Statuses:  []models.Status{models.StatusPending, models.StatusApproved, models.StatusRejected},
		Counts:    counts,
		Families:  families,
		CSRFToken: h.middleware.CSRFToken(sess),
		Notice:    r.URL.Query().Get("notice"),
	})
}

// ShowFamily renders one registration with its members
func (h *AdminHandler) ShowFamily(w http.ResponseWriter, r *http.Request) {
	sess := GetAdminSessionFromContext(r.Context())

	family, err := h.adminService.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, service.ErrFamilyNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load family", err)
		return
	}

	render(w, h.templates, "admin_family.tmpl", http.StatusOK, AdminFamilyViewData{
		Title:     family.FamilyHead,
		Admin:     sess.User,
		Family:    family,
		CSRFToken: h.middleware.CSRFToken(sess),
	})
}

// Approve marks a family approved
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.adminService.Approve)
}

// Reject marks a family rejected
func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.adminService.Reject)
}

type reviewFunc func(ctx context.Context, id string) (*models.FamilyRecord, error)

func (h *AdminHandler) review(w http.ResponseWriter, r *http.Request, decide reviewFunc) {
	family, err := decide(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, service.ErrFamilyNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, service.ErrInvalidTransition):
		respondWithError(w, http.StatusConflict, "This registration already has that status", "", nil)
		return
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to update family status", err)
		return
	}

	notice := family.FamilyHead + " is now " + string(family.Status)
	http.Redirect(w, r, "/admin/dashboard?"+url.Values{"notice": {notice}}.Encode(), http.StatusSeeOther)
}
