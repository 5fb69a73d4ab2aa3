package handlers

import (
	"net/http"
)

// Routes groups the handlers mounted on the server mux
type Routes struct {
	Registration *RegistrationHandler
	Auth         *AuthHandler
	Admin        *AdminHandler
	System       *SystemHandler
	Middleware   *Middleware
	Metrics      http.Handler
	StaticPath   string
}

// Mux registers every route and returns the mux
func (rt *Routes) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mw := rt.Middleware

	if rt.StaticPath != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(rt.StaticPath))))
	}
	mux.HandleFunc("GET /uploads/{name}", rt.System.ServeUpload)
	mux.HandleFunc("GET /healthz", rt.System.Health)
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	// Family routes
	mux.HandleFunc("GET /{$}", rt.Registration.Home)
	mux.HandleFunc("POST /submit-form", rt.Registration.SubmitForm)
	mux.HandleFunc("GET /login", rt.Auth.ShowLogin)
	mux.HandleFunc("POST /login", rt.Auth.Login)
	mux.HandleFunc("GET /dashboard", mw.RequireFamily(rt.Auth.Dashboard))
	mux.HandleFunc("GET /logout", rt.Auth.Logout)

	// Admin routes
	mux.HandleFunc("GET /admin/login", rt.Admin.ShowLogin)
	mux.HandleFunc("POST /admin/login", mw.RateLimit(rt.Admin.Login))
	mux.HandleFunc("POST /admin/logout", mw.RequireAdmin(mw.CSRFProtect(rt.Admin.Logout)))
	mux.HandleFunc("GET /admin/auth/google/start", rt.Admin.StartGoogle)
	mux.HandleFunc("GET /admin/auth/google/callback", rt.Admin.GoogleCallback)
	mux.HandleFunc("GET /admin/{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
	})
	mux.HandleFunc("GET /admin/dashboard", mw.RequireAdmin(rt.Admin.Dashboard))
	mux.HandleFunc("GET /admin/families/{id}", mw.RequireAdmin(rt.Admin.ShowFamily))
	mux.HandleFunc("POST /admin/families/{id}/approve", mw.RequireAdmin(mw.CSRFProtect(rt.Admin.Approve)))
	mux.HandleFunc("POST /admin/families/{id}/reject", mw.RequireAdmin(mw.CSRFProtect(rt.Admin.Reject)))

	return mux
}
