package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"familyregistry/internal/config"
	"familyregistry/internal/database"
	"familyregistry/internal/handlers"
	"familyregistry/internal/jobs"
	"familyregistry/internal/metrics"
	"familyregistry/internal/models"
	"familyregistry/internal/repository"
	"familyregistry/internal/security"
	"familyregistry/internal/service"
	"familyregistry/internal/session"
	"familyregistry/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	templates, err := handlers.LoadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	log.Println("Templates loaded successfully")

	// Repositories
	familyRepo := repository.NewFamilyRepository(db)

	sessionStore, closeStore := openSessionStore(ctx, cfg, db)
	defer closeStore()
	familySessions := session.NewManager(sessionStore, cfg.Session, handlers.FamilySessionCookieName, models.SessionKindFamily)
	adminSessions := session.NewManager(sessionStore, cfg.Session, handlers.AdminSessionCookieName, models.SessionKindAdmin)

	uploads, err := storage.New(ctx, cfg.Upload)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	emailService, err := service.NewEmailService(ctx, cfg.Email, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	m := metrics.New()

	// Services
	registrationService := service.NewRegistrationService(familyRepo, uploads, emailService, m)
	authService := service.NewAuthService(familyRepo, m)
	adminService := service.NewAdminService(familyRepo, emailService, m, cfg.Admin)
	if !adminService.PasswordLoginEnabled() && !adminService.GoogleLoginEnabled() {
		log.Println("Warning: no admin sign-in configured; set ADMIN_EMAIL and ADMIN_PASSWORD_HASH or Google OAuth")
	}

	// Admin sign-in allows 5 attempts per minute per client
	limiter := security.NewRateLimiter(5, time.Minute)
	go limiter.RunPruner(ctx, 10*time.Minute)

	middleware := handlers.NewMiddleware(familySessions, adminSessions, security.NewCSRFGenerator(cfg.Session.Secret), limiter)
	routes := &handlers.Routes{
		Registration: handlers.NewRegistrationHandler(registrationService, familySessions, templates, cfg.Upload.MaxSize),
		Auth:         handlers.NewAuthHandler(authService, familySessions, templates),
		Admin:        handlers.NewAdminHandler(adminService, adminSessions, middleware, templates, handlers.NewGoogleAuth(cfg.Admin)),
		System:       handlers.NewSystemHandler(uploads, familyRepo),
		Middleware:   middleware,
		Metrics:      m.Handler(),
		StaticPath:   cfg.StaticFilesPath,
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		Debug:            cfg.Debug,
	})

	handler := handlers.Logging(m.InstrumentInFlight(corsHandler.Handler(routes.Mux())))

	scheduler, err := jobs.NewScheduler(time.Hour, m, familySessions, adminSessions)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := scheduler.Stop(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
}

// openSessionStore picks the session backend named by SESSION_STORE
func openSessionStore(ctx context.Context, cfg *config.Config, db *database.DB) (session.Store, func()) {
	switch cfg.Session.Store {
	case "redis":
		if cfg.Session.RedisURL == "" {
			log.Fatal("SESSION_STORE=redis requires REDIS_URL")
		}
		client, err := session.Connect(ctx, cfg.Session.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Println("Using Redis session store")
		return session.NewRedisStore(client), func() { client.Close() }
	case "sql", "":
		return repository.NewSessionRepository(db), func() {}
	default:
		log.Fatalf("Unknown SESSION_STORE %q (expected sql or redis)", cfg.Session.Store)
		return nil, nil
	}
}
