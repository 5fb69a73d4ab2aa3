package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	"familyregistry/internal/config"
	"familyregistry/internal/metrics"
	"familyregistry/internal/models"
	"familyregistry/internal/repository"
	"familyregistry/internal/security"
)

var (
	ErrInvalidAdminCredentials = errors.New("invalid admin email or password")
	ErrAdminNotAllowed         = errors.New("account is not an administrator")
	ErrFamilyNotFound          = errors.New("family not found")
	ErrInvalidStatus           = errors.New("invalid status")
	ErrInvalidTransition       = errors.New("status change not allowed")
)

// AdminService handles the approval area: admin sign-in and review decisions
type AdminService struct {
	families *repository.FamilyRepository
	notifier Notifier
	metrics  *metrics.Metrics
	cfg      config.AdminConfig
}

// NewAdminService creates a new admin service
func NewAdminService(families *repository.FamilyRepository, notifier Notifier, m *metrics.Metrics, cfg config.AdminConfig) *AdminService {
	return &AdminService{
		families: families,
		notifier: notifier,
		metrics:  m,
		cfg:      cfg,
	}
}

// PasswordLoginEnabled reports whether email and password sign-in is configured
func (s *AdminService) PasswordLoginEnabled() bool {
	return s.cfg.Email != "" && s.cfg.PasswordHash != ""
}

// GoogleLoginEnabled reports whether Google sign-in is configured
func (s *AdminService) GoogleLoginEnabled() bool {
	return s.cfg.GoogleClientID != "" && s.cfg.GoogleClientSecret != ""
}

// Authenticate checks the configured admin email and bcrypt password hash
func (s *AdminService) Authenticate(email, password string) (*models.SessionUser, error) {
	if !s.PasswordLoginEnabled() {
		return nil, ErrInvalidAdminCredentials
	}
	email = strings.TrimSpace(email)
	if !strings.EqualFold(email, s.cfg.Email) {
		return nil, ErrInvalidAdminCredentials
	}
	if !security.CheckPassword(password, s.cfg.PasswordHash) {
		return nil, ErrInvalidAdminCredentials
	}
	return adminUser(s.cfg.Email, "Administrator"), nil
}

// AuthorizeEmail admits a verified external identity when its email is on the admin list
func (s *AdminService) AuthorizeEmail(email, name string) (*models.SessionUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !slices.Contains(s.cfg.AllowedEmails, email) {
		return nil, ErrAdminNotAllowed
	}
	if name == "" {
		name = email
	}
	return adminUser(email, name), nil
}

func adminUser(email, name string) *models.SessionUser {
	return &models.SessionUser{
		ID:          "admin:" + strings.ToLower(email),
		Email:       email,
		DisplayName: name,
	}
}

// ParseStatus validates a status filter; empty means pending
func ParseStatus(value string) (models.Status, error) {
	if value == "" {
		return models.StatusPending, nil
	}
	status := models.Status(strings.ToLower(value))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, value)
	}
	return status, nil
}

// ListByStatus returns the families awaiting or past review
func (s *AdminService) ListByStatus(ctx context.Context, status models.Status) ([]models.FamilyRecord, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	return s.families.ListFamiliesByStatus(ctx, status)
}

// Counts returns how many families are in each status
func (s *AdminService) Counts(ctx context.Context) (map[models.Status]int, error) {
	return s.families.CountByStatus(ctx)
}

// Get returns one family with its members
func (s *AdminService) Get(ctx context.Context, id string) (*models.FamilyRecord, error) {
	family, err := s.families.GetFamilyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}
	return family, nil
}

// Approve marks a family as approved so it can log in
func (s *AdminService) Approve(ctx context.Context, id string) (*models.FamilyRecord, error) {
	return s.setStatus(ctx, id, models.StatusApproved)
}

// Reject marks a family as rejected
func (s *AdminService) Reject(ctx context.Context, id string) (*models.FamilyRecord, error) {
	return s.setStatus(ctx, id, models.StatusRejected)
}

func (s *AdminService) setStatus(ctx context.Context, id string, next models.Status) (*models.FamilyRecord, error) {
	family, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !family.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, family.Status, next)
	}

	if err := s.families.UpdateStatus(ctx, id, next); err != nil {
		if errors.Is(err, repository.ErrFamilyNotFound) {
			return nil, ErrFamilyNotFound
		}
		return nil, err
	}
	family.Status = next
	s.metrics.ObserveStatusChange(string(next))
	log.Printf("Family %s marked %s", id, next)

	if s.notifier != nil {
		if err := s.notifier.SendStatusChanged(ctx, family); err != nil {
			log.Printf("Failed to send status email for family %s: %v", id, err)
		}
	}
	return family, nil
}
