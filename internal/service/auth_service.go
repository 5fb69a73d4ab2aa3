package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"familyregistry/internal/metrics"
	"familyregistry/internal/models"
	"familyregistry/internal/repository"
	"familyregistry/internal/validation"
)

// Login failures. Each maps to a fixed message through LoginErrorMessage.
var (
	ErrMissingCredentials    = errors.New("email and dob are required")
	ErrNotFoundOrNotApproved = errors.New("user not found or not approved")
	ErrWrongDOB              = errors.New("incorrect date of birth")
	ErrLoginFailed           = errors.New("login failed")
)

// LoginErrorMessage returns the message shown to the user for a login error
func LoginErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return "Email and DOB are required"
	case errors.Is(err, ErrNotFoundOrNotApproved):
		return "User not found or not approved"
	case errors.Is(err, ErrWrongDOB):
		return "Incorrect Date of Birth"
	default:
		return "Login failed. Please try again."
	}
}

// AuthService checks family credentials: an approved email plus the matching date of birth
type AuthService struct {
	families *repository.FamilyRepository
	metrics  *metrics.Metrics
}

// NewAuthService creates a new auth service
func NewAuthService(families *repository.FamilyRepository, m *metrics.Metrics) *AuthService {
	return &AuthService{families: families, metrics: m}
}

// Login returns the session payload for an approved family whose date of
// birth falls on the same calendar day as dob.
func (s *AuthService) Login(ctx context.Context, email, dob string) (*models.SessionUser, error) {
	user, err := s.login(ctx, email, dob)
	s.metrics.ObserveLogin(loginOutcome(err))
	return user, err
}

func (s *AuthService) login(ctx context.Context, email, dob string) (*models.SessionUser, error) {
	email = validation.NormalizeEmail(email)
	dob = strings.TrimSpace(dob)
	if email == "" || dob == "" {
		return nil, ErrMissingCredentials
	}

	family, err := s.families.GetApprovedByEmail(ctx, email)
	if err != nil {
		log.Printf("Failed to look up family for login: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}
	if family == nil || !family.CanLogin() {
		return nil, ErrNotFoundOrNotApproved
	}

	given, err := validation.ParseDate(dob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}
	if !validation.SameCalendarDate(given, family.DOB) {
		return nil, ErrWrongDOB
	}

	user := family.SessionUser()
	return &user, nil
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, ErrNotFoundOrNotApproved):
		return "not_found"
	case errors.Is(err, ErrWrongDOB):
		return "wrong_dob"
	default:
		return "error"
	}
}
