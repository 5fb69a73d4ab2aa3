package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"familyregistry/internal/metrics"
	"familyregistry/internal/models"
	"familyregistry/internal/repository"
	"familyregistry/internal/storage"
	"familyregistry/internal/validation"
)

// ErrInvalidDOB is returned when a submission's date of birth cannot be parsed
var ErrInvalidDOB = errors.New("invalid date of birth")

// ProfileImageField is the multipart field carrying the profile photo
const ProfileImageField = "files"

// Notifier sends best-effort notices about a family's registration
type Notifier interface {
	SendRegistrationReceived(ctx context.Context, family *models.FamilyRecord) error
	SendStatusChanged(ctx context.Context, family *models.FamilyRecord) error
}

// SubmissionInput is one registration form, already split into head fields and members
type SubmissionInput struct {
	FamilyHead  string
	Gender      string
	DOB         string
	Phone       string
	Email       string
	City        string
	Locality    string
	Occupation  string
	Gotra       string
	NativePlace string
	BloodGroup  string
	Address     string
	Members     MemberInput
}

// SubmissionFromForm reads a parsed registration form. The head name is
// accepted under "familyHead" or, for older forms, "value".
func SubmissionFromForm(form url.Values) SubmissionInput {
	head := form.Get("familyHead")
	if head == "" {
		head = form.Get("value")
	}
	return SubmissionInput{
		FamilyHead:  head,
		Gender:      form.Get("gender"),
		DOB:         form.Get("dob"),
		Phone:       form.Get("phone"),
		Email:       validation.NormalizeEmail(form.Get("email")),
		City:        form.Get("city"),
		Locality:    form.Get("locality"),
		Occupation:  form.Get("occupation"),
		Gotra:       form.Get("gotra"),
		NativePlace: form.Get("nativePlace"),
		BloodGroup:  form.Get("bloodGroup"),
		Address:     form.Get("address"),
		Members:     ClassifyMembers(form),
	}
}

// RegistrationService turns submitted forms into pending family records
type RegistrationService struct {
	families *repository.FamilyRepository
	uploads  storage.Uploader
	notifier Notifier
	metrics  *metrics.Metrics
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(families *repository.FamilyRepository, uploads storage.Uploader, notifier Notifier, m *metrics.Metrics) *RegistrationService {
	return &RegistrationService{
		families: families,
		uploads:  uploads,
		notifier: notifier,
		metrics:  m,
	}
}

// Submit stores a new family as pending. The optional file becomes the profile image.
func (s *RegistrationService) Submit(ctx context.Context, input SubmissionInput, file *storage.File) (*models.FamilyRecord, error) {
	start := time.Now()
	family, err := s.submit(ctx, input, file)
	if err != nil {
		s.metrics.ObserveSubmission(metrics.OutcomeFailure, start)
		return nil, err
	}
	s.metrics.ObserveSubmission(metrics.OutcomeSuccess, start)

	if s.notifier != nil {
		if err := s.notifier.SendRegistrationReceived(ctx, family); err != nil {
			log.Printf("Failed to send registration email for family %s: %v", family.ID, err)
		}
	}
	return family, nil
}

func (s *RegistrationService) submit(ctx context.Context, input SubmissionInput, file *storage.File) (*models.FamilyRecord, error) {
	dob, err := validation.ParseDate(input.DOB)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDOB, strings.TrimSpace(input.DOB))
	}

	now := time.Now().UTC()
	family := &models.FamilyRecord{
		ID:          uuid.NewString(),
		FamilyHead:  input.FamilyHead,
		Gender:      input.Gender,
		DOB:         dob,
		Phone:       input.Phone,
		Email:       validation.NormalizeEmail(input.Email),
		City:        input.City,
		Locality:    input.Locality,
		Occupation:  input.Occupation,
		Gotra:       input.Gotra,
		NativePlace: input.NativePlace,
		BloodGroup:  input.BloodGroup,
		Address:     input.Address,
		Members:     NormalizeMembers(input.Members),
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if file != nil {
		if file.FieldName == "" {
			file.FieldName = ProfileImageField
		}
		stored, err := s.uploads.Save(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("failed to store profile image: %w", err)
		}
		family.ProfileImage = stored
	}

	if err := s.families.CreateFamily(ctx, family); err != nil {
		if family.ProfileImage != "" {
			if rmErr := s.uploads.Remove(ctx, family.ProfileImage); rmErr != nil {
				log.Printf("Failed to remove orphaned upload %s: %v", family.ProfileImage, rmErr)
			}
		}
		return nil, err
	}
	return family, nil
}
