package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"familyregistry/internal/models"
	"familyregistry/internal/repository"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents the complete registry backup structure
type BackupData struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Families   []FamilyBackup `json:"families"`
}

// FamilyBackup represents a family record for backup
type FamilyBackup struct {
	ID           string         `json:"id"`
	FamilyHead   string         `json:"family_head"`
	Gender       string         `json:"gender"`
	DOB          time.Time      `json:"dob"`
	Phone        string         `json:"phone"`
	Email        string         `json:"email"`
	City         string         `json:"city"`
	Locality     string         `json:"locality"`
	Occupation   string         `json:"occupation"`
	Gotra        string         `json:"gotra"`
	NativePlace  string         `json:"native_place"`
	BloodGroup   string         `json:"blood_group"`
	Address      string         `json:"address"`
	ProfileImage string         `json:"profile_image"`
	Status       string         `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Members      []MemberBackup `json:"members"`
}

// MemberBackup represents a household member for backup
type MemberBackup struct {
	Name          string `json:"name"`
	Relation      string `json:"relation"`
	Age           *int   `json:"age"`
	MaritalStatus string `json:"marital_status"`
	BloodGroup    string `json:"blood_group"`
	Qualification string `json:"qualification"`
	Occupation    string `json:"occupation"`
}

// BackupService handles registry export and restore
type BackupService struct {
	families *repository.FamilyRepository
}

// NewBackupService creates a new backup service
func NewBackupService(families *repository.FamilyRepository) *BackupService {
	return &BackupService{families: families}
}

// Export writes a backup of every family to outputPath
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}
	return file.Close()
}

// ExportToWriter writes a backup of every family as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	families, err := s.families.ListAllFamilies(ctx)
	if err != nil {
		return fmt.Errorf("failed to export families: %w", err)
	}

	backup := BackupData{
		Version:    BackupVersion,
		ExportedAt: time.Now().UTC(),
		Families:   make([]FamilyBackup, 0, len(families)),
	}
	for i := range families {
		backup.Families = append(backup.Families, toFamilyBackup(&families[i]))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	log.Printf("Exported %d families", len(backup.Families))
	return nil
}

// Import restores families from the backup at inputPath
func (s *BackupService) Import(ctx context.Context, inputPath string, clear bool) (int, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()
	return s.ImportFromReader(ctx, file, clear)
}

// ImportFromReader restores families from a JSON backup. With clear set the
// existing families are removed first. The whole import is one transaction.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader, clear bool) (int, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return 0, fmt.Errorf("failed to decode backup: %w", err)
	}
	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	families := make([]models.FamilyRecord, 0, len(backup.Families))
	for _, fb := range backup.Families {
		family := fromFamilyBackup(fb)
		if !family.Status.Valid() {
			return 0, fmt.Errorf("family %s: %w: %q", fb.ID, ErrInvalidStatus, fb.Status)
		}
		families = append(families, family)
	}

	if err := s.families.ImportFamilies(ctx, families, clear); err != nil {
		return 0, err
	}
	log.Printf("Imported %d families", len(families))
	return len(families), nil
}

func toFamilyBackup(f *models.FamilyRecord) FamilyBackup {
	members := make([]MemberBackup, 0, len(f.Members))
	for _, m := range f.Members {
		members = append(members, MemberBackup(m))
	}
	return FamilyBackup{
		ID:           f.ID,
		FamilyHead:   f.FamilyHead,
		Gender:       f.Gender,
		DOB:          f.DOB,
		Phone:        f.Phone,
		Email:        f.Email,
		City:         f.City,
		Locality:     f.Locality,
		Occupation:   f.Occupation,
		Gotra:        f.Gotra,
		NativePlace:  f.NativePlace,
		BloodGroup:   f.BloodGroup,
		Address:      f.Address,
		ProfileImage: f.ProfileImage,
		Status:       string(f.Status),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
		Members:      members,
	}
}

func fromFamilyBackup(fb FamilyBackup) models.FamilyRecord {
	members := make([]models.MemberRecord, 0, len(fb.Members))
	for _, m := range fb.Members {
		members = append(members, models.MemberRecord(m))
	}
	return models.FamilyRecord{
		ID:           fb.ID,
		FamilyHead:   fb.FamilyHead,
		Gender:       fb.Gender,
		DOB:          fb.DOB,
		Phone:        fb.Phone,
		Email:        fb.Email,
		City:         fb.City,
		Locality:     fb.Locality,
		Occupation:   fb.Occupation,
		Gotra:        fb.Gotra,
		NativePlace:  fb.NativePlace,
		BloodGroup:   fb.BloodGroup,
		Address:      fb.Address,
		ProfileImage: fb.ProfileImage,
		Status:       models.Status(fb.Status),
		CreatedAt:    fb.CreatedAt,
		UpdatedAt:    fb.UpdatedAt,
		Members:      members,
	}
}
