package testhelpers

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"

	"familyregistry/internal/database"
	"familyregistry/internal/models"
)

// ModuleRoot returns the repository root, resolved from this file's location
func ModuleRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}

// SetupTestDB opens a migrated SQLite database in a temp dir that is closed on cleanup
func SetupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "registry_test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(filepath.Join(ModuleRoot(), "migrations")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// NewFamily builds a pending family record with sensible defaults
func NewFamily(email, dob string) *models.FamilyRecord {
	parsed, err := time.Parse("2006-01-02", dob)
	if err != nil {
		panic(err)
	}
	now := time.Now().UTC()
	return &models.FamilyRecord{
		ID:         uuid.NewString(),
		FamilyHead: "Shah Family",
		Gender:     "male",
		DOB:        parsed,
		Phone:      "9999999999",
		Email:      email,
		City:       "Ahmedabad",
		Gotra:      "Kashyap",
		BloodGroup: "B+",
		Members:    []models.MemberRecord{},
		Status:     models.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// InsertApprovedFamily stores a family and approves it
func InsertApprovedFamily(t *testing.T, db *database.DB, email, dob string) *models.FamilyRecord {
	t.Helper()

	family := NewFamily(email, dob)
	family.Status = models.StatusApproved
	ctx := context.Background()
	err := db.WithTx(ctx, func(tx *database.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO families (id, family_head, dob, email, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			family.ID, family.FamilyHead, family.DOB.Format(time.RFC3339), family.Email,
			string(family.Status), family.CreatedAt, family.UpdatedAt,
		)
		return err
	})
	if err != nil {
		t.Fatalf("Failed to insert approved family: %v", err)
	}
	return family
}
