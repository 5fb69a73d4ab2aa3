package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"familyregistry/internal/database"
	"familyregistry/internal/models"
)

var (
	// ErrFamilyNotFound is returned by updates that match no row
	ErrFamilyNotFound = errors.New("family not found")
	// ErrDuplicateFamily means a family with the same id is already stored
	ErrDuplicateFamily = errors.New("family already exists")
)

const familyColumns = `id, family_head, gender, dob, phone, email, city, locality, occupation,
	gotra, native_place, blood_group, address, profile_image, status, created_at, updated_at`

// FamilyRepository handles database operations for family registrations
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateFamily inserts a family and its members as one unit
func (r *FamilyRepository) CreateFamily(ctx context.Context, family *models.FamilyRecord) error {
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		return insertFamily(ctx, tx, family)
	})
	if r.db.IsDuplicateKey(err) {
		return fmt.Errorf("failed to create family %s: %w", family.ID, ErrDuplicateFamily)
	}
	if err != nil {
		return fmt.Errorf("failed to create family: %w", err)
	}
	return nil
}

func insertFamily(ctx context.Context, q database.DBTX, family *models.FamilyRecord) error {
	query := `
		INSERT INTO families (id, family_head, gender, dob, phone, email, city, locality, occupation,
			gotra, native_place, blood_group, address, profile_image, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		family.ID,
		family.FamilyHead,
		family.Gender,
		family.DOB.UTC().Format(time.RFC3339),
		family.Phone,
		family.Email,
		family.City,
		family.Locality,
		family.Occupation,
		family.Gotra,
		family.NativePlace,
		family.BloodGroup,
		family.Address,
		family.ProfileImage,
		string(family.Status),
		family.CreatedAt.UTC(),
		family.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert family: %w", err)
	}

	memberQuery := `
		INSERT INTO family_members (family_id, position, name, relation, age, marital_status,
			blood_group, qualification, occupation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, member := range family.Members {
		var age sql.NullInt64
		if member.Age != nil {
			age = sql.NullInt64{Int64: int64(*member.Age), Valid: true}
		}
		_, err := q.ExecContext(ctx, memberQuery,
			family.ID, i, member.Name, member.Relation, age, member.MaritalStatus,
			member.BloodGroup, member.Qualification, member.Occupation,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member %d: %w", i, err)
		}
	}
	return nil
}

// GetFamilyByID retrieves a family with its members. Returns nil, nil when absent.
func (r *FamilyRepository) GetFamilyByID(ctx context.Context, id string) (*models.FamilyRecord, error) {
	query := "SELECT " + familyColumns + " FROM families WHERE id = ?"
	family, err := scanFamily(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}

	if err := r.loadMembers(ctx, family); err != nil {
		return nil, err
	}
	return family, nil
}

// GetApprovedByEmail finds the approved family registered under email.
// When several approved rows share the email the most recently updated one wins.
// Returns nil, nil when nothing matches.
func (r *FamilyRepository) GetApprovedByEmail(ctx context.Context, email string) (*models.FamilyRecord, error) {
	query := "SELECT " + familyColumns + `
		FROM families
		WHERE email = ? AND status = ?
		ORDER BY updated_at DESC
		LIMIT 1
	`
	family, err := scanFamily(r.db.QueryRowContext(ctx, query, email, string(models.StatusApproved)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family by email: %w", err)
	}
	return family, nil
}

// ListFamiliesByStatus returns families in a status, oldest first, without members
func (r *FamilyRepository) ListFamiliesByStatus(ctx context.Context, status models.Status) ([]models.FamilyRecord, error) {
	query := "SELECT " + familyColumns + " FROM families WHERE status = ? ORDER BY created_at ASC"
	return r.queryFamilies(ctx, query, string(status))
}

// ListAllFamilies returns every family with members, oldest first
func (r *FamilyRepository) ListAllFamilies(ctx context.Context) ([]models.FamilyRecord, error) {
	query := "SELECT " + familyColumns + " FROM families ORDER BY created_at ASC"
	families, err := r.queryFamilies(ctx, query)
	if err != nil {
		return nil, err
	}
	for i := range families {
		if err := r.loadMembers(ctx, &families[i]); err != nil {
			return nil, err
		}
	}
	return families, nil
}

// CountByStatus returns the number of families per status
func (r *FamilyRepository) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM families GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count families: %w", err)
	}
	defer rows.Close()

	counts := map[models.Status]int{
		models.StatusPending:  0,
		models.StatusApproved: 0,
		models.StatusRejected: 0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan family count: %w", err)
		}
		counts[models.Status(status)] = count
	}
	return counts, rows.Err()
}

// UpdateStatus sets the approval status of a family
func (r *FamilyRepository) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	query := "UPDATE families SET status = ?, updated_at = ? WHERE id = ?"
	result, err := r.db.ExecContext(ctx, query, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update family status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update family status: %w", err)
	}
	if affected == 0 {
		return ErrFamilyNotFound
	}
	return nil
}

// ImportFamilies inserts previously exported families in one transaction.
// With clear set, existing families (and their members) are removed first.
func (r *FamilyRepository) ImportFamilies(ctx context.Context, families []models.FamilyRecord, clear bool) error {
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		if clear {
			if _, err := tx.ExecContext(ctx, "DELETE FROM family_members"); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM families"); err != nil {
				return err
			}
		}
		for i := range families {
			err := insertFamily(ctx, tx, &families[i])
			if r.db.IsDuplicateKey(err) {
				return fmt.Errorf("family %s: %w", families[i].ID, ErrDuplicateFamily)
			}
			if err != nil {
				return fmt.Errorf("family %s: %w", families[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to import families: %w", err)
	}
	return nil
}

// Ping checks the store connection
func (r *FamilyRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *FamilyRepository) queryFamilies(ctx context.Context, query string, args ...interface{}) ([]models.FamilyRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	var families []models.FamilyRecord
	for rows.Next() {
		family, err := scanFamily(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, *family)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate families: %w", err)
	}
	return families, nil
}

func (r *FamilyRepository) loadMembers(ctx context.Context, family *models.FamilyRecord) error {
	query := `
		SELECT name, relation, age, marital_status, blood_group, qualification, occupation
		FROM family_members
		WHERE family_id = ?
		ORDER BY position ASC
	`
	rows, err := r.db.QueryContext(ctx, query, family.ID)
	if err != nil {
		return fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	family.Members = []models.MemberRecord{}
	for rows.Next() {
		var member models.MemberRecord
		var age sql.NullInt64
		if err := rows.Scan(
			&member.Name,
			&member.Relation,
			&age,
			&member.MaritalStatus,
			&member.BloodGroup,
			&member.Qualification,
			&member.Occupation,
		); err != nil {
			return fmt.Errorf("failed to scan member: %w", err)
		}
		if age.Valid {
			v := int(age.Int64)
			member.Age = &v
		}
		family.Members = append(family.Members, member)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFamily(row rowScanner) (*models.FamilyRecord, error) {
	family := &models.FamilyRecord{}
	var dob, status string
	err := row.Scan(
		&family.ID,
		&family.FamilyHead,
		&family.Gender,
		&dob,
		&family.Phone,
		&family.Email,
		&family.City,
		&family.Locality,
		&family.Occupation,
		&family.Gotra,
		&family.NativePlace,
		&family.BloodGroup,
		&family.Address,
		&family.ProfileImage,
		&status,
		&family.CreatedAt,
		&family.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	family.Status = models.Status(status)
	family.DOB, err = time.Parse(time.RFC3339, dob)
	if err != nil {
		return nil, fmt.Errorf("stored dob %q for family %s: %w", dob, family.ID, err)
	}
	return family, nil
}
