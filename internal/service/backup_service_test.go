package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familyregistry/internal/models"
	"familyregistry/internal/repository"
	"familyregistry/internal/testhelpers"
)

func TestBackupExportImport(t *testing.T) {
	ctx := context.Background()
	source := repository.NewFamilyRepository(testhelpers.SetupTestDB(t))

	age := 12
	family := testhelpers.NewFamily("shah@example.com", "1980-05-10")
	family.Members = []models.MemberRecord{
		{Name: "Ravi", Relation: "Son", Age: &age},
		{Name: "Meera", Relation: "Daughter"},
	}
	require.NoError(t, source.CreateFamily(ctx, family))

	var buf bytes.Buffer
	require.NoError(t, NewBackupService(source).ExportToWriter(ctx, &buf))
	assert.Contains(t, buf.String(), `"version": "1.0"`)

	target := repository.NewFamilyRepository(testhelpers.SetupTestDB(t))
	count, err := NewBackupService(target).ImportFromReader(ctx, &buf, true)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	restored, err := target.GetFamilyByID(ctx, family.ID)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, family.Email, restored.Email)
	assert.Equal(t, models.StatusPending, restored.Status)
	require.Len(t, restored.Members, 2)
	require.NotNil(t, restored.Members[0].Age)
	assert.Equal(t, 12, *restored.Members[0].Age)
	assert.Nil(t, restored.Members[1].Age)
}

func TestBackupImportRejectsUnknownStatus(t *testing.T) {
	target := repository.NewFamilyRepository(testhelpers.SetupTestDB(t))

	input := `{"version":"1.0","families":[{"id":"x","dob":"1980-05-10T00:00:00Z","status":"archived"}]}`
	_, err := NewBackupService(target).ImportFromReader(context.Background(), strings.NewReader(input), false)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
