package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familyregistry/internal/models"
)

func TestHomeRendersRegistrationForm(t *testing.T) {
	app := newTestApp(t)

	resp := app.get(t, app.newBrowser(t), "/")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, `action="/submit-form"`)
	assert.Contains(t, resp.body, `name="memberName[]"`)
}

func TestSubmitFormStoresPendingFamilyWithPhoto(t *testing.T) {
	app := newTestApp(t)
	browser := app.newBrowser(t)

	form := url.Values{
		"familyHead":   {"Shah Family"},
		"email":        {"a@x.com"},
		"dob":          {"1990-01-01"},
		"memberName[]": {"Raj", "Sita"},
		"relation[]":   {"son", "daughter"},
		"age[]":        {"20", "18"},
	}
	resp := app.postMultipart(t, browser, "/submit-form", form, &upload{field: "files", filename: "family.png", content: "png-data"})
	require.Equal(t, http.StatusOK, resp.status, resp.body)
	assert.Equal(t, SubmissionAcceptedMessage, resp.body)

	pending, err := app.families.ListFamiliesByStatus(context.Background(), models.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	family, err := app.families.GetFamilyByID(context.Background(), pending[0].ID)
	require.NoError(t, err)
	require.Len(t, family.Members, 2)
	assert.Equal(t, "Raj", family.Members[0].Name)
	assert.Equal(t, "daughter", family.Members[1].Relation)
	require.NotNil(t, family.Members[1].Age)
	assert.Equal(t, 18, *family.Members[1].Age)

	require.True(t, strings.HasPrefix(family.ProfileImage, "uploads/"), family.ProfileImage)
	photo := app.get(t, browser, "/"+family.ProfileImage)
	assert.Equal(t, http.StatusOK, photo.status)
	assert.Equal(t, "png-data", photo.body)
}

func TestSubmitFormScalarMemberWithoutPhoto(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{
		"familyHead": {"Mehta Family"},
		"email":      {"mehta@example.com"},
		"dob":        {"1970-03-04"},
		"memberName": {"Kiran"},
		"relation":   {"wife"},
		"age":        {"unknown"},
	}
	resp := app.postMultipart(t, app.newBrowser(t), "/submit-form", form, nil)
	require.Equal(t, http.StatusOK, resp.status, resp.body)

	pending, err := app.families.ListFamiliesByStatus(context.Background(), models.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Empty(t, pending[0].ProfileImage)

	family, err := app.families.GetFamilyByID(context.Background(), pending[0].ID)
	require.NoError(t, err)
	require.Len(t, family.Members, 1)
	assert.Nil(t, family.Members[0].Age)
}

func TestSubmitFormURLEncoded(t *testing.T) {
	app := newTestApp(t)

	resp := app.postForm(t, app.newBrowser(t), "/submit-form", url.Values{
		"familyHead": {"Joshi Family"},
		"email":      {"joshi@example.com"},
		"dob":        {"1985-07-08"},
	})
	require.Equal(t, http.StatusOK, resp.status, resp.body)
	assert.Equal(t, SubmissionAcceptedMessage, resp.body)
}

func TestSubmitFormInvalidDOBIsServerError(t *testing.T) {
	app := newTestApp(t)

	resp := app.postMultipart(t, app.newBrowser(t), "/submit-form", url.Values{
		"familyHead": {"Shah Family"},
		"email":      {"a@x.com"},
		"dob":        {"someday"},
	}, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.status)
	assert.True(t, strings.HasPrefix(resp.body, "Error: "), resp.body)

	pending, err := app.families.ListFamiliesByStatus(context.Background(), models.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestUploadsRejectUnknownFiles(t *testing.T) {
	app := newTestApp(t)

	resp := app.get(t, app.newBrowser(t), "/uploads/files-missing.png")
	assert.Equal(t, http.StatusNotFound, resp.status)
}
