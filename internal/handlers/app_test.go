package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"familyregistry/internal/config"
	"familyregistry/internal/database"
	"familyregistry/internal/metrics"
	"familyregistry/internal/models"
	"familyregistry/internal/repository"
	"familyregistry/internal/security"
	"familyregistry/internal/service"
	"familyregistry/internal/session"
	"familyregistry/internal/storage"
	"familyregistry/internal/testhelpers"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct horse battery"

	testGoogleAdminEmail = "owner@example.com"
)

type testApp struct {
	server    *httptest.Server
	db        *database.DB
	families  *repository.FamilyRepository
	uploadDir string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithGoogle(t, nil)
}

// newTestAppWithGoogle builds the app with Google sign-in enabled when google is non-nil.
// testGoogleAdminEmail is the only allowed Google administrator.
func newTestAppWithGoogle(t *testing.T, google *GoogleAuth) *testApp {
	t.Helper()

	db := testhelpers.SetupTestDB(t)
	templates, err := LoadTemplates(filepath.Join(testhelpers.ModuleRoot(), "internal", "templates"))
	require.NoError(t, err)

	hash, err := security.HashPassword(testAdminPassword)
	require.NoError(t, err)

	m := metrics.New()
	families := repository.NewFamilyRepository(db)
	sessions := repository.NewSessionRepository(db)
	sessionCfg := config.SessionConfig{Secret: "test-session-secret", Duration: time.Hour}
	familySessions := session.NewManager(sessions, sessionCfg, FamilySessionCookieName, models.SessionKindFamily)
	adminSessions := session.NewManager(sessions, sessionCfg, AdminSessionCookieName, models.SessionKindAdmin)

	uploadDir := filepath.Join(t.TempDir(), "uploads")
	uploads := storage.NewDiskUploader(uploadDir)

	registration := service.NewRegistrationService(families, uploads, nil, m)
	auth := service.NewAuthService(families, m)
	admin := service.NewAdminService(families, nil, m, config.AdminConfig{
		Email:         testAdminEmail,
		PasswordHash:  hash,
		AllowedEmails: []string{testGoogleAdminEmail},
	})

	mw := NewMiddleware(familySessions, adminSessions, security.NewCSRFGenerator(sessionCfg.Secret), security.NewRateLimiter(5, time.Minute))
	routes := &Routes{
		Registration: NewRegistrationHandler(registration, familySessions, templates, 5<<20),
		Auth:         NewAuthHandler(auth, familySessions, templates),
		Admin:        NewAdminHandler(admin, adminSessions, mw, templates, google),
		System:       NewSystemHandler(uploads, families),
		Middleware:   mw,
		Metrics:      m.Handler(),
	}

	server := httptest.NewServer(Logging(routes.Mux()))
	t.Cleanup(server.Close)

	return &testApp{server: server, db: db, families: families, uploadDir: uploadDir}
}

// newBrowser returns a client that keeps cookies and does not follow redirects
func (a *testApp) newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type response struct {
	status   int
	location string
	body     string
}

func do(t *testing.T, client *http.Client, req *http.Request) response {
	t.Helper()
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}
}

func (a *testApp) get(t *testing.T, client *http.Client, path string) response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.server.URL+path, nil)
	require.NoError(t, err)
	return do(t, client, req)
}

func (a *testApp) postForm(t *testing.T, client *http.Client, path string, form url.Values) response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t, client, req)
}

type upload struct {
	field    string
	filename string
	content  string
}

func (a *testApp) postMultipart(t *testing.T, client *http.Client, path string, form url.Values, file *upload) response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, values := range form {
		for _, value := range values {
			require.NoError(t, writer.WriteField(key, value))
		}
	}
	if file != nil {
		part, err := writer.CreateFormFile(file.field, file.filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(file.content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return do(t, client, req)
}

// loginAdmin signs in as the test administrator and returns the CSRF token from the dashboard
func (a *testApp) loginAdmin(t *testing.T, client *http.Client) string {
	t.Helper()

	resp := a.postForm(t, client, "/admin/login", url.Values{
		"email":    {testAdminEmail},
		"password": {testAdminPassword},
	})
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, "/admin/dashboard", resp.location)

	dashboard := a.get(t, client, "/admin/dashboard")
	require.Equal(t, http.StatusOK, dashboard.status)
	return extractCSRFToken(t, dashboard.body)
}

var csrfTokenPattern = regexp.MustCompile(`name="csrf_token" value="([0-9a-f]+)"`)

func extractCSRFToken(t *testing.T, body string) string {
	t.Helper()
	match := csrfTokenPattern.FindStringSubmatch(body)
	require.Len(t, match, 2, "page has no CSRF token")
	return match[1]
}
