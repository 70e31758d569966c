package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"roflexi/internal/client"
	"roflexi/internal/config"
	"roflexi/internal/database"
	"roflexi/internal/domain"
	"roflexi/internal/pkg/cache"
	"roflexi/internal/repository"
	"roflexi/internal/storage"
	"roflexi/internal/wizard"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServer struct {
	url        string
	db         *gorm.DB
	uploadsDir string
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := filepath.Join(t.TempDir(), "uploads")
	t.Setenv("UPLOADS_DIR", dir)
	cfg, err := config.Parse()
	require.NoError(t, err)

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	images := storage.NewLocal(cfg.UploadsDir, cfg.UploadsURLPrefix)
	srv := httptest.NewServer(newRouter(cfg, zap.NewNop(), db, cache.NewMemory(), images))
	t.Cleanup(srv.Close)

	return &testServer{url: srv.URL, db: db, uploadsDir: dir}
}

func filledMachine(t *testing.T, role domain.Role, email string) *wizard.Machine {
	t.Helper()
	m := wizard.New(role, wizard.WithLocalizer(wizard.NewLocalizer("en")))
	m.Form.FullName = "Ana Pop"
	m.Form.Email = email
	m.Form.Age = "30"
	m.Form.Password = "secret1"
	m.Form.SetPhone("712 345 678")
	if role == domain.RoleProvider {
		m.ToggleTag("Curățenie")
	}
	m.PickLocation(wizard.DefaultCenter)
	require.NoError(t, m.SetImage("me.png", "image/png", []byte("\x89PNG\r\n\x1a\n")))
	return m
}

func TestWelcome(t *testing.T) {
	s := setupServer(t)

	resp, err := http.Get(s.url + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Welcome to the Roflexi Hackathon App!", string(body))
}

func TestRegistration_EndToEnd(t *testing.T) {
	s := setupServer(t)
	ctx := context.Background()

	m := filledMachine(t, domain.RoleProvider, "ana@example.com")
	orch := client.NewOrchestrator(s.url)
	b, err := orch.Submit(ctx, m, "attempt-1")
	require.NoError(t, err)
	require.NotEmpty(t, b.UID)
	require.NotEmpty(t, b.ExchangeCode)
	assert.Equal(t, wizard.SampleForm(), m.Form)

	acc, err := repository.NewProfileRepository(s.db).GetByUID(ctx, domain.RoleProvider, b.UID)
	require.NoError(t, err)
	assert.Equal(t, "+40712345678", acc.Phone)
	assert.Equal(t, []string{"Curățenie"}, acc.Tags)
	assert.Len(t, acc.ServiceArea, 4)
	require.NotEmpty(t, acc.ProfileImagePath)

	_, err = os.Stat(filepath.Join(s.uploadsDir, filepath.Base(acc.ProfileImagePath)))
	assert.NoError(t, err)

	resp, err := http.Get(s.url + acc.ProfileImagePath)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	token := b.CustomToken
	session, err := client.NewHandoffClient(s.url).Complete(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, b.UID, session.UID)
	assert.Equal(t, domain.RoleProvider, session.Role)
	assert.NotEmpty(t, session.Token)

	// bootstrap tokens are single use
	_, err = client.NewHandoffClient(s.url).SignIn(ctx, token)
	var herr *client.HandoffError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusUnauthorized, herr.Status)
}

func TestRegistration_RemintWithExchangeCode(t *testing.T) {
	s := setupServer(t)
	ctx := context.Background()

	b, err := client.NewOrchestrator(s.url).Submit(ctx, filledMachine(t, domain.RoleRequester, "ion@example.com"), "")
	require.NoError(t, err)

	b.CustomToken = ""
	session, err := client.NewHandoffClient(s.url).Complete(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleRequester, session.Role)

	// the exchange code was consumed by the first remint
	_, err = client.NewHandoffClient(s.url).Remint(ctx, session.UID, "whatever")
	var herr *client.HandoffError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "handoff/invalid-exchange-code", herr.Code)
}

func TestRegistration_DuplicateEmailIsRejected(t *testing.T) {
	s := setupServer(t)
	ctx := context.Background()
	orch := client.NewOrchestrator(s.url)

	_, err := orch.Submit(ctx, filledMachine(t, domain.RoleRequester, "dup@example.com"), "")
	require.NoError(t, err)

	m := filledMachine(t, domain.RoleRequester, "dup@example.com")
	m.Form.SetPhone("799999999")
	_, err = orch.Submit(ctx, m, "")

	var serr *client.SubmitError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, client.KindRejected, serr.Kind)
	assert.Equal(t, http.StatusInternalServerError, serr.Status)
	assert.Equal(t, "Server error", serr.Message)
	assert.True(t, strings.Contains(serr.Detail, "email address is already in use"))
	assert.Equal(t, "dup@example.com", m.Form.Email)
}
