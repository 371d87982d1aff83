package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storyhub/internal/auth"
	"storyhub/internal/auth/bearer"
	"storyhub/internal/auth/credential"
	"storyhub/internal/authz/ownership"
	"storyhub/internal/gate"
	"storyhub/internal/handlers"
	"storyhub/internal/models"
	"storyhub/internal/observability"
	"storyhub/internal/observability/logging"
	"storyhub/internal/observability/metrics"
	"storyhub/internal/store"
	"storyhub/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type api struct {
	t      *testing.T
	store  *memory.Store
	router *Router
}

func newAPI(t *testing.T) *api {
	t.Helper()
	s := memory.New()
	issuer, err := credential.NewSecretIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	obs := &observability.Provider{Logger: logging.Nop(), Metrics: metrics.NewCollector()}
	resolver := bearer.New(credential.NewSecretVerifier(testSecret), s, obs.Logger, obs.Metrics)
	g := gate.New(resolver, ownership.NewGuard(s), obs.Logger, obs.Metrics)
	h := handlers.New(handlers.Config{Store: s, Issuer: issuer, BcryptCost: bcrypt.MinCost}, obs.Logger)

	return &api{t: t, store: s, router: New(Config{RequestTimeout: 5 * time.Second}, h, g, obs)}
}

// seedUser stores a user with password "secret" and logs it in
func (a *api) seedUser(email string, role auth.Role) (*models.User, string) {
	a.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(a.t, err)
	u := &models.User{Username: email, Email: email, Password: string(hash), Role: role}
	require.NoError(a.t, a.store.Save(context.Background(), store.Users, u))

	rec := a.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": email, "password": "secret"})
	require.Equal(a.t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &login))
	return u, login.Token
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestRootAndNotFound(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "API is running...", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(observability.TraceHeader))

	rec = a.do(http.MethodGet, "/api/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTraceHeaderIsEchoed(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/stories", nil)
	req.Header.Set(observability.TraceHeader, "trace-123")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "trace-123", rec.Header().Get(observability.TraceHeader))
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestStoryOwnershipEndToEnd(t *testing.T) {
	a := newAPI(t)
	_, ownerToken := a.seedUser("owner@example.com", auth.RoleReader)
	_, otherToken := a.seedUser("other@example.com", auth.RoleReader)
	_, adminToken := a.seedUser("admin@example.com", auth.RoleAdmin)

	rec := a.do(http.MethodPost, "/api/stories", "", map[string]string{"title": "T", "content": "C"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPost, "/api/stories", ownerToken, map[string]string{"title": "T", "content": "C"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var story models.Story
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &story))
	path := "/api/stories/" + story.ID.Hex()

	rec = a.do(http.MethodPut, path, otherToken, map[string]string{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPut, path, ownerToken, map[string]string{"title": "Renamed"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryAndUserRoutesRequireAdmin(t *testing.T) {
	a := newAPI(t)
	_, readerToken := a.seedUser("reader@example.com", auth.RoleReader)
	_, adminToken := a.seedUser("admin@example.com", auth.RoleAdmin)

	rec := a.do(http.MethodPost, "/api/categories", readerToken, map[string]string{"name": "Horror"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPost, "/api/categories", adminToken, map[string]string{"name": "Horror"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(http.MethodGet, "/api/categories", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodGet, "/api/users", readerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodGet, "/api/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestChapterMutationsOnlyRequireAuthentication(t *testing.T) {
	a := newAPI(t)
	_, readerToken := a.seedUser("reader@example.com", auth.RoleReader)

	rec := a.do(http.MethodPost, "/api/stories", readerToken, map[string]string{"title": "T", "content": "C"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var story models.Story
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &story))

	rec = a.do(http.MethodPost, "/api/chapters", "", map[string]string{"story_id": story.ID.Hex(), "title": "1", "body": "b"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, strangerToken := a.seedUser("stranger@example.com", auth.RoleReader)
	rec = a.do(http.MethodPost, "/api/chapters", strangerToken, map[string]string{"story_id": story.ID.Hex(), "title": "1", "body": "b"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(http.MethodGet, "/api/chapters/story/"+story.ID.Hex(), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutesProtectEveryMutation(t *testing.T) {
	h := handlers.New(handlers.Config{Store: memory.New()}, logging.Nop())
	for _, route := range Routes(h) {
		if route.Method != http.MethodGet {
			assert.NotNil(t, route.Rule, route.Name)
		}
		assert.NotEqual(t, "user.login", route.Name, "login needs an issuer")
	}
}
