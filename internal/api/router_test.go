package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accessdesk/user-service/internal/core/domain"
	"github.com/accessdesk/user-service/internal/core/ports"
	"github.com/accessdesk/user-service/internal/core/service"
	"github.com/accessdesk/user-service/internal/infrastructure/security"
)

// --- in-memory adapters ---

type memUsers struct {
	mu   sync.Mutex
	seq  int
	rows map[string]domain.User
}

func (m *memUsers) FindAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.rows))
	for _, u := range m.rows {
		u := u
		out = append(out, &u)
	}
	return out, nil
}

func (m *memUsers) FindByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return nil, domain.ErrUserExists
		}
	}
	m.seq++
	u := *user
	u.ID = fmt.Sprintf("U%d", m.seq)
	m.rows[u.ID] = u
	return &u, nil
}

func (m *memUsers) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.RoleID != nil {
		u.RoleID = *patch.RoleID
	}
	m.rows[id] = u
	return &u, nil
}

func (m *memUsers) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memUsers) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	m.rows[id] = u
	return nil
}

type memRoles struct {
	mu   sync.Mutex
	seq  int
	rows map[string]domain.Role
}

func (m *memRoles) FindAll(ctx context.Context) ([]*domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Role, 0, len(m.rows))
	for _, r := range m.rows {
		r := r
		out = append(out, &r)
	}
	return out, nil
}

func (m *memRoles) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return &r, nil
}

func (m *memRoles) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Name == name {
			r := r
			return &r, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (m *memRoles) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Name == role.Name {
			return nil, domain.ErrRoleExists
		}
	}
	m.seq++
	r := *role
	r.ID = fmt.Sprintf("R%d", m.seq)
	m.rows[r.ID] = r
	return &r, nil
}

func (m *memRoles) Update(ctx context.Context, id string, patch domain.RolePatch) (*domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	if patch.Name != nil {
		r.Name = *patch.Name
	}
	if patch.Description != nil {
		r.Description = *patch.Description
	}
	m.rows[id] = r
	return &r, nil
}

func (m *memRoles) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.ErrRoleNotFound
	}
	delete(m.rows, id)
	return nil
}

// memCache evicts without leaving tombstones, so a read right after login
// repopulates the entry.
type memCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func (c *memCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memCache) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) Add(ctx context.Context, key, value string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return false, nil
	}
	c.entries[key] = value
	return true, nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memCache) Ping(context.Context) error { return nil }

func (m *memUsers) Ping(context.Context) error { return nil }

// --- harness ---

type testServer struct {
	e     *echo.Echo
	roles *service.RoleService
	cache *memCache
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := zerolog.Nop()
	users := &memUsers{rows: map[string]domain.User{}}
	roles := &memRoles{rows: map[string]domain.Role{}}
	cache := &memCache{entries: map[string]string{}}
	hasher := security.NewBcryptHasher(4)
	tokens := security.NewJWTManager("test-secret", "user-service", time.Hour)

	roleSvc := service.NewRoleService(roles, log)
	e := NewRouter(Deps{
		Users:     service.NewUserService(users, roles, cache, hasher, log),
		Roles:     roleSvc,
		Auth:      service.NewAuthService(users, roles, cache, hasher, tokens, log),
		Tokens:    tokens,
		AdminRole: "admin",
		Store:     users,
		Cache:     cache,
		Log:       log,
	})
	return &testServer{e: e, roles: roleSvc, cache: cache}
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := s.do(http.MethodPost, "/auth/login", fmt.Sprintf(`{"email":%q,"password":%q}`, email, password), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[map[string]any](t, rec)["token"].(string)
}

func TestRouter_UserLifecycle(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	admin, err := s.roles.EnsureRole(ctx, "admin", "full access")
	require.NoError(t, err)
	member, err := s.roles.Create(ctx, ports.CreateRoleInput{Name: "member"})
	require.NoError(t, err)

	// unknown role is rejected with a message naming the reference
	rec := s.do(http.MethodPost, "/users", `{"username":"x","email":"x@x.com","password":"pw","role_id":"R99"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "R99")

	// sign-up
	rec = s.do(http.MethodPost, "/users", fmt.Sprintf(`{"username":"alice","email":"a@x.com","password":"pw","role_id":%q}`, admin.ID), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	alice := decode[map[string]any](t, rec)
	aliceID := alice["id"].(string)
	assert.NotEmpty(t, aliceID)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(http.MethodPost, "/users", fmt.Sprintf(`{"username":"bob","email":"b@x.com","password":"pw2","role_id":%q}`, member.ID), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	bobID := decode[map[string]any](t, rec)["id"].(string)

	// duplicate email
	rec = s.do(http.MethodPost, "/users", fmt.Sprintf(`{"username":"alice2","email":"A@x.com","password":"pw","role_id":%q}`, admin.ID), "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// protected routes need a token
	rec = s.do(http.MethodGet, "/users/"+aliceID, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(http.MethodGet, "/users/"+aliceID, "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// wrong password
	rec = s.do(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	adminToken := s.login(t, "a@x.com", "pw")
	bobToken := s.login(t, "b@x.com", "pw2")

	// read-through get populates the cache
	rec = s.do(http.MethodGet, "/users/"+aliceID, "", adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, decode[map[string]any](t, rec)["last_login"])
	_, cached := s.cache.entries[domain.UserCacheKey(aliceID)]
	assert.True(t, cached)

	// members cannot edit others or delete
	rec = s.do(http.MethodPut, "/users/"+aliceID, `{"username":"mallory"}`, bobToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodDelete, "/users/"+aliceID, "", bobToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "access forbidden", decode[map[string]any](t, rec)["error"])

	// self edit is visible immediately
	rec = s.do(http.MethodPut, "/users/"+bobID, `{"username":"robert"}`, bobToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(http.MethodGet, "/users/"+bobID, "", bobToken)
	assert.Equal(t, "robert", decode[map[string]any](t, rec)["username"])

	// empty patch
	rec = s.do(http.MethodPut, "/users/"+bobID, `{}`, bobToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/users", "", bobToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	// delete then get is not found, without echoing the id
	rec = s.do(http.MethodDelete, "/users/"+bobID, "", adminToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, "/users/"+bobID, "", adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), bobID)
}

func TestRouter_RoleRoutes(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	admin, err := s.roles.EnsureRole(ctx, "admin", "")
	require.NoError(t, err)
	rec := s.do(http.MethodPost, "/users", fmt.Sprintf(`{"username":"root","email":"root@x.com","password":"pw","role_id":%q}`, admin.ID), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	token := s.login(t, "root@x.com", "pw")

	rec = s.do(http.MethodPost, "/roles", `{"name":"auditor"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/roles", `{"name":"auditor","description":"read only"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	roleID := decode[domain.Role](t, rec).ID

	rec = s.do(http.MethodPost, "/roles", `{"name":"auditor"}`, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/roles", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Role](t, rec), 2)

	rec = s.do(http.MethodPut, "/roles/"+roleID, `{"description":"reads everything"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reads everything", decode[domain.Role](t, rec).Description)

	rec = s.do(http.MethodDelete, "/roles/"+roleID, "", token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, "/roles/"+roleID, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_OpsEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])

	s.do(http.MethodGet, "/roles", "", "")
	rec = s.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "users_http_requests_total")

	rec = s.do(http.MethodGet, "/swagger/doc.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/users/{id}")
}
