package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/accessdesk/user-service/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users       map[string]*domain.User
	nextID      int
	findErr     error // if set, FindAll/FindByID/FindByEmail return this error
	writeErr    error // if set, Create/Update/Delete return this error
	findByIDHit int
	createCalls int
	updateCalls int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.findByIDHit++
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.createCalls++
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("U%d", r.nextID)
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.updateCalls++
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	u, ok := r.users[id]
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
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

type stubRoleRepo struct {
	roles   map[string]*domain.Role
	nextID  int
	findErr error
}

func newStubRoleRepo(roles ...*domain.Role) *stubRoleRepo {
	r := &stubRoleRepo{roles: make(map[string]*domain.Role)}
	for _, role := range roles {
		clone := *role
		r.roles[role.ID] = &clone
	}
	return r
}

func (r *stubRoleRepo) FindAll(_ context.Context) ([]*domain.Role, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make([]*domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		clone := *role
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	role, ok := r.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	clone := *role
	return &clone, nil
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, role := range r.roles {
		if role.Name == name {
			clone := *role
			return &clone, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) Create(_ context.Context, role *domain.Role) (*domain.Role, error) {
	for _, existing := range r.roles {
		if existing.Name == role.Name {
			return nil, domain.ErrRoleExists
		}
	}
	r.nextID++
	clone := *role
	clone.ID = fmt.Sprintf("R%d", r.nextID)
	r.roles[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubRoleRepo) Update(_ context.Context, id string, patch domain.RolePatch) (*domain.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	if patch.Name != nil {
		role.Name = *patch.Name
	}
	if patch.Description != nil {
		role.Description = *patch.Description
	}
	clone := *role
	return &clone, nil
}

func (r *stubRoleRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.roles[id]; !ok {
		return domain.ErrRoleNotFound
	}
	delete(r.roles, id)
	return nil
}

// ---------------------------------------------------------------------------
// Cache, hasher and token stubs
// ---------------------------------------------------------------------------

// stubCache mirrors the Redis adapter: Delete leaves a tombstone that Get
// reports as a miss and Add refuses to overwrite.
type stubCache struct {
	entries    map[string]string
	tombstones map[string]bool
	getErr     error
	setErr     error // also returned by Add
	delErr     error
	gets       int
	sets       int
	adds       int
	deletes    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]string), tombstones: make(map[string]bool)}
}

func (c *stubCache) Get(_ context.Context, key string) (string, bool, error) {
	c.gets++
	if c.getErr != nil {
		return "", false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *stubCache) Set(_ context.Context, key, value string) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	delete(c.tombstones, key)
	c.entries[key] = value
	return nil
}

func (c *stubCache) Add(_ context.Context, key, value string) (bool, error) {
	c.adds++
	if c.setErr != nil {
		return false, c.setErr
	}
	if _, ok := c.entries[key]; ok || c.tombstones[key] {
		return false, nil
	}
	c.entries[key] = value
	return true, nil
}

func (c *stubCache) Delete(_ context.Context, key string) error {
	c.deletes++
	if c.delErr != nil {
		return c.delErr
	}
	delete(c.entries, key)
	c.tombstones[key] = true
	return nil
}

var errMismatch = errors.New("hash mismatch")

// fakeHasher is reversible on purpose so tests can check what was hashed.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errMismatch
	}
	return nil
}

// rejectingHasher refuses every password the way bcrypt refuses one that is
// too long.
type rejectingHasher struct{}

func (rejectingHasher) Hash(string) (string, error) {
	return "", domain.NewValidationError("password", "must be at most 72 bytes")
}

func (rejectingHasher) Compare(string, string) error { return errMismatch }

type stubTokenIssuer struct {
	issued []domain.Principal
	err    error
}

func (s *stubTokenIssuer) Issue(p domain.Principal) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	s.issued = append(s.issued, p)
	return "token-" + p.UserID, time.Now().Add(time.Hour), nil
}
