package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/accessdesk/user-service/internal/core/domain"
	"github.com/accessdesk/user-service/internal/core/ports"
	"github.com/accessdesk/user-service/internal/infrastructure/metrics"
)

var validate = validator.New()

// UserService implements the user lifecycle: it validates input, resolves the
// referenced role, hashes credentials, and keeps the read-through cache in
// step with the store. The cache is never authoritative; any cache failure is
// logged and the operation continues against the repository.
type UserService struct {
	users  ports.UserRepository
	roles  ports.RoleRepository
	cache  ports.Cache
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

func NewUserService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	cache ports.Cache,
	hasher ports.PasswordHasher,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		users:  users,
		roles:  roles,
		cache:  cache,
		hasher: hasher,
		log:    log,
		now:    time.Now,
	}
}

// List returns every user as a public view. The whole set is loaded at once.
func (s *UserService) List(ctx context.Context) ([]domain.UserView, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	views := make([]domain.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	return views, nil
}

// Get returns the view of user id, serving it from the cache when possible.
// On a miss the repository is consulted and the cache populated.
func (s *UserService) Get(ctx context.Context, id string) (*domain.UserView, error) {
	if view, ok := s.cached(ctx, id); ok {
		return view, nil
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	view := user.View()
	s.store(ctx, view)
	return &view, nil
}

// Create registers a new user. The referenced role must exist and the
// password is stored only as a one-way hash.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.UserView, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password, "is required"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.RoleID) == "" {
		return nil, domain.NewValidationError("role_id", "is required")
	}

	if err := s.requireRole(ctx, in.RoleID); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		RoleID:       in.RoleID,
		CreatedAt:    s.now().UTC(),
		LastLogin:    nil,
	})
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("failed to create user")
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.UsersCreatedTotal.Inc()
	s.log.Info().Str("user_id", created.ID).Str("role_id", created.RoleID).Msg("user created")

	view := created.View()
	return &view, nil
}

// Update applies a partial patch to user id and refreshes its cache entry.
func (s *UserService) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.UserView, error) {
	patch, err := s.buildPatch(ctx, in)
	if err != nil {
		return nil, err
	}

	updated, err := s.users.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.evict(ctx, id)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	view := updated.View()
	s.refresh(ctx, view)

	s.log.Info().Str("user_id", id).Msg("user updated")
	return &view, nil
}

// Delete removes user id and evicts its cache entry.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.evict(ctx, id)
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.evict(ctx, id)
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) buildPatch(ctx context.Context, in ports.UpdateUserInput) (domain.UserPatch, error) {
	var patch domain.UserPatch

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validateUsername(username); err != nil {
			return patch, err
		}
		patch.Username = &username
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if err := validateEmail(email); err != nil {
			return patch, err
		}
		patch.Email = &email
	}
	if in.RoleID != nil {
		if strings.TrimSpace(*in.RoleID) == "" {
			return patch, domain.NewValidationError("role_id", "must not be empty")
		}
		if err := s.requireRole(ctx, *in.RoleID); err != nil {
			return patch, err
		}
		roleID := *in.RoleID
		patch.RoleID = &roleID
	}
	if in.Password != nil {
		if err := validatePassword(*in.Password, "must not be empty"); err != nil {
			return patch, err
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return patch, fmt.Errorf("update user: hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}

	if patch.Empty() {
		return patch, domain.NewValidationError("body", "must change at least one field")
	}
	return patch, nil
}

// requireRole checks that roleID resolves to an existing role. The check and
// the following write are not atomic; a role deleted in between is accepted.
func (s *UserService) requireRole(ctx context.Context, roleID string) error {
	if _, err := s.roles.FindByID(ctx, roleID); err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return &domain.RoleReferenceError{RoleID: roleID}
		}
		return fmt.Errorf("resolve role: %w", err)
	}
	return nil
}

// --- cache helpers ---

func (s *UserService) cached(ctx context.Context, id string) (*domain.UserView, bool) {
	key := domain.UserCacheKey(id)

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheRequestsTotal.WithLabelValues(metrics.CacheError).Inc()
		s.log.Warn().Err(fmt.Errorf("%w: %v", domain.ErrCacheDegraded, err)).Str("key", key).Msg("cache read failed, falling back to store")
		return nil, false
	}
	if !ok {
		metrics.CacheRequestsTotal.WithLabelValues(metrics.CacheMiss).Inc()
		return nil, false
	}

	var view domain.UserView
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		metrics.CacheRequestsTotal.WithLabelValues(metrics.CacheError).Inc()
		s.log.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		s.evict(ctx, id)
		return nil, false
	}

	metrics.CacheRequestsTotal.WithLabelValues(metrics.CacheHit).Inc()
	s.log.Debug().Str("key", key).Msg("user served from cache")
	return &view, true
}

// store populates the cache after a read. It never overwrites: if a
// mutation refreshed or evicted the key while the read was in flight, the
// newer entry or tombstone wins and view is dropped.
func (s *UserService) store(ctx context.Context, view domain.UserView) {
	key := domain.UserCacheKey(view.ID)

	payload, err := json.Marshal(view)
	if err != nil {
		return
	}

	stored, err := s.cache.Add(context.WithoutCancel(ctx), key, string(payload))
	if err != nil {
		metrics.CacheWriteErrorsTotal.WithLabelValues("add").Inc()
		s.log.Warn().Err(fmt.Errorf("%w: %v", domain.ErrCacheDegraded, err)).Str("key", key).Msg("cache write failed")
		return
	}
	if !stored {
		s.log.Debug().Str("key", key).Msg("cache populate skipped, key changed during read")
	}
}

// refresh overwrites the cache entry after a mutation. If the overwrite fails
// the entry is evicted instead so no pre-mutation value survives.
func (s *UserService) refresh(ctx context.Context, view domain.UserView) {
	key := domain.UserCacheKey(view.ID)

	payload, err := json.Marshal(view)
	if err == nil {
		// Detached from the request so a client disconnect cannot skip the write.
		err = s.cache.Set(context.WithoutCancel(ctx), key, string(payload))
	}
	if err != nil {
		metrics.CacheWriteErrorsTotal.WithLabelValues("set").Inc()
		s.log.Warn().Err(fmt.Errorf("%w: %v", domain.ErrCacheDegraded, err)).Str("key", key).Msg("cache write failed")
		s.evict(ctx, view.ID)
	}
}

func (s *UserService) evict(ctx context.Context, id string) {
	key := domain.UserCacheKey(id)
	if err := s.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
		metrics.CacheWriteErrorsTotal.WithLabelValues("delete").Inc()
		s.log.Error().Err(fmt.Errorf("%w: %v", domain.ErrCacheDegraded, err)).Str("key", key).Msg("cache eviction failed")
	}
}

// --- validation ---

func validateUsername(username string) error {
	if username == "" {
		return domain.NewValidationError("username", "is required")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return domain.NewValidationError("email", "is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return domain.NewValidationError("email", "must be a valid email")
	}
	return nil
}

// validatePassword rejects an empty password with emptyReason and one longer
// than bcrypt accepts.
func validatePassword(password, emptyReason string) error {
	if password == "" {
		return domain.NewValidationError("password", emptyReason)
	}
	if len(password) > domain.MaxPasswordBytes {
		return domain.NewValidationError("password", fmt.Sprintf("must be at most %d bytes", domain.MaxPasswordBytes))
	}
	return nil
}
