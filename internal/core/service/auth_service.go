package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/accessdesk/user-service/internal/core/domain"
	"github.com/accessdesk/user-service/internal/core/ports"
	"github.com/accessdesk/user-service/internal/infrastructure/metrics"
)

// AuthService implements the login flow.
type AuthService struct {
	users  ports.UserRepository
	roles  ports.RoleRepository
	cache  ports.Cache
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	cache ports.Cache,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		roles:  roles,
		cache:  cache,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
}

// Login checks the credentials, stamps the user's last login and issues a
// bearer token. An unknown email and a wrong password are indistinguishable
// to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if s.hasher.Compare(user.PasswordHash, password) != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	roleName := ""
	role, err := s.roles.FindByID(ctx, user.RoleID)
	switch {
	case err == nil:
		roleName = role.Name
	case errors.Is(err, domain.ErrRoleNotFound):
		s.log.Warn().Str("user_id", user.ID).Str("role_id", user.RoleID).Msg("user references a missing role")
	default:
		return nil, fmt.Errorf("login: resolve role: %w", err)
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	user.LastLogin = &now

	key := domain.UserCacheKey(user.ID)
	if err := s.cache.Delete(context.WithoutCancel(ctx), key); err != nil {
		metrics.CacheWriteErrorsTotal.WithLabelValues("delete").Inc()
		s.log.Error().Err(fmt.Errorf("%w: %v", domain.ErrCacheDegraded, err)).Str("key", key).Msg("cache eviction failed")
	}

	token, expiresAt, err := s.tokens.Issue(domain.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Role:     roleName,
		RoleID:   user.RoleID,
	})
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")

	return &ports.LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.View(),
	}, nil
}
