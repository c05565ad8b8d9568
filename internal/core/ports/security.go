package ports

import (
	"time"

	"github.com/accessdesk/user-service/internal/core/domain"
)

// PasswordHasher derives and checks one-way credential hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer mints bearer credentials for an authenticated principal.
type TokenIssuer interface {
	Issue(p domain.Principal) (token string, expiresAt time.Time, err error)
}

// TokenVerifier validates a bearer credential and resolves its principal.
// Any failure is reported as domain.ErrUnauthorized.
type TokenVerifier interface {
	Verify(token string) (*domain.Principal, error)
}
