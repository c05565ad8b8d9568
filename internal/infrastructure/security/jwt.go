package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/accessdesk/user-service/internal/core/domain"
)

const defaultTokenTTL = time.Hour

// claims is the payload carried by every bearer token.
type claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	RoleID   string `json:"role_id"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 bearer tokens signed with a shared secret.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTManager(secret, issuer string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &JWTManager{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

func (m *JWTManager) Issue(p domain.Principal) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: p.Username,
		Role:     p.Role,
		RoleID:   p.RoleID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, algorithm, issuer and expiry. Every failure maps to
// domain.ErrUnauthorized; the underlying reason is kept in the chain.
func (m *JWTManager) Verify(token string) (*domain.Principal, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, errors.Join(domain.ErrUnauthorized, err)
	}
	if !parsed.Valid || c.Subject == "" {
		return nil, domain.ErrUnauthorized
	}

	return &domain.Principal{
		UserID:    c.Subject,
		Username:  c.Username,
		Role:      c.Role,
		RoleID:    c.RoleID,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
