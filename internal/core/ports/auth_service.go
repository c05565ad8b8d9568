package ports

import (
	"context"
	"time"

	"github.com/accessdesk/user-service/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.UserView
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}
