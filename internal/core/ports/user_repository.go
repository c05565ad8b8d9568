package ports

import (
	"context"
	"time"

	"github.com/accessdesk/user-service/internal/core/domain"
)

// UserRepository defines persistence operations for users.
// Lookups of a missing user return domain.ErrUserNotFound; store failures are
// reported as *domain.PersistenceError.
type UserRepository interface {
	FindAll(ctx context.Context) ([]*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create inserts the user and returns it with the store-assigned ID.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}
