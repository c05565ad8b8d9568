package ports

import (
	"context"

	"github.com/accessdesk/user-service/internal/core/domain"
)

// RoleRepository defines persistence operations for roles.
type RoleRepository interface {
	FindAll(ctx context.Context) ([]*domain.Role, error)
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	Update(ctx context.Context, id string, patch domain.RolePatch) (*domain.Role, error)
	Delete(ctx context.Context, id string) error
}
