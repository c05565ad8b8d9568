package ports

import (
	"context"

	"github.com/accessdesk/user-service/internal/core/domain"
)

type CreateRoleInput struct {
	Name        string
	Description string
}

type UpdateRoleInput struct {
	Name        *string
	Description *string
}

// RoleService defines role management use cases.
type RoleService interface {
	List(ctx context.Context) ([]*domain.Role, error)
	Get(ctx context.Context, id string) (*domain.Role, error)
	Create(ctx context.Context, input CreateRoleInput) (*domain.Role, error)
	Update(ctx context.Context, id string, input UpdateRoleInput) (*domain.Role, error)
	Delete(ctx context.Context, id string) error
	// EnsureRole returns the role with the given name, creating it when absent.
	EnsureRole(ctx context.Context, name, description string) (*domain.Role, error)
}
