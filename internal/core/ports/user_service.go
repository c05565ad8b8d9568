package ports

import (
	"context"

	"github.com/accessdesk/user-service/internal/core/domain"
)

// CreateUserInput is the DTO passed from the transport layer to UserService.Create.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	RoleID   string
}

// UpdateUserInput carries a partial patch; nil fields are not changed.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	RoleID   *string
}

// UserService defines the user lifecycle use cases.
type UserService interface {
	List(ctx context.Context) ([]domain.UserView, error)
	Get(ctx context.Context, id string) (*domain.UserView, error)
	Create(ctx context.Context, input CreateUserInput) (*domain.UserView, error)
	Update(ctx context.Context, id string, input UpdateUserInput) (*domain.UserView, error)
	Delete(ctx context.Context, id string) error
}
