package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/accessdesk/user-service/internal/core/domain"
	"github.com/accessdesk/user-service/internal/core/ports"
)

// RoleService is a thin CRUD layer over the role repository.
type RoleService struct {
	repo ports.RoleRepository
	log  zerolog.Logger
}

func NewRoleService(repo ports.RoleRepository, log zerolog.Logger) *RoleService {
	return &RoleService{repo: repo, log: log}
}

func (s *RoleService) List(ctx context.Context) ([]*domain.Role, error) {
	roles, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (s *RoleService) Get(ctx context.Context, id string) (*domain.Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

func (s *RoleService) Create(ctx context.Context, in ports.CreateRoleInput) (*domain.Role, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}

	role, err := s.repo.Create(ctx, &domain.Role{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
	})
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}

	s.log.Info().Str("role_id", role.ID).Str("name", role.Name).Msg("role created")
	return role, nil
}

func (s *RoleService) Update(ctx context.Context, id string, in ports.UpdateRoleInput) (*domain.Role, error) {
	var patch domain.RolePatch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "must not be empty")
		}
		patch.Name = &name
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		patch.Description = &desc
	}
	if patch.Empty() {
		return nil, domain.NewValidationError("body", "must change at least one field")
	}

	role, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	return role, nil
}

// Delete removes the role. Users still referencing it are left untouched.
func (s *RoleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	s.log.Info().Str("role_id", id).Msg("role deleted")
	return nil
}

func (s *RoleService) EnsureRole(ctx context.Context, name, description string) (*domain.Role, error) {
	role, err := s.repo.FindByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, domain.ErrRoleNotFound) {
		return nil, fmt.Errorf("ensure role %q: %w", name, err)
	}

	role, err = s.repo.Create(ctx, &domain.Role{Name: name, Description: description})
	if errors.Is(err, domain.ErrRoleExists) {
		// Lost a race with another instance seeding the same role.
		return s.repo.FindByName(ctx, name)
	}
	if err != nil {
		return nil, fmt.Errorf("ensure role %q: %w", name, err)
	}

	s.log.Info().Str("role_id", role.ID).Str("name", name).Msg("role seeded")
	return role, nil
}
