package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/accessdesk/user-service/internal/core/domain"
)

const roleColumns = `id::text, name, description`

// RoleRepository implements ports.RoleRepository on PostgreSQL.
type RoleRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewRoleRepository(pool *pgxpool.Pool, timeout time.Duration) *RoleRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &RoleRepository{pool: pool, timeout: timeout}
}

func scanRole(row pgx.Row) (*domain.Role, error) {
	var role domain.Role
	if err := row.Scan(&role.ID, &role.Name, &role.Description); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepository) FindAll(ctx context.Context) ([]*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, domain.NewPersistenceError("list roles", err)
	}
	defer rows.Close()

	roles := make([]*domain.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, domain.NewPersistenceError("scan role", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewPersistenceError("list roles", err)
	}
	return roles, nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	if !validID(id) {
		return nil, domain.ErrRoleNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	role, err := scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
	if err != nil {
		return nil, translate("find role", err, domain.ErrRoleNotFound, nil)
	}
	return role, nil
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	role, err := scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name))
	if err != nil {
		return nil, translate("find role by name", err, domain.ErrRoleNotFound, nil)
	}
	return role, nil
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	created, err := scanRole(r.pool.QueryRow(ctx,
		`INSERT INTO roles (name, description) VALUES ($1, $2) RETURNING `+roleColumns,
		role.Name, role.Description,
	))
	if err != nil {
		return nil, translate("insert role", err, domain.ErrRoleNotFound, domain.ErrRoleExists)
	}
	return created, nil
}

func (r *RoleRepository) Update(ctx context.Context, id string, patch domain.RolePatch) (*domain.Role, error) {
	if !validID(id) {
		return nil, domain.ErrRoleNotFound
	}
	if patch.Empty() {
		return r.FindByID(ctx, id)
	}

	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if patch.Name != nil {
		args = append(args, *patch.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if patch.Description != nil {
		args = append(args, *patch.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE roles SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), roleColumns)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	role, err := scanRole(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate("update role", err, domain.ErrRoleNotFound, domain.ErrRoleExists)
	}
	return role, nil
}

func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrRoleNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return domain.NewPersistenceError("delete role", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}
