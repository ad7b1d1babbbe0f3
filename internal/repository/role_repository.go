package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
)

// RoleRepository is the gateway for the roles table.
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository constructs a RoleRepository.
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// List returns all roles ordered by ascending id.
func (r *RoleRepository) List(ctx context.Context) ([]models.Role, error) {
	const query = `SELECT rolid, nombrerol FROM roles ORDER BY rolid ASC`
	var roles []models.Role
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// Insert creates a role and fills in the generated id.
func (r *RoleRepository) Insert(ctx context.Context, role *models.Role) error {
	const query = `INSERT INTO roles (nombrerol) VALUES ($1) RETURNING rolid`
	if err := r.db.QueryRowxContext(ctx, query, role.Name).Scan(&role.ID); err != nil {
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

// Update rewrites the role name.
func (r *RoleRepository) Update(ctx context.Context, role models.Role) error {
	const query = `UPDATE roles SET nombrerol = $1 WHERE rolid = $2`
	res, err := r.db.ExecContext(ctx, query, role.Name, role.ID)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return ensureAffected(res, "update role")
}

// Delete removes a role by id.
func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM roles WHERE rolid = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return ensureAffected(res, "delete role")
}
