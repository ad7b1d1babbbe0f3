package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
)

// TeacherRepository is the gateway for the docentes table.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns all teachers ordered by ascending id.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	const query = `SELECT docenteid, nombre, rolid FROM docentes ORDER BY docenteid ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// Insert creates a teacher and fills in the generated id.
func (r *TeacherRepository) Insert(ctx context.Context, teacher *models.Teacher) error {
	const query = `INSERT INTO docentes (nombre, rolid) VALUES ($1, $2) RETURNING docenteid`
	if err := r.db.QueryRowxContext(ctx, query, teacher.Name, teacher.RoleID).Scan(&teacher.ID); err != nil {
		return fmt.Errorf("insert teacher: %w", err)
	}
	return nil
}

// Update rewrites all editable columns.
func (r *TeacherRepository) Update(ctx context.Context, teacher models.Teacher) error {
	const query = `UPDATE docentes SET nombre = $1, rolid = $2 WHERE docenteid = $3`
	res, err := r.db.ExecContext(ctx, query, teacher.Name, teacher.RoleID, teacher.ID)
	if err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return ensureAffected(res, "update teacher")
}

// Delete removes a teacher by id.
func (r *TeacherRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM docentes WHERE docenteid = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return ensureAffected(res, "delete teacher")
}
