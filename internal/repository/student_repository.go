package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
)

// StudentRepository is the gateway for the estudiantes table.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns all students ordered by ascending id.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT estudianteid, nombre, rolid FROM estudiantes ORDER BY estudianteid ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// Insert creates a student and fills in the generated id.
func (r *StudentRepository) Insert(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO estudiantes (nombre, rolid) VALUES ($1, $2) RETURNING estudianteid`
	if err := r.db.QueryRowxContext(ctx, query, student.Name, student.RoleID).Scan(&student.ID); err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

// Update rewrites all editable columns.
func (r *StudentRepository) Update(ctx context.Context, student models.Student) error {
	const query = `UPDATE estudiantes SET nombre = $1, rolid = $2 WHERE estudianteid = $3`
	res, err := r.db.ExecContext(ctx, query, student.Name, student.RoleID, student.ID)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return ensureAffected(res, "update student")
}

// Delete removes a student by id.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM estudiantes WHERE estudianteid = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return ensureAffected(res, "delete student")
}
