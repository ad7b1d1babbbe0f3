package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
)

// GradeRepository is the gateway for the calificaciones table.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// List returns all grades ordered by ascending id.
func (r *GradeRepository) List(ctx context.Context) ([]models.Grade, error) {
	const query = `SELECT calificacionid, estudianteid, actividadid, puntuacion FROM calificaciones ORDER BY calificacionid ASC`
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// Insert creates a grade and fills in the generated id.
func (r *GradeRepository) Insert(ctx context.Context, grade *models.Grade) error {
	const query = `INSERT INTO calificaciones (estudianteid, actividadid, puntuacion) VALUES ($1, $2, $3) RETURNING calificacionid`
	if err := r.db.QueryRowxContext(ctx, query, grade.StudentID, grade.ActivityID, grade.Score).Scan(&grade.ID); err != nil {
		return fmt.Errorf("insert grade: %w", err)
	}
	return nil
}

// Update rewrites all editable columns.
func (r *GradeRepository) Update(ctx context.Context, grade models.Grade) error {
	const query = `UPDATE calificaciones SET estudianteid = $1, actividadid = $2, puntuacion = $3 WHERE calificacionid = $4`
	res, err := r.db.ExecContext(ctx, query, grade.StudentID, grade.ActivityID, grade.Score, grade.ID)
	if err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return ensureAffected(res, "update grade")
}

// Delete removes a grade by id.
func (r *GradeRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM calificaciones WHERE calificacionid = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return ensureAffected(res, "delete grade")
}
