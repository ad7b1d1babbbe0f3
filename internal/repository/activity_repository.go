package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
)

// ActivityRepository is the gateway for the actividades table.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// List returns all activities ordered by ascending id.
func (r *ActivityRepository) List(ctx context.Context) ([]models.Activity, error) {
	const query = `SELECT actividadid, descripcion, estado, temaid FROM actividades ORDER BY actividadid ASC`
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// Insert creates an activity and fills in the generated id.
func (r *ActivityRepository) Insert(ctx context.Context, activity *models.Activity) error {
	const query = `INSERT INTO actividades (descripcion, estado, temaid) VALUES ($1, $2, $3) RETURNING actividadid`
	if err := r.db.QueryRowxContext(ctx, query, activity.Description, activity.State, activity.TopicID).Scan(&activity.ID); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// Update rewrites all editable columns.
func (r *ActivityRepository) Update(ctx context.Context, activity models.Activity) error {
	const query = `UPDATE actividades SET descripcion = $1, estado = $2, temaid = $3 WHERE actividadid = $4`
	res, err := r.db.ExecContext(ctx, query, activity.Description, activity.State, activity.TopicID, activity.ID)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return ensureAffected(res, "update activity")
}

// Delete removes an activity by id.
func (r *ActivityRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM actividades WHERE actividadid = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return ensureAffected(res, "delete activity")
}
