package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
)

// TaskRepository is the gateway for the tareas table.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs a TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns all tasks ordered by ascending id.
func (r *TaskRepository) List(ctx context.Context) ([]models.Task, error) {
	const query = `SELECT tareaid, observaciones, claseimpartida, actividadpendiente, temaid FROM tareas ORDER BY tareaid ASC`
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Insert creates a task and fills in the generated id.
func (r *TaskRepository) Insert(ctx context.Context, task *models.Task) error {
	const query = `INSERT INTO tareas (observaciones, claseimpartida, actividadpendiente, temaid) VALUES ($1, $2, $3, $4) RETURNING tareaid`
	if err := r.db.QueryRowxContext(ctx, query, task.Notes, task.ClassTaught, task.ActivityPending, task.TopicID).Scan(&task.ID); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Update rewrites all editable columns.
func (r *TaskRepository) Update(ctx context.Context, task models.Task) error {
	const query = `UPDATE tareas SET observaciones = $1, claseimpartida = $2, actividadpendiente = $3, temaid = $4 WHERE tareaid = $5`
	res, err := r.db.ExecContext(ctx, query, task.Notes, task.ClassTaught, task.ActivityPending, task.TopicID, task.ID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return ensureAffected(res, "update task")
}

// Delete removes a task by id.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM tareas WHERE tareaid = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return ensureAffected(res, "delete task")
}
