package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
)

// TopicRepository is the gateway for the temas table.
type TopicRepository struct {
	db *sqlx.DB
}

// NewTopicRepository constructs a TopicRepository.
func NewTopicRepository(db *sqlx.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// List returns all topics ordered by ascending id.
func (r *TopicRepository) List(ctx context.Context) ([]models.Topic, error) {
	const query = `SELECT temaid, titulo, docenteid FROM temas ORDER BY temaid ASC`
	var topics []models.Topic
	if err := r.db.SelectContext(ctx, &topics, query); err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

// Insert creates a topic and fills in the generated id.
func (r *TopicRepository) Insert(ctx context.Context, topic *models.Topic) error {
	const query = `INSERT INTO temas (titulo, docenteid) VALUES ($1, $2) RETURNING temaid`
	if err := r.db.QueryRowxContext(ctx, query, topic.Title, topic.TeacherID).Scan(&topic.ID); err != nil {
		return fmt.Errorf("insert topic: %w", err)
	}
	return nil
}

// Update rewrites all editable columns.
func (r *TopicRepository) Update(ctx context.Context, topic models.Topic) error {
	const query = `UPDATE temas SET titulo = $1, docenteid = $2 WHERE temaid = $3`
	res, err := r.db.ExecContext(ctx, query, topic.Title, topic.TeacherID, topic.ID)
	if err != nil {
		return fmt.Errorf("update topic: %w", err)
	}
	return ensureAffected(res, "update topic")
}

// Delete removes a topic by id.
func (r *TopicRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM temas WHERE temaid = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete topic: %w", err)
	}
	return ensureAffected(res, "delete topic")
}
