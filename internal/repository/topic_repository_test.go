package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTopicRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTopicRepository(db)

	rows := sqlmock.NewRows([]string{"temaid", "titulo", "docenteid"}).
		AddRow(1, "Algebra", 3).
		AddRow(2, "Geometry", 3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT temaid, titulo, docenteid FROM temas ORDER BY temaid ASC")).
		WillReturnRows(rows)

	topics, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "Algebra", topics[0].Title)
	assert.Equal(t, int64(3), topics[1].TeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepositoryInsertReturnsGeneratedID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTopicRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO temas (titulo, docenteid) VALUES ($1, $2) RETURNING temaid")).
		WithArgs("Algebra", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"temaid"}).AddRow(7))

	topic := &models.Topic{Title: "Algebra", TeacherID: 3}
	require.NoError(t, repo.Insert(context.Background(), topic))
	assert.Equal(t, int64(7), topic.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepositoryUpdateUnknownID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTopicRepository(db)

	mock.ExpectExec("UPDATE temas SET").
		WithArgs("Algebra", int64(3), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), models.Topic{ID: 99, Title: "Algebra", TeacherID: 3})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTopicRepository(db)

	mock.ExpectExec("DELETE FROM temas").
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
