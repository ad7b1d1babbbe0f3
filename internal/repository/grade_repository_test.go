package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
)

func TestGradeRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{"calificacionid", "estudianteid", "actividadid", "puntuacion"}).
		AddRow(1, 4, 2, 9.5)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT calificacionid, estudianteid, actividadid, puntuacion FROM calificaciones ORDER BY calificacionid ASC")).
		WillReturnRows(rows)

	grades, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, 9.5, grades[0].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryInsertAndUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO calificaciones (estudianteid, actividadid, puntuacion) VALUES ($1, $2, $3) RETURNING calificacionid")).
		WithArgs(int64(4), int64(2), 8.0).
		WillReturnRows(sqlmock.NewRows([]string{"calificacionid"}).AddRow(11))

	grade := &models.Grade{StudentID: 4, ActivityID: 2, Score: 8.0}
	require.NoError(t, repo.Insert(context.Background(), grade))
	assert.Equal(t, int64(11), grade.ID)

	mock.ExpectExec("UPDATE calificaciones SET").
		WithArgs(int64(4), int64(2), 9.0, int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	grade.Score = 9.0
	require.NoError(t, repo.Update(context.Background(), *grade))
	assert.NoError(t, mock.ExpectationsWereMet())
}
