package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcastellanos/cursoadmin-api/internal/models"
)

func TestRoleRepositoryListOrdered(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	rows := sqlmock.NewRows([]string{"rolid", "nombrerol"}).
		AddRow(1, "Docente").
		AddRow(2, "Estudiante")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT rolid, nombrerol FROM roles ORDER BY rolid ASC")).
		WillReturnRows(rows)

	roles, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "Docente", roles[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO roles (nombrerol) VALUES ($1) RETURNING rolid")).
		WithArgs("Docente").
		WillReturnRows(sqlmock.NewRows([]string{"rolid"}).AddRow(3))

	role := &models.Role{Name: "Docente"}
	require.NoError(t, repo.Insert(context.Background(), role))
	assert.Equal(t, int64(3), role.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepositoryDeleteUnknownID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	mock.ExpectExec("DELETE FROM roles").
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 99), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
