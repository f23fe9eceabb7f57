package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/academia-dev/academia-api/internal/models"
)

func newUserRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestUserCreateWithProfile(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user := &models.User{Email: "leo@example.edu", Role: models.RoleStudent, Active: true}
	student := &models.Student{StudentID: "12345/6"}
	require.NoError(t, repo.CreateWithProfile(context.Background(), user, student, nil))
	require.NotEmpty(t, user.ID)
	require.Equal(t, user.ID, student.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateWithProfileRollsBackOnDuplicate(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	user := &models.User{Email: "leo@example.edu", Role: models.RoleStudent, Active: true}
	student := &models.Student{StudentID: "12345/6"}
	err := repo.CreateWithProfile(context.Background(), user, student, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDuplicate))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateWithProfileAdministrator(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user := &models.User{Email: "admin@example.edu", Role: models.RoleAdministrator, Active: true}
	require.NoError(t, repo.CreateWithProfile(context.Background(), user, nil, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
