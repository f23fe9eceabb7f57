package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/academia-dev/academia-api/internal/models"
)

func newGradeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestGradeRepositoryFindByStudentAndSubject(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	rows := sqlmock.NewRows([]string{"id", "student_id", "subject_code", "promotion_grade", "final_grade", "status", "notes", "last_updated"}).
		AddRow("g1", "s1", "MAT101", nil, "7.50", "PROMOTED", nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, subject_code, promotion_grade, final_grade, status, notes, last_updated")).
		WithArgs("s1", "MAT101").
		WillReturnRows(rows)

	grade, err := repo.FindByStudentAndSubject(context.Background(), "s1", "MAT101")
	require.NoError(t, err)
	require.Equal(t, "g1", grade.ID)
	require.True(t, grade.FinalGrade.Valid)
	require.True(t, grade.FinalGrade.Decimal.Equal(decimal.RequireFromString("7.50")))
	require.Equal(t, models.StatusPromoted, grade.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryBulkCreateMissing(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO grades")).
		WithArgs(sqlmock.AnyArg(), "s2", "MAT101", string(models.StatusFree), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO grades")).
		WithArgs(sqlmock.AnyArg(), "s3", "MAT101", string(models.StatusFree), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0)) // conflict skipped
	mock.ExpectCommit()

	err := repo.BulkCreateMissing(context.Background(), "MAT101", []string{"s2", "s3"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryBulkCreateMissingEmpty(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	require.NoError(t, repo.BulkCreateMissing(context.Background(), "MAT101", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE grades SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	grade := &models.Grade{
		ID:          "g1",
		StudentID:   "s1",
		SubjectCode: "MAT101",
		FinalGrade:  decimal.NewNullDecimal(decimal.RequireFromString("6.00")),
		Status:      models.StatusPromoted,
	}
	require.NoError(t, repo.Update(context.Background(), grade))
	require.False(t, grade.LastUpdated.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListPromotedSubjectCodes(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	rows := sqlmock.NewRows([]string{"subject_code"}).AddRow("MAT101").AddRow("MAT102")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT subject_code FROM grades")).
		WithArgs("s1", string(models.StatusPromoted)).
		WillReturnRows(rows)

	codes, err := repo.ListPromotedSubjectCodes(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, []string{"MAT101", "MAT102"}, codes)
	require.NoError(t, mock.ExpectationsWereMet())
}
