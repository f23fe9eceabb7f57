package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academia-dev/academia-api/internal/models"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
)

type mockGradeRepo struct {
	grades  map[string]*models.Grade
	updates int
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	grade, ok := m.grades[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *grade
	return &copied, nil
}

func (m *mockGradeRepo) FindByStudentAndSubject(ctx context.Context, studentID, subjectCode string) (*models.Grade, error) {
	for _, grade := range m.grades {
		if grade.StudentID == studentID && grade.SubjectCode == subjectCode {
			copied := *grade
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) ListBySubject(ctx context.Context, subjectCode string) ([]models.GradeDetail, error) {
	var result []models.GradeDetail
	for _, grade := range m.grades {
		if grade.SubjectCode == subjectCode {
			result = append(result, models.GradeDetail{Grade: *grade})
		}
	}
	return result, nil
}

func (m *mockGradeRepo) ListStudentIDsBySubject(ctx context.Context, subjectCode string) ([]string, error) {
	var ids []string
	for _, grade := range m.grades {
		if grade.SubjectCode == subjectCode {
			ids = append(ids, grade.StudentID)
		}
	}
	return ids, nil
}

func (m *mockGradeRepo) BulkCreateMissing(ctx context.Context, subjectCode string, studentIDs []string) error {
	if m.grades == nil {
		m.grades = make(map[string]*models.Grade)
	}
	for _, studentID := range studentIDs {
		id := "g-" + studentID + "-" + subjectCode
		if _, ok := m.grades[id]; ok {
			continue
		}
		m.grades[id] = &models.Grade{ID: id, StudentID: studentID, SubjectCode: subjectCode, Status: models.StatusFree}
	}
	return nil
}

func (m *mockGradeRepo) Update(ctx context.Context, grade *models.Grade) error {
	m.updates++
	copied := *grade
	m.grades[grade.ID] = &copied
	return nil
}

type mockGradeInscriptions struct {
	enrolled map[string][]string // subject code -> student ids
}

func (m *mockGradeInscriptions) Exists(ctx context.Context, studentID, subjectCode string) (bool, error) {
	for _, id := range m.enrolled[subjectCode] {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockGradeInscriptions) ListStudentIDsBySubject(ctx context.Context, subjectCode string) ([]string, error) {
	return m.enrolled[subjectCode], nil
}

type mockProfessorSubjects struct {
	assigned map[string][]models.Subject
}

func (m *mockProfessorSubjects) ListByProfessor(ctx context.Context, professorID string) ([]models.Subject, error) {
	return m.assigned[professorID], nil
}

func gradeValue(value string) *decimal.NullDecimal {
	parsed := decimal.NewNullDecimal(decimal.RequireFromString(value))
	return &parsed
}

func noGrade() *decimal.NullDecimal {
	return &decimal.NullDecimal{}
}

func TestGradeServiceUpdatePromotesAtThreshold(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]*models.Grade{
		"g1": {ID: "g1", StudentID: "s1", SubjectCode: "MAT101", Status: models.StatusFree},
	}}
	svc := NewGradeService(repo, &mockGradeInscriptions{}, &mockProfessorSubjects{}, nil, nil)

	grade, err := svc.UpdateGrade(context.Background(), "g1", UpdateGradeRequest{FinalGrade: gradeValue("6.00")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPromoted, grade.Status)

	grade, err = svc.UpdateGrade(context.Background(), "g1", UpdateGradeRequest{FinalGrade: gradeValue("5.99")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRegular, grade.Status)

	grade, err = svc.UpdateGrade(context.Background(), "g1", UpdateGradeRequest{FinalGrade: noGrade()})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFree, grade.Status)
}

func TestGradeServiceManualOverrideSkipsRecompute(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]*models.Grade{
		"g1": {ID: "g1", StudentID: "s1", SubjectCode: "MAT101", Status: models.StatusFree},
	}}
	svc := NewGradeService(repo, &mockGradeInscriptions{}, &mockProfessorSubjects{}, nil, nil)

	override := models.StatusRegular
	grade, err := svc.UpdateGrade(context.Background(), "g1", UpdateGradeRequest{
		FinalGrade: gradeValue("9.00"),
		Status:     &override,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRegular, grade.Status)

	// A later edit without an override re-derives from the stored final grade.
	grade, err = svc.UpdateGrade(context.Background(), "g1", UpdateGradeRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPromoted, grade.Status)
}

func TestGradeServiceUpdateRejectsUnknownStatus(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]*models.Grade{
		"g1": {ID: "g1", StudentID: "s1", SubjectCode: "MAT101", Status: models.StatusFree},
	}}
	svc := NewGradeService(repo, &mockGradeInscriptions{}, &mockProfessorSubjects{}, nil, nil)

	bogus := models.GradeStatus("GRADUATED")
	_, err := svc.UpdateGrade(context.Background(), "g1", UpdateGradeRequest{Status: &bogus})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.updates)
}

func TestGradeServiceRecomputeIdempotent(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]*models.Grade{
		"g1": {ID: "g1", StudentID: "s1", SubjectCode: "MAT101", FinalGrade: decimal.NewNullDecimal(decimal.RequireFromString("7.50")), Status: models.StatusFree},
	}}
	svc := NewGradeService(repo, &mockGradeInscriptions{}, &mockProfessorSubjects{}, nil, nil)

	grade, err := repo.FindByID(context.Background(), "g1")
	require.NoError(t, err)

	grade, err = svc.RecomputeStatus(context.Background(), grade)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPromoted, grade.Status)
	assert.Equal(t, 1, repo.updates)

	// Already consistent: no further write.
	_, err = svc.RecomputeStatus(context.Background(), grade)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.updates)
}

func TestGradeServiceBackfillCreatesMissingRows(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]*models.Grade{
		"g1": {ID: "g1", StudentID: "s1", SubjectCode: "MAT101", Status: models.StatusPromoted},
	}}
	inscriptions := &mockGradeInscriptions{enrolled: map[string][]string{
		"MAT101": {"s1", "s2", "s3"},
	}}
	svc := NewGradeService(repo, inscriptions, &mockProfessorSubjects{}, nil, nil)

	roster, err := svc.SubjectGradesWithBackfill(context.Background(), "MAT101")
	require.NoError(t, err)
	assert.Len(t, roster, 3)

	statuses := make(map[string]models.GradeStatus)
	for _, entry := range roster {
		statuses[entry.StudentID] = entry.Status
	}
	assert.Equal(t, models.StatusPromoted, statuses["s1"])
	assert.Equal(t, models.StatusFree, statuses["s2"])
	assert.Equal(t, models.StatusFree, statuses["s3"])

	// Second call finds nothing to backfill.
	roster, err = svc.SubjectGradesWithBackfill(context.Background(), "MAT101")
	require.NoError(t, err)
	assert.Len(t, roster, 3)
}

func TestGradeServiceEditPermissions(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]*models.Grade{}}
	inscriptions := &mockGradeInscriptions{enrolled: map[string][]string{"MAT101": {"s1"}}}
	subjects := &mockProfessorSubjects{assigned: map[string][]models.Subject{
		"p1": {{Code: "MAT101"}},
	}}
	svc := NewGradeService(repo, inscriptions, subjects, nil, nil)

	grade := &models.Grade{ID: "g1", StudentID: "s1", SubjectCode: "MAT101"}
	require.NoError(t, svc.ValidateEditPermissions(context.Background(), grade, "p1"))

	err := svc.ValidateEditPermissions(context.Background(), grade, "p2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	outsider := &models.Grade{ID: "g2", StudentID: "s9", SubjectCode: "MAT101"}
	err = svc.ValidateEditPermissions(context.Background(), outsider, "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}
