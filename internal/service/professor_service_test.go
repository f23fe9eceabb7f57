package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academia-dev/academia-api/internal/models"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
)

type mockProfessorRepo struct {
	professors map[string]*models.Professor
}

func (m *mockProfessorRepo) List(ctx context.Context) ([]models.ProfessorDetail, error) {
	var result []models.ProfessorDetail
	for _, professor := range m.professors {
		result = append(result, models.ProfessorDetail{Professor: *professor})
	}
	return result, nil
}

func (m *mockProfessorRepo) FindByID(ctx context.Context, professorID string) (*models.Professor, error) {
	professor, ok := m.professors[professorID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return professor, nil
}

func (m *mockProfessorRepo) FindByUserID(ctx context.Context, userID string) (*models.Professor, error) {
	for _, professor := range m.professors {
		if professor.UserID == userID {
			return professor, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockProfessorFinals struct {
	byProfessor map[string][]models.FinalExamDetail
	boards      map[string][]string // exam id -> professor ids
}

func (m *mockProfessorFinals) ListByProfessor(ctx context.Context, professorID string) ([]models.FinalExamDetail, error) {
	return m.byProfessor[professorID], nil
}

func (m *mockProfessorFinals) ListProfessorIDs(ctx context.Context, finalExamID string) ([]string, error) {
	return m.boards[finalExamID], nil
}

func newProfessorFixture() *ProfessorService {
	professors := &mockProfessorRepo{professors: map[string]*models.Professor{
		"p1": {ProfessorID: "p1", UserID: "u1", Degree: "PhD", Category: models.CategoryTitular},
	}}
	subjects := &mockProfessorSubjects{assigned: map[string][]models.Subject{
		"p1": {{Code: "MAT101", Name: "Algebra"}},
	}}
	finals := &mockProfessorFinals{
		byProfessor: map[string][]models.FinalExamDetail{
			"p1": {{FinalExam: models.FinalExam{ID: "f1", SubjectCode: "MAT101"}}},
		},
		boards: map[string][]string{"f1": {"p1"}},
	}
	inscriptions := &mockExamInscriptionChecker{registered: map[string][]models.FinalExamInscriptionDetail{
		"f1": {{FinalExamInscription: models.FinalExamInscription{ID: "i1", StudentID: "s1", FinalExamID: "f1"}}},
	}}
	return NewProfessorService(professors, subjects, finals, inscriptions, nil, nil)
}

func TestProfessorDashboard(t *testing.T) {
	svc := newProfessorFixture()

	dashboard, err := svc.Dashboard(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", dashboard.Professor.ProfessorID)
	require.Len(t, dashboard.Subjects, 1)
	assert.Equal(t, "MAT101", dashboard.Subjects[0].Code)
	assert.Len(t, dashboard.Finals, 1)

	_, err = svc.Dashboard(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProfessorExamInscriptionsRequiresAssignment(t *testing.T) {
	svc := newProfessorFixture()

	inscriptions, err := svc.ExamInscriptions(context.Background(), "p1", "f1")
	require.NoError(t, err)
	require.Len(t, inscriptions, 1)
	assert.Equal(t, "s1", inscriptions[0].StudentID)

	_, err = svc.ExamInscriptions(context.Background(), "p2", "f1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
