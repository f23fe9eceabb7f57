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

type mockCareerRepo struct {
	careers map[string]*models.Career
}

func (m *mockCareerRepo) List(ctx context.Context) ([]models.CareerDetail, error) {
	var result []models.CareerDetail
	for _, career := range m.careers {
		result = append(result, models.CareerDetail{Career: *career})
	}
	return result, nil
}

func (m *mockCareerRepo) FindByCode(ctx context.Context, code string) (*models.Career, error) {
	career, ok := m.careers[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return career, nil
}

func (m *mockCareerRepo) Create(ctx context.Context, career *models.Career) error {
	m.careers[career.Code] = career
	return nil
}

func (m *mockCareerRepo) Update(ctx context.Context, career *models.Career) error {
	m.careers[career.Code] = career
	return nil
}

func (m *mockCareerRepo) Delete(ctx context.Context, code string) error {
	delete(m.careers, code)
	return nil
}

type mockCareerFaculties struct {
	faculties map[string]*models.Faculty
}

func (m *mockCareerFaculties) FindByCode(ctx context.Context, code string) (*models.Faculty, error) {
	faculty, ok := m.faculties[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return faculty, nil
}

type mockCareerStudents struct {
	enrolled map[string]bool
}

func (m *mockCareerStudents) ExistsByCareer(ctx context.Context, careerCode string) (bool, error) {
	return m.enrolled[careerCode], nil
}

type mockCareerSubjects struct {
	subjects map[string][]models.Subject
}

func (m *mockCareerSubjects) ListByCareer(ctx context.Context, careerCode string) ([]models.Subject, error) {
	return m.subjects[careerCode], nil
}

func newCareerFixture() (*CareerService, *mockCareerRepo, *mockCareerStudents) {
	repo := &mockCareerRepo{careers: map[string]*models.Career{
		"INF": {Code: "INF", Name: "Informatica", FacultyCode: "ING", DurationYears: 5},
		"LAW": {Code: "LAW", Name: "Abogacia", FacultyCode: "JUR", DurationYears: 6},
	}}
	faculties := &mockCareerFaculties{faculties: map[string]*models.Faculty{
		"ING": {Code: "ING"},
		"JUR": {Code: "JUR"},
	}}
	students := &mockCareerStudents{enrolled: map[string]bool{"INF": true}}
	subjects := &mockCareerSubjects{subjects: map[string][]models.Subject{}}
	return NewCareerService(repo, faculties, students, subjects, nil, nil), repo, students
}

func TestCareerServiceCreateRequiresFaculty(t *testing.T) {
	svc, repo, _ := newCareerFixture()

	_, err := svc.Create(context.Background(), CreateCareerRequest{
		Code:          "MED",
		Name:          "Medicina",
		FacultyCode:   "ghost",
		Director:      "Juan Perez",
		DurationYears: 6,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.NotContains(t, repo.careers, "MED")

	career, err := svc.Create(context.Background(), CreateCareerRequest{
		Code:          "MED",
		Name:          "Medicina",
		FacultyCode:   "ING",
		Director:      "Juan Perez",
		DurationYears: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, "ING", career.FacultyCode)
}

func TestCareerServiceDeleteGuard(t *testing.T) {
	svc, repo, _ := newCareerFixture()

	err := svc.Delete(context.Background(), "INF")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Equal(t, "has existing students", appErr.Message)
	assert.Contains(t, repo.careers, "INF")

	require.NoError(t, svc.Delete(context.Background(), "LAW"))
	assert.NotContains(t, repo.careers, "LAW")
}
