package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academia-dev/academia-api/internal/models"
	"github.com/academia-dev/academia-api/internal/repository"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
)

type mockFacultyRepo struct {
	faculties map[string]*models.Faculty
	deleted   []string
}

func (m *mockFacultyRepo) List(ctx context.Context) ([]models.Faculty, error) {
	var result []models.Faculty
	for _, faculty := range m.faculties {
		result = append(result, *faculty)
	}
	return result, nil
}

func (m *mockFacultyRepo) FindByCode(ctx context.Context, code string) (*models.Faculty, error) {
	faculty, ok := m.faculties[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return faculty, nil
}

func (m *mockFacultyRepo) Create(ctx context.Context, faculty *models.Faculty) error {
	if m.faculties == nil {
		m.faculties = make(map[string]*models.Faculty)
	}
	if _, ok := m.faculties[faculty.Code]; ok {
		return repository.ErrDuplicate
	}
	m.faculties[faculty.Code] = faculty
	return nil
}

func (m *mockFacultyRepo) Update(ctx context.Context, faculty *models.Faculty) error {
	m.faculties[faculty.Code] = faculty
	return nil
}

func (m *mockFacultyRepo) Delete(ctx context.Context, code string) error {
	delete(m.faculties, code)
	m.deleted = append(m.deleted, code)
	return nil
}

type mockFacultyCareers struct {
	careers map[string][]models.Career // faculty code -> careers
}

func (m *mockFacultyCareers) ExistsByFaculty(ctx context.Context, facultyCode string) (bool, error) {
	return len(m.careers[facultyCode]) > 0, nil
}

func (m *mockFacultyCareers) ListByFaculty(ctx context.Context, facultyCode string) ([]models.Career, error) {
	return m.careers[facultyCode], nil
}

func TestFacultyServiceCreateValidatesPayload(t *testing.T) {
	repo := &mockFacultyRepo{faculties: map[string]*models.Faculty{}}
	svc := NewFacultyService(repo, &mockFacultyCareers{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateFacultyRequest{Code: "ING"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.faculties)

	faculty, err := svc.Create(context.Background(), CreateFacultyRequest{
		Code:            "ING",
		Name:            "Facultad de Ingenieria",
		Address:         "Calle 1 y 47",
		Phone:           "+54 221 425 8911",
		Email:           "info@ing.edu.ar",
		Dean:            "Maria Lopez",
		EstablishedDate: "1952-03-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "ING", faculty.Code)
	assert.Equal(t, 1952, faculty.EstablishedDate.Year())

	_, err = svc.Create(context.Background(), CreateFacultyRequest{
		Code:            "ING",
		Name:            "Duplicate",
		Address:         "Calle 1 y 47",
		Phone:           "+54 221 425 8911",
		Email:           "info@ing.edu.ar",
		Dean:            "Maria Lopez",
		EstablishedDate: "1952-03-15",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestFacultyServiceDeleteGuard(t *testing.T) {
	repo := &mockFacultyRepo{faculties: map[string]*models.Faculty{
		"ING": {Code: "ING", Name: "Facultad de Ingenieria"},
		"HUM": {Code: "HUM", Name: "Facultad de Humanidades"},
	}}
	careers := &mockFacultyCareers{careers: map[string][]models.Career{
		"ING": {{Code: "INF", FacultyCode: "ING"}},
	}}
	svc := NewFacultyService(repo, careers, nil, nil)

	err := svc.Delete(context.Background(), "ING")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Equal(t, "has existing careers", appErr.Message)
	assert.Contains(t, repo.faculties, "ING")

	require.NoError(t, svc.Delete(context.Background(), "HUM"))
	assert.NotContains(t, repo.faculties, "HUM")

	err = svc.Delete(context.Background(), "HUM")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
