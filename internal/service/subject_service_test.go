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

type mockSubjectRepo struct {
	subjects map[string]*models.Subject
}

func (m *mockSubjectRepo) List(ctx context.Context) ([]models.SubjectDetail, error) {
	var result []models.SubjectDetail
	for _, subject := range m.subjects {
		result = append(result, models.SubjectDetail{Subject: *subject})
	}
	return result, nil
}

func (m *mockSubjectRepo) FindByCode(ctx context.Context, code string) (*models.Subject, error) {
	subject, ok := m.subjects[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}

func (m *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	m.subjects[subject.Code] = subject
	return nil
}

func (m *mockSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	m.subjects[subject.Code] = subject
	return nil
}

func (m *mockSubjectRepo) Delete(ctx context.Context, code string) error {
	delete(m.subjects, code)
	return nil
}

type mockSubjectInscriptionChecker struct {
	hasInscriptions map[string]bool
}

func (m *mockSubjectInscriptionChecker) ExistsBySubject(ctx context.Context, subjectCode string) (bool, error) {
	return m.hasInscriptions[subjectCode], nil
}

func newSubjectFixture() (*SubjectService, *mockSubjectRepo) {
	repo := &mockSubjectRepo{subjects: map[string]*models.Subject{
		"MAT101": {Code: "MAT101", Name: "Algebra", CareerCode: "INF", Year: 1, Category: models.CategoryObligatory, Period: models.PeriodFirst, WeeklyHours: 6},
		"MAT102": {Code: "MAT102", Name: "Calculus", CareerCode: "INF", Year: 1, Category: models.CategoryObligatory, Period: models.PeriodSecond, WeeklyHours: 6},
	}}
	careerReader := &mockSubjectCareers{careers: map[string]*models.Career{"INF": {Code: "INF"}}}
	inscriptions := &mockSubjectInscriptionChecker{hasInscriptions: map[string]bool{"MAT101": true}}
	return NewSubjectService(repo, careerReader, inscriptions, nil, nil), repo
}

type mockSubjectCareers struct {
	careers map[string]*models.Career
}

func (m *mockSubjectCareers) FindByCode(ctx context.Context, code string) (*models.Career, error) {
	career, ok := m.careers[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return career, nil
}

func TestSubjectServiceCreateRequiresCareer(t *testing.T) {
	svc, repo := newSubjectFixture()

	_, err := svc.Create(context.Background(), CreateSubjectRequest{
		Code:        "FIS201",
		Name:        "Physics II",
		CareerCode:  "ghost",
		Year:        2,
		Category:    models.CategoryObligatory,
		Period:      models.PeriodAnnual,
		WeeklyHours: 8,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.NotContains(t, repo.subjects, "FIS201")

	subject, err := svc.Create(context.Background(), CreateSubjectRequest{
		Code:        "FIS201",
		Name:        "Physics II",
		CareerCode:  "INF",
		Year:        2,
		Category:    models.CategoryObligatory,
		Period:      models.PeriodAnnual,
		WeeklyHours: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, "FIS201", subject.Code)
}

func TestSubjectServiceCreateRejectsBadCategory(t *testing.T) {
	svc, _ := newSubjectFixture()

	_, err := svc.Create(context.Background(), CreateSubjectRequest{
		Code:        "FIS202",
		Name:        "Physics III",
		CareerCode:  "INF",
		Year:        3,
		Category:    models.SubjectCategory("OPTIONAL"),
		Period:      models.PeriodFirst,
		WeeklyHours: 4,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubjectServiceDeleteGuard(t *testing.T) {
	svc, repo := newSubjectFixture()

	err := svc.Delete(context.Background(), "MAT101")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Equal(t, "has existing inscriptions", appErr.Message)
	assert.Contains(t, repo.subjects, "MAT101")

	require.NoError(t, svc.Delete(context.Background(), "MAT102"))
	assert.NotContains(t, repo.subjects, "MAT102")
}
