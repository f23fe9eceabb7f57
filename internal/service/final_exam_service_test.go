package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academia-dev/academia-api/internal/models"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
)

type mockFinalExamRepo struct {
	exams map[string]*models.FinalExam
	next  int
}

func (m *mockFinalExamRepo) List(ctx context.Context) ([]models.FinalExamDetail, error) {
	var result []models.FinalExamDetail
	for _, exam := range m.exams {
		result = append(result, models.FinalExamDetail{FinalExam: *exam})
	}
	return result, nil
}

func (m *mockFinalExamRepo) FindByID(ctx context.Context, id string) (*models.FinalExam, error) {
	exam, ok := m.exams[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return exam, nil
}

func (m *mockFinalExamRepo) ListBySubject(ctx context.Context, subjectCode string) ([]models.FinalExamDetail, error) {
	var result []models.FinalExamDetail
	for _, exam := range m.exams {
		if exam.SubjectCode == subjectCode {
			result = append(result, models.FinalExamDetail{FinalExam: *exam})
		}
	}
	return result, nil
}

func (m *mockFinalExamRepo) Create(ctx context.Context, exam *models.FinalExam) error {
	m.next++
	exam.ID = "f" + string(rune('0'+m.next))
	m.exams[exam.ID] = exam
	return nil
}

func (m *mockFinalExamRepo) Update(ctx context.Context, exam *models.FinalExam) error {
	m.exams[exam.ID] = exam
	return nil
}

func (m *mockFinalExamRepo) Delete(ctx context.Context, id string) error {
	delete(m.exams, id)
	return nil
}

type mockExamInscriptionChecker struct {
	registered map[string][]models.FinalExamInscriptionDetail
}

func (m *mockExamInscriptionChecker) ExistsByFinalExam(ctx context.Context, finalExamID string) (bool, error) {
	return len(m.registered[finalExamID]) > 0, nil
}

func (m *mockExamInscriptionChecker) ListByFinalExam(ctx context.Context, finalExamID string) ([]models.FinalExamInscriptionDetail, error) {
	return m.registered[finalExamID], nil
}

func newFinalExamFixture() (*FinalExamService, *mockFinalExamRepo, *mockExamInscriptionChecker) {
	repo := &mockFinalExamRepo{exams: map[string]*models.FinalExam{
		"fa": {ID: "fa", SubjectCode: "MAT101", Date: time.Now().Add(72 * time.Hour), Location: "Aula 4", DurationMinutes: 120, CallNumber: 1},
		"fb": {ID: "fb", SubjectCode: "MAT102", Date: time.Now().Add(96 * time.Hour), Location: "Aula 7", DurationMinutes: 180, CallNumber: 2},
	}}
	subjects := &mockFinalExamSubjects{subjects: map[string]*models.Subject{"MAT101": {Code: "MAT101"}}}
	inscriptions := &mockExamInscriptionChecker{registered: map[string][]models.FinalExamInscriptionDetail{
		"fa": {{FinalExamInscription: models.FinalExamInscription{ID: "i1", StudentID: "s1", FinalExamID: "fa"}}},
	}}
	return NewFinalExamService(repo, subjects, inscriptions, nil, nil), repo, inscriptions
}

type mockFinalExamSubjects struct {
	subjects map[string]*models.Subject
}

func (m *mockFinalExamSubjects) FindByCode(ctx context.Context, code string) (*models.Subject, error) {
	subject, ok := m.subjects[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}

func TestFinalExamServiceCreate(t *testing.T) {
	svc, repo, _ := newFinalExamFixture()

	_, err := svc.Create(context.Background(), CreateFinalExamRequest{
		SubjectCode:     "ghost",
		Date:            "2026-12-10T09:00:00Z",
		Location:        "Aula 1",
		DurationMinutes: 120,
		CallNumber:      1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	exam, err := svc.Create(context.Background(), CreateFinalExamRequest{
		SubjectCode:     "MAT101",
		Date:            "2026-12-10T09:00:00Z",
		Location:        "Aula 1",
		DurationMinutes: 120,
		CallNumber:      1,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, exam.ID)
	assert.Contains(t, repo.exams, exam.ID)
	assert.Equal(t, 2026, exam.Date.Year())
}

func TestFinalExamServiceDeleteGuard(t *testing.T) {
	svc, repo, _ := newFinalExamFixture()

	err := svc.Delete(context.Background(), "fa")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Equal(t, "has existing inscriptions", appErr.Message)
	assert.Contains(t, repo.exams, "fa")

	require.NoError(t, svc.Delete(context.Background(), "fb"))
	assert.NotContains(t, repo.exams, "fb")
}

func TestFinalExamServiceInscriptions(t *testing.T) {
	svc, _, _ := newFinalExamFixture()

	inscriptions, err := svc.Inscriptions(context.Background(), "fa")
	require.NoError(t, err)
	require.Len(t, inscriptions, 1)
	assert.Equal(t, "s1", inscriptions[0].StudentID)

	_, err = svc.Inscriptions(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
