package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academia-dev/academia-api/internal/models"
	"github.com/academia-dev/academia-api/pkg/cache"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
)

type mockStudentRepo struct {
	students map[string]*models.StudentDetail
	updates  int
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	var result []models.StudentDetail
	for _, student := range m.students {
		if filter.CareerCode != "" && (student.CareerCode == nil || *student.CareerCode != filter.CareerCode) {
			continue
		}
		result = append(result, *student)
	}
	return result, len(result), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, studentID string) (*models.Student, error) {
	student, ok := m.students[studentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := student.Student
	return &copied, nil
}

func (m *mockStudentRepo) FindDetailByID(ctx context.Context, studentID string) (*models.StudentDetail, error) {
	student, ok := m.students[studentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

func (m *mockStudentRepo) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	for _, student := range m.students {
		if student.UserID == userID {
			copied := student.Student
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.updates++
	detail := m.students[student.StudentID]
	detail.Student = *student
	return nil
}

type memoryCache struct {
	values map[string][]byte
	sets   int
	gets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.gets++
	value, ok := c.values[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return value, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.sets++
	c.values[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.values, key)
	}
	return nil
}

type staticFinalsProvider struct {
	finals []models.FinalExamDetail
	calls  int
}

func (p *staticFinalsProvider) AvailableFinals(ctx context.Context, studentID string) ([]models.FinalExamDetail, error) {
	p.calls++
	return p.finals, nil
}

type staticInscriptionReader struct {
	inscriptions []models.SubjectInscriptionDetail
}

func (r *staticInscriptionReader) ListByStudent(ctx context.Context, studentID string) ([]models.SubjectInscriptionDetail, error) {
	return r.inscriptions, nil
}

type staticFinalInscriptionReader struct {
	inscriptions []models.FinalExamInscriptionDetail
}

func (r *staticFinalInscriptionReader) ListByStudent(ctx context.Context, studentID string) ([]models.FinalExamInscriptionDetail, error) {
	return r.inscriptions, nil
}

type staticGradeReader struct {
	grades []models.Grade
}

func (r *staticGradeReader) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	return r.grades, nil
}

func newStudentFixture(store dashboardCache) (*StudentService, *mockStudentRepo, *staticFinalsProvider) {
	repo := &mockStudentRepo{students: map[string]*models.StudentDetail{
		"s1": {
			Student:    models.Student{StudentID: "s1", UserID: "u1", CareerCode: strPtr("INF")},
			FirstName:  "Ana",
			LastName:   "Gomez",
			Email:      "ana@example.edu",
			Active:     true,
			CareerName: strPtr("Informatica"),
		},
	}}
	careerReader := &mockSubjectCareers{careers: map[string]*models.Career{"LAW": {Code: "LAW"}}}
	inscriptions := &staticInscriptionReader{inscriptions: []models.SubjectInscriptionDetail{
		{SubjectInscription: models.SubjectInscription{ID: "i1", StudentID: "s1", SubjectCode: "MAT101"}, SubjectName: "Algebra"},
	}}
	finalInscriptions := &staticFinalInscriptionReader{}
	grades := &staticGradeReader{grades: []models.Grade{{ID: "g1", StudentID: "s1", SubjectCode: "MAT101", Status: models.StatusFree}}}
	finals := &staticFinalsProvider{finals: []models.FinalExamDetail{{FinalExam: models.FinalExam{ID: "f1", SubjectCode: "MAT101"}}}}

	svc := NewStudentService(repo, careerReader, inscriptions, finalInscriptions, grades, finals, store, time.Minute, nil, nil)
	return svc, repo, finals
}

func TestStudentDashboardAggregates(t *testing.T) {
	svc, _, _ := newStudentFixture(nil)

	dashboard, err := svc.Dashboard(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", dashboard.Student.StudentID)
	assert.Len(t, dashboard.Inscriptions, 1)
	assert.Len(t, dashboard.Grades, 1)
	assert.Len(t, dashboard.AvailableFinals, 1)

	_, err = svc.Dashboard(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentDashboardCaching(t *testing.T) {
	store := newMemoryCache()
	svc, _, finals := newStudentFixture(store)

	_, err := svc.Dashboard(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.sets)
	assert.Equal(t, 1, finals.calls)

	// Second read is served from the cache.
	dashboard, err := svc.Dashboard(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, finals.calls)
	assert.Equal(t, "s1", dashboard.Student.StudentID)

	svc.InvalidateDashboard(context.Background(), "s1")
	_, err = svc.Dashboard(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, finals.calls)
}

func TestStudentUpdateCareerAssignment(t *testing.T) {
	store := newMemoryCache()
	svc, repo, _ := newStudentFixture(store)

	_, err := svc.Update(context.Background(), "s1", UpdateStudentRequest{CareerCode: strPtr("ghost")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.updates)

	student, err := svc.Update(context.Background(), "s1", UpdateStudentRequest{CareerCode: strPtr("LAW")})
	require.NoError(t, err)
	require.NotNil(t, student.CareerCode)
	assert.Equal(t, "LAW", *student.CareerCode)

	// Detaching the career is allowed.
	student, err = svc.Update(context.Background(), "s1", UpdateStudentRequest{})
	require.NoError(t, err)
	assert.Nil(t, student.CareerCode)
}
