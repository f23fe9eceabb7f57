package service

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academia-dev/academia-api/internal/models"
	"github.com/academia-dev/academia-api/pkg/config"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
	"github.com/academia-dev/academia-api/pkg/export"
)

type staticStudentProvider struct {
	students map[string]*models.StudentDetail
}

func (p *staticStudentProvider) Get(ctx context.Context, studentID string) (*models.StudentDetail, error) {
	student, ok := p.students[studentID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student, nil
}

type staticRosterReader struct {
	grades []models.GradeDetail
}

func (r *staticRosterReader) ListBySubject(ctx context.Context, subjectCode string) ([]models.GradeDetail, error) {
	return r.grades, nil
}

func newCertificateFixture() *CertificateService {
	students := &staticStudentProvider{students: map[string]*models.StudentDetail{
		"s1": {
			Student:    models.Student{StudentID: "s1", UserID: "u1", CareerCode: strPtr("INF")},
			FirstName:  "Ana",
			LastName:   "Gomez",
			DNI:        "30111222",
			Active:     true,
			CareerName: strPtr("Informatica"),
		},
		"s2": {
			Student:   models.Student{StudentID: "s2", UserID: "u2"},
			FirstName: "Leo",
			LastName:  "Diaz",
			Active:    true,
		},
	}}
	grades := &staticRosterReader{grades: []models.GradeDetail{
		{
			Grade: models.Grade{
				ID:          "g1",
				StudentID:   "s1",
				SubjectCode: "MAT101",
				FinalGrade:  decimal.NewNullDecimal(decimal.RequireFromString("7.50")),
				Status:      models.StatusPromoted,
			},
			StudentFirstName: "Ana",
			StudentLastName:  "Gomez",
		},
	}}
	cfg := config.CertificatesConfig{InstitutionName: "Universidad Nacional", City: "La Plata"}
	return NewCertificateService(students, grades, export.NewPDFExporter(), export.NewCSVExporter(), cfg, nil)
}

func TestRegularStudentCertificate(t *testing.T) {
	svc := newCertificateFixture()

	payload, err := svc.RegularStudentCertificate(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))

	// A student without a career assignment cannot be certified.
	_, err = svc.RegularStudentCertificate(context.Background(), "s2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	_, err = svc.RegularStudentCertificate(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubjectRosterExports(t *testing.T) {
	svc := newCertificateFixture()

	csvPayload, err := svc.SubjectRosterCSV(context.Background(), "MAT101")
	require.NoError(t, err)
	content := string(csvPayload)
	assert.Contains(t, content, "Student ID")
	assert.Contains(t, content, "Gomez")
	assert.Contains(t, content, "7.50")
	assert.Contains(t, content, "PROMOTED")

	pdfPayload, err := svc.SubjectRosterPDF(context.Background(), "MAT101")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdfPayload), "%PDF"))
}
