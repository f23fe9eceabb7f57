package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/academia-dev/academia-api/internal/models"
	"github.com/academia-dev/academia-api/pkg/config"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
	"github.com/academia-dev/academia-api/pkg/export"
)

type certificateStudentReader interface {
	Get(ctx context.Context, studentID string) (*models.StudentDetail, error)
}

type certificateGradeReader interface {
	ListBySubject(ctx context.Context, subjectCode string) ([]models.GradeDetail, error)
}

type documentRenderer interface {
	RenderDocument(doc export.Document) ([]byte, error)
	Render(data export.Dataset, title string) ([]byte, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// CertificateService produces the regular-student certificate and grade
// roster exports.
type CertificateService struct {
	students certificateStudentReader
	grades   certificateGradeReader
	pdf      documentRenderer
	csv      datasetRenderer
	cfg      config.CertificatesConfig
	logger   *zap.Logger
}

// NewCertificateService constructs CertificateService.
func NewCertificateService(students certificateStudentReader, grades certificateGradeReader, pdf documentRenderer, csv datasetRenderer, cfg config.CertificatesConfig, logger *zap.Logger) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateService{students: students, grades: grades, pdf: pdf, csv: csv, cfg: cfg, logger: logger}
}

// RegularStudentCertificate renders the PDF certifying that the student is an
// active regular student of their career. Students without a career
// assignment cannot be certified.
func (s *CertificateService) RegularStudentCertificate(ctx context.Context, studentID string) ([]byte, error) {
	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !student.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "account is inactive")
	}
	if student.CareerCode == nil || student.CareerName == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student has no career assignment")
	}

	issued := time.Now()
	doc := export.Document{
		Letterhead: s.cfg.InstitutionName,
		Title:      "Regular Student Certificate",
		Paragraphs: []string{
			fmt.Sprintf(
				"This is to certify that %s %s, DNI %s, student file %s, is a regular student of the program %s (%s) at this institution.",
				student.FirstName, student.LastName, student.DNI, student.StudentID, *student.CareerName, *student.CareerCode,
			),
			fmt.Sprintf(
				"The student has been enrolled since %s and remains active as of the date of issue.",
				student.EnrollmentDate.Format("January 2, 2006"),
			),
			"This certificate is issued at the request of the interested party, to be presented wherever required.",
		},
		Footer: fmt.Sprintf("%s, %s", s.cfg.City, issued.Format("January 2, 2006")),
	}

	payload, err := s.pdf.RenderDocument(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate")
	}

	s.logger.Info("issued regular student certificate", zap.String("student", student.StudentID))
	return payload, nil
}

// SubjectRosterCSV exports the grade roster of a subject as CSV.
func (s *CertificateService) SubjectRosterCSV(ctx context.Context, subjectCode string) ([]byte, error) {
	data, err := s.rosterDataset(ctx, subjectCode)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(*data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster csv")
	}
	return payload, nil
}

// SubjectRosterPDF exports the grade roster of a subject as a PDF table.
func (s *CertificateService) SubjectRosterPDF(ctx context.Context, subjectCode string) ([]byte, error) {
	data, err := s.rosterDataset(ctx, subjectCode)
	if err != nil {
		return nil, err
	}
	payload, err := s.pdf.Render(*data, "Grade Roster "+subjectCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster pdf")
	}
	return payload, nil
}

func (s *CertificateService) rosterDataset(ctx context.Context, subjectCode string) (*export.Dataset, error) {
	grades, err := s.grades.ListBySubject(ctx, subjectCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subject grades")
	}

	data := &export.Dataset{
		Headers: []string{"Student ID", "Last Name", "First Name", "Promotion Grade", "Final Grade", "Status"},
		Rows:    make([]map[string]string, 0, len(grades)),
	}
	for _, grade := range grades {
		promotion := ""
		if grade.PromotionGrade.Valid {
			promotion = grade.PromotionGrade.Decimal.StringFixed(2)
		}
		final := ""
		if grade.FinalGrade.Valid {
			final = grade.FinalGrade.Decimal.StringFixed(2)
		}
		data.Rows = append(data.Rows, map[string]string{
			"Student ID":      grade.StudentID,
			"Last Name":       grade.StudentLastName,
			"First Name":      grade.StudentFirstName,
			"Promotion Grade": promotion,
			"Final Grade":     final,
			"Status":          string(grade.Status),
		})
	}
	return data, nil
}
