package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/academia-dev/academia-api/internal/models"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
)

type gradeRepository interface {
	FindByID(ctx context.Context, id string) (*models.Grade, error)
	ListBySubject(ctx context.Context, subjectCode string) ([]models.GradeDetail, error)
	ListStudentIDsBySubject(ctx context.Context, subjectCode string) ([]string, error)
	BulkCreateMissing(ctx context.Context, subjectCode string, studentIDs []string) error
	Update(ctx context.Context, grade *models.Grade) error
}

type gradeInscriptionReader interface {
	Exists(ctx context.Context, studentID, subjectCode string) (bool, error)
	ListStudentIDsBySubject(ctx context.Context, subjectCode string) ([]string, error)
}

type professorSubjectReader interface {
	ListByProfessor(ctx context.Context, professorID string) ([]models.Subject, error)
}

// UpdateGradeRequest carries a partial grade edit. Nil pointers mean "leave
// untouched"; a present NullDecimal with Valid=false clears the value.
// Status, when present, is a manual override and suppresses recomputation.
type UpdateGradeRequest struct {
	PromotionGrade *decimal.NullDecimal `json:"promotion_grade"`
	FinalGrade     *decimal.NullDecimal `json:"final_grade"`
	Notes          *string              `json:"notes"`
	Status         *models.GradeStatus  `json:"status"`
}

// GradeService owns grade status derivation, edits and roster backfill.
type GradeService struct {
	grades       gradeRepository
	inscriptions gradeInscriptionReader
	subjects     professorSubjectReader
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(grades gradeRepository, inscriptions gradeInscriptionReader, subjects professorSubjectReader, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{grades: grades, inscriptions: inscriptions, subjects: subjects, validator: validate, logger: logger}
}

// RecomputeStatus re-derives the status from the current final grade and
// persists only when it actually changed, so repeated calls are idempotent
// and do not touch last_updated.
func (s *GradeService) RecomputeStatus(ctx context.Context, grade *models.Grade) (*models.Grade, error) {
	derived := grade.DerivedStatus()
	if derived == grade.Status {
		return grade, nil
	}
	grade.Status = derived
	if err := s.grades.Update(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade status")
	}
	return grade, nil
}

// UpdateGrade applies a partial edit and persists the result as one write.
// When the caller did not override the status, it is re-derived from the
// final grade after the numeric fields are applied.
func (s *GradeService) UpdateGrade(ctx context.Context, gradeID string, req UpdateGradeRequest) (*models.Grade, error) {
	grade, err := s.grades.FindByID(ctx, gradeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}

	if req.PromotionGrade != nil {
		grade.PromotionGrade = *req.PromotionGrade
	}
	if req.FinalGrade != nil {
		grade.FinalGrade = *req.FinalGrade
	}
	if req.Notes != nil {
		grade.Notes = req.Notes
	}

	if req.Status != nil {
		if !validGradeStatus(*req.Status) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown grade status")
		}
		grade.Status = *req.Status
	} else {
		grade.Status = grade.DerivedStatus()
	}

	if err := s.grades.Update(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	return grade, nil
}

// SubjectGradesWithBackfill guarantees one grade row per enrolled student and
// returns the full roster ordered by student name. Missing rows are created
// with status FREE; concurrent callers racing on the same pair are absorbed
// by the uniqueness constraint.
func (s *GradeService) SubjectGradesWithBackfill(ctx context.Context, subjectCode string) ([]models.GradeDetail, error) {
	enrolled, err := s.inscriptions.ListStudentIDsBySubject(ctx, subjectCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled students")
	}
	existing, err := s.grades.ListStudentIDsBySubject(ctx, subjectCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list graded students")
	}

	graded := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		graded[id] = struct{}{}
	}
	var missing []string
	for _, id := range enrolled {
		if _, ok := graded[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		if err := s.grades.BulkCreateMissing(ctx, subjectCode, missing); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to backfill grades")
		}
		s.logger.Info("backfilled missing grades",
			zap.String("subject", subjectCode),
			zap.Int("count", len(missing)),
		)
	}

	grades, err := s.grades.ListBySubject(ctx, subjectCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subject grades")
	}
	return grades, nil
}

// ValidateEditPermissions checks that the professor teaches the subject and
// the student is actually inscribed before a grade edit is accepted.
func (s *GradeService) ValidateEditPermissions(ctx context.Context, grade *models.Grade, professorID string) error {
	assigned, err := s.subjects.ListByProfessor(ctx, professorID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor subjects")
	}
	teaches := false
	for _, subject := range assigned {
		if subject.Code == grade.SubjectCode {
			teaches = true
			break
		}
	}
	if !teaches {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot edit grades of unassigned subjects")
	}

	inscribed, err := s.inscriptions.Exists(ctx, grade.StudentID, grade.SubjectCode)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check inscription")
	}
	if !inscribed {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "only inscribed students can be graded")
	}
	return nil
}

// Get returns a grade by id.
func (s *GradeService) Get(ctx context.Context, id string) (*models.Grade, error) {
	grade, err := s.grades.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	return grade, nil
}

func validGradeStatus(status models.GradeStatus) bool {
	switch status {
	case models.StatusFree, models.StatusRegular, models.StatusPromoted:
		return true
	}
	return false
}
