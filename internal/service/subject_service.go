package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/academia-dev/academia-api/internal/models"
	"github.com/academia-dev/academia-api/internal/repository"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context) ([]models.SubjectDetail, error)
	FindByCode(ctx context.Context, code string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, code string) error
}

type subjectCareerReader interface {
	FindByCode(ctx context.Context, code string) (*models.Career, error)
}

type subjectInscriptionChecker interface {
	ExistsBySubject(ctx context.Context, subjectCode string) (bool, error)
}

// CreateSubjectRequest is the payload for creating a subject.
type CreateSubjectRequest struct {
	Code        string                 `json:"code" validate:"required,max=20"`
	Name        string                 `json:"name" validate:"required,max=200"`
	CareerCode  string                 `json:"career_code" validate:"required"`
	Year        int                    `json:"year" validate:"required,min=1,max=10"`
	Category    models.SubjectCategory `json:"category" validate:"required,oneof=OBLIGATORY ELECTIVE"`
	Period      models.SubjectPeriod   `json:"period" validate:"required,oneof=FIRST SECOND ANNUAL"`
	WeeklyHours int                    `json:"weekly_hours" validate:"required,min=1,max=40"`
	Description *string                `json:"description"`
}

// UpdateSubjectRequest is the payload for updating a subject.
type UpdateSubjectRequest struct {
	Name        string                 `json:"name" validate:"required,max=200"`
	Year        int                    `json:"year" validate:"required,min=1,max=10"`
	Category    models.SubjectCategory `json:"category" validate:"required,oneof=OBLIGATORY ELECTIVE"`
	Period      models.SubjectPeriod   `json:"period" validate:"required,oneof=FIRST SECOND ANNUAL"`
	WeeklyHours int                    `json:"weekly_hours" validate:"required,min=1,max=40"`
	Description *string                `json:"description"`
}

// SubjectService manages subjects and guards their deletion.
type SubjectService struct {
	subjects     subjectRepository
	careers      subjectCareerReader
	inscriptions subjectInscriptionChecker
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewSubjectService constructs SubjectService.
func NewSubjectService(subjects subjectRepository, careers subjectCareerReader, inscriptions subjectInscriptionChecker, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{subjects: subjects, careers: careers, inscriptions: inscriptions, validator: validate, logger: logger}
}

// List returns all subjects with their career names.
func (s *SubjectService) List(ctx context.Context) ([]models.SubjectDetail, error) {
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Get returns a subject by code.
func (s *SubjectService) Get(ctx context.Context, code string) (*models.Subject, error) {
	subject, err := s.subjects.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// Create registers a new subject under an existing career.
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	if _, err := s.careers.FindByCode(ctx, req.CareerCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "career not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load career")
	}

	subject := &models.Subject{
		Code:        req.Code,
		Name:        req.Name,
		CareerCode:  req.CareerCode,
		Year:        req.Year,
		Category:    req.Category,
		Period:      req.Period,
		WeeklyHours: req.WeeklyHours,
		Description: req.Description,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}

	s.logger.Info("subject created", zap.String("code", subject.Code), zap.String("career", subject.CareerCode))
	return subject, nil
}

// Update modifies an existing subject. The career binding is immutable.
func (s *SubjectService) Update(ctx context.Context, code string, req UpdateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	subject, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	subject.Name = req.Name
	subject.Year = req.Year
	subject.Category = req.Category
	subject.Period = req.Period
	subject.WeeklyHours = req.WeeklyHours
	subject.Description = req.Description
	if err := s.subjects.Update(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	return subject, nil
}

// Delete removes a subject. Subjects with student inscriptions cannot be
// deleted; grades tied to the subject go with it.
func (s *SubjectService) Delete(ctx context.Context, code string) error {
	if _, err := s.Get(ctx, code); err != nil {
		return err
	}
	hasInscriptions, err := s.inscriptions.ExistsBySubject(ctx, code)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject inscriptions")
	}
	if hasInscriptions {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "has existing inscriptions")
	}
	if err := s.subjects.Delete(ctx, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	s.logger.Info("subject deleted", zap.String("code", code))
	return nil
}
