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

type careerRepository interface {
	List(ctx context.Context) ([]models.CareerDetail, error)
	FindByCode(ctx context.Context, code string) (*models.Career, error)
	Create(ctx context.Context, career *models.Career) error
	Update(ctx context.Context, career *models.Career) error
	Delete(ctx context.Context, code string) error
}

type careerFacultyReader interface {
	FindByCode(ctx context.Context, code string) (*models.Faculty, error)
}

type careerStudentReader interface {
	ExistsByCareer(ctx context.Context, careerCode string) (bool, error)
}

type careerSubjectReader interface {
	ListByCareer(ctx context.Context, careerCode string) ([]models.Subject, error)
}

// CreateCareerRequest is the payload for creating a career.
type CreateCareerRequest struct {
	Code          string  `json:"code" validate:"required,max=20"`
	Name          string  `json:"name" validate:"required,max=200"`
	FacultyCode   string  `json:"faculty_code" validate:"required"`
	Director      string  `json:"director" validate:"required,max=200"`
	DurationYears int     `json:"duration_years" validate:"required,min=1,max=10"`
	Description   *string `json:"description"`
}

// UpdateCareerRequest is the payload for updating a career.
type UpdateCareerRequest struct {
	Name          string  `json:"name" validate:"required,max=200"`
	FacultyCode   string  `json:"faculty_code" validate:"required"`
	Director      string  `json:"director" validate:"required,max=200"`
	DurationYears int     `json:"duration_years" validate:"required,min=1,max=10"`
	Description   *string `json:"description"`
}

// CareerService manages careers and guards their deletion.
type CareerService struct {
	careers   careerRepository
	faculties careerFacultyReader
	students  careerStudentReader
	subjects  careerSubjectReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCareerService constructs CareerService.
func NewCareerService(careers careerRepository, faculties careerFacultyReader, students careerStudentReader, subjects careerSubjectReader, validate *validator.Validate, logger *zap.Logger) *CareerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CareerService{careers: careers, faculties: faculties, students: students, subjects: subjects, validator: validate, logger: logger}
}

// List returns all careers with their faculty names.
func (s *CareerService) List(ctx context.Context) ([]models.CareerDetail, error) {
	careers, err := s.careers.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list careers")
	}
	return careers, nil
}

// Get returns a career by code.
func (s *CareerService) Get(ctx context.Context, code string) (*models.Career, error) {
	career, err := s.careers.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "career not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load career")
	}
	return career, nil
}

// Subjects returns the curriculum of a career ordered by subject code.
func (s *CareerService) Subjects(ctx context.Context, code string) ([]models.Subject, error) {
	if _, err := s.Get(ctx, code); err != nil {
		return nil, err
	}
	subjects, err := s.subjects.ListByCareer(ctx, code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list career subjects")
	}
	return subjects, nil
}

// Create registers a new career under an existing faculty.
func (s *CareerService) Create(ctx context.Context, req CreateCareerRequest) (*models.Career, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid career payload")
	}
	if _, err := s.faculties.FindByCode(ctx, req.FacultyCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}

	career := &models.Career{
		Code:          req.Code,
		Name:          req.Name,
		FacultyCode:   req.FacultyCode,
		Director:      req.Director,
		DurationYears: req.DurationYears,
		Description:   req.Description,
	}
	if err := s.careers.Create(ctx, career); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "career code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create career")
	}

	s.logger.Info("career created", zap.String("code", career.Code), zap.String("faculty", career.FacultyCode))
	return career, nil
}

// Update modifies an existing career.
func (s *CareerService) Update(ctx context.Context, code string, req UpdateCareerRequest) (*models.Career, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid career payload")
	}
	career, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if _, err := s.faculties.FindByCode(ctx, req.FacultyCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}

	career.Name = req.Name
	career.FacultyCode = req.FacultyCode
	career.Director = req.Director
	career.DurationYears = req.DurationYears
	career.Description = req.Description
	if err := s.careers.Update(ctx, career); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update career")
	}
	return career, nil
}

// Delete removes a career. Careers with enrolled students cannot be deleted.
func (s *CareerService) Delete(ctx context.Context, code string) error {
	if _, err := s.Get(ctx, code); err != nil {
		return err
	}
	hasStudents, err := s.students.ExistsByCareer(ctx, code)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check career students")
	}
	if hasStudents {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "has existing students")
	}
	if err := s.careers.Delete(ctx, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete career")
	}
	s.logger.Info("career deleted", zap.String("code", code))
	return nil
}
