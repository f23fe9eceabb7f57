package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/academia-dev/academia-api/internal/models"
	"github.com/academia-dev/academia-api/internal/repository"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
)

type facultyRepository interface {
	List(ctx context.Context) ([]models.Faculty, error)
	FindByCode(ctx context.Context, code string) (*models.Faculty, error)
	Create(ctx context.Context, faculty *models.Faculty) error
	Update(ctx context.Context, faculty *models.Faculty) error
	Delete(ctx context.Context, code string) error
}

type facultyCareerReader interface {
	ExistsByFaculty(ctx context.Context, facultyCode string) (bool, error)
	ListByFaculty(ctx context.Context, facultyCode string) ([]models.Career, error)
}

// CreateFacultyRequest is the payload for creating a faculty.
type CreateFacultyRequest struct {
	Code            string  `json:"code" validate:"required,max=20"`
	Name            string  `json:"name" validate:"required,max=200"`
	Address         string  `json:"address" validate:"required,max=300"`
	Phone           string  `json:"phone" validate:"required,max=50"`
	Email           string  `json:"email" validate:"required,email"`
	Website         string  `json:"website" validate:"omitempty,url"`
	Dean            string  `json:"dean" validate:"required,max=200"`
	EstablishedDate string  `json:"established_date" validate:"required,datetime=2006-01-02"`
	Description     *string `json:"description"`
}

// UpdateFacultyRequest is the payload for updating a faculty. The code is
// immutable.
type UpdateFacultyRequest struct {
	Name            string  `json:"name" validate:"required,max=200"`
	Address         string  `json:"address" validate:"required,max=300"`
	Phone           string  `json:"phone" validate:"required,max=50"`
	Email           string  `json:"email" validate:"required,email"`
	Website         string  `json:"website" validate:"omitempty,url"`
	Dean            string  `json:"dean" validate:"required,max=200"`
	EstablishedDate string  `json:"established_date" validate:"required,datetime=2006-01-02"`
	Description     *string `json:"description"`
}

// FacultyService manages faculties and guards their deletion.
type FacultyService struct {
	faculties facultyRepository
	careers   facultyCareerReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFacultyService constructs FacultyService.
func NewFacultyService(faculties facultyRepository, careers facultyCareerReader, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{faculties: faculties, careers: careers, validator: validate, logger: logger}
}

// List returns all faculties ordered by code.
func (s *FacultyService) List(ctx context.Context) ([]models.Faculty, error) {
	faculties, err := s.faculties.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculties")
	}
	return faculties, nil
}

// Get returns a faculty by code.
func (s *FacultyService) Get(ctx context.Context, code string) (*models.Faculty, error) {
	faculty, err := s.faculties.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	return faculty, nil
}

// Careers returns the careers offered by a faculty.
func (s *FacultyService) Careers(ctx context.Context, code string) ([]models.Career, error) {
	if _, err := s.Get(ctx, code); err != nil {
		return nil, err
	}
	careers, err := s.careers.ListByFaculty(ctx, code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty careers")
	}
	return careers, nil
}

// Create registers a new faculty.
func (s *FacultyService) Create(ctx context.Context, req CreateFacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}
	established, err := time.Parse("2006-01-02", req.EstablishedDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid established date")
	}

	faculty := &models.Faculty{
		Code:            req.Code,
		Name:            req.Name,
		Address:         req.Address,
		Phone:           req.Phone,
		Email:           req.Email,
		Website:         req.Website,
		Dean:            req.Dean,
		EstablishedDate: established,
		Description:     req.Description,
	}
	if err := s.faculties.Create(ctx, faculty); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "faculty code already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create faculty")
	}

	s.logger.Info("faculty created", zap.String("code", faculty.Code))
	return faculty, nil
}

// Update modifies an existing faculty.
func (s *FacultyService) Update(ctx context.Context, code string, req UpdateFacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}
	faculty, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	established, err := time.Parse("2006-01-02", req.EstablishedDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid established date")
	}

	faculty.Name = req.Name
	faculty.Address = req.Address
	faculty.Phone = req.Phone
	faculty.Email = req.Email
	faculty.Website = req.Website
	faculty.Dean = req.Dean
	faculty.EstablishedDate = established
	faculty.Description = req.Description
	if err := s.faculties.Update(ctx, faculty); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update faculty")
	}
	return faculty, nil
}

// Delete removes a faculty. Faculties that still offer careers cannot be
// deleted.
func (s *FacultyService) Delete(ctx context.Context, code string) error {
	if _, err := s.Get(ctx, code); err != nil {
		return err
	}
	hasCareers, err := s.careers.ExistsByFaculty(ctx, code)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check faculty careers")
	}
	if hasCareers {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "has existing careers")
	}
	if err := s.faculties.Delete(ctx, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete faculty")
	}
	s.logger.Info("faculty deleted", zap.String("code", code))
	return nil
}
