package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/academia-dev/academia-api/internal/models"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
)

type finalExamRepository interface {
	List(ctx context.Context) ([]models.FinalExamDetail, error)
	FindByID(ctx context.Context, id string) (*models.FinalExam, error)
	ListBySubject(ctx context.Context, subjectCode string) ([]models.FinalExamDetail, error)
	Create(ctx context.Context, exam *models.FinalExam) error
	Update(ctx context.Context, exam *models.FinalExam) error
	Delete(ctx context.Context, id string) error
}

type finalExamSubjectReader interface {
	FindByCode(ctx context.Context, code string) (*models.Subject, error)
}

type finalExamInscriptionChecker interface {
	ExistsByFinalExam(ctx context.Context, finalExamID string) (bool, error)
	ListByFinalExam(ctx context.Context, finalExamID string) ([]models.FinalExamInscriptionDetail, error)
}

// CreateFinalExamRequest is the payload for scheduling a final exam.
type CreateFinalExamRequest struct {
	SubjectCode     string  `json:"subject_code" validate:"required"`
	Date            string  `json:"date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Location        string  `json:"location" validate:"required,max=200"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,min=30,max=480"`
	CallNumber      int     `json:"call_number" validate:"required,min=1,max=10"`
	Notes           *string `json:"notes"`
}

// UpdateFinalExamRequest is the payload for rescheduling a final exam. The
// subject binding is immutable.
type UpdateFinalExamRequest struct {
	Date            string  `json:"date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Location        string  `json:"location" validate:"required,max=200"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,min=30,max=480"`
	CallNumber      int     `json:"call_number" validate:"required,min=1,max=10"`
	Notes           *string `json:"notes"`
}

// FinalExamService manages scheduled final exams and guards their deletion.
type FinalExamService struct {
	finals       finalExamRepository
	subjects     finalExamSubjectReader
	inscriptions finalExamInscriptionChecker
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewFinalExamService constructs FinalExamService.
func NewFinalExamService(finals finalExamRepository, subjects finalExamSubjectReader, inscriptions finalExamInscriptionChecker, validate *validator.Validate, logger *zap.Logger) *FinalExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinalExamService{finals: finals, subjects: subjects, inscriptions: inscriptions, validator: validate, logger: logger}
}

// List returns all scheduled final exams ordered by date.
func (s *FinalExamService) List(ctx context.Context) ([]models.FinalExamDetail, error) {
	exams, err := s.finals.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list final exams")
	}
	return exams, nil
}

// Get returns a final exam by id.
func (s *FinalExamService) Get(ctx context.Context, id string) (*models.FinalExam, error) {
	exam, err := s.finals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "final exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load final exam")
	}
	return exam, nil
}

// ListBySubject returns the exams scheduled for a subject.
func (s *FinalExamService) ListBySubject(ctx context.Context, subjectCode string) ([]models.FinalExamDetail, error) {
	exams, err := s.finals.ListBySubject(ctx, subjectCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subject final exams")
	}
	return exams, nil
}

// Inscriptions returns the registered students of an exam ordered by name.
func (s *FinalExamService) Inscriptions(ctx context.Context, id string) ([]models.FinalExamInscriptionDetail, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	inscriptions, err := s.inscriptions.ListByFinalExam(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exam inscriptions")
	}
	return inscriptions, nil
}

// Create schedules a new final exam for an existing subject.
func (s *FinalExamService) Create(ctx context.Context, req CreateFinalExamRequest) (*models.FinalExam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid final exam payload")
	}
	if _, err := s.subjects.FindByCode(ctx, req.SubjectCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid exam date")
	}

	exam := &models.FinalExam{
		SubjectCode:     req.SubjectCode,
		Date:            date,
		Location:        req.Location,
		DurationMinutes: req.DurationMinutes,
		CallNumber:      req.CallNumber,
		Notes:           req.Notes,
	}
	if err := s.finals.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create final exam")
	}

	s.logger.Info("final exam scheduled",
		zap.String("id", exam.ID),
		zap.String("subject", exam.SubjectCode),
		zap.Time("date", exam.Date),
	)
	return exam, nil
}

// Update reschedules an existing final exam.
func (s *FinalExamService) Update(ctx context.Context, id string, req UpdateFinalExamRequest) (*models.FinalExam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid final exam payload")
	}
	exam, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid exam date")
	}

	exam.Date = date
	exam.Location = req.Location
	exam.DurationMinutes = req.DurationMinutes
	exam.CallNumber = req.CallNumber
	exam.Notes = req.Notes
	if err := s.finals.Update(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update final exam")
	}
	return exam, nil
}

// Delete removes a final exam. Exams with registered students cannot be
// deleted.
func (s *FinalExamService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	hasInscriptions, err := s.inscriptions.ExistsByFinalExam(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check exam inscriptions")
	}
	if hasInscriptions {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "has existing inscriptions")
	}
	if err := s.finals.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete final exam")
	}
	s.logger.Info("final exam deleted", zap.String("id", id))
	return nil
}
