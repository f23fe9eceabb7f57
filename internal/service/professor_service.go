package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/academia-dev/academia-api/internal/models"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
)

type professorRepository interface {
	List(ctx context.Context) ([]models.ProfessorDetail, error)
	FindByID(ctx context.Context, professorID string) (*models.Professor, error)
	FindByUserID(ctx context.Context, userID string) (*models.Professor, error)
}

type professorFinalExamReader interface {
	ListByProfessor(ctx context.Context, professorID string) ([]models.FinalExamDetail, error)
	ListProfessorIDs(ctx context.Context, finalExamID string) ([]string, error)
}

type professorExamInscriptionReader interface {
	ListByFinalExam(ctx context.Context, finalExamID string) ([]models.FinalExamInscriptionDetail, error)
}

// ProfessorDashboard aggregates what the professor home screen shows.
type ProfessorDashboard struct {
	Professor models.Professor         `json:"professor"`
	Subjects  []models.Subject         `json:"subjects"`
	Finals    []models.FinalExamDetail `json:"finals"`
}

// ProfessorService manages professor records and their teaching views.
type ProfessorService struct {
	professors   professorRepository
	subjects     professorSubjectReader
	finals       professorFinalExamReader
	inscriptions professorExamInscriptionReader
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewProfessorService constructs ProfessorService.
func NewProfessorService(professors professorRepository, subjects professorSubjectReader, finals professorFinalExamReader, inscriptions professorExamInscriptionReader, validate *validator.Validate, logger *zap.Logger) *ProfessorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfessorService{professors: professors, subjects: subjects, finals: finals, inscriptions: inscriptions, validator: validate, logger: logger}
}

// List returns all professors with identity details.
func (s *ProfessorService) List(ctx context.Context) ([]models.ProfessorDetail, error) {
	professors, err := s.professors.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list professors")
	}
	return professors, nil
}

// Get returns a professor by id.
func (s *ProfessorService) Get(ctx context.Context, professorID string) (*models.Professor, error) {
	professor, err := s.professors.FindByID(ctx, professorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
	}
	return professor, nil
}

// GetByUserID resolves the professor record behind a user account.
func (s *ProfessorService) GetByUserID(ctx context.Context, userID string) (*models.Professor, error) {
	professor, err := s.professors.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
	}
	return professor, nil
}

// Dashboard assembles the professor home view: assigned subjects and the
// finals the professor sits on.
func (s *ProfessorService) Dashboard(ctx context.Context, professorID string) (*ProfessorDashboard, error) {
	professor, err := s.Get(ctx, professorID)
	if err != nil {
		return nil, err
	}
	subjects, err := s.subjects.ListByProfessor(ctx, professorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned subjects")
	}
	finals, err := s.finals.ListByProfessor(ctx, professorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned finals")
	}

	return &ProfessorDashboard{
		Professor: *professor,
		Subjects:  subjects,
		Finals:    finals,
	}, nil
}

// ExamInscriptions returns the registered students of a final exam the
// professor is assigned to.
func (s *ProfessorService) ExamInscriptions(ctx context.Context, professorID, finalExamID string) ([]models.FinalExamInscriptionDetail, error) {
	assigned, err := s.finals.ListProfessorIDs(ctx, finalExamID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exam professors")
	}
	onBoard := false
	for _, id := range assigned {
		if id == professorID {
			onBoard = true
			break
		}
	}
	if !onBoard {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not assigned to this final exam")
	}

	inscriptions, err := s.inscriptions.ListByFinalExam(ctx, finalExamID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exam inscriptions")
	}
	return inscriptions, nil
}
