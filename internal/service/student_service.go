package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/academia-dev/academia-api/internal/models"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, studentID string) (*models.Student, error)
	FindDetailByID(ctx context.Context, studentID string) (*models.StudentDetail, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
}

type studentCareerReader interface {
	FindByCode(ctx context.Context, code string) (*models.Career, error)
}

type studentInscriptionReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.SubjectInscriptionDetail, error)
}

type studentFinalInscriptionReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.FinalExamInscriptionDetail, error)
}

type studentGradeReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error)
}

type availableFinalsProvider interface {
	AvailableFinals(ctx context.Context, studentID string) ([]models.FinalExamDetail, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// UpdateStudentRequest changes a student's career assignment. A nil career
// code detaches the student from any career.
type UpdateStudentRequest struct {
	CareerCode *string `json:"career_code"`
}

// StudentDashboard aggregates everything the student home screen shows.
type StudentDashboard struct {
	Student         models.StudentDetail                `json:"student"`
	Inscriptions    []models.SubjectInscriptionDetail   `json:"inscriptions"`
	Grades          []models.Grade                      `json:"grades"`
	UpcomingFinals  []models.FinalExamInscriptionDetail `json:"upcoming_finals"`
	AvailableFinals []models.FinalExamDetail            `json:"available_finals"`
}

// StudentService manages student records and serves the student dashboard.
type StudentService struct {
	students          studentRepository
	careers           studentCareerReader
	inscriptions      studentInscriptionReader
	finalInscriptions studentFinalInscriptionReader
	grades            studentGradeReader
	finals            availableFinalsProvider
	cache             dashboardCache
	cacheTTL          time.Duration
	metrics           *MetricsService
	validator         *validator.Validate
	logger            *zap.Logger
}

// SetMetrics attaches cache instrumentation to dashboard reads.
func (s *StudentService) SetMetrics(m *MetricsService) {
	s.metrics = m
}

// NewStudentService constructs StudentService. The cache is optional; a nil
// cache disables dashboard caching.
func NewStudentService(
	students studentRepository,
	careers studentCareerReader,
	inscriptions studentInscriptionReader,
	finalInscriptions studentFinalInscriptionReader,
	grades studentGradeReader,
	finals availableFinalsProvider,
	cache dashboardCache,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		students:          students,
		careers:           careers,
		inscriptions:      inscriptions,
		finalInscriptions: finalInscriptions,
		grades:            grades,
		finals:            finals,
		cache:             cache,
		cacheTTL:          cacheTTL,
		validator:         validate,
		logger:            logger,
	}
}

// List returns students matching the filter plus the unpaginated total.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, total, nil
}

// Get returns a student with identity and career details.
func (s *StudentService) Get(ctx context.Context, studentID string) (*models.StudentDetail, error) {
	student, err := s.students.FindDetailByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// GetByUserID resolves the student record behind a user account.
func (s *StudentService) GetByUserID(ctx context.Context, userID string) (*models.Student, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Update changes a student's career assignment.
func (s *StudentService) Update(ctx context.Context, studentID string, req UpdateStudentRequest) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if req.CareerCode != nil {
		if _, err := s.careers.FindByCode(ctx, *req.CareerCode); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "career not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load career")
		}
	}

	student.CareerCode = req.CareerCode
	if err := s.students.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	s.InvalidateDashboard(ctx, student.StudentID)
	return student, nil
}

// Dashboard assembles the student home view. Results are cached for a short
// TTL; callers that mutate enrollment state should invalidate afterwards.
func (s *StudentService) Dashboard(ctx context.Context, studentID string) (*StudentDashboard, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, dashboardKey(studentID)); err == nil {
			var cached StudentDashboard
			if err := json.Unmarshal(raw, &cached); err == nil {
				s.metrics.RecordCacheLookup(true)
				return &cached, nil
			}
		}
		s.metrics.RecordCacheLookup(false)
	}

	student, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	inscriptions, err := s.inscriptions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list inscriptions")
	}
	grades, err := s.grades.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	upcoming, err := s.finalInscriptions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list final inscriptions")
	}
	available, err := s.finals.AvailableFinals(ctx, studentID)
	if err != nil {
		return nil, err
	}

	dashboard := &StudentDashboard{
		Student:         *student,
		Inscriptions:    inscriptions,
		Grades:          grades,
		UpcomingFinals:  upcoming,
		AvailableFinals: available,
	}

	if s.cache != nil {
		if raw, err := json.Marshal(dashboard); err == nil {
			if err := s.cache.Set(ctx, dashboardKey(studentID), raw, s.cacheTTL); err != nil {
				s.logger.Warn("failed to cache student dashboard", zap.String("student", studentID), zap.Error(err))
			}
		}
	}
	return dashboard, nil
}

// InvalidateDashboard drops the cached dashboard for a student. Cache errors
// are logged, not returned; the next read rebuilds the view anyway.
func (s *StudentService) InvalidateDashboard(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dashboardKey(studentID)); err != nil {
		s.logger.Warn("failed to invalidate student dashboard", zap.String("student", studentID), zap.Error(err))
	}
}

func dashboardKey(studentID string) string {
	return "dashboard:student:" + studentID
}
