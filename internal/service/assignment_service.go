package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/academia-dev/academia-api/internal/models"
	appErrors "github.com/academia-dev/academia-api/pkg/errors"
)

type subjectRosterRepository interface {
	FindByCode(ctx context.Context, code string) (*models.Subject, error)
	ListProfessorIDs(ctx context.Context, subjectCode string) ([]string, error)
	ReplaceProfessors(ctx context.Context, subjectCode string, add, remove []string) error
}

type finalExamRosterRepository interface {
	FindByID(ctx context.Context, id string) (*models.FinalExam, error)
	ListProfessorIDs(ctx context.Context, finalExamID string) ([]string, error)
	ReplaceProfessors(ctx context.Context, finalExamID string, add, remove []string) error
}

type assignmentProfessorReader interface {
	FindByID(ctx context.Context, professorID string) (*models.Professor, error)
}

// ReconcileResult reports what an assignment reconciliation actually did.
// Added and Removed are sorted; Changed is false when the requested set
// already matched the stored one.
type ReconcileResult struct {
	Changed bool     `json:"changed"`
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// AssignmentService reconciles professor rosters on subjects and final exams
// against a requested set.
type AssignmentService struct {
	subjects   subjectRosterRepository
	finals     finalExamRosterRepository
	professors assignmentProfessorReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAssignmentService constructs AssignmentService.
func NewAssignmentService(subjects subjectRosterRepository, finals finalExamRosterRepository, professors assignmentProfessorReader, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{subjects: subjects, finals: finals, professors: professors, validator: validate, logger: logger}
}

// ReconcileSubjectProfessors makes the subject's professor roster equal to
// the requested set. Repeating the same request is a no-op.
func (s *AssignmentService) ReconcileSubjectProfessors(ctx context.Context, subjectCode string, requested []string) (*ReconcileResult, error) {
	if _, err := s.subjects.FindByCode(ctx, subjectCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if err := s.verifyProfessors(ctx, requested); err != nil {
		return nil, err
	}

	current, err := s.subjects.ListProfessorIDs(ctx, subjectCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned professors")
	}

	result := diffRoster(current, requested)
	if !result.Changed {
		return result, nil
	}
	if err := s.subjects.ReplaceProfessors(ctx, subjectCode, result.Added, result.Removed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update professor assignments")
	}

	s.logger.Info("reconciled subject professors",
		zap.String("subject", subjectCode),
		zap.Strings("added", result.Added),
		zap.Strings("removed", result.Removed),
	)
	return result, nil
}

// ReconcileFinalExamProfessors makes the exam's professor roster equal to the
// requested set.
func (s *AssignmentService) ReconcileFinalExamProfessors(ctx context.Context, finalExamID string, requested []string) (*ReconcileResult, error) {
	if _, err := s.finals.FindByID(ctx, finalExamID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "final exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load final exam")
	}
	if err := s.verifyProfessors(ctx, requested); err != nil {
		return nil, err
	}

	current, err := s.finals.ListProfessorIDs(ctx, finalExamID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned professors")
	}

	result := diffRoster(current, requested)
	if !result.Changed {
		return result, nil
	}
	if err := s.finals.ReplaceProfessors(ctx, finalExamID, result.Added, result.Removed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update professor assignments")
	}

	s.logger.Info("reconciled final exam professors",
		zap.String("final_exam", finalExamID),
		zap.Strings("added", result.Added),
		zap.Strings("removed", result.Removed),
	)
	return result, nil
}

// SubjectProfessors returns the professor ids currently assigned to a subject.
func (s *AssignmentService) SubjectProfessors(ctx context.Context, subjectCode string) ([]string, error) {
	ids, err := s.subjects.ListProfessorIDs(ctx, subjectCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned professors")
	}
	return ids, nil
}

// FinalExamProfessors returns the professor ids currently assigned to an exam.
func (s *AssignmentService) FinalExamProfessors(ctx context.Context, finalExamID string) ([]string, error) {
	ids, err := s.finals.ListProfessorIDs(ctx, finalExamID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned professors")
	}
	return ids, nil
}

func (s *AssignmentService) verifyProfessors(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := s.professors.FindByID(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "professor not found: "+id)
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
		}
	}
	return nil
}

// diffRoster computes the additions and removals that turn current into
// requested. Duplicates in the request collapse to one membership.
func diffRoster(current, requested []string) *ReconcileResult {
	have := make(map[string]struct{}, len(current))
	for _, id := range current {
		have[id] = struct{}{}
	}
	want := make(map[string]struct{}, len(requested))
	for _, id := range requested {
		want[id] = struct{}{}
	}

	result := &ReconcileResult{Added: []string{}, Removed: []string{}}
	for id := range want {
		if _, ok := have[id]; !ok {
			result.Added = append(result.Added, id)
		}
	}
	for id := range have {
		if _, ok := want[id]; !ok {
			result.Removed = append(result.Removed, id)
		}
	}
	sort.Strings(result.Added)
	sort.Strings(result.Removed)
	result.Changed = len(result.Added) > 0 || len(result.Removed) > 0
	return result
}
