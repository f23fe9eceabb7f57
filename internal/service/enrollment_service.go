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

type enrollmentStudentReader interface {
	FindByID(ctx context.Context, studentID string) (*models.Student, error)
}

type enrollmentSubjectReader interface {
	FindByCode(ctx context.Context, code string) (*models.Subject, error)
	ListByCareer(ctx context.Context, careerCode string) ([]models.Subject, error)
}

type enrollmentFinalExamReader interface {
	FindByID(ctx context.Context, id string) (*models.FinalExam, error)
	ListBySubjectCodes(ctx context.Context, codes []string) ([]models.FinalExamDetail, error)
}

type subjectInscriptionRepository interface {
	Exists(ctx context.Context, studentID, subjectCode string) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.SubjectInscriptionDetail, error)
	CreateWithGrade(ctx context.Context, inscription *models.SubjectInscription, grade *models.Grade) error
	Delete(ctx context.Context, id string) error
	FindByStudentAndSubject(ctx context.Context, studentID, subjectCode string) (*models.SubjectInscription, error)
}

type finalExamInscriptionRepository interface {
	Exists(ctx context.Context, studentID, finalExamID string) (bool, error)
	ListFinalExamIDsByStudent(ctx context.Context, studentID string) ([]string, error)
	Create(ctx context.Context, inscription *models.FinalExamInscription) error
	Delete(ctx context.Context, id string) error
	FindByStudentAndExam(ctx context.Context, studentID, finalExamID string) (*models.FinalExamInscription, error)
}

type enrollmentGradeReader interface {
	FindByStudentAndSubject(ctx context.Context, studentID, subjectCode string) (*models.Grade, error)
	ListPromotedSubjectCodes(ctx context.Context, studentID string) ([]string, error)
}

// Rejection reasons surfaced by the eligibility checks. Handlers pass them
// through verbatim so clients can show them to students.
const (
	ReasonWrongCareer            = "wrong career"
	ReasonAlreadyEnrolled        = "already enrolled"
	ReasonNotEnrolledInSubject   = "not enrolled in subject"
	ReasonAlreadyEnrolledInFinal = "already enrolled in final"
	ReasonAlreadyPassed          = "already passed"
)

// EnrollmentService decides and records subject and final-exam enrollments.
type EnrollmentService struct {
	students          enrollmentStudentReader
	subjects          enrollmentSubjectReader
	finals            enrollmentFinalExamReader
	inscriptions      subjectInscriptionRepository
	finalInscriptions finalExamInscriptionRepository
	grades            enrollmentGradeReader
	validator         *validator.Validate
	logger            *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(
	students enrollmentStudentReader,
	subjects enrollmentSubjectReader,
	finals enrollmentFinalExamReader,
	inscriptions subjectInscriptionRepository,
	finalInscriptions finalExamInscriptionRepository,
	grades enrollmentGradeReader,
	validate *validator.Validate,
	logger *zap.Logger,
) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		students:          students,
		subjects:          subjects,
		finals:            finals,
		inscriptions:      inscriptions,
		finalInscriptions: finalInscriptions,
		grades:            grades,
		validator:         validate,
		logger:            logger,
	}
}

// CanEnrollInSubject checks subject-enrollment eligibility. The returned
// reason is empty when the student may enroll.
func (s *EnrollmentService) CanEnrollInSubject(ctx context.Context, student *models.Student, subject *models.Subject) (bool, string, error) {
	if student.CareerCode == nil || *student.CareerCode != subject.CareerCode {
		return false, ReasonWrongCareer, nil
	}
	enrolled, err := s.inscriptions.Exists(ctx, student.StudentID, subject.Code)
	if err != nil {
		return false, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check inscription")
	}
	if enrolled {
		return false, ReasonAlreadyEnrolled, nil
	}
	return true, "", nil
}

// EnrollInSubject enrolls a student in a subject. The inscription and its
// initial FREE grade are written in the same transaction; an existing grade
// row left behind by an earlier enrollment is reused as-is.
func (s *EnrollmentService) EnrollInSubject(ctx context.Context, studentID, subjectCode string) (*models.SubjectInscription, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	subject, err := s.subjects.FindByCode(ctx, subjectCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	ok, reason, err := s.CanEnrollInSubject(ctx, student, subject)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrConflict, reason)
	}

	inscription := &models.SubjectInscription{
		StudentID:   student.StudentID,
		SubjectCode: subject.Code,
	}
	grade := &models.Grade{
		StudentID:   student.StudentID,
		SubjectCode: subject.Code,
		Status:      models.StatusFree,
	}
	if err := s.inscriptions.CreateWithGrade(ctx, inscription, grade); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, ReasonAlreadyEnrolled)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create inscription")
	}

	s.logger.Info("student enrolled in subject",
		zap.String("student", student.StudentID),
		zap.String("subject", subject.Code),
	)
	return inscription, nil
}

// CanEnrollInFinal checks final-exam eligibility: the student must be
// enrolled in the exam's subject, not already registered for this exam, and
// must not have passed the subject already. Students with no grade row or a
// FREE/REGULAR status may register.
func (s *EnrollmentService) CanEnrollInFinal(ctx context.Context, student *models.Student, exam *models.FinalExam) (bool, string, error) {
	enrolled, err := s.inscriptions.Exists(ctx, student.StudentID, exam.SubjectCode)
	if err != nil {
		return false, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject inscription")
	}
	if !enrolled {
		return false, ReasonNotEnrolledInSubject, nil
	}

	registered, err := s.finalInscriptions.Exists(ctx, student.StudentID, exam.ID)
	if err != nil {
		return false, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check final inscription")
	}
	if registered {
		return false, ReasonAlreadyEnrolledInFinal, nil
	}

	grade, err := s.grades.FindByStudentAndSubject(ctx, student.StudentID, exam.SubjectCode)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	if grade != nil && grade.Status == models.StatusPromoted {
		return false, ReasonAlreadyPassed, nil
	}
	return true, "", nil
}

// EnrollInFinal registers a student for a final exam.
func (s *EnrollmentService) EnrollInFinal(ctx context.Context, studentID, finalExamID string) (*models.FinalExamInscription, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	exam, err := s.finals.FindByID(ctx, finalExamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "final exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load final exam")
	}

	ok, reason, err := s.CanEnrollInFinal(ctx, student, exam)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrConflict, reason)
	}

	inscription := &models.FinalExamInscription{
		StudentID:   student.StudentID,
		FinalExamID: exam.ID,
	}
	if err := s.finalInscriptions.Create(ctx, inscription); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, ReasonAlreadyEnrolledInFinal)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create final inscription")
	}

	s.logger.Info("student registered for final exam",
		zap.String("student", student.StudentID),
		zap.String("final_exam", exam.ID),
	)
	return inscription, nil
}

// AvailableSubjects lists the subjects of the student's career the student is
// not yet enrolled in, ordered by subject code.
func (s *EnrollmentService) AvailableSubjects(ctx context.Context, studentID string) ([]models.Subject, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.CareerCode == nil {
		return []models.Subject{}, nil
	}

	subjects, err := s.subjects.ListByCareer(ctx, *student.CareerCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list career subjects")
	}
	inscriptions, err := s.inscriptions.ListByStudent(ctx, student.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list inscriptions")
	}

	enrolled := make(map[string]struct{}, len(inscriptions))
	for _, inscription := range inscriptions {
		enrolled[inscription.SubjectCode] = struct{}{}
	}
	available := make([]models.Subject, 0, len(subjects))
	for _, subject := range subjects {
		if _, ok := enrolled[subject.Code]; !ok {
			available = append(available, subject)
		}
	}
	return available, nil
}

// AvailableFinals lists the scheduled finals the student can still register
// for: finals of subjects the student is enrolled in, excluding finals the
// student already registered for and subjects already passed.
func (s *EnrollmentService) AvailableFinals(ctx context.Context, studentID string) ([]models.FinalExamDetail, error) {
	inscriptions, err := s.inscriptions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list inscriptions")
	}
	if len(inscriptions) == 0 {
		return []models.FinalExamDetail{}, nil
	}

	codes := make([]string, 0, len(inscriptions))
	for _, inscription := range inscriptions {
		codes = append(codes, inscription.SubjectCode)
	}
	exams, err := s.finals.ListBySubjectCodes(ctx, codes)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list final exams")
	}

	registeredIDs, err := s.finalInscriptions.ListFinalExamIDsByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list final inscriptions")
	}
	registered := make(map[string]struct{}, len(registeredIDs))
	for _, id := range registeredIDs {
		registered[id] = struct{}{}
	}

	promotedCodes, err := s.grades.ListPromotedSubjectCodes(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list promoted subjects")
	}
	promoted := make(map[string]struct{}, len(promotedCodes))
	for _, code := range promotedCodes {
		promoted[code] = struct{}{}
	}

	available := make([]models.FinalExamDetail, 0, len(exams))
	for _, exam := range exams {
		if _, ok := registered[exam.ID]; ok {
			continue
		}
		if _, ok := promoted[exam.SubjectCode]; ok {
			continue
		}
		available = append(available, exam)
	}
	return available, nil
}

// RemoveSubjectInscription withdraws a student from a subject. The grade row
// is kept so history survives a re-enrollment.
func (s *EnrollmentService) RemoveSubjectInscription(ctx context.Context, studentID, subjectCode string) error {
	inscription, err := s.inscriptions.FindByStudentAndSubject(ctx, studentID, subjectCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "inscription not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inscription")
	}
	if err := s.inscriptions.Delete(ctx, inscription.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "inscription not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete inscription")
	}
	return nil
}

// RemoveFinalInscription withdraws a student from a final exam.
func (s *EnrollmentService) RemoveFinalInscription(ctx context.Context, studentID, finalExamID string) error {
	inscription, err := s.finalInscriptions.FindByStudentAndExam(ctx, studentID, finalExamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "final inscription not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load final inscription")
	}
	if err := s.finalInscriptions.Delete(ctx, inscription.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "final inscription not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete final inscription")
	}
	return nil
}
