package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/academia-dev/academia-api/internal/models"
)

// GradeRepository handles persistence of grade records.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// FindByStudentAndSubject returns the grade for a (student, subject) pair.
func (r *GradeRepository) FindByStudentAndSubject(ctx context.Context, studentID, subjectCode string) (*models.Grade, error) {
	const query = `SELECT id, student_id, subject_code, promotion_grade, final_grade, status, notes, last_updated
        FROM grades WHERE student_id = $1 AND subject_code = $2`
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, studentID, subjectCode); err != nil {
		return nil, err
	}
	return &grade, nil
}

// FindByID returns a grade by id.
func (r *GradeRepository) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	const query = `SELECT id, student_id, subject_code, promotion_grade, final_grade, status, notes, last_updated
        FROM grades WHERE id = $1`
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		return nil, err
	}
	return &grade, nil
}

// ListBySubject returns the subject's grades with student identity, ordered
// by student last name then first name.
func (r *GradeRepository) ListBySubject(ctx context.Context, subjectCode string) ([]models.GradeDetail, error) {
	const query = `SELECT g.id, g.student_id, g.subject_code, g.promotion_grade, g.final_grade, g.status, g.notes, g.last_updated,
        u.first_name AS student_first_name, u.last_name AS student_last_name
        FROM grades g
        JOIN students s ON s.student_id = g.student_id
        JOIN users u ON u.id = s.user_id
        WHERE g.subject_code = $1 ORDER BY u.last_name, u.first_name`
	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, subjectCode); err != nil {
		return nil, fmt.Errorf("list subject grades: %w", err)
	}
	return grades, nil
}

// ListByStudent returns all grades for a student.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	const query = `SELECT id, student_id, subject_code, promotion_grade, final_grade, status, notes, last_updated
        FROM grades WHERE student_id = $1 ORDER BY subject_code`
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list student grades: %w", err)
	}
	return grades, nil
}

// ListStudentIDsBySubject returns the ids of students holding a grade for the
// subject.
func (r *GradeRepository) ListStudentIDsBySubject(ctx context.Context, subjectCode string) ([]string, error) {
	const query = `SELECT student_id FROM grades WHERE subject_code = $1 ORDER BY student_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, subjectCode); err != nil {
		return nil, fmt.Errorf("list graded students: %w", err)
	}
	return ids, nil
}

// ListPromotedSubjectCodes returns the subject codes the student has passed.
func (r *GradeRepository) ListPromotedSubjectCodes(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT subject_code FROM grades WHERE student_id = $1 AND status = $2`
	var codes []string
	if err := r.db.SelectContext(ctx, &codes, query, studentID, models.StatusPromoted); err != nil {
		return nil, fmt.Errorf("list promoted subjects: %w", err)
	}
	return codes, nil
}

// BulkCreateMissing inserts FREE grades for the given students, silently
// skipping pairs that already exist. Safe under concurrent backfill.
func (r *GradeRepository) BulkCreateMissing(ctx context.Context, subjectCode string, studentIDs []string) error {
	if len(studentIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grade backfill: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insert = `INSERT INTO grades (id, student_id, subject_code, status, last_updated)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (student_id, subject_code) DO NOTHING`
	for _, studentID := range studentIDs {
		if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), studentID, subjectCode, models.StatusFree, now); err != nil {
			return fmt.Errorf("backfill grade for student %s: %w", studentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grade backfill: %w", err)
	}
	return nil
}

// Update persists grade fields and status as one atomic write.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	grade.LastUpdated = time.Now().UTC()
	const query = `UPDATE grades SET promotion_grade = :promotion_grade, final_grade = :final_grade,
        status = :status, notes = :notes, last_updated = :last_updated WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return nil
}
