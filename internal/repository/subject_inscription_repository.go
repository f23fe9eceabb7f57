package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/academia-dev/academia-api/internal/models"
)

// SubjectInscriptionRepository handles persistence of subject enrollments.
type SubjectInscriptionRepository struct {
	db *sqlx.DB
}

// NewSubjectInscriptionRepository constructs the repository.
func NewSubjectInscriptionRepository(db *sqlx.DB) *SubjectInscriptionRepository {
	return &SubjectInscriptionRepository{db: db}
}

// Exists reports whether the student is already enrolled in the subject.
func (r *SubjectInscriptionRepository) Exists(ctx context.Context, studentID, subjectCode string) (bool, error) {
	const query = `SELECT 1 FROM subject_inscriptions WHERE student_id = $1 AND subject_code = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, subjectCode); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject inscription: %w", err)
	}
	return true, nil
}

// ExistsBySubject reports whether any inscription references the subject.
func (r *SubjectInscriptionRepository) ExistsBySubject(ctx context.Context, subjectCode string) (bool, error) {
	const query = `SELECT 1 FROM subject_inscriptions WHERE subject_code = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, subjectCode); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject inscriptions: %w", err)
	}
	return true, nil
}

// FindByStudentAndSubject returns the inscription for a (student, subject) pair.
func (r *SubjectInscriptionRepository) FindByStudentAndSubject(ctx context.Context, studentID, subjectCode string) (*models.SubjectInscription, error) {
	const query = `SELECT id, student_id, subject_code, inscription_date
        FROM subject_inscriptions WHERE student_id = $1 AND subject_code = $2`
	var inscription models.SubjectInscription
	if err := r.db.GetContext(ctx, &inscription, query, studentID, subjectCode); err != nil {
		return nil, err
	}
	return &inscription, nil
}

// ListByStudent returns the student's inscriptions with subject context.
func (r *SubjectInscriptionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.SubjectInscriptionDetail, error) {
	const query = `SELECT i.id, i.student_id, i.subject_code, i.inscription_date,
        s.name AS subject_name, s.year AS subject_year
        FROM subject_inscriptions i JOIN subjects s ON s.code = i.subject_code
        WHERE i.student_id = $1 ORDER BY i.subject_code`
	var inscriptions []models.SubjectInscriptionDetail
	if err := r.db.SelectContext(ctx, &inscriptions, query, studentID); err != nil {
		return nil, fmt.Errorf("list student inscriptions: %w", err)
	}
	return inscriptions, nil
}

// ListStudentIDsBySubject returns the ids of students enrolled in the subject.
func (r *SubjectInscriptionRepository) ListStudentIDsBySubject(ctx context.Context, subjectCode string) ([]string, error) {
	const query = `SELECT student_id FROM subject_inscriptions WHERE subject_code = $1 ORDER BY student_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, subjectCode); err != nil {
		return nil, fmt.Errorf("list subject students: %w", err)
	}
	return ids, nil
}

// CreateWithGrade persists the inscription together with its companion grade
// in a single transaction. The grade insert is get-or-create: a pre-existing
// (student, subject) grade is left untouched.
func (r *SubjectInscriptionRepository) CreateWithGrade(ctx context.Context, inscription *models.SubjectInscription, grade *models.Grade) error {
	if inscription.ID == "" {
		inscription.ID = uuid.NewString()
	}
	if inscription.InscriptionDate.IsZero() {
		inscription.InscriptionDate = time.Now().UTC()
	}
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if grade.LastUpdated.IsZero() {
		grade.LastUpdated = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertInscription = `INSERT INTO subject_inscriptions (id, student_id, subject_code, inscription_date)
        VALUES (:id, :student_id, :subject_code, :inscription_date)`
	if _, err := tx.NamedExecContext(ctx, insertInscription, inscription); err != nil {
		return translateConstraint(err)
	}

	const insertGrade = `INSERT INTO grades (id, student_id, subject_code, promotion_grade, final_grade, status, notes, last_updated)
        VALUES (:id, :student_id, :subject_code, :promotion_grade, :final_grade, :status, :notes, :last_updated)
        ON CONFLICT (student_id, subject_code) DO NOTHING`
	if _, err := tx.NamedExecContext(ctx, insertGrade, grade); err != nil {
		return fmt.Errorf("create companion grade: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment: %w", err)
	}
	return nil
}

// Delete removes an inscription by id.
func (r *SubjectInscriptionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subject_inscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subject inscription: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
