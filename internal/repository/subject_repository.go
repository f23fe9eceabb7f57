package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/academia-dev/academia-api/internal/models"
)

// SubjectRepository handles persistence of subjects and their professor roster.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns all subjects with career context ordered by code.
func (r *SubjectRepository) List(ctx context.Context) ([]models.SubjectDetail, error) {
	const query = `SELECT s.code, s.name, s.career_code, s.year, s.category, s.period, s.weekly_hours,
        s.description, s.created_at, s.updated_at, c.name AS career_name
        FROM subjects s JOIN careers c ON c.code = s.career_code ORDER BY s.code`
	var subjects []models.SubjectDetail
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ListByCareer returns the subjects in a career ordered by code.
func (r *SubjectRepository) ListByCareer(ctx context.Context, careerCode string) ([]models.Subject, error) {
	const query = `SELECT code, name, career_code, year, category, period, weekly_hours, description, created_at, updated_at
        FROM subjects WHERE career_code = $1 ORDER BY code`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, careerCode); err != nil {
		return nil, fmt.Errorf("list career subjects: %w", err)
	}
	return subjects, nil
}

// ListByProfessor returns the subjects assigned to a professor.
func (r *SubjectRepository) ListByProfessor(ctx context.Context, professorID string) ([]models.Subject, error) {
	const query = `SELECT s.code, s.name, s.career_code, s.year, s.category, s.period, s.weekly_hours,
        s.description, s.created_at, s.updated_at
        FROM subjects s JOIN subject_professors sp ON sp.subject_code = s.code
        WHERE sp.professor_id = $1 ORDER BY s.code`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, professorID); err != nil {
		return nil, fmt.Errorf("list professor subjects: %w", err)
	}
	return subjects, nil
}

// FindByCode returns a subject by its code.
func (r *SubjectRepository) FindByCode(ctx context.Context, code string) (*models.Subject, error) {
	const query = `SELECT code, name, career_code, year, category, period, weekly_hours, description, created_at, updated_at
        FROM subjects WHERE code = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, code); err != nil {
		return nil, err
	}
	return &subject, nil
}

// Create persists a new subject record.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now
	const query = `INSERT INTO subjects (code, name, career_code, year, category, period, weekly_hours, description, created_at, updated_at)
        VALUES (:code, :name, :career_code, :year, :category, :period, :weekly_hours, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update persists subject field changes.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET name = :name, career_code = :career_code, year = :year,
        category = :category, period = :period, weekly_hours = :weekly_hours, description = :description,
        updated_at = :updated_at WHERE code = :code`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Delete removes a subject. Grades and the professor roster cascade at the
// schema level; subject inscriptions are RESTRICT and guarded by the service.
func (r *SubjectRepository) Delete(ctx context.Context, code string) error {
	const query = `DELETE FROM subjects WHERE code = $1`
	if _, err := r.db.ExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}

// ListProfessorIDs returns the current professor roster for a subject.
func (r *SubjectRepository) ListProfessorIDs(ctx context.Context, code string) ([]string, error) {
	const query = `SELECT professor_id FROM subject_professors WHERE subject_code = $1 ORDER BY professor_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, code); err != nil {
		return nil, fmt.Errorf("list subject professors: %w", err)
	}
	return ids, nil
}

// ReplaceProfessors applies an add/remove delta to the subject roster as one
// atomic operation.
func (r *SubjectRepository) ReplaceProfessors(ctx context.Context, code string, add, remove []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin roster update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, professorID := range add {
		const insert = `INSERT INTO subject_professors (subject_code, professor_id)
            VALUES ($1, $2) ON CONFLICT (subject_code, professor_id) DO NOTHING`
		if _, err := tx.ExecContext(ctx, insert, code, professorID); err != nil {
			return fmt.Errorf("assign professor %s: %w", professorID, err)
		}
	}
	for _, professorID := range remove {
		const del = `DELETE FROM subject_professors WHERE subject_code = $1 AND professor_id = $2`
		if _, err := tx.ExecContext(ctx, del, code, professorID); err != nil {
			return fmt.Errorf("unassign professor %s: %w", professorID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit roster update: %w", err)
	}
	return nil
}
