package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/academia-dev/academia-api/internal/models"
)

// FinalExamRepository handles persistence of final exam sessions and their
// professor roster.
type FinalExamRepository struct {
	db *sqlx.DB
}

// NewFinalExamRepository constructs the repository.
func NewFinalExamRepository(db *sqlx.DB) *FinalExamRepository {
	return &FinalExamRepository{db: db}
}

const finalExamDetailColumns = `f.id, f.subject_code, f.date, f.location, f.duration_minutes, f.call_number,
        f.notes, f.created_at, s.name AS subject_name, s.career_code`

// List returns all final exams with subject context, soonest first.
func (r *FinalExamRepository) List(ctx context.Context) ([]models.FinalExamDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM final_exams f JOIN subjects s ON s.code = f.subject_code
        ORDER BY f.date, f.call_number`, finalExamDetailColumns)
	var exams []models.FinalExamDetail
	if err := r.db.SelectContext(ctx, &exams, query); err != nil {
		return nil, fmt.Errorf("list final exams: %w", err)
	}
	return exams, nil
}

// FindByID returns a final exam by id.
func (r *FinalExamRepository) FindByID(ctx context.Context, id string) (*models.FinalExam, error) {
	const query = `SELECT id, subject_code, date, location, duration_minutes, call_number, notes, created_at
        FROM final_exams WHERE id = $1`
	var exam models.FinalExam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// ListBySubject returns final exams for one subject ordered by date.
func (r *FinalExamRepository) ListBySubject(ctx context.Context, subjectCode string) ([]models.FinalExamDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM final_exams f JOIN subjects s ON s.code = f.subject_code
        WHERE f.subject_code = $1 ORDER BY f.date, f.call_number`, finalExamDetailColumns)
	var exams []models.FinalExamDetail
	if err := r.db.SelectContext(ctx, &exams, query, subjectCode); err != nil {
		return nil, fmt.Errorf("list subject final exams: %w", err)
	}
	return exams, nil
}

// ListBySubjectCodes returns final exams whose subject is in the given set,
// ordered by date then call number.
func (r *FinalExamRepository) ListBySubjectCodes(ctx context.Context, subjectCodes []string) ([]models.FinalExamDetail, error) {
	if len(subjectCodes) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(subjectCodes))
	args := make([]interface{}, len(subjectCodes))
	for i, code := range subjectCodes {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = code
	}
	query := fmt.Sprintf(`SELECT %s FROM final_exams f JOIN subjects s ON s.code = f.subject_code
        WHERE f.subject_code IN (%s) ORDER BY f.date, f.call_number`,
		finalExamDetailColumns, strings.Join(placeholders, ","))
	var exams []models.FinalExamDetail
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, fmt.Errorf("list final exams by subjects: %w", err)
	}
	return exams, nil
}

// ListByProfessor returns final exams assigned to a professor.
func (r *FinalExamRepository) ListByProfessor(ctx context.Context, professorID string) ([]models.FinalExamDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM final_exams f
        JOIN subjects s ON s.code = f.subject_code
        JOIN final_exam_professors fp ON fp.final_exam_id = f.id
        WHERE fp.professor_id = $1 ORDER BY f.date, f.call_number`, finalExamDetailColumns)
	var exams []models.FinalExamDetail
	if err := r.db.SelectContext(ctx, &exams, query, professorID); err != nil {
		return nil, fmt.Errorf("list professor final exams: %w", err)
	}
	return exams, nil
}

// Create persists a new final exam session.
func (r *FinalExamRepository) Create(ctx context.Context, exam *models.FinalExam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO final_exams (id, subject_code, date, location, duration_minutes, call_number, notes, created_at)
        VALUES (:id, :subject_code, :date, :location, :duration_minutes, :call_number, :notes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create final exam: %w", err)
	}
	return nil
}

// Update persists session field changes.
func (r *FinalExamRepository) Update(ctx context.Context, exam *models.FinalExam) error {
	const query = `UPDATE final_exams SET subject_code = :subject_code, date = :date, location = :location,
        duration_minutes = :duration_minutes, call_number = :call_number, notes = :notes WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("update final exam: %w", err)
	}
	return nil
}

// Delete removes a final exam. Inscriptions reference exams with ON DELETE
// RESTRICT as the storage-level backstop for the deletion guard.
func (r *FinalExamRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM final_exams WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete final exam: %w", err)
	}
	return nil
}

// ListProfessorIDs returns the current professor roster for a final exam.
func (r *FinalExamRepository) ListProfessorIDs(ctx context.Context, id string) ([]string, error) {
	const query = `SELECT professor_id FROM final_exam_professors WHERE final_exam_id = $1 ORDER BY professor_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, id); err != nil {
		return nil, fmt.Errorf("list final exam professors: %w", err)
	}
	return ids, nil
}

// ReplaceProfessors applies an add/remove delta to the exam roster as one
// atomic operation.
func (r *FinalExamRepository) ReplaceProfessors(ctx context.Context, id string, add, remove []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin roster update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, professorID := range add {
		const insert = `INSERT INTO final_exam_professors (final_exam_id, professor_id)
            VALUES ($1, $2) ON CONFLICT (final_exam_id, professor_id) DO NOTHING`
		if _, err := tx.ExecContext(ctx, insert, id, professorID); err != nil {
			return fmt.Errorf("assign professor %s: %w", professorID, err)
		}
	}
	for _, professorID := range remove {
		const del = `DELETE FROM final_exam_professors WHERE final_exam_id = $1 AND professor_id = $2`
		if _, err := tx.ExecContext(ctx, del, id, professorID); err != nil {
			return fmt.Errorf("unassign professor %s: %w", professorID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit roster update: %w", err)
	}
	return nil
}
