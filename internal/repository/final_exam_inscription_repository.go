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

// FinalExamInscriptionRepository handles persistence of final exam registrations.
type FinalExamInscriptionRepository struct {
	db *sqlx.DB
}

// NewFinalExamInscriptionRepository constructs the repository.
func NewFinalExamInscriptionRepository(db *sqlx.DB) *FinalExamInscriptionRepository {
	return &FinalExamInscriptionRepository{db: db}
}

// Exists reports whether the student is already registered for the exam.
func (r *FinalExamInscriptionRepository) Exists(ctx context.Context, studentID, finalExamID string) (bool, error) {
	const query = `SELECT 1 FROM final_exam_inscriptions WHERE student_id = $1 AND final_exam_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, finalExamID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check final exam inscription: %w", err)
	}
	return true, nil
}

// ExistsByFinalExam reports whether any registration references the exam.
func (r *FinalExamInscriptionRepository) ExistsByFinalExam(ctx context.Context, finalExamID string) (bool, error) {
	const query = `SELECT 1 FROM final_exam_inscriptions WHERE final_exam_id = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, finalExamID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check final exam inscriptions: %w", err)
	}
	return true, nil
}

// FindByStudentAndExam returns the registration for a (student, exam) pair.
func (r *FinalExamInscriptionRepository) FindByStudentAndExam(ctx context.Context, studentID, finalExamID string) (*models.FinalExamInscription, error) {
	const query = `SELECT id, student_id, final_exam_id, inscription_date
        FROM final_exam_inscriptions WHERE student_id = $1 AND final_exam_id = $2`
	var inscription models.FinalExamInscription
	if err := r.db.GetContext(ctx, &inscription, query, studentID, finalExamID); err != nil {
		return nil, err
	}
	return &inscription, nil
}

// ListByStudent returns the student's registrations ordered by exam date.
func (r *FinalExamInscriptionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.FinalExamInscriptionDetail, error) {
	const query = `SELECT i.id, i.student_id, i.final_exam_id, i.inscription_date,
        f.subject_code, s.name AS subject_name, f.date AS exam_date,
        u.last_name || ', ' || u.first_name AS student_name
        FROM final_exam_inscriptions i
        JOIN final_exams f ON f.id = i.final_exam_id
        JOIN subjects s ON s.code = f.subject_code
        JOIN students st ON st.student_id = i.student_id
        JOIN users u ON u.id = st.user_id
        WHERE i.student_id = $1 ORDER BY f.date`
	var inscriptions []models.FinalExamInscriptionDetail
	if err := r.db.SelectContext(ctx, &inscriptions, query, studentID); err != nil {
		return nil, fmt.Errorf("list student final inscriptions: %w", err)
	}
	return inscriptions, nil
}

// ListByFinalExam returns the registrations for one exam session ordered by
// student name.
func (r *FinalExamInscriptionRepository) ListByFinalExam(ctx context.Context, finalExamID string) ([]models.FinalExamInscriptionDetail, error) {
	const query = `SELECT i.id, i.student_id, i.final_exam_id, i.inscription_date,
        f.subject_code, s.name AS subject_name, f.date AS exam_date,
        u.last_name || ', ' || u.first_name AS student_name
        FROM final_exam_inscriptions i
        JOIN final_exams f ON f.id = i.final_exam_id
        JOIN subjects s ON s.code = f.subject_code
        JOIN students st ON st.student_id = i.student_id
        JOIN users u ON u.id = st.user_id
        WHERE i.final_exam_id = $1 ORDER BY u.last_name, u.first_name`
	var inscriptions []models.FinalExamInscriptionDetail
	if err := r.db.SelectContext(ctx, &inscriptions, query, finalExamID); err != nil {
		return nil, fmt.Errorf("list final exam inscriptions: %w", err)
	}
	return inscriptions, nil
}

// ListFinalExamIDsByStudent returns the ids of exams the student registered for.
func (r *FinalExamInscriptionRepository) ListFinalExamIDsByStudent(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT final_exam_id FROM final_exam_inscriptions WHERE student_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, fmt.Errorf("list student final exam ids: %w", err)
	}
	return ids, nil
}

// Create persists a new registration as a single write.
func (r *FinalExamInscriptionRepository) Create(ctx context.Context, inscription *models.FinalExamInscription) error {
	if inscription.ID == "" {
		inscription.ID = uuid.NewString()
	}
	if inscription.InscriptionDate.IsZero() {
		inscription.InscriptionDate = time.Now().UTC()
	}
	const query = `INSERT INTO final_exam_inscriptions (id, student_id, final_exam_id, inscription_date)
        VALUES (:id, :student_id, :final_exam_id, :inscription_date)`
	if _, err := r.db.NamedExecContext(ctx, query, inscription); err != nil {
		return translateConstraint(err)
	}
	return nil
}

// Delete removes a registration by id.
func (r *FinalExamInscriptionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM final_exam_inscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete final exam inscription: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
