package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/academia-dev/academia-api/internal/models"
)

// StudentRepository handles persistence of student profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentDetailColumns = `s.student_id, s.user_id, s.career_code, s.enrollment_date, s.created_at,
        u.first_name, u.last_name, u.email, u.dni, u.active, c.name AS career_name`

// List returns students with identity context filtered by the provided criteria.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	base := `FROM students s
JOIN users u ON u.id = s.user_id
LEFT JOIN careers c ON c.code = s.career_code`
	var conditions []string
	var args []interface{}

	if filter.CareerCode != "" {
		conditions = append(conditions, fmt.Sprintf("s.career_code = $%d", len(args)+1))
		args = append(args, filter.CareerCode)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(u.first_name ILIKE $%d OR u.last_name ILIKE $%d OR s.student_id ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s %s ORDER BY u.last_name, u.first_name LIMIT %d OFFSET %d`,
		studentDetailColumns, base+clause, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID returns a student by student id.
func (r *StudentRepository) FindByID(ctx context.Context, studentID string) (*models.Student, error) {
	const query = `SELECT student_id, user_id, career_code, enrollment_date, created_at FROM students WHERE student_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, studentID); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindDetailByID returns a student with identity and career context.
func (r *StudentRepository) FindDetailByID(ctx context.Context, studentID string) (*models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM students s
        JOIN users u ON u.id = s.user_id
        LEFT JOIN careers c ON c.code = s.career_code
        WHERE s.student_id = $1`, studentDetailColumns)
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, studentID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByUserID returns the student profile owned by a user account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT student_id, user_id, career_code, enrollment_date, created_at FROM students WHERE user_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByCareer reports whether any student references the career.
func (r *StudentRepository) ExistsByCareer(ctx context.Context, careerCode string) (bool, error) {
	const query = `SELECT 1 FROM students WHERE career_code = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, careerCode); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check career students: %w", err)
	}
	return true, nil
}

// Update persists career assignment and enrollment date changes.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET career_code = :career_code, enrollment_date = :enrollment_date
        WHERE student_id = :student_id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}
