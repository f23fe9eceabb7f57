package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/academia-dev/academia-api/internal/models"
)

// UserRepository handles persistence of user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, dni, phone, role, active, created_at, updated_at`

// FindByEmail returns a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateWithProfile persists a user account together with its role profile in
// a single transaction. At most one of student and professor is non-nil; both
// nil means an administrator account with no companion record. A failed
// profile insert rolls the account back as well.
func (r *UserRepository) CreateWithProfile(ctx context.Context, user *models.User, student *models.Student, professor *models.Professor) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registration: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertUser = `INSERT INTO users (id, email, password_hash, first_name, last_name, dni, phone, role, active, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :first_name, :last_name, :dni, :phone, :role, :active, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertUser, user); err != nil {
		return translateConstraint(err)
	}

	switch {
	case student != nil:
		student.UserID = user.ID
		if student.CreatedAt.IsZero() {
			student.CreatedAt = now
		}
		const insertStudent = `INSERT INTO students (student_id, user_id, career_code, enrollment_date, created_at)
            VALUES (:student_id, :user_id, :career_code, :enrollment_date, :created_at)`
		if _, err := tx.NamedExecContext(ctx, insertStudent, student); err != nil {
			return translateConstraint(err)
		}
	case professor != nil:
		professor.UserID = user.ID
		if professor.CreatedAt.IsZero() {
			professor.CreatedAt = now
		}
		const insertProfessor = `INSERT INTO professors (professor_id, user_id, degree, hire_date, category, created_at)
            VALUES (:professor_id, :user_id, :degree, :hire_date, :category, :created_at)`
		if _, err := tx.NamedExecContext(ctx, insertProfessor, professor); err != nil {
			return translateConstraint(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit registration: %w", err)
	}
	return nil
}
