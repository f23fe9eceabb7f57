package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/academia-dev/academia-api/internal/models"
)

// FacultyRepository handles persistence of faculties.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs the repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// List returns all faculties ordered by code.
func (r *FacultyRepository) List(ctx context.Context) ([]models.Faculty, error) {
	const query = `SELECT code, name, address, phone, email, website, dean, established_date, description, created_at, updated_at
        FROM faculties ORDER BY code`
	var faculties []models.Faculty
	if err := r.db.SelectContext(ctx, &faculties, query); err != nil {
		return nil, fmt.Errorf("list faculties: %w", err)
	}
	return faculties, nil
}

// FindByCode returns a faculty by its code.
func (r *FacultyRepository) FindByCode(ctx context.Context, code string) (*models.Faculty, error) {
	const query = `SELECT code, name, address, phone, email, website, dean, established_date, description, created_at, updated_at
        FROM faculties WHERE code = $1`
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, code); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// Create persists a new faculty record.
func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	now := time.Now().UTC()
	faculty.CreatedAt = now
	faculty.UpdatedAt = now
	const query = `INSERT INTO faculties (code, name, address, phone, email, website, dean, established_date, description, created_at, updated_at)
        VALUES (:code, :name, :address, :phone, :email, :website, :dean, :established_date, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, faculty); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create faculty: %w", err)
	}
	return nil
}

// Update persists descriptive field changes.
func (r *FacultyRepository) Update(ctx context.Context, faculty *models.Faculty) error {
	faculty.UpdatedAt = time.Now().UTC()
	const query = `UPDATE faculties SET name = :name, address = :address, phone = :phone, email = :email,
        website = :website, dean = :dean, established_date = :established_date, description = :description,
        updated_at = :updated_at WHERE code = :code`
	if _, err := r.db.NamedExecContext(ctx, query, faculty); err != nil {
		return fmt.Errorf("update faculty: %w", err)
	}
	return nil
}

// Delete removes a faculty. The FK from careers is RESTRICT so a concurrent
// career insert cannot orphan the guard check.
func (r *FacultyRepository) Delete(ctx context.Context, code string) error {
	const query = `DELETE FROM faculties WHERE code = $1`
	if _, err := r.db.ExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("delete faculty: %w", err)
	}
	return nil
}
