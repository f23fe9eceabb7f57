package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/academia-dev/academia-api/internal/models"
)

// CareerRepository handles persistence of careers.
type CareerRepository struct {
	db *sqlx.DB
}

// NewCareerRepository constructs the repository.
func NewCareerRepository(db *sqlx.DB) *CareerRepository {
	return &CareerRepository{db: db}
}

// List returns all careers with faculty context ordered by code.
func (r *CareerRepository) List(ctx context.Context) ([]models.CareerDetail, error) {
	const query = `SELECT c.code, c.name, c.faculty_code, c.director, c.duration_years, c.description,
        c.created_at, c.updated_at, f.name AS faculty_name
        FROM careers c JOIN faculties f ON f.code = c.faculty_code ORDER BY c.code`
	var careers []models.CareerDetail
	if err := r.db.SelectContext(ctx, &careers, query); err != nil {
		return nil, fmt.Errorf("list careers: %w", err)
	}
	return careers, nil
}

// ListByFaculty returns careers owned by a faculty.
func (r *CareerRepository) ListByFaculty(ctx context.Context, facultyCode string) ([]models.Career, error) {
	const query = `SELECT code, name, faculty_code, director, duration_years, description, created_at, updated_at
        FROM careers WHERE faculty_code = $1 ORDER BY code`
	var careers []models.Career
	if err := r.db.SelectContext(ctx, &careers, query, facultyCode); err != nil {
		return nil, fmt.Errorf("list faculty careers: %w", err)
	}
	return careers, nil
}

// ExistsByFaculty reports whether any career references the faculty.
func (r *CareerRepository) ExistsByFaculty(ctx context.Context, facultyCode string) (bool, error) {
	const query = `SELECT 1 FROM careers WHERE faculty_code = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, facultyCode); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check faculty careers: %w", err)
	}
	return true, nil
}

// FindByCode returns a career by its code.
func (r *CareerRepository) FindByCode(ctx context.Context, code string) (*models.Career, error) {
	const query = `SELECT code, name, faculty_code, director, duration_years, description, created_at, updated_at
        FROM careers WHERE code = $1`
	var career models.Career
	if err := r.db.GetContext(ctx, &career, query, code); err != nil {
		return nil, err
	}
	return &career, nil
}

// Create persists a new career record.
func (r *CareerRepository) Create(ctx context.Context, career *models.Career) error {
	now := time.Now().UTC()
	career.CreatedAt = now
	career.UpdatedAt = now
	const query = `INSERT INTO careers (code, name, faculty_code, director, duration_years, description, created_at, updated_at)
        VALUES (:code, :name, :faculty_code, :director, :duration_years, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, career); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create career: %w", err)
	}
	return nil
}

// Update persists career field changes.
func (r *CareerRepository) Update(ctx context.Context, career *models.Career) error {
	career.UpdatedAt = time.Now().UTC()
	const query = `UPDATE careers SET name = :name, faculty_code = :faculty_code, director = :director,
        duration_years = :duration_years, description = :description, updated_at = :updated_at
        WHERE code = :code`
	if _, err := r.db.NamedExecContext(ctx, query, career); err != nil {
		return fmt.Errorf("update career: %w", err)
	}
	return nil
}

// Delete removes a career. Students reference careers with ON DELETE RESTRICT
// as the storage-level backstop for the deletion guard.
func (r *CareerRepository) Delete(ctx context.Context, code string) error {
	const query = `DELETE FROM careers WHERE code = $1`
	if _, err := r.db.ExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("delete career: %w", err)
	}
	return nil
}
