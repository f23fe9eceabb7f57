package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/academia-dev/academia-api/internal/models"
)

// ProfessorRepository handles persistence of professor profiles.
type ProfessorRepository struct {
	db *sqlx.DB
}

// NewProfessorRepository constructs the repository.
func NewProfessorRepository(db *sqlx.DB) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

// List returns all professors with identity context for assignment forms.
func (r *ProfessorRepository) List(ctx context.Context) ([]models.ProfessorDetail, error) {
	const query = `SELECT p.professor_id, p.user_id, p.degree, p.hire_date, p.category, p.created_at,
        u.first_name, u.last_name, u.email, u.active
        FROM professors p JOIN users u ON u.id = p.user_id
        ORDER BY u.last_name, u.first_name`
	var professors []models.ProfessorDetail
	if err := r.db.SelectContext(ctx, &professors, query); err != nil {
		return nil, fmt.Errorf("list professors: %w", err)
	}
	return professors, nil
}

// FindByID returns a professor by professor id.
func (r *ProfessorRepository) FindByID(ctx context.Context, professorID string) (*models.Professor, error) {
	const query = `SELECT professor_id, user_id, degree, hire_date, category, created_at FROM professors WHERE professor_id = $1`
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, professorID); err != nil {
		return nil, err
	}
	return &professor, nil
}

// FindByUserID returns the professor profile owned by a user account.
func (r *ProfessorRepository) FindByUserID(ctx context.Context, userID string) (*models.Professor, error) {
	const query = `SELECT professor_id, user_id, degree, hire_date, category, created_at FROM professors WHERE user_id = $1`
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, userID); err != nil {
		return nil, err
	}
	return &professor, nil
}
