package models

import "time"

// ProfessorCategory describes the teaching appointment category.
type ProfessorCategory string

const (
	CategoryTitular  ProfessorCategory = "TITULAR"
	CategoryAdjunct  ProfessorCategory = "ADJUNCT"
	CategoryAuxiliar ProfessorCategory = "AUXILIAR"
)

// Professor is the teaching staff profile linked one-to-one with a user account.
// Subject and final-exam assignments live in join tables managed by the
// assignment reconciler.
type Professor struct {
	ProfessorID string            `db:"professor_id" json:"professor_id"`
	UserID      string            `db:"user_id" json:"user_id"`
	Degree      string            `db:"degree" json:"degree"`
	HireDate    time.Time         `db:"hire_date" json:"hire_date"`
	Category    ProfessorCategory `db:"category" json:"category"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}

// ProfessorDetail includes user identity fields for rosters and forms.
type ProfessorDetail struct {
	Professor
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	Active    bool   `db:"active" json:"active"`
}
