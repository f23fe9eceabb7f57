package models

import "time"

// Student is the learner profile linked one-to-one with a user account.
// CareerCode is nullable: a student may exist before being assigned a program.
type Student struct {
	StudentID      string    `db:"student_id" json:"student_id"`
	UserID         string    `db:"user_id" json:"user_id"`
	CareerCode     *string   `db:"career_code" json:"career_code,omitempty"`
	EnrollmentDate time.Time `db:"enrollment_date" json:"enrollment_date"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// StudentDetail includes user identity and career context.
type StudentDetail struct {
	Student
	FirstName  string  `db:"first_name" json:"first_name"`
	LastName   string  `db:"last_name" json:"last_name"`
	Email      string  `db:"email" json:"email"`
	DNI        string  `db:"dni" json:"dni"`
	Active     bool    `db:"active" json:"active"`
	CareerName *string `db:"career_name" json:"career_name,omitempty"`
}

// StudentFilter encapsulates search parameters for listing students.
type StudentFilter struct {
	CareerCode string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
