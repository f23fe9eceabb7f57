package models

import "time"

// Career represents a degree program owned by a faculty.
type Career struct {
	Code          string    `db:"code" json:"code"`
	Name          string    `db:"name" json:"name"`
	FacultyCode   string    `db:"faculty_code" json:"faculty_code"`
	Director      string    `db:"director" json:"director"`
	DurationYears int       `db:"duration_years" json:"duration_years"`
	Description   *string   `db:"description" json:"description,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// CareerDetail enriches a career with its faculty name.
type CareerDetail struct {
	Career
	FacultyName string `db:"faculty_name" json:"faculty_name"`
}
