package models

import "time"

// SubjectCategory classifies a subject within the curriculum.
type SubjectCategory string

const (
	CategoryObligatory SubjectCategory = "OBLIGATORY"
	CategoryElective   SubjectCategory = "ELECTIVE"
)

// SubjectPeriod is the academic period in which a subject is taught.
type SubjectPeriod string

const (
	PeriodFirst  SubjectPeriod = "FIRST"
	PeriodSecond SubjectPeriod = "SECOND"
	PeriodAnnual SubjectPeriod = "ANNUAL"
)

// Subject represents a course within a career's curriculum.
type Subject struct {
	Code        string          `db:"code" json:"code"`
	Name        string          `db:"name" json:"name"`
	CareerCode  string          `db:"career_code" json:"career_code"`
	Year        int             `db:"year" json:"year"`
	Category    SubjectCategory `db:"category" json:"category"`
	Period      SubjectPeriod   `db:"period" json:"period"`
	WeeklyHours int             `db:"weekly_hours" json:"weekly_hours"`
	Description *string         `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// SubjectDetail enriches a subject with career context.
type SubjectDetail struct {
	Subject
	CareerName string `db:"career_name" json:"career_name"`
}
