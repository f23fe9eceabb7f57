package models

import "time"

// FinalExam is a final exam call (session) for a subject.
type FinalExam struct {
	ID              string    `db:"id" json:"id"`
	SubjectCode     string    `db:"subject_code" json:"subject_code"`
	Date            time.Time `db:"date" json:"date"`
	Location        string    `db:"location" json:"location"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	CallNumber      int       `db:"call_number" json:"call_number"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// FinalExamDetail enriches a final exam with subject context.
type FinalExamDetail struct {
	FinalExam
	SubjectName string `db:"subject_name" json:"subject_name"`
	CareerCode  string `db:"career_code" json:"career_code"`
}
