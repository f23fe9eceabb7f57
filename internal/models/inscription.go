package models

import "time"

// SubjectInscription records a student's enrollment in a subject's coursework.
// Unique per (student, subject).
type SubjectInscription struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	SubjectCode     string    `db:"subject_code" json:"subject_code"`
	InscriptionDate time.Time `db:"inscription_date" json:"inscription_date"`
}

// SubjectInscriptionDetail includes subject context for dashboards.
type SubjectInscriptionDetail struct {
	SubjectInscription
	SubjectName string `db:"subject_name" json:"subject_name"`
	SubjectYear int    `db:"subject_year" json:"subject_year"`
}

// FinalExamInscription records a student's registration for a final exam
// session. Unique per (student, final exam).
type FinalExamInscription struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	FinalExamID     string    `db:"final_exam_id" json:"final_exam_id"`
	InscriptionDate time.Time `db:"inscription_date" json:"inscription_date"`
}

// FinalExamInscriptionDetail includes exam and student context.
type FinalExamInscriptionDetail struct {
	FinalExamInscription
	SubjectCode string    `db:"subject_code" json:"subject_code"`
	SubjectName string    `db:"subject_name" json:"subject_name"`
	ExamDate    time.Time `db:"exam_date" json:"exam_date"`
	StudentName string    `db:"student_name" json:"student_name"`
}
