package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GradeStatus is the academic status of a student for a subject.
type GradeStatus string

const (
	// StatusFree means no final grade has been recorded yet.
	StatusFree GradeStatus = "FREE"
	// StatusRegular means a final grade below the passing threshold exists.
	StatusRegular GradeStatus = "REGULAR"
	// StatusPromoted means the subject was passed.
	StatusPromoted GradeStatus = "PROMOTED"
)

// PassingGrade is the promotion threshold, inclusive. Grade values are
// fixed-point with two decimal places, so comparisons are exact.
var PassingGrade = decimal.RequireFromString("6.00")

// Grade tracks a student's recorded performance and derived status for one
// subject. Unique per (student, subject).
type Grade struct {
	ID             string              `db:"id" json:"id"`
	StudentID      string              `db:"student_id" json:"student_id"`
	SubjectCode    string              `db:"subject_code" json:"subject_code"`
	PromotionGrade decimal.NullDecimal `db:"promotion_grade" json:"promotion_grade"`
	FinalGrade     decimal.NullDecimal `db:"final_grade" json:"final_grade"`
	Status         GradeStatus         `db:"status" json:"status"`
	Notes          *string             `db:"notes" json:"notes,omitempty"`
	LastUpdated    time.Time           `db:"last_updated" json:"last_updated"`
}

// DerivedStatus computes the status implied by the current final grade.
// PromotionGrade is informational only and never affects the result.
func (g Grade) DerivedStatus() GradeStatus {
	if !g.FinalGrade.Valid {
		return StatusFree
	}
	if g.FinalGrade.Decimal.GreaterThanOrEqual(PassingGrade) {
		return StatusPromoted
	}
	return StatusRegular
}

// GradeDetail includes student identity for roster views.
type GradeDetail struct {
	Grade
	StudentFirstName string `db:"student_first_name" json:"student_first_name"`
	StudentLastName  string `db:"student_last_name" json:"student_last_name"`
}
