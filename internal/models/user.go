package models

import (
	"fmt"
	"time"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdministrator UserRole = "ADMINISTRATOR"
	RoleProfessor     UserRole = "PROFESSOR"
	RoleStudent       UserRole = "STUDENT"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	DNI          string    `db:"dni" json:"dni"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Role         UserRole  `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// Profile is the role-specific profile attached to a user account.
// Exactly one of Student, Professor or Administrator is set, keyed by Role.
type Profile struct {
	Role          UserRole       `json:"role"`
	Student       *Student       `json:"student,omitempty"`
	Professor     *Professor     `json:"professor,omitempty"`
	Administrator *Administrator `json:"administrator,omitempty"`
}

// NewProfile builds the tagged profile union for a role, validating that the
// matching payload is present.
func NewProfile(role UserRole, student *Student, professor *Professor, admin *Administrator) (Profile, error) {
	switch role {
	case RoleStudent:
		if student == nil {
			return Profile{}, fmt.Errorf("student profile payload required for role %s", role)
		}
		return Profile{Role: role, Student: student}, nil
	case RoleProfessor:
		if professor == nil {
			return Profile{}, fmt.Errorf("professor profile payload required for role %s", role)
		}
		return Profile{Role: role, Professor: professor}, nil
	case RoleAdministrator:
		if admin == nil {
			return Profile{}, fmt.Errorf("administrator profile payload required for role %s", role)
		}
		return Profile{Role: role, Administrator: admin}, nil
	default:
		return Profile{}, fmt.Errorf("unknown role %q", role)
	}
}

// Administrator is the administrative staff profile linked to a user account.
type Administrator struct {
	AdminID   string    `db:"admin_id" json:"admin_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Area      string    `db:"area" json:"area"`
	HireDate  time.Time `db:"hire_date" json:"hire_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
