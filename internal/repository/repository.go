package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate reports a uniqueness-constraint violation, typically a
// concurrent duplicate insert on a unique-together pair. Get-or-create
// callers treat it as "already exists"; explicit creates surface it as a
// conflict.
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode
	}
	return false
}

// translateConstraint maps driver uniqueness failures onto ErrDuplicate so
// services never depend on lib/pq directly.
func translateConstraint(err error) error {
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}
