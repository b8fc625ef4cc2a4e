package db

import "strings"

// IsUniqueViolation reports whether the provided error is a unique violation.
// On Postgres the message names the constraint, so constraintName matches
// precisely. The sqlite test driver names the columns instead, so there any
// unique violation matches; callers issue one candidate constraint per
// statement, which keeps that safe.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	postgres := strings.Contains(msg, "duplicate key value")
	sqlite := strings.Contains(msg, "UNIQUE constraint failed")
	if !postgres && !sqlite {
		return false
	}
	if constraintName == "" || sqlite {
		return true
	}
	return strings.Contains(msg, constraintName)
}
