package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConflict is returned when a write violates a unique constraint
var ErrConflict = errors.New("unique constraint violation")

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// isDuplicateKeyError reports whether err is a unique violation.
// An empty constraintName matches any constraint.
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation && (constraintName == "" || pgErr.ConstraintName == constraintName)
	}
	return false
}

// translateError maps driver errors to repository errors
func translateError(err error) error {
	if isDuplicateKeyError(err, "") {
		return errors.Join(ErrConflict, err)
	}
	return err
}
