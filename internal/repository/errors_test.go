package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_journal_entry_lines_entry_number"}

	err := translateError(pgErr)

	assert.ErrorIs(t, err, ErrConflict)
	var got *pgconn.PgError
	assert.True(t, errors.As(err, &got))
	assert.Equal(t, pgErr.ConstraintName, got.ConstraintName)
}

func TestTranslateError_WrappedUniqueViolation(t *testing.T) {
	err := translateError(fmt.Errorf("save line: %w", &pgconn.PgError{Code: "23505"}))

	assert.ErrorIs(t, err, ErrConflict)
}

func TestTranslateError_PassesOtherErrors(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503"}

	assert.Same(t, fk, translateError(fk))
	assert.Equal(t, gorm.ErrRecordNotFound, translateError(gorm.ErrRecordNotFound))
	assert.NoError(t, translateError(nil))
	assert.False(t, errors.Is(translateError(fk), ErrConflict))
}

func TestIsDuplicateKeyError_Constraint(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "accounts_code_key"}

	assert.True(t, isDuplicateKeyError(pgErr, ""))
	assert.True(t, isDuplicateKeyError(pgErr, "accounts_code_key"))
	assert.False(t, isDuplicateKeyError(pgErr, "users_email_key"))
	assert.False(t, isDuplicateKeyError(errors.New("23505"), ""))
}
