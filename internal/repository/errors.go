package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"service-booking/internal/apperr"
)

// IsDuplicate - signals that the error is a duplicate key violation.
func IsDuplicate(err error) bool {
	var pgerr *pgconn.PgError
	return errors.As(err, &pgerr) && pgerr.Code == "23505"
}

// IsForeignKey - signals that the error is a foreign key violation.
func IsForeignKey(err error) bool {
	var pgerr *pgconn.PgError
	return errors.As(err, &pgerr) && pgerr.Code == "23503"
}

// IsNotFound - signals that the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Constraint returns the name of the violated constraint, if any.
func Constraint(err error) string {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return pgerr.ConstraintName
	}
	return ""
}

// writeErr wraps err for op, translating unique violations to apperr.ErrConflict
// and foreign key violations to apperr.ErrNotFound.
func writeErr(op string, err error) error {
	switch {
	case IsDuplicate(err):
		return fmt.Errorf("%s: %w (%s)", op, apperr.ErrConflict, Constraint(err))
	case IsForeignKey(err):
		return fmt.Errorf("%s: %w (%s)", op, apperr.ErrNotFound, Constraint(err))
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
