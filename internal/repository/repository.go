package repository

import (
	"errors"

	"amora-backend/internal/apperrors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-constraint violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// storeErr classifies a store failure as transient so callers can decide
// to retry only on this class.
func storeErr(msg string, err error) error {
	return apperrors.Unavailable(msg, err)
}
