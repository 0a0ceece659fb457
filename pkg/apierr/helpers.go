package apierr

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// IsNotFound returns true if the error is or wraps pgx.ErrNoRows.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// From returns err as an *Error, or fallback(err) when it is not one.
func From(err error, fallback func(error) *Error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return fallback(err)
}
