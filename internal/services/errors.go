package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors exposed at the service boundary. Handlers translate
// these to status codes; no caller ever inspects a driver error code.
var (
	// ErrNotFound covers both true absence and resources owned by
	// someone else, indistinguishably.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyVoted is the duplicate-vote outcome. The unique index on
	// (clash_id, device_fingerprint) is the sole enforcement point; this
	// error is the translated form of its violation.
	ErrAlreadyVoted = errors.New("already voted")

	// ErrExpired rejects votes for clashes past expiry or in a terminal status
	ErrExpired = errors.New("clash is no longer accepting votes")

	// ErrInvalidOption rejects votes for an option index outside the
	// clash's option list
	ErrInvalidOption = errors.New("invalid option")
)

// ValidationError reports a rejected input field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation reports whether err is a Postgres foreign-key
// violation (SQLSTATE 23503)
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// isNoRows reports whether err wraps a no-rows scan
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
