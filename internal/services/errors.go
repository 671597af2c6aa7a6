package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ─── Error Kinds ──────────────────────────────────────────────────────────────

var (
	// ErrValidation marks a missing or malformed field. Its message is shown
	// to the user verbatim.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an unknown ISBN, author, address, payment method or order.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a request that clashes with current state, such as
	// insufficient stock at checkout or a duplicate ISBN.
	ErrConflict = errors.New("conflict")

	// ErrIntegrity marks a deletion blocked by existing history.
	ErrIntegrity = errors.New("integrity violation")
)

// Error is a user-facing failure of one of the four kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func validationErrorf(format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundErrorf(format string, args ...interface{}) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictErrorf(format string, args ...interface{}) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func integrityErrorf(format string, args ...interface{}) error {
	return &Error{Kind: ErrIntegrity, Message: fmt.Sprintf(format, args...)}
}

// isUniqueViolation reports a duplicate-key failure from either dialector.
// PostgreSQL error code 23505 = unique_violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation reports a row still referenced elsewhere.
// PostgreSQL error code 23503 = foreign_key_violation.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
