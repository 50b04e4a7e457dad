package services

import (
	"errors"
	"fmt"

	"github.com/corequote/corequote/validation"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means the row does not exist or belongs to someone else.
	ErrNotFound = errors.New("not found")
	// ErrItemInUse is returned when deleting an item a live quote references.
	ErrItemInUse = errors.New("item is referenced by a quote")
	// ErrInvalidCredentials is returned by Authenticate for any mismatch.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError carries field-level errors back to the form.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	field, code, _ := e.Violations.First()
	return fmt.Sprintf("validation failed: %s: %s", field, code)
}

func invalid(v validation.Violations) error {
	return &ValidationError{Violations: v}
}

// AsValidation unwraps a *ValidationError.
func AsValidation(err error) (validation.Violations, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Violations, true
	}
	return nil, false
}

// notFound maps gorm's missing-row error onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// isUniqueViolation recognises a unique-index failure whether or not the
// dialector translated it.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
