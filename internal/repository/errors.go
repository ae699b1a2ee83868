package repository

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/welldanyogia/job-application-tracker/internal/errors"
)

// Common repository errors
var (
	ErrNotFound       = fmt.Errorf("record not found: %w", apperrors.ErrNotFound)
	ErrDuplicateEntry = fmt.Errorf("duplicate entry: %w", apperrors.ErrDuplicateEntry)

	// ErrDuplicateEmail means the email_id unique index rejected the insert
	ErrDuplicateEmail = fmt.Errorf("email already registered: %w", ErrDuplicateEntry)

	// ErrDuplicateID means the primary key rejected the insert
	ErrDuplicateID = fmt.Errorf("application id already taken: %w", ErrDuplicateEntry)
)

// isDuplicateKeyError checks if the error is a duplicate key violation
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "23505") // PostgreSQL unique violation code
}

// classifyDuplicate tells an email collision apart from an id collision.
// Postgres names the index (idx_applications_email_id); SQLite names the
// column (applications.email_id).
func classifyDuplicate(err error) error {
	if strings.Contains(err.Error(), "email_id") {
		return ErrDuplicateEmail
	}
	return ErrDuplicateID
}

// persistenceError wraps an unexpected database failure
func persistenceError(op string, err error) error {
	if errors.Is(err, apperrors.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, apperrors.ErrPersistence, err)
}
