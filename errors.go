package insighthub

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound is returned when a requested record does not exist or is
	// not visible to the caller (for example an unpublished post).
	ErrNotFound = errors.New("not found")

	// ErrDuplicateSlug is returned when a post or category slug is taken.
	ErrDuplicateSlug = &ValidationError{Field: "slug", Message: "slug is already in use"}
)

// ValidationError is a caller mistake: a missing field, a malformed value,
// or a duplicate unique key. It maps to a 4xx response.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StoreError wraps an unexpected persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// storeErr classifies a driver error: no rows becomes ErrNotFound, anything
// else becomes a StoreError tagged with op. Already classified errors pass
// through unchanged.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var se *StoreError
	if errors.Is(err, ErrNotFound) || IsValidation(err) || errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// validationFromTags converts validator field errors into a ValidationError
// naming the first offending field.
func validationFromTags(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return invalid(field, field+" is required")
	case "email", "mailbox":
		return invalid(field, "Invalid email format")
	case "imgref":
		return invalid(field, field+" must be a URL or a path starting with /")
	case "max":
		return invalid(field, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	default:
		return invalid(field, field+" is invalid")
	}
}
