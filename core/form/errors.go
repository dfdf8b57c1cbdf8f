package form

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by ValidationError.Is.
var (
	ErrMissingField        = errors.New("missing required field")
	ErrTypeMismatch        = errors.New("field type mismatch")
	ErrConstraintViolation = errors.New("field constraint violation")
)

// ErrorKind classifies a validation failure.
type ErrorKind int

const (
	// KindMissingField means a required key was absent.
	KindMissingField ErrorKind = iota + 1

	// KindTypeMismatch means a key held a value of the wrong runtime type.
	KindTypeMismatch

	// KindConstraintViolation means a well-typed value failed a declared constraint.
	KindConstraintViolation
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindMissingField:
		return "missing_field"
	case KindTypeMismatch:
		return "type_mismatch"
	case KindConstraintViolation:
		return "constraint_violation"
	default:
		return "unknown"
	}
}

// ValidationError is the structured failure returned by Form.Build.
type ValidationError struct {
	Kind ErrorKind

	// Key is the offending body key.
	Key string

	// Expected is the declared type of the key.
	Expected FieldType

	// Constraint is the validator tag that failed (constraint violations only).
	Constraint string

	// Err is the underlying parse or validator error, if any.
	Err error
}

// MissingField builds a missing-field error.
func MissingField(key string, expected FieldType) *ValidationError {
	return &ValidationError{Kind: KindMissingField, Key: key, Expected: expected}
}

// TypeMismatch builds a type-mismatch error.
func TypeMismatch(key string, expected FieldType) *ValidationError {
	return &ValidationError{Kind: KindTypeMismatch, Key: key, Expected: expected}
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindMissingField:
		return fmt.Sprintf("field %q is required", e.Key)
	case KindTypeMismatch:
		return fmt.Sprintf("field %q must be of type %s", e.Key, e.Expected)
	case KindConstraintViolation:
		return fmt.Sprintf("field %q violates constraint %q", e.Key, e.Constraint)
	default:
		return fmt.Sprintf("field %q is invalid", e.Key)
	}
}

// Is reports whether target is the sentinel for this error's kind.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrMissingField:
		return e.Kind == KindMissingField
	case ErrTypeMismatch:
		return e.Kind == KindTypeMismatch
	case ErrConstraintViolation:
		return e.Kind == KindConstraintViolation
	}
	return false
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
