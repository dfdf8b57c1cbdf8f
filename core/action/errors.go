package action

import (
	"errors"
	"fmt"
	"strings"
)

// Routing sentinels, matched with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrNotAllowed = errors.New("method not allowed")
	ErrFrozen     = errors.New("router is frozen")
	ErrDuplicate  = errors.New("action registered twice")
	ErrForbidden  = errors.New("forbidden")
)

// NotFoundError reports that nothing is registered for a path.
type NotFoundError struct {
	Method string
	Path   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, ErrNotFound)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotAllowedError reports that the path exists but not for the method.
// Allowed lists the registered methods in the fixed method order.
type NotAllowedError struct {
	Method  string
	Path    string
	Allowed []string
}

func (e *NotAllowedError) Error() string {
	return fmt.Sprintf("%s %s: %v (allowed: %s)", e.Method, e.Path, ErrNotAllowed, strings.Join(e.Allowed, ", "))
}

// Is matches ErrNotAllowed.
func (e *NotAllowedError) Is(target error) bool {
	return target == ErrNotAllowed
}
