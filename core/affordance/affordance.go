// Package affordance computes the operations a caller may currently invoke
// on a resource path.
package affordance

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/artpar/hyperapi/core/action"
	"github.com/artpar/hyperapi/core/convention"
	"github.com/artpar/hyperapi/core/form"
)

// Label returns the conventional operation label for an HTTP method.
func Label(method string) string {
	switch method {
	case http.MethodGet:
		return "Retrieve"
	case http.MethodPost:
		return "Create"
	case http.MethodPut:
		return "Replace"
	case http.MethodPatch:
		return "Update"
	case http.MethodDelete:
		return "Delete"
	default:
		return method
	}
}

// Operation is one permitted action on a resource.
type Operation struct {
	Name         string
	Label        string
	Method       string
	Resource     string
	IsCollection bool

	// Form describes the expected body, nil when none is accepted.
	Form form.Schema
}

// Resolver computes operations from the action router.
type Resolver struct {
	router *action.Router
	logger zerolog.Logger
}

// NewResolver creates a resolver over router.
func NewResolver(router *action.Router, logger zerolog.Logger) *Resolver {
	return &Resolver{router: router, logger: logger}
}

// ComputeOperations returns the operations registered for the path given by
// segments that the credentials permit, in the fixed method order. Methods
// with no registration are skipped; operations whose permission fails are
// omitted.
func (r *Resolver) ComputeOperations(ctx context.Context, creds action.Credentials, segments ...string) []Operation {
	if len(segments) == 0 {
		return nil
	}

	resource := segments[0]
	if len(segments) >= 3 {
		resource = segments[2]
	}

	var ops []Operation
	for _, method := range action.Methods {
		a, err := r.router.Resolve(method, segments...)
		if err != nil {
			if !errors.Is(err, action.ErrNotFound) && !errors.Is(err, action.ErrNotAllowed) {
				r.logger.Warn().Err(err).Str("method", method).Msg("unexpected resolution error")
			}
			continue
		}

		if !a.Permission.Allowed(ctx, creds) {
			r.logger.Debug().
				Str("method", method).
				Str("path", a.Key.Path()).
				Msg("operation omitted by permission")
			continue
		}

		label := Label(method)
		ops = append(ops, Operation{
			Name:         convention.OperationName(resource, label),
			Label:        label,
			Method:       method,
			Resource:     resource,
			IsCollection: a.Key.Kind() != action.KindItem,
			Form:         a.Form,
		})
	}
	return ops
}
