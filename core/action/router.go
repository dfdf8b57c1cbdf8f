// Package action registers operation handlers under structural keys and
// resolves incoming method and path segments to them, with a wildcard
// fallback for item identifiers.
package action

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/artpar/hyperapi/core/form"
	"github.com/artpar/hyperapi/core/pagination"
)

// Returns describes what a handler produces.
type Returns int

const (
	ReturnsSingle Returns = iota
	ReturnsPage
	ReturnsNothing
)

// String returns the name of the result kind.
func (r Returns) String() string {
	switch r {
	case ReturnsSingle:
		return "single"
	case ReturnsPage:
		return "page"
	case ReturnsNothing:
		return "nothing"
	default:
		return "unknown"
	}
}

// Request is the input of one handler invocation.
type Request struct {
	// Key is the concrete key built from the request path.
	Key Key

	// Body is the value built by the action's form, or nil.
	Body any

	Credentials Credentials
	Page        pagination.Params
	Language    language.Tag
}

// ID returns the concrete item segment.
func (r Request) ID() string {
	return r.Key.Item
}

// Handler runs an operation. Single results return the model, page results
// a pagination.Page[any], and ReturnsNothing handlers return nil.
type Handler func(ctx context.Context, req Request) (any, error)

// Action is one registered operation.
type Action struct {
	Key        Key
	Handler    Handler
	Form       form.Schema
	Permission Permission
	Returns    Returns

	// IdentifierType is the identifier type of the models the handler returns.
	IdentifierType string

	Description string

	decode func(map[string]any) (any, error)
}

// Decode builds the request body through the action's form. Actions without
// a form ignore the body and return nil.
func (a *Action) Decode(body map[string]any) (any, error) {
	if a.decode == nil {
		return nil, nil
	}
	return a.decode(body)
}

// Option customizes a registration.
type Option func(*Action)

// WithForm attaches the form that validates and builds the request body.
func WithForm[T any](f *form.Form[T]) Option {
	return func(a *Action) {
		a.Form = f
		a.decode = func(body map[string]any) (any, error) {
			return f.Build(body)
		}
	}
}

// WithPermission gates the operation on a credentials predicate.
func WithPermission(p Permission) Option {
	return func(a *Action) {
		a.Permission = p
	}
}

// WithReturns declares the result kind and the identifier type of the
// returned models.
func WithReturns(r Returns, identifierType string) Option {
	return func(a *Action) {
		a.Returns = r
		a.IdentifierType = identifierType
	}
}

// WithDescription documents the operation.
func WithDescription(d string) Option {
	return func(a *Action) {
		a.Description = d
	}
}

// Router maps keys to actions. Registration happens during composition;
// after Freeze the router is read-only and safe for concurrent use.
type Router struct {
	actions map[Key]*Action
	frozen  bool
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{actions: make(map[Key]*Action)}
}

// Register adds a handler under key.
func (r *Router) Register(key Key, h Handler, opts ...Option) error {
	if r.frozen {
		return fmt.Errorf("register %s: %w", key, ErrFrozen)
	}
	if h == nil {
		return fmt.Errorf("register %s: handler is required", key)
	}
	if len(key.Segments()) == 0 {
		return fmt.Errorf("register %s: resource segment is required", key)
	}
	if _, exists := r.actions[key]; exists {
		return fmt.Errorf("register %s: %w", key, ErrDuplicate)
	}

	a := &Action{Key: key, Handler: h}
	if key.Method == "DELETE" {
		a.Returns = ReturnsNothing
	}
	for _, opt := range opts {
		opt(a)
	}

	r.actions[key] = a
	return nil
}

// Handle parses "METHOD" and a slash-separated path and registers h.
func (r *Router) Handle(method, path string, h Handler, opts ...Option) error {
	key, err := ParseKey(method, path)
	if err != nil {
		return err
	}
	return r.Register(key, h, opts...)
}

// Freeze ends composition; later registrations fail.
func (r *Router) Freeze() {
	r.frozen = true
}

// Frozen reports whether Freeze was called.
func (r *Router) Frozen() bool {
	return r.frozen
}

// Resolve finds the action for method and the path segments. It tries the
// exact key, then the generic key. When neither exists it reports
// *NotAllowedError if another method is registered for the path and
// *NotFoundError otherwise.
func (r *Router) Resolve(method string, segments ...string) (*Action, error) {
	path := strings.Join(segments, "/")
	key, err := NewKey(method, segments...)
	if err != nil {
		return nil, &NotFoundError{Method: strings.ToUpper(method), Path: path}
	}

	if a, ok := r.lookup(key); ok {
		return a, nil
	}

	if allowed := r.AllowedMethods(key); len(allowed) > 0 {
		return nil, &NotAllowedError{Method: key.Method, Path: path, Allowed: allowed}
	}
	return nil, &NotFoundError{Method: key.Method, Path: path}
}

func (r *Router) lookup(key Key) (*Action, bool) {
	if a, ok := r.actions[key]; ok {
		return a, true
	}
	if generic, ok := key.Generic(); ok {
		if a, ok := r.actions[generic]; ok {
			return a, true
		}
	}
	return nil, false
}

// AllowedMethods lists the methods registered for the path of key, exact or
// generic. Supported methods come first in their fixed order, then any
// others alphabetically.
func (r *Router) AllowedMethods(key Key) []string {
	var allowed []string
	for _, m := range Methods {
		if _, ok := r.lookup(key.WithMethod(m)); ok {
			allowed = append(allowed, m)
		}
	}

	var extra []string
	for k := range r.actions {
		if slices.Contains(Methods, k.Method) || slices.Contains(extra, k.Method) {
			continue
		}
		if _, ok := r.lookup(key.WithMethod(k.Method)); ok {
			extra = append(extra, k.Method)
		}
	}
	sort.Strings(extra)

	return append(allowed, extra...)
}

// Actions returns every registration ordered by path, then method order.
func (r *Router) Actions() []*Action {
	out := make([]*Action, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Key.Path(), out[j].Key.Path()
		if pi != pj {
			return pi < pj
		}
		return methodRank(out[i].Key.Method) < methodRank(out[j].Key.Method)
	})
	return out
}

func methodRank(m string) int {
	if i := slices.Index(Methods, m); i >= 0 {
		return i
	}
	return len(Methods)
}
