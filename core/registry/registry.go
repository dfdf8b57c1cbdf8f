// Package registry holds the schema of every resource exposed by the
// application. It maps resource names, identifier types and Representors
// onto each other and resolves resource paths for the document writer.
//
// A Registry is assembled once through a Builder and is immutable
// afterwards; it is safe for concurrent use without locking.
package registry

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/artpar/hyperapi/core/convention"
	"github.com/artpar/hyperapi/core/representor"
)

// Schema errors reported by Build.
var (
	ErrDuplicateType = errors.New("identifier type registered twice")
	ErrDuplicateName = errors.New("resource name registered twice")
	ErrNestedRoot    = errors.New("nested representors cannot be registered")
	ErrUnknownTarget = errors.New("unknown relation target")
)

// Entry is one registered resource.
type Entry struct {
	Name           string
	IdentifierType string
	Representor    *representor.Representor
}

// Option customizes a registration.
type Option func(*Entry)

// WithName overrides the resource name derived from the primary type.
func WithName(name string) Option {
	return func(e *Entry) {
		e.Name = name
	}
}

// Builder collects registrations. The zero value is not usable; use NewBuilder.
type Builder struct {
	entries []Entry
	errs    []error
	built   bool
}

// NewBuilder creates an empty registry builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add registers a resource. The resource name defaults to the kebab-cased,
// pluralized primary vocabulary type ("BlogPosting" -> "blog-postings").
func (b *Builder) Add(r *representor.Representor, opts ...Option) *Builder {
	if b.built {
		b.errs = append(b.errs, errors.New("registry: Add after Build"))
		return b
	}
	if r == nil {
		b.errs = append(b.errs, errors.New("registry: nil representor"))
		return b
	}
	if r.IsNested() {
		b.errs = append(b.errs, ErrNestedRoot)
		return b
	}

	e := Entry{
		Name:           convention.ResourceName(r.PrimaryType()),
		IdentifierType: r.IdentifierType(),
		Representor:    r,
	}
	for _, opt := range opts {
		opt(&e)
	}
	if e.Name == "" {
		b.errs = append(b.errs, fmt.Errorf("registry: %q has no vocabulary type to derive a name from", e.IdentifierType))
		return b
	}

	b.entries = append(b.entries, e)
	return b
}

// Build validates the registrations and publishes the Registry. The inverse
// side of every bidirectional relation is materialized as a related
// collection on the target representor.
func (b *Builder) Build() (*Registry, error) {
	if b.built {
		return nil, errors.New("registry: already built")
	}
	b.built = true

	reg := &Registry{
		byType: make(map[string]*Entry, len(b.entries)),
		byName: make(map[string]*Entry, len(b.entries)),
	}
	errs := append([]error(nil), b.errs...)

	for i := range b.entries {
		e := b.entries[i]
		if _, exists := reg.byType[e.IdentifierType]; exists {
			errs = append(errs, fmt.Errorf("registry: %q: %w", e.IdentifierType, ErrDuplicateType))
			continue
		}
		if existing, exists := reg.byName[e.Name]; exists {
			errs = append(errs, fmt.Errorf("registry: %q claimed by %q and %q: %w",
				e.Name, existing.IdentifierType, e.IdentifierType, ErrDuplicateName))
			continue
		}
		entry := &e
		reg.byType[e.IdentifierType] = entry
		reg.byName[e.Name] = entry
		reg.entries = append(reg.entries, entry)
	}

	for _, e := range reg.entries {
		for _, rm := range e.Representor.RelatedModels() {
			if rm.InverseKey == "" {
				continue
			}
			target, ok := reg.byType[rm.IdentifierType]
			if !ok {
				errs = append(errs, fmt.Errorf("registry: %q.%s -> %q: %w",
					e.IdentifierType, rm.Key, rm.IdentifierType, ErrUnknownTarget))
				continue
			}
			if target.Representor.HasKey(rm.InverseKey) {
				errs = append(errs, fmt.Errorf("registry: inverse key %q on %q: %w",
					rm.InverseKey, target.IdentifierType, representor.ErrDuplicateField))
				continue
			}
			target.Representor = target.Representor.WithRelatedCollection(representor.RelatedCollection{
				Key:            rm.InverseKey,
				IdentifierType: e.IdentifierType,
			})
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	sort.Slice(reg.entries, func(i, j int) bool {
		return reg.entries[i].Name < reg.entries[j].Name
	})
	return reg, nil
}

// Registry is the immutable resource schema registry.
type Registry struct {
	entries []*Entry
	byType  map[string]*Entry
	byName  map[string]*Entry
}

// Representor returns the representor registered for identifierType.
func (r *Registry) Representor(identifierType string) (*representor.Representor, bool) {
	e, ok := r.byType[identifierType]
	if !ok {
		return nil, false
	}
	return e.Representor, true
}

// Lookup returns the entry registered under a resource name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.byName[name]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Name returns the resource name of identifierType.
func (r *Registry) Name(identifierType string) (string, bool) {
	e, ok := r.byType[identifierType]
	if !ok {
		return "", false
	}
	return e.Name, true
}

// Path returns the resource path of one instance: "<name>/<escaped id>".
func (r *Registry) Path(identifierType string, id any) (string, bool) {
	name, ok := r.Name(identifierType)
	if !ok || id == nil {
		return "", false
	}
	s := FormatIdentifier(id)
	if s == "" {
		return "", false
	}
	return name + "/" + url.PathEscape(s), true
}

// Entries returns every registration sorted by resource name.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = *e
	}
	return out
}

// Names returns the sorted resource names.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// FormatIdentifier renders an identifier as a path segment.
func FormatIdentifier(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
