package representor

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Schema errors reported by Build.
var (
	ErrDuplicateField    = errors.New("field declared twice")
	ErrMissingIdentifier = errors.New("identifier extractor is required")
	ErrNestedIdentifier  = errors.New("nested representors cannot declare an identifier")
	ErrNestedCollection  = errors.New("nested representors cannot declare related collections")
	ErrNotNested         = errors.New("nested field requires a nested representor")
)

// NoID is the identifier type of nested representors.
type NoID struct{}

// Builder accumulates the declarations of a Representor for model type M
// with identifier type ID. The first declaration error is kept and returned
// by Build, so misdeclared schemas fail at composition time.
type Builder[M any, ID any] struct {
	r     *Representor
	keys  map[string]bool
	err   error
	built bool
}

// New starts a representor for resources whose identifiers are of the named
// identifier type.
func New[M any, ID any](identifierType string) *Builder[M, ID] {
	b := &Builder[M, ID]{
		r:    &Representor{identifierType: identifierType},
		keys: make(map[string]bool),
	}
	if identifierType == "" {
		b.err = errors.New("identifier type is required")
	}
	return b
}

// Nested starts a representor for value-embedded objects of type N.
func Nested[N any]() *Builder[N, NoID] {
	return &Builder[N, NoID]{
		r:    &Representor{nested: true},
		keys: make(map[string]bool),
	}
}

func (b *Builder[M, ID]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder[M, ID]) name() string {
	if b.r.nested {
		return "nested representor"
	}
	return fmt.Sprintf("representor %q", b.r.identifierType)
}

func (b *Builder[M, ID]) claim(key string) bool {
	if b.built {
		b.fail(fmt.Errorf("%s: %q declared after Build", b.name(), key))
		return false
	}
	if key == "" {
		b.fail(fmt.Errorf("%s: empty field key", b.name()))
		return false
	}
	if b.keys[key] {
		b.fail(fmt.Errorf("%s: %q: %w", b.name(), key, ErrDuplicateField))
		return false
	}
	b.keys[key] = true
	return true
}

// model converts an erased model back to M, accepting M and *M.
func model[M any](v any) (M, bool) {
	switch m := v.(type) {
	case M:
		return m, true
	case *M:
		if m != nil {
			return *m, true
		}
	}
	var zero M
	return zero, false
}

func (b *Builder[M, ID]) scalar(key string, group FieldGroup, fn func(M, language.Tag) (any, bool)) *Builder[M, ID] {
	if !b.claim(key) {
		return b
	}
	b.r.fields = append(b.r.fields, ScalarField{
		Key:   key,
		Group: group,
		value: func(v any, lang language.Tag) (any, bool) {
			m, ok := model[M](v)
			if !ok {
				return nil, false
			}
			return fn(m, lang)
		},
	})
	return b
}

func deref[V any](p *V) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

func nonEmpty[V any](s []V) (any, bool) {
	if len(s) == 0 {
		return nil, false
	}
	return s, true
}

// Identifier sets the identifier extractor.
func (b *Builder[M, ID]) Identifier(fn func(M) ID) *Builder[M, ID] {
	if b.r.nested {
		b.fail(fmt.Errorf("%s: %w", b.name(), ErrNestedIdentifier))
		return b
	}
	b.r.identifier = func(v any) (any, bool) {
		m, ok := model[M](v)
		if !ok {
			return nil, false
		}
		return fn(m), true
	}
	return b
}

// Types sets the vocabulary types. The first type is the primary one.
func (b *Builder[M, ID]) Types(types ...string) *Builder[M, ID] {
	b.r.types = append(b.r.types, types...)
	return b
}

// Boolean declares a boolean field; a nil result omits the field.
func (b *Builder[M, ID]) Boolean(key string, fn func(M) *bool) *Builder[M, ID] {
	return b.scalar(key, GroupBoolean, func(m M, _ language.Tag) (any, bool) { return deref(fn(m)) })
}

// BooleanList declares a list of booleans; an empty list omits the field.
func (b *Builder[M, ID]) BooleanList(key string, fn func(M) []bool) *Builder[M, ID] {
	return b.scalar(key, GroupBooleanList, func(m M, _ language.Tag) (any, bool) { return nonEmpty(fn(m)) })
}

// String declares a string field; a nil result omits the field.
func (b *Builder[M, ID]) String(key string, fn func(M) *string) *Builder[M, ID] {
	return b.scalar(key, GroupString, func(m M, _ language.Tag) (any, bool) { return deref(fn(m)) })
}

// StringList declares a list of strings.
func (b *Builder[M, ID]) StringList(key string, fn func(M) []string) *Builder[M, ID] {
	return b.scalar(key, GroupStringList, func(m M, _ language.Tag) (any, bool) { return nonEmpty(fn(m)) })
}

// Number declares a numeric field.
func (b *Builder[M, ID]) Number(key string, fn func(M) *float64) *Builder[M, ID] {
	return b.scalar(key, GroupNumber, func(m M, _ language.Tag) (any, bool) { return deref(fn(m)) })
}

// NumberList declares a list of numbers.
func (b *Builder[M, ID]) NumberList(key string, fn func(M) []float64) *Builder[M, ID] {
	return b.scalar(key, GroupNumberList, func(m M, _ language.Tag) (any, bool) { return nonEmpty(fn(m)) })
}

// Date declares a date field, written as an ISO-8601 string.
func (b *Builder[M, ID]) Date(key string, fn func(M) *time.Time) *Builder[M, ID] {
	return b.scalar(key, GroupDate, func(m M, _ language.Tag) (any, bool) { return deref(fn(m)) })
}

// BinaryFile declares a binary field, written as a URL under the binary path.
func (b *Builder[M, ID]) BinaryFile(key string, fn func(M) *BinaryFile) *Builder[M, ID] {
	return b.scalar(key, GroupBinaryFile, func(m M, _ language.Tag) (any, bool) {
		bf := fn(m)
		if bf == nil {
			return nil, false
		}
		return bf, true
	})
}

// RelativeURL declares a URL relative to the application base URL.
// An empty result omits the field.
func (b *Builder[M, ID]) RelativeURL(key string, fn func(M) string) *Builder[M, ID] {
	return b.scalar(key, GroupRelativeURL, func(m M, _ language.Tag) (any, bool) {
		s := fn(m)
		return s, s != ""
	})
}

// LocalizedString declares a string resolved per request language.
func (b *Builder[M, ID]) LocalizedString(key string, fn func(M, language.Tag) string) *Builder[M, ID] {
	return b.scalar(key, GroupLocalizedString, func(m M, lang language.Tag) (any, bool) {
		s := fn(m, lang)
		return s, s != ""
	})
}

// Link declares a constant URL.
func (b *Builder[M, ID]) Link(key, url string) *Builder[M, ID] {
	if b.claim(key) {
		b.r.links = append(b.r.links, Link{Key: key, URL: url})
	}
	return b
}

func (b *Builder[M, ID]) related(key, identifierType, inverseKey string, fn func(M) (any, bool)) *Builder[M, ID] {
	if !b.claim(key) {
		return b
	}
	b.r.relatedModels = append(b.r.relatedModels, RelatedModel{
		Key:            key,
		IdentifierType: identifierType,
		InverseKey:     inverseKey,
		identifier: func(v any) (any, bool) {
			m, ok := model[M](v)
			if !ok {
				return nil, false
			}
			id, ok := fn(m)
			if !ok || id == nil {
				return nil, false
			}
			return id, true
		},
	})
	return b
}

// LinkedModel declares a single-valued link to a resource of identifierType.
func (b *Builder[M, ID]) LinkedModel(key, identifierType string, fn func(M) (any, bool)) *Builder[M, ID] {
	return b.related(key, identifierType, "", fn)
}

// BidirectionalModel declares a link whose target exposes the inverse
// collection under inverseKey.
func (b *Builder[M, ID]) BidirectionalModel(key, identifierType, inverseKey string, fn func(M) (any, bool)) *Builder[M, ID] {
	if b.r.nested {
		b.fail(fmt.Errorf("%s: bidirectional %q: %w", b.name(), key, ErrNestedCollection))
		return b
	}
	if inverseKey == "" {
		b.fail(fmt.Errorf("%s: bidirectional %q requires an inverse key", b.name(), key))
		return b
	}
	return b.related(key, identifierType, inverseKey, fn)
}

// RelatedCollection declares a collection of resources of identifierType
// reachable from this resource.
func (b *Builder[M, ID]) RelatedCollection(key, identifierType string) *Builder[M, ID] {
	if b.r.nested {
		b.fail(fmt.Errorf("%s: %q: %w", b.name(), key, ErrNestedCollection))
		return b
	}
	if b.claim(key) {
		b.r.relatedCollections = append(b.r.relatedCollections, RelatedCollection{
			Key:            key,
			IdentifierType: identifierType,
		})
	}
	return b
}

func (b *Builder[M, ID]) checkNested(key string, nested *Representor) bool {
	if nested == nil || !nested.nested {
		b.fail(fmt.Errorf("%s: %q: %w", b.name(), key, ErrNotNested))
		return false
	}
	return b.claim(key)
}

// Nested declares a value-embedded object; fn returns false when absent.
func (b *Builder[M, ID]) Nested(key string, nested *Representor, fn func(M) (any, bool)) *Builder[M, ID] {
	if !b.checkNested(key, nested) {
		return b
	}
	b.r.nestedFields = append(b.r.nestedFields, NestedField{
		Key:         key,
		Representor: nested,
		single: func(v any) (any, bool) {
			m, ok := model[M](v)
			if !ok {
				return nil, false
			}
			return fn(m)
		},
	})
	return b
}

// NestedList declares a list of value-embedded objects.
func (b *Builder[M, ID]) NestedList(key string, nested *Representor, fn func(M) []any) *Builder[M, ID] {
	if !b.checkNested(key, nested) {
		return b
	}
	b.r.nestedListFields = append(b.r.nestedListFields, NestedField{
		Key:         key,
		Representor: nested,
		list: func(v any) []any {
			m, ok := model[M](v)
			if !ok {
				return nil
			}
			return fn(m)
		},
	})
	return b
}

// Build freezes the representor.
func (b *Builder[M, ID]) Build() (*Representor, error) {
	if b.built {
		return nil, fmt.Errorf("%s: already built", b.name())
	}
	b.built = true
	if b.err != nil {
		return nil, b.err
	}
	if !b.r.nested && b.r.identifier == nil {
		return nil, fmt.Errorf("%s: %w", b.name(), ErrMissingIdentifier)
	}
	return b.r, nil
}

// MustBuild is like Build but panics on a schema error.
func (b *Builder[M, ID]) MustBuild() *Representor {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}

// Slice converts a typed slice into the []any expected by NestedList.
func Slice[N any](items []N) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
