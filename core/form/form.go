package form

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
)

var validate = validator.New()

// FieldDescriptor documents one declared field.
type FieldDescriptor struct {
	Name     string    `json:"name" yaml:"name"`
	Required bool      `json:"required" yaml:"required"`
	Type     FieldType `json:"type" yaml:"type"`
}

// Description is the client-facing shape of a form.
type Description struct {
	ID          string            `json:"id" yaml:"id"`
	Title       string            `json:"title,omitempty" yaml:"title,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []FieldDescriptor `json:"fields" yaml:"fields"`
}

// Schema is the type-independent view of a form. Routers and writers hold
// forms through this interface; handlers keep the typed *Form to call Build.
type Schema interface {
	ID() string
	Describe(lang language.Tag) Description
	FieldDescriptors() []FieldDescriptor
}

// LocalizedFunc returns a text for the requested language.
type LocalizedFunc func(lang language.Tag) string

// Text returns a LocalizedFunc that ignores the language.
func Text(s string) LocalizedFunc {
	return func(language.Tag) string { return s }
}

type field[T any] struct {
	desc       FieldDescriptor
	constraint string
	set        func(*T, any)
}

// Form decodes untyped body maps into values of type T.
// A Form is immutable and safe for concurrent use.
type Form[T any] struct {
	id          string
	title       LocalizedFunc
	description LocalizedFunc
	constructor func() T
	fields      []field[T]
}

// ID returns the stable identifier of the form.
func (f *Form[T]) ID() string {
	return f.id
}

// FieldDescriptors returns the declared fields in declaration order.
func (f *Form[T]) FieldDescriptors() []FieldDescriptor {
	out := make([]FieldDescriptor, len(f.fields))
	for i, fd := range f.fields {
		out[i] = fd.desc
	}
	return out
}

// Describe returns the form description for lang.
func (f *Form[T]) Describe(lang language.Tag) Description {
	d := Description{
		ID:     f.id,
		Fields: f.FieldDescriptors(),
	}
	if f.title != nil {
		d.Title = f.title(lang)
	}
	if f.description != nil {
		d.Description = f.description(lang)
	}
	return d
}

// Build validates body and returns a new T populated through the declared
// setters. The first failing field, in declaration order, is reported as a
// *ValidationError.
func (f *Form[T]) Build(body map[string]any) (T, error) {
	value := f.constructor()

	for _, fd := range f.fields {
		raw, present := body[fd.desc.Name]
		if !present || raw == nil {
			if fd.desc.Required {
				var zero T
				return zero, MissingField(fd.desc.Name, fd.desc.Type)
			}
			continue
		}

		coerced, ok, err := coerce(fd.desc.Type, raw)
		if !ok {
			var zero T
			verr := TypeMismatch(fd.desc.Name, fd.desc.Type)
			verr.Err = err
			return zero, verr
		}

		if fd.constraint != "" {
			if err := validate.Var(coerced, fd.constraint); err != nil {
				var zero T
				return zero, &ValidationError{
					Kind:       KindConstraintViolation,
					Key:        fd.desc.Name,
					Expected:   fd.desc.Type,
					Constraint: fd.constraint,
					Err:        err,
				}
			}
		}

		fd.set(&value, coerced)
	}

	return value, nil
}

// FieldOption customizes a field declaration.
type FieldOption func(*fieldOptions)

type fieldOptions struct {
	constraint string
}

// Validate attaches a go-playground/validator tag (e.g. "email", "max=140")
// checked against the coerced value.
func Validate(tag string) FieldOption {
	return func(o *fieldOptions) {
		o.constraint = tag
	}
}

// Builder accumulates field declarations for a Form.
// The first declaration error is kept and returned by Build.
type Builder[T any] struct {
	form  *Form[T]
	keys  map[string]bool
	err   error
	built bool
}

// New starts a form with a path-derived id and a constructor for T.
func New[T any](id string, constructor func() T) *Builder[T] {
	b := &Builder[T]{
		form: &Form[T]{id: id, constructor: constructor},
		keys: make(map[string]bool),
	}
	if id == "" {
		b.err = errors.New("form id is required")
	}
	if constructor == nil {
		b.fail(fmt.Errorf("form %q: constructor is required", id))
	}
	return b
}

// Title sets the localized title.
func (b *Builder[T]) Title(fn LocalizedFunc) *Builder[T] {
	b.form.title = fn
	return b
}

// Description sets the localized description.
func (b *Builder[T]) Description(fn LocalizedFunc) *Builder[T] {
	b.form.description = fn
	return b
}

func (b *Builder[T]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder[T]) add(key string, required bool, t FieldType, set func(*T, any), opts []FieldOption) *Builder[T] {
	if b.built {
		b.fail(fmt.Errorf("form %q: field %q declared after Build", b.form.id, key))
		return b
	}
	if key == "" {
		b.fail(fmt.Errorf("form %q: field key is required", b.form.id))
		return b
	}
	if b.keys[key] {
		b.fail(fmt.Errorf("form %q: field %q declared twice", b.form.id, key))
		return b
	}
	if set == nil {
		b.fail(fmt.Errorf("form %q: field %q has no setter", b.form.id, key))
		return b
	}

	var o fieldOptions
	for _, opt := range opts {
		opt(&o)
	}

	b.keys[key] = true
	b.form.fields = append(b.form.fields, field[T]{
		desc:       FieldDescriptor{Name: key, Required: required, Type: t},
		constraint: o.constraint,
		set:        set,
	})
	return b
}

func setter[T, V any](fn func(*T, V)) func(*T, any) {
	if fn == nil {
		return nil
	}
	return func(t *T, v any) { fn(t, v.(V)) }
}

// RequiredBoolean declares a required boolean field.
func (b *Builder[T]) RequiredBoolean(key string, fn func(*T, bool), opts ...FieldOption) *Builder[T] {
	return b.add(key, true, TypeBoolean, setter(fn), opts)
}

// OptionalBoolean declares an optional boolean field.
func (b *Builder[T]) OptionalBoolean(key string, fn func(*T, bool), opts ...FieldOption) *Builder[T] {
	return b.add(key, false, TypeBoolean, setter(fn), opts)
}

// RequiredDate declares a required ISO-8601 date field.
func (b *Builder[T]) RequiredDate(key string, fn func(*T, time.Time), opts ...FieldOption) *Builder[T] {
	return b.add(key, true, TypeDate, setter(fn), opts)
}

// OptionalDate declares an optional ISO-8601 date field.
func (b *Builder[T]) OptionalDate(key string, fn func(*T, time.Time), opts ...FieldOption) *Builder[T] {
	return b.add(key, false, TypeDate, setter(fn), opts)
}

// RequiredDouble declares a required floating point field.
func (b *Builder[T]) RequiredDouble(key string, fn func(*T, float64), opts ...FieldOption) *Builder[T] {
	return b.add(key, true, TypeDouble, setter(fn), opts)
}

// OptionalDouble declares an optional floating point field.
func (b *Builder[T]) OptionalDouble(key string, fn func(*T, float64), opts ...FieldOption) *Builder[T] {
	return b.add(key, false, TypeDouble, setter(fn), opts)
}

// RequiredLong declares a required integral field.
func (b *Builder[T]) RequiredLong(key string, fn func(*T, int64), opts ...FieldOption) *Builder[T] {
	return b.add(key, true, TypeLong, setter(fn), opts)
}

// OptionalLong declares an optional integral field.
func (b *Builder[T]) OptionalLong(key string, fn func(*T, int64), opts ...FieldOption) *Builder[T] {
	return b.add(key, false, TypeLong, setter(fn), opts)
}

// RequiredString declares a required string field.
func (b *Builder[T]) RequiredString(key string, fn func(*T, string), opts ...FieldOption) *Builder[T] {
	return b.add(key, true, TypeString, setter(fn), opts)
}

// OptionalString declares an optional string field.
func (b *Builder[T]) OptionalString(key string, fn func(*T, string), opts ...FieldOption) *Builder[T] {
	return b.add(key, false, TypeString, setter(fn), opts)
}

// RequiredBooleanList declares a required list of booleans.
func (b *Builder[T]) RequiredBooleanList(key string, fn func(*T, []bool), opts ...FieldOption) *Builder[T] {
	return b.add(key, true, TypeBooleanList, setter(fn), opts)
}

// OptionalBooleanList declares an optional list of booleans.
func (b *Builder[T]) OptionalBooleanList(key string, fn func(*T, []bool), opts ...FieldOption) *Builder[T] {
	return b.add(key, false, TypeBooleanList, setter(fn), opts)
}

// RequiredDateList declares a required list of dates.
func (b *Builder[T]) RequiredDateList(key string, fn func(*T, []time.Time), opts ...FieldOption) *Builder[T] {
	return b.add(key, true, TypeDateList, setter(fn), opts)
}

// OptionalDateList declares an optional list of dates.
func (b *Builder[T]) OptionalDateList(key string, fn func(*T, []time.Time), opts ...FieldOption) *Builder[T] {
	return b.add(key, false, TypeDateList, setter(fn), opts)
}

// RequiredDoubleList declares a required list of floating point numbers.
func (b *Builder[T]) RequiredDoubleList(key string, fn func(*T, []float64), opts ...FieldOption) *Builder[T] {
	return b.add(key, true, TypeDoubleList, setter(fn), opts)
}

// OptionalDoubleList declares an optional list of floating point numbers.
func (b *Builder[T]) OptionalDoubleList(key string, fn func(*T, []float64), opts ...FieldOption) *Builder[T] {
	return b.add(key, false, TypeDoubleList, setter(fn), opts)
}

// RequiredLongList declares a required list of integers.
func (b *Builder[T]) RequiredLongList(key string, fn func(*T, []int64), opts ...FieldOption) *Builder[T] {
	return b.add(key, true, TypeLongList, setter(fn), opts)
}

// OptionalLongList declares an optional list of integers.
func (b *Builder[T]) OptionalLongList(key string, fn func(*T, []int64), opts ...FieldOption) *Builder[T] {
	return b.add(key, false, TypeLongList, setter(fn), opts)
}

// RequiredStringList declares a required list of strings.
func (b *Builder[T]) RequiredStringList(key string, fn func(*T, []string), opts ...FieldOption) *Builder[T] {
	return b.add(key, true, TypeStringList, setter(fn), opts)
}

// OptionalStringList declares an optional list of strings.
func (b *Builder[T]) OptionalStringList(key string, fn func(*T, []string), opts ...FieldOption) *Builder[T] {
	return b.add(key, false, TypeStringList, setter(fn), opts)
}

// Build finalizes the form. The builder cannot be used afterwards.
func (b *Builder[T]) Build() (*Form[T], error) {
	if b.built {
		return nil, fmt.Errorf("form %q: already built", b.form.id)
	}
	b.built = true
	if b.err != nil {
		return nil, b.err
	}
	return b.form, nil
}

// MustBuild is like Build but panics on a declaration error.
// Intended for package-level form definitions.
func (b *Builder[T]) MustBuild() *Form[T] {
	f, err := b.Build()
	if err != nil {
		panic(err)
	}
	return f
}
