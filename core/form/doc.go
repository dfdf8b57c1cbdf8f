// Package form describes and validates request bodies.
//
// A Form declares, field by field, which keys a body may carry, whether each
// key is required and which scalar type it must hold. Build type-checks an
// untyped body map, coerces the values and hands them to typed setters on a
// freshly constructed value. The same declaration is exposed as field
// descriptors so clients can fetch the shape of a form before submitting it.
package form
