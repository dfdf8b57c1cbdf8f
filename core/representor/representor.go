// Package representor defines the schema that maps a domain model onto a
// hypermedia document: its identifier, vocabulary types, scalar fields,
// links, related resources and value-embedded nested objects.
//
// Representors are declared once at composition time through the typed
// Builder and are immutable afterwards. Extractors are stored type-erased so
// representors of every model type can share one registry.
package representor

import (
	"io"

	"golang.org/x/text/language"
)

// FieldGroup identifies a family of scalar fields.
type FieldGroup int

const (
	GroupBoolean FieldGroup = iota
	GroupBooleanList
	GroupString
	GroupStringList
	GroupNumber
	GroupNumberList
	GroupDate
	GroupBinaryFile
	GroupRelativeURL
	GroupLocalizedString
)

// Groups lists every scalar group in emission order.
var Groups = []FieldGroup{
	GroupBoolean,
	GroupBooleanList,
	GroupString,
	GroupStringList,
	GroupNumber,
	GroupNumberList,
	GroupDate,
	GroupBinaryFile,
	GroupRelativeURL,
	GroupLocalizedString,
}

// String returns the group name.
func (g FieldGroup) String() string {
	switch g {
	case GroupBoolean:
		return "boolean"
	case GroupBooleanList:
		return "boolean-list"
	case GroupString:
		return "string"
	case GroupStringList:
		return "string-list"
	case GroupNumber:
		return "number"
	case GroupNumberList:
		return "number-list"
	case GroupDate:
		return "date"
	case GroupBinaryFile:
		return "binary"
	case GroupRelativeURL:
		return "relative-url"
	case GroupLocalizedString:
		return "localized-string"
	default:
		return "unknown"
	}
}

// BinaryFile is a binary payload exposed under the binary-serving path.
type BinaryFile struct {
	MediaType string
	Open      func() (io.ReadCloser, error)
}

// ScalarField is one extractor of a scalar group.
//
// Value returns the extracted value and whether it is present. The dynamic
// type of the value depends on the group: bool, []bool, string, []string,
// float64, []float64, time.Time, *BinaryFile, string (relative URL) or
// string (localized).
type ScalarField struct {
	Key   string
	Group FieldGroup
	value func(model any, lang language.Tag) (any, bool)
}

// Value extracts the field from model for lang.
func (f ScalarField) Value(model any, lang language.Tag) (any, bool) {
	return f.value(model, lang)
}

// Link is a constant, string-keyed URL.
type Link struct {
	Key string
	URL string
}

// RelatedModel is a single-valued link to another resource.
type RelatedModel struct {
	Key            string
	IdentifierType string

	// InverseKey is set for bidirectional relations: the key under which the
	// target type exposes the collection pointing back at this type.
	InverseKey string

	identifier func(model any) (any, bool)
}

// Identifier extracts the related identifier from model.
func (r RelatedModel) Identifier(model any) (any, bool) {
	return r.identifier(model)
}

// RelatedCollection is a collection-valued link, resolved by URL only.
type RelatedCollection struct {
	Key            string
	IdentifierType string
}

// NestedField embeds a value-only sub-object described by a nested Representor.
type NestedField struct {
	Key         string
	Representor *Representor
	single      func(model any) (any, bool)
	list        func(model any) []any
}

// Value extracts a single nested object.
func (n NestedField) Value(model any) (any, bool) {
	if n.single == nil {
		return nil, false
	}
	return n.single(model)
}

// Values extracts a list of nested objects.
func (n NestedField) Values(model any) []any {
	if n.list == nil {
		return nil
	}
	return n.list(model)
}

// Representor is the immutable schema of one resource type.
type Representor struct {
	identifierType     string
	nested             bool
	identifier         func(model any) (any, bool)
	types              []string
	fields             []ScalarField
	links              []Link
	relatedModels      []RelatedModel
	relatedCollections []RelatedCollection
	nestedFields       []NestedField
	nestedListFields   []NestedField
}

// IdentifierType returns the identifier type name this representor describes.
func (r *Representor) IdentifierType() string {
	return r.identifierType
}

// IsNested reports whether this is a value-embedded nested representor.
func (r *Representor) IsNested() bool {
	return r.nested
}

// Identifier extracts the identifier from model.
func (r *Representor) Identifier(model any) (any, bool) {
	if r.identifier == nil {
		return nil, false
	}
	return r.identifier(model)
}

// Types returns the vocabulary types; the first is the primary type.
func (r *Representor) Types() []string {
	return append([]string(nil), r.types...)
}

// PrimaryType returns the first vocabulary type, or "".
func (r *Representor) PrimaryType() string {
	if len(r.types) == 0 {
		return ""
	}
	return r.types[0]
}

// Fields returns the scalar extractors of group in declaration order.
func (r *Representor) Fields(group FieldGroup) []ScalarField {
	var out []ScalarField
	for _, f := range r.fields {
		if f.Group == group {
			out = append(out, f)
		}
	}
	return out
}

// AllFields returns every scalar extractor in declaration order.
func (r *Representor) AllFields() []ScalarField {
	return append([]ScalarField(nil), r.fields...)
}

// Field looks up a scalar extractor by key.
func (r *Representor) Field(key string) (ScalarField, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f, true
		}
	}
	return ScalarField{}, false
}

// Links returns the constant links.
func (r *Representor) Links() []Link {
	return append([]Link(nil), r.links...)
}

// RelatedModels returns the single-valued relations.
func (r *Representor) RelatedModels() []RelatedModel {
	return append([]RelatedModel(nil), r.relatedModels...)
}

// RelatedCollections returns the collection-valued relations.
func (r *Representor) RelatedCollections() []RelatedCollection {
	return append([]RelatedCollection(nil), r.relatedCollections...)
}

// NestedFields returns the single-valued nested objects.
func (r *Representor) NestedFields() []NestedField {
	return append([]NestedField(nil), r.nestedFields...)
}

// NestedListFields returns the list-valued nested objects.
func (r *Representor) NestedListFields() []NestedField {
	return append([]NestedField(nil), r.nestedListFields...)
}

// Keys returns every declared key across all groups.
func (r *Representor) Keys() []string {
	var keys []string
	for _, f := range r.fields {
		keys = append(keys, f.Key)
	}
	for _, l := range r.links {
		keys = append(keys, l.Key)
	}
	for _, rm := range r.relatedModels {
		keys = append(keys, rm.Key)
	}
	for _, rc := range r.relatedCollections {
		keys = append(keys, rc.Key)
	}
	for _, n := range r.nestedFields {
		keys = append(keys, n.Key)
	}
	for _, n := range r.nestedListFields {
		keys = append(keys, n.Key)
	}
	return keys
}

// HasKey reports whether key is declared in any group.
func (r *Representor) HasKey(key string) bool {
	for _, k := range r.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// WithRelatedCollection returns a copy of r with an extra related collection.
// Registries use it to materialize the inverse side of bidirectional links
// before the representor is published.
func (r *Representor) WithRelatedCollection(rc RelatedCollection) *Representor {
	cp := *r
	cp.relatedCollections = append(append([]RelatedCollection(nil), r.relatedCollections...), rc)
	return &cp
}

// BinaryFile extracts the binary field key from model.
func (r *Representor) BinaryFile(model any, key string) (*BinaryFile, bool) {
	f, ok := r.Field(key)
	if !ok || f.Group != GroupBinaryFile {
		return nil, false
	}
	v, ok := f.Value(model, language.Und)
	if !ok {
		return nil, false
	}
	bf, ok := v.(*BinaryFile)
	return bf, ok
}
