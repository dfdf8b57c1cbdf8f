// Package jsonapi implements JSON:API message mappers. Resources are
// written as resource objects, relations as relationship objects with
// related links, and affordances under the resource meta.
// See https://jsonapi.org for the format.
package jsonapi

import (
	"net/url"
	"path"

	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/mapper"
)

// ContentType is the JSON:API media type.
const ContentType = "application/vnd.api+json"

// Version is the JSON:API specification version.
const Version = "1.1"

// Reserved member names.
const (
	KeyData          = "data"
	KeyType          = "type"
	KeyID            = "id"
	KeyAttributes    = "attributes"
	KeyRelationships = "relationships"
	KeyLinks         = "links"
	KeyMeta          = "meta"
	KeyErrors        = "errors"
	KeyJSONAPI       = "jsonapi"
)

// top starts a top-level document with the version object.
func top(doc *document.Node) {
	doc.Object(KeyJSONAPI).Set("version", Version)
}

// idFromURL returns the unescaped last path segment of a resource URL.
func idFromURL(u string) string {
	seg := path.Base(u)
	if id, err := url.PathUnescape(seg); err == nil {
		return id
	}
	return seg
}

// Format bundles the JSON:API mappers.
type Format struct{}

var _ mapper.Format = Format{}

func (Format) MediaType() string { return ContentType }

// SingleModel returns a fresh mapper; it tracks the nested objects of one
// walk.
func (Format) SingleModel() mapper.SingleModelMapper     { return NewSingleModelMapper() }
func (Format) Page() mapper.PageMapper                   { return NewPageMapper() }
func (Format) Form() mapper.FormMapper                   { return FormMapper{} }
func (Format) Error() mapper.ErrorMapper                 { return ErrorMapper{} }
func (Format) Documentation() mapper.DocumentationMapper { return DocumentationMapper{} }
